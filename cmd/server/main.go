package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ohulko/matkarnia/internal/api"
	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/config"
	"github.com/ohulko/matkarnia/internal/db"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/metrics"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/notify"
	"github.com/ohulko/matkarnia/internal/payments"
	"github.com/ohulko/matkarnia/internal/queue"
	"github.com/ohulko/matkarnia/internal/shop"
	"github.com/ohulko/matkarnia/internal/store"
	"github.com/ohulko/matkarnia/internal/webhook"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

func setupLogger() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	handler := &levelRouter{
		stdout: slog.NewTextHandler(os.Stdout, opts),
		stderr: slog.NewTextHandler(os.Stderr, opts),
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: matkarnia <init|serve|backup|restore>")
		os.Exit(1)
	}

	setupLogger()

	switch os.Args[1] {
	case "init":
		cmdInit(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "backup":
		cmdBackup(os.Args[2:])
	case "restore":
		cmdRestore(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: matkarnia <init|serve|backup|restore>\n", os.Args[1])
		os.Exit(1)
	}
}

func cmdInit(args []string) {
	cfg := config.Load()

	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: database file %s already exists\n", *dbPath)
		os.Exit(1)
	}

	password, err := initDatabase(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database created: %s\n", *dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: admin\n")
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

func cmdServe(args []string) {
	cfg := config.Load()

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	addr := fs.String("addr", cfg.Addr, "listen address")
	webhookSecret := fs.String("webhook-secret", cfg.WebhookSecret, "payment webhook signing key")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: database %s does not exist, run 'matkarnia init' first\n", *dbPath)
		os.Exit(1)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kvs := kv.New(database)
	clk := clock.NewSystem()

	jwtSecret, err := store.GetJWTSecret(ctx, kvs)
	if err != nil {
		slog.Error("failed to load JWT secret", "error", err)
		os.Exit(1)
	}

	gateway := payments.New(kvs, clk)
	flow := shop.NewFlow(kvs, clk, gateway)
	sender := notify.NewSender(kvs, clk)

	worker := queue.NewWorker(kvs, clk)
	worker.Register(shop.JobTypeOrderNotify, orderNotifyHandler(kvs, sender))

	hook := &webhook.Handler{
		KVS:    kvs,
		Clk:    clk,
		Flow:   flow,
		Secret: *webhookSecret,
	}
	if *webhookSecret == "" {
		slog.Warn("webhook secret not set, signature verification disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(kvs, clk, flow, worker, jwtSecret))
	mux.Handle("POST /webhooks/payment", hook)
	mux.Handle("GET /metrics", metrics.Handler())

	server := &http.Server{
		Addr:         *addr,
		Handler:      api.LoggingMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go worker.Run(ctx, cfg.DrainInterval)

	go func() {
		slog.Info("server listening", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func cmdBackup(args []string) {
	cfg := config.Load()

	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	out := fs.String("out", "", "output file (default: stdout)")
	fs.Parse(args)

	database, err := db.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	kvs := kv.New(database)
	snap, err := kvs.Export(context.Background(), store.KeyPrefix, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdRestore(args []string) {
	cfg := config.Load()

	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	in := fs.String("in", "", "snapshot file (default: stdin)")
	fs.Parse(args)

	r := io.Reader(os.Stdin)
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	var snap kv.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid snapshot: %v\n", err)
		os.Exit(1)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kvs := kv.New(database)
	if err := kvs.Import(context.Background(), &snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Restored %d keys.\n", len(snap.Data))
}

// orderNotifyHandler sends the fulfillment mail for a completed order.
func orderNotifyHandler(kvs *kv.Store, sender *notify.Sender) queue.Handler {
	return func(ctx context.Context, job model.Job) error {
		var payload shop.OrderNotifyPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}

		buyer, err := store.GetUser(ctx, kvs, payload.BuyerID)
		if err != nil {
			return err
		}
		if buyer == nil {
			return fmt.Errorf("buyer %s not found", payload.BuyerID)
		}

		subject, body := shop.FulfillmentMail(payload)
		return sender.SendMail(ctx, buyer.Email, subject, body, payload.PassportIDs)
	}
}

// initDatabase creates a new database, ensures the schema, and seeds the
// admin user. The generated admin password is returned.
func initDatabase(path string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	fail := func(err error) (string, error) {
		os.Remove(path)
		return "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	kvs := kv.New(database)
	_, err = store.CreateUser(context.Background(), kvs, clock.NewSystem(), "admin", "admin@localhost", string(hash), model.RoleAdmin)
	if err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return password, nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
