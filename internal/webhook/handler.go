// Package webhook implements the mock payment gateway callback: an
// idempotent, optionally signature-verified HTTP handler that marks orders
// paid or failed and triggers fulfillment.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/metrics"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/shop"
	"github.com/ohulko/matkarnia/internal/store"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Webhook-Signature"

// Event types dispatched by the handler.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Event is the gateway callback payload.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		OrderID string `json:"order_id"`
		Method  string `json:"method"`
	} `json:"data"`
}

// Handler processes gateway callbacks. With an empty Secret, signature
// verification is skipped.
type Handler struct {
	KVS    *kv.Store
	Clk    clock.Clock
	Flow   *shop.Flow
	Secret string
}

type response struct {
	OK bool `json:"ok"`
}

func respond(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response{OK: ok})
}

// ServeHTTP handles POST callbacks. Consumers must not retry on ok:true and
// may retry on ok:false.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 64<<10))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("bad_request").Inc()
		respond(w, false)
		return
	}

	// Verify the shared-secret signature when configured. A mismatch is a
	// soft ok:false, never a thrown error.
	if h.Secret != "" {
		if err := verifySignature(h.Secret, body, r.Header.Get(SignatureHeader)); err != nil {
			slog.Warn("webhook rejected", "error", err)
			metrics.WebhookEvents.WithLabelValues("signature_mismatch").Inc()
			respond(w, false)
			return
		}
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil || event.ID == "" {
		metrics.WebhookEvents.WithLabelValues("bad_request").Inc()
		respond(w, false)
		return
	}

	// Dedupe by event id: a replay acknowledges without re-mutating.
	switch err := h.checkEvent(r.Context(), event.ID); {
	case errors.Is(err, model.ErrDuplicateEvent):
		slog.Info("webhook replay ignored", "event", event.ID)
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		respond(w, true)
		return
	case err != nil:
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		respond(w, false)
		return
	}

	if err := h.dispatch(r, event); err != nil {
		// Events without a resolvable order are acknowledged as a no-op to
		// avoid gateway retry storms.
		if errors.Is(err, model.ErrOrderNotFound) {
			slog.Info("webhook event for unknown order", "event", event.ID, "order", event.Data.OrderID)
			metrics.WebhookEvents.WithLabelValues("no_order").Inc()
			h.ack(r, event.ID)
			respond(w, true)
			return
		}
		// Not marked seen: the gateway may retry this event.
		slog.Error("webhook dispatch failed", "event", event.ID, "error", err)
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		respond(w, false)
		return
	}

	metrics.WebhookEvents.WithLabelValues("ok").Inc()
	h.ack(r, event.ID)
	respond(w, true)
}

// checkEvent reports an already-handled event as ErrDuplicateEvent.
func (h *Handler) checkEvent(ctx context.Context, eventID string) error {
	seen, err := store.IsEventSeen(ctx, h.KVS, eventID)
	if err != nil {
		return err
	}
	if seen {
		return model.ErrDuplicateEvent
	}
	return nil
}

// ack records the event in the seen-set once it has been fully handled.
func (h *Handler) ack(r *http.Request, eventID string) {
	if err := store.MarkEventSeen(r.Context(), h.KVS, eventID); err != nil {
		slog.Error("recording webhook event", "event", eventID, "error", err)
	}
}

func (h *Handler) dispatch(r *http.Request, event Event) error {
	ctx := r.Context()

	switch event.Type {
	case EventPaymentSucceeded:
		if event.Data.OrderID == "" {
			return model.ErrOrderNotFound
		}
		order, err := store.GetOrder(ctx, h.KVS, event.Data.OrderID)
		if err != nil {
			return err
		}
		// A retry of an un-acked event may find the payment already recorded
		// (fulfillment failed last time) or the order already fulfilled
		// (the ack was lost). Skip the steps that already happened.
		switch order.Status {
		case model.OrderStatusTransferred:
			return nil
		case model.OrderStatusPaid:
		default:
			method := event.Data.Method
			if method == "" {
				method = "gateway"
			}
			if _, err := store.MarkOrderPaid(ctx, h.KVS, h.Clk, event.Data.OrderID, method); err != nil {
				return err
			}
			metrics.PaymentsCaptured.Inc()
		}
		_, err = h.Flow.ProcessPaidOrder(ctx, event.Data.OrderID)
		return err

	case EventPaymentFailed:
		if event.Data.OrderID == "" {
			return model.ErrOrderNotFound
		}
		if _, err := store.MarkPaymentFailed(ctx, h.KVS, h.Clk, event.Data.OrderID); err != nil {
			return err
		}
		metrics.PaymentsFailed.Inc()
		return nil

	default:
		// Unknown event types are acknowledged so the gateway stops sending.
		slog.Info("unhandled webhook event type", "type", event.Type)
		return nil
	}
}

func verifySignature(secret string, body []byte, header string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(header)) {
		return model.ErrSignatureMismatch
	}
	return nil
}

// Sign computes the signature header value for a body; exported for tests
// and for the CLI's webhook replay tooling.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
