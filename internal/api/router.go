package api

import (
	"net/http"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/queue"
	"github.com/ohulko/matkarnia/internal/shop"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(kvs *kv.Store, clk clock.Clock, flow *shop.Flow, worker *queue.Worker, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{KVS: kvs, Clk: clk, JWTSecret: jwtSecret}
	breedersHandler := &BreedersHandler{KVS: kvs, Clk: clk}
	listingsHandler := &ListingsHandler{KVS: kvs, Clk: clk}
	cartHandler := &CartHandler{KVS: kvs, Clk: clk}
	ordersHandler := &OrdersHandler{KVS: kvs, Clk: clk, Flow: flow}
	reviewsHandler := &ReviewsHandler{KVS: kvs, Clk: clk}
	passportsHandler := &PassportsHandler{KVS: kvs}
	adminHandler := &AdminHandler{KVS: kvs, Clk: clk, Worker: worker}

	authMW := AuthMiddleware(jwtSecret, kvs)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireModerator := RequireRole(model.RoleModerator)

	// Public: registration, login, and the storefront reads.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/breeders", breedersHandler.List)
	mux.HandleFunc("GET /api/breeders/{slug}", breedersHandler.Get)
	mux.HandleFunc("GET /api/breeders/{slug}/photo", breedersHandler.GetPhoto)
	mux.HandleFunc("GET /api/listings", listingsHandler.List)
	mux.HandleFunc("GET /api/listings/{id}", listingsHandler.Get)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Breeder profiles.
	mux.Handle("POST /api/breeders", authMW(http.HandlerFunc(breedersHandler.Create)))
	mux.Handle("PUT /api/breeders/{slug}", authMW(http.HandlerFunc(breedersHandler.Update)))
	mux.Handle("PUT /api/breeders/{slug}/photo", authMW(http.HandlerFunc(breedersHandler.UploadPhoto)))

	// Listings (sellers).
	mux.Handle("POST /api/listings", authMW(http.HandlerFunc(listingsHandler.Create)))
	mux.Handle("PUT /api/listings/{id}", authMW(http.HandlerFunc(listingsHandler.Update)))

	// Cart.
	mux.Handle("GET /api/cart", authMW(http.HandlerFunc(cartHandler.Get)))
	mux.Handle("POST /api/cart/items", authMW(http.HandlerFunc(cartHandler.Add)))
	mux.Handle("PUT /api/cart/items/{listingID}", authMW(http.HandlerFunc(cartHandler.SetQty)))
	mux.Handle("DELETE /api/cart/items/{listingID}", authMW(http.HandlerFunc(cartHandler.Remove)))
	mux.Handle("DELETE /api/cart", authMW(http.HandlerFunc(cartHandler.Clear)))

	// Orders.
	mux.Handle("GET /api/orders", authMW(http.HandlerFunc(ordersHandler.List)))
	mux.Handle("POST /api/orders/checkout", authMW(http.HandlerFunc(ordersHandler.Checkout)))
	mux.Handle("GET /api/orders/{id}", authMW(http.HandlerFunc(ordersHandler.Get)))
	mux.Handle("POST /api/orders/{id}/place", authMW(http.HandlerFunc(ordersHandler.Place)))
	mux.Handle("POST /api/orders/{id}/pay", authMW(http.HandlerFunc(ordersHandler.Pay)))
	mux.Handle("POST /api/orders/{id}/cancel", authMW(http.HandlerFunc(ordersHandler.Cancel)))

	// Passports.
	mux.Handle("GET /api/passports", authMW(http.HandlerFunc(passportsHandler.List)))
	mux.Handle("GET /api/passports/{id}", authMW(http.HandlerFunc(passportsHandler.Get)))
	mux.Handle("POST /api/passports/{id}/transfer", authMW(http.HandlerFunc(passportsHandler.Transfer)))

	// Reviews and questions.
	mux.Handle("GET /api/reviews", authMW(http.HandlerFunc(reviewsHandler.ListReviews)))
	mux.Handle("POST /api/reviews", authMW(http.HandlerFunc(reviewsHandler.CreateReview)))
	mux.Handle("GET /api/questions", authMW(http.HandlerFunc(reviewsHandler.ListQuestions)))
	mux.Handle("POST /api/questions", authMW(http.HandlerFunc(reviewsHandler.CreateQuestion)))
	mux.Handle("POST /api/questions/{id}/answer", authMW(http.HandlerFunc(reviewsHandler.AnswerQuestion)))

	// Moderation (moderator+).
	mux.Handle("POST /api/reviews/{id}/moderate", authMW(requireModerator(http.HandlerFunc(reviewsHandler.ModerateReview))))
	mux.Handle("POST /api/questions/{id}/moderate", authMW(requireModerator(http.HandlerFunc(reviewsHandler.ModerateQuestion))))

	// Administration.
	mux.Handle("GET /api/admin/backup", authMW(requireAdmin(http.HandlerFunc(adminHandler.Backup))))
	mux.Handle("POST /api/admin/restore", authMW(requireAdmin(http.HandlerFunc(adminHandler.Restore))))
	mux.Handle("GET /api/admin/audit", authMW(requireAdmin(http.HandlerFunc(adminHandler.Audit))))
	mux.Handle("GET /api/admin/jobs", authMW(requireAdmin(http.HandlerFunc(adminHandler.Jobs))))
	mux.Handle("POST /api/admin/jobs/drain", authMW(requireAdmin(http.HandlerFunc(adminHandler.DrainJobs))))
	mux.Handle("POST /api/admin/jobs/{id}/redrive", authMW(requireAdmin(http.HandlerFunc(adminHandler.RedriveJob))))
	mux.Handle("GET /api/admin/notifications", authMW(requireAdmin(http.HandlerFunc(adminHandler.Notifications))))
	mux.Handle("GET /api/admin/users", authMW(requireAdmin(http.HandlerFunc(adminHandler.Users))))
	mux.Handle("GET /api/admin/analytics", authMW(requireAdmin(http.HandlerFunc(adminHandler.Analytics))))

	return mux
}
