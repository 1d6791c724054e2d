package api

import (
	"errors"
	"net/http"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/payments"
	"github.com/ohulko/matkarnia/internal/shop"
	"github.com/ohulko/matkarnia/internal/store"
)

// OrdersHandler handles the checkout and order lifecycle endpoints.
type OrdersHandler struct {
	KVS  *kv.Store
	Clk  clock.Clock
	Flow *shop.Flow
}

type payOrderRequest struct {
	Method string `json:"method"`
}

// List handles GET /api/orders: the caller's own orders, admins see all.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	buyerID := claims.UserID
	if model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		buyerID = r.URL.Query().Get("buyer")
	}

	orders, err := store.ListOrders(r.Context(), h.KVS, buyerID, r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	jsonResponse(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id}.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	order, err := store.GetOrder(r.Context(), h.KVS, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to get order")
		return
	}
	if order.BuyerID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "not your order")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Checkout handles POST /api/orders/checkout: cart becomes a draft order.
func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	order, err := h.Flow.Checkout(r.Context(), claims.UserID)
	if err != nil {
		storeError(w, err, "failed to create order")
		return
	}
	jsonResponse(w, http.StatusCreated, order)
}

// Place handles POST /api/orders/{id}/place.
func (h *OrdersHandler) Place(w http.ResponseWriter, r *http.Request) {
	if !h.ownOrder(w, r) {
		return
	}
	order, err := h.Flow.Place(r.Context(), r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to place order")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Pay handles POST /api/orders/{id}/pay. A declined capture leaves the order
// placed with a failed payment so the buyer can retry.
func (h *OrdersHandler) Pay(w http.ResponseWriter, r *http.Request) {
	if !h.ownOrder(w, r) {
		return
	}

	var req payOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Method == "" {
		req.Method = "card"
	}

	order, err := h.Flow.Pay(r.Context(), r.PathValue("id"), req.Method)
	if err != nil {
		if errors.Is(err, payments.ErrCaptureDeclined) {
			order, _ = store.GetOrder(r.Context(), h.KVS, r.PathValue("id"))
			jsonResponse(w, http.StatusPaymentRequired, map[string]any{
				"error": "payment declined",
				"order": order,
			})
			return
		}
		storeError(w, err, "failed to pay order")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel. Paid orders are refunded first.
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.ownOrder(w, r) {
		return
	}

	id := r.PathValue("id")
	order, err := store.GetOrder(r.Context(), h.KVS, id)
	if err != nil {
		storeError(w, err, "failed to get order")
		return
	}

	if order.Payment.Status == model.PaymentStatusSucceeded {
		if err := h.Flow.Refund(r.Context(), id); err != nil {
			storeError(w, err, "failed to refund order")
			return
		}
	} else {
		if _, err := store.CancelOrder(r.Context(), h.KVS, h.Clk, id); err != nil {
			storeError(w, err, "failed to cancel order")
			return
		}
	}

	order, err = store.GetOrder(r.Context(), h.KVS, id)
	if err != nil {
		storeError(w, err, "failed to get order")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// ownOrder writes an error response and returns false unless the caller owns
// the order in the path or is an admin.
func (h *OrdersHandler) ownOrder(w http.ResponseWriter, r *http.Request) bool {
	claims := GetClaims(r.Context())

	order, err := store.GetOrder(r.Context(), h.KVS, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to get order")
		return false
	}
	if order.BuyerID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "not your order")
		return false
	}
	return true
}
