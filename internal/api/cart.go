package api

import (
	"net/http"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// CartHandler handles the authenticated user's shopping cart.
type CartHandler struct {
	KVS *kv.Store
	Clk clock.Clock
}

type addToCartRequest struct {
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

type setCartQtyRequest struct {
	Quantity int `json:"quantity"`
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	cart, err := store.GetCart(r.Context(), h.KVS, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}
	if cart == nil {
		cart = &model.Cart{BuyerID: claims.UserID, Lines: []model.CartLine{}}
	}
	jsonResponse(w, http.StatusOK, cart)
}

// Add handles POST /api/cart/items.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	listing, err := store.GetListing(r.Context(), h.KVS, req.ListingID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil || listing.Status != model.ListingStatusActive {
		jsonError(w, http.StatusNotFound, "listing not available")
		return
	}

	cart, err := store.AddToCart(r.Context(), h.KVS, h.Clk, claims.UserID, model.CartLine{
		ListingID:    listing.ID,
		SellerID:     listing.BreederID,
		Quantity:     req.Quantity,
		UnitPriceUAH: listing.UnitPriceUAH,
		MaxQuantity:  listing.QuantityAvailable,
	})
	if err != nil {
		storeError(w, err, "failed to add to cart")
		return
	}
	jsonResponse(w, http.StatusOK, cart)
}

// SetQty handles PUT /api/cart/items/{listingID}. Quantity zero removes the line.
func (h *CartHandler) SetQty(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req setCartQtyRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := store.SetCartQty(r.Context(), h.KVS, h.Clk, claims.UserID, r.PathValue("listingID"), req.Quantity)
	if err != nil {
		storeError(w, err, "failed to update cart")
		return
	}
	jsonResponse(w, http.StatusOK, cart)
}

// Remove handles DELETE /api/cart/items/{listingID}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	cart, err := store.RemoveFromCart(r.Context(), h.KVS, h.Clk, claims.UserID, r.PathValue("listingID"))
	if err != nil {
		storeError(w, err, "failed to update cart")
		return
	}
	jsonResponse(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := store.ClearCart(r.Context(), h.KVS, h.Clk, claims.UserID); err != nil {
		storeError(w, err, "failed to clear cart")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}
