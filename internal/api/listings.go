package api

import (
	"net/http"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// ListingsHandler handles listing CRUD endpoints.
type ListingsHandler struct {
	KVS *kv.Store
	Clk clock.Clock
}

type createListingRequest struct {
	LineID        string `json:"line_id"`
	CategoryCode  string `json:"category_code"`
	RegionCode    string `json:"region_code"`
	Year          int    `json:"year"`
	Title         string `json:"title"`
	UnitPriceUAH  int64  `json:"unit_price_uah"`
	QuantityTotal int    `json:"quantity_total"`
}

type updateListingRequest struct {
	Title         string `json:"title"`
	UnitPriceUAH  int64  `json:"unit_price_uah"`
	QuantityTotal int    `json:"quantity_total"`
	Status        string `json:"status"`
}

// List handles GET /api/listings.
func (h *ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := store.ListListings(r.Context(), h.KVS,
		r.URL.Query().Get("breeder"), r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Create handles POST /api/listings. The caller must have a breeder profile.
func (h *ListingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims.BreederID == "" {
		jsonError(w, http.StatusForbidden, "breeder profile required")
		return
	}

	var req createListingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := store.CreateListing(r.Context(), h.KVS, h.Clk, model.Listing{
		BreederID:     claims.BreederID,
		LineID:        req.LineID,
		CategoryCode:  req.CategoryCode,
		RegionCode:    req.RegionCode,
		Year:          req.Year,
		Title:         req.Title,
		UnitPriceUAH:  req.UnitPriceUAH,
		QuantityTotal: req.QuantityTotal,
	})
	if err != nil {
		storeError(w, err, "failed to create listing")
		return
	}

	jsonResponse(w, http.StatusCreated, listing)
}

// Get handles GET /api/listings/{id}: the listing with approved questions.
func (h *ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := store.GetListing(r.Context(), h.KVS, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil {
		jsonError(w, http.StatusNotFound, "listing not found")
		return
	}

	questions, err := store.ListQuestions(r.Context(), h.KVS, listing.ID, false)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get questions")
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"listing":   listing,
		"questions": questions,
	})
}

// Update handles PUT /api/listings/{id}: a seller edit.
func (h *ListingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	listing, err := store.GetListing(r.Context(), h.KVS, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil {
		jsonError(w, http.StatusNotFound, "listing not found")
		return
	}
	if listing.BreederID != claims.BreederID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "not your listing")
		return
	}

	var req updateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = listing.Status
	}

	updated, err := store.UpdateListing(r.Context(), h.KVS, h.Clk, listing.ID,
		req.Title, req.UnitPriceUAH, req.QuantityTotal, req.Status)
	if err != nil {
		storeError(w, err, "failed to update listing")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}
