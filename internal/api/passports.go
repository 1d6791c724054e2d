package api

import (
	"net/http"

	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// PassportsHandler handles queen passport lookup and ownership transfer.
type PassportsHandler struct {
	KVS *kv.Store
}

type transferPassportRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

// List handles GET /api/passports: the caller's own passports, admins may
// filter by owner or breeder.
func (h *PassportsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	ownerID := claims.UserID
	breederID := ""
	if model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		ownerID = r.URL.Query().Get("owner")
		breederID = r.URL.Query().Get("breeder")
	}

	passports, err := store.ListPassports(r.Context(), h.KVS, ownerID, breederID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list passports")
		return
	}
	if passports == nil {
		passports = []model.Passport{}
	}
	jsonResponse(w, http.StatusOK, passports)
}

// Get handles GET /api/passports/{id}.
func (h *PassportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	passport, err := store.GetPassport(r.Context(), h.KVS, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get passport")
		return
	}
	if passport == nil {
		jsonError(w, http.StatusNotFound, "passport not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"passport": passport,
		"number":   passport.Number(),
	})
}

// Transfer handles POST /api/passports/{id}/transfer. Only the current owner
// or an admin may transfer.
func (h *PassportsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	passport, err := store.GetPassport(r.Context(), h.KVS, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get passport")
		return
	}
	if passport == nil {
		jsonError(w, http.StatusNotFound, "passport not found")
		return
	}
	if passport.OwnerID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "not your passport")
		return
	}

	var req transferPassportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewOwnerID == "" {
		jsonError(w, http.StatusBadRequest, "new_owner_id required")
		return
	}

	transferred, err := store.TransferPassport(r.Context(), h.KVS, passport.ID, req.NewOwnerID)
	if err != nil {
		storeError(w, err, "failed to transfer passport")
		return
	}
	jsonResponse(w, http.StatusOK, transferred)
}
