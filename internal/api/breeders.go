package api

import (
	"net/http"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/imaging"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// BreedersHandler handles breeder profile endpoints.
type BreedersHandler struct {
	KVS *kv.Store
	Clk clock.Clock
}

type createBreederRequest struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	RegionCode   string `json:"region_code"`
	IssuerNumber int    `json:"issuer_number"`
	About        string `json:"about"`
}

type updateBreederRequest struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

// List handles GET /api/breeders.
func (h *BreedersHandler) List(w http.ResponseWriter, r *http.Request) {
	breeders, err := store.ListBreeders(r.Context(), h.KVS)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list breeders")
		return
	}
	if breeders == nil {
		breeders = []model.Breeder{}
	}
	for i := range breeders {
		breeders[i].Photo = nil
	}
	jsonResponse(w, http.StatusOK, breeders)
}

// Create handles POST /api/breeders: registers the current user as a breeder.
func (h *BreedersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createBreederRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	breeder, err := store.CreateBreeder(r.Context(), h.KVS, h.Clk, model.Breeder{
		UserID:       claims.UserID,
		Slug:         req.Slug,
		Name:         req.Name,
		RegionCode:   req.RegionCode,
		IssuerNumber: req.IssuerNumber,
		About:        req.About,
	})
	if err != nil {
		storeError(w, err, "failed to create breeder")
		return
	}

	if _, err := store.UpdateUser(r.Context(), h.KVS, claims.UserID, func(u *model.User) error {
		u.BreederID = breeder.ID
		return nil
	}); err != nil {
		storeError(w, err, "failed to link breeder to user")
		return
	}

	jsonResponse(w, http.StatusCreated, breeder)
}

// Get handles GET /api/breeders/{slug}: the public profile with approved
// reviews and current listings.
func (h *BreedersHandler) Get(w http.ResponseWriter, r *http.Request) {
	breeder, err := store.GetBreederBySlug(r.Context(), h.KVS, r.PathValue("slug"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get breeder")
		return
	}
	if breeder == nil {
		jsonError(w, http.StatusNotFound, "breeder not found")
		return
	}

	reviews, err := store.ListReviews(r.Context(), h.KVS, breeder.ID, false)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get reviews")
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}

	listings, err := store.ListListings(r.Context(), h.KVS, breeder.ID, model.ListingStatusActive)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	breeder.Photo = nil
	jsonResponse(w, http.StatusOK, map[string]any{
		"breeder":  breeder,
		"reviews":  reviews,
		"listings": listings,
	})
}

// Update handles PUT /api/breeders/{slug}.
func (h *BreedersHandler) Update(w http.ResponseWriter, r *http.Request) {
	breeder, err := store.GetBreederBySlug(r.Context(), h.KVS, r.PathValue("slug"))
	if err != nil || breeder == nil {
		jsonError(w, http.StatusNotFound, "breeder not found")
		return
	}

	var req updateBreederRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := store.UpdateBreeder(r.Context(), h.KVS, h.Clk, breeder.ID, req.Name, req.About)
	if err != nil {
		storeError(w, err, "failed to update breeder")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// UploadPhoto handles PUT /api/breeders/{slug}/photo.
func (h *BreedersHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	breeder, err := store.GetBreederBySlug(r.Context(), h.KVS, r.PathValue("slug"))
	if err != nil || breeder == nil {
		jsonError(w, http.StatusNotFound, "breeder not found")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetBreederPhoto(r.Context(), h.KVS, h.Clk, breeder.ID, processed.Data, processed.MIME); err != nil {
		storeError(w, err, "failed to store photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo updated"})
}

// GetPhoto handles GET /api/breeders/{slug}/photo.
func (h *BreedersHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	breeder, err := store.GetBreederBySlug(r.Context(), h.KVS, r.PathValue("slug"))
	if err != nil || breeder == nil {
		jsonError(w, http.StatusNotFound, "breeder not found")
		return
	}
	if len(breeder.Photo) == 0 {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", breeder.PhotoMIME)
	w.WriteHeader(http.StatusOK)
	w.Write(breeder.Photo)
}
