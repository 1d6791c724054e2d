package api

import (
	"net/http"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// ReviewsHandler handles breeder reviews, listing questions, and the
// moderation queue.
type ReviewsHandler struct {
	KVS *kv.Store
	Clk clock.Clock
}

type createReviewRequest struct {
	BreederID string `json:"breeder_id"`
	Rating    int    `json:"rating"`
	Text      string `json:"text"`
}

type createQuestionRequest struct {
	ListingID string `json:"listing_id"`
	Text      string `json:"text"`
}

type answerQuestionRequest struct {
	Answer string `json:"answer"`
}

type moderateRequest struct {
	Status string `json:"status"`
}

// CreateReview handles POST /api/reviews. New reviews wait for moderation.
func (h *ReviewsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := store.CreateReview(r.Context(), h.KVS, h.Clk, model.Review{
		BreederID: req.BreederID,
		AuthorID:  claims.UserID,
		Rating:    req.Rating,
		Text:      req.Text,
	})
	if err != nil {
		storeError(w, err, "failed to create review")
		return
	}
	jsonResponse(w, http.StatusCreated, review)
}

// ListReviews handles GET /api/reviews?breeder=. Moderators may pass
// pending=1 to include the moderation queue.
func (h *ReviewsHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	includePending := r.URL.Query().Get("pending") == "1" &&
		model.RoleAtLeast(claims.Role, model.RoleModerator)

	reviews, err := store.ListReviews(r.Context(), h.KVS, r.URL.Query().Get("breeder"), includePending)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	jsonResponse(w, http.StatusOK, reviews)
}

// ModerateReview handles POST /api/reviews/{id}/moderate.
func (h *ReviewsHandler) ModerateReview(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := store.ModerateReview(r.Context(), h.KVS, r.PathValue("id"), req.Status)
	if err != nil {
		storeError(w, err, "failed to moderate review")
		return
	}
	jsonResponse(w, http.StatusOK, review)
}

// CreateQuestion handles POST /api/questions.
func (h *ReviewsHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := store.CreateQuestion(r.Context(), h.KVS, h.Clk, model.Question{
		ListingID: req.ListingID,
		AuthorID:  claims.UserID,
		Text:      req.Text,
	})
	if err != nil {
		storeError(w, err, "failed to create question")
		return
	}
	jsonResponse(w, http.StatusCreated, question)
}

// ListQuestions handles GET /api/questions?listing=.
func (h *ReviewsHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	includePending := r.URL.Query().Get("pending") == "1" &&
		model.RoleAtLeast(claims.Role, model.RoleModerator)

	questions, err := store.ListQuestions(r.Context(), h.KVS, r.URL.Query().Get("listing"), includePending)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list questions")
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	jsonResponse(w, http.StatusOK, questions)
}

// AnswerQuestion handles POST /api/questions/{id}/answer. Only the listing's
// breeder or an admin may answer.
func (h *ReviewsHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	questions, err := store.ListQuestions(r.Context(), h.KVS, "", true)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get question")
		return
	}
	var question *model.Question
	for i := range questions {
		if questions[i].ID == r.PathValue("id") {
			question = &questions[i]
			break
		}
	}
	if question == nil {
		jsonError(w, http.StatusNotFound, "question not found")
		return
	}

	listing, err := store.GetListing(r.Context(), h.KVS, question.ListingID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil || (listing.BreederID != claims.BreederID && !model.RoleAtLeast(claims.Role, model.RoleAdmin)) {
		jsonError(w, http.StatusForbidden, "not your listing")
		return
	}

	var req answerQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answered, err := store.AnswerQuestion(r.Context(), h.KVS, h.Clk, question.ID, req.Answer)
	if err != nil {
		storeError(w, err, "failed to answer question")
		return
	}
	jsonResponse(w, http.StatusOK, answered)
}

// ModerateQuestion handles POST /api/questions/{id}/moderate.
func (h *ReviewsHandler) ModerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := store.ModerateQuestion(r.Context(), h.KVS, r.PathValue("id"), req.Status)
	if err != nil {
		storeError(w, err, "failed to moderate question")
		return
	}
	jsonResponse(w, http.StatusOK, question)
}
