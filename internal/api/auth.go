package api

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ohulko/matkarnia/internal/auth"
	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// AuthHandler handles registration, login, password change and logout.
type AuthHandler struct {
	KVS       *kv.Store
	Clk       clock.Clock
	JWTSecret string
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || len(req.Password) < 8 {
		jsonError(w, http.StatusBadRequest, "username and a password of at least 8 characters required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.KVS, h.Clk, req.Username, req.Email, string(hash), model.RoleUser)
	if err != nil {
		storeError(w, err, "failed to create user")
		return
	}

	jsonResponse(w, http.StatusCreated, user.Public())
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.KVS, req.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.Role, user.BreederID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user.Public(),
	})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		jsonError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}

	user, err := store.GetUser(r.Context(), h.KVS, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if _, err := store.UpdateUser(r.Context(), h.KVS, user.ID, func(u *model.User) error {
		u.PasswordHash = string(hash)
		return nil
	}); err != nil {
		storeError(w, err, "failed to update password")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// Logout handles POST /api/auth/logout by revoking the current token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims.ExpiresAt != nil {
		if err := store.RevokeToken(r.Context(), h.KVS, claims.ID, claims.ExpiresAt.Time); err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to revoke token")
			return
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
