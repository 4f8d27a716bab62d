package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/promptgate/apiserver/internal/auth"
	"github.com/promptgate/apiserver/internal/services"
	"github.com/promptgate/apiserver/internal/store"
	"github.com/promptgate/apiserver/types"
	"go.uber.org/zap"
)

const invalidCredentialsMessage = "Invalid credentials"

// AuthHandler provides registration and login endpoints.
type AuthHandler struct {
	userService *services.UserService
	hasher      *auth.Hasher
	issuer      *auth.Issuer
	log         *zap.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, hasher *auth.Hasher, issuer *auth.Issuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		hasher:      hasher,
		issuer:      issuer,
		log:         log,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, hasher *auth.Hasher, issuer *auth.Issuer, log *zap.Logger) {
	handler := NewAuthHandler(userService, hasher, issuer, log)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Register creates a new user account. Hashing always precedes insertion so
// a failed hash never leaves a row behind.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.log.Error("hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Email:        req.Email,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		h.log.Error("create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusOK, RegisterResponse{ID: user.ID, Email: user.Email})
}

// Login verifies credentials and returns a signed session token. Unknown
// email and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, invalidCredentialsMessage)
			return
		}
		h.log.Error("load user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}
