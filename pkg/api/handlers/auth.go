package handlers

import (
	"net/http"

	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/api/auth"
	"github.com/jababox/jababox/pkg/storage"
)

// AuthHandler handles login and token refresh.
type AuthHandler struct {
	registry   *storage.Registry
	jwtService *auth.JWTService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(registry *storage.Registry, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		registry:   registry,
		jwtService: jwtService,
	}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login authenticates an account and issues a token pair.
//
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Login == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "login and password are required")
		return
	}

	account, err := h.registry.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		// Same answer for a wrong password and an unknown login.
		logger.Debug("login rejected", "login", req.Login)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.jwtService.GenerateTokenPair(account)
	if err != nil {
		logger.Error("Failed to generate token pair", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("account logged in", "login", account.Login)
	writeOK(w, http.StatusOK, tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a new token pair.
//
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	account, err := h.registry.GetAccountByID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	tokens, err := h.jwtService.GenerateTokenPair(account)
	if err != nil {
		logger.Error("Failed to generate token pair", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeOK(w, http.StatusOK, tokens)
}
