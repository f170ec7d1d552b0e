package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brandt/screener/backend/internal/auth"
	"github.com/brandt/screener/backend/pkg/logger"
)

type contextKey int

const subjectKey contextKey = iota

// WithSubject stores the authenticated token subject on the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFrom returns the authenticated token subject, or "" when the
// request never passed the auth middleware.
func SubjectFrom(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}

// AuthHandler handles login and token verification
type AuthHandler struct {
	auth   *auth.Service
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *auth.Service, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		logger: log,
	}
}

// LoginRequest is the login request body
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges the app password for a bearer token
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadPassword) {
			respondError(w, http.StatusUnauthorized, "Incorrect password")
			return
		}
		h.logger.WithError(err).Error("Failed to issue token")
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Verify confirms the caller holds a valid token
// GET /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"user":   SubjectFrom(r.Context()),
	})
}
