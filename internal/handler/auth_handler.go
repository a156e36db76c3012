package handler

import (
	"encoding/json"
	"net/http"

	"gift-store-api/internal/middleware"
	"gift-store-api/internal/model"
	"gift-store-api/internal/service"
	"gift-store-api/pkg/apierror"
)

type AuthHandler struct {
	auth  *service.AuthService
	audit *service.AuditService
}

func NewAuthHandler(auth *service.AuthService, audit *service.AuditService) *AuthHandler {
	return &AuthHandler{auth: auth, audit: audit}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	resp, err := h.auth.Signup(r.Context(), payload)
	h.audit.Record(r.Context(), "signup", payload.Username, middleware.ExtractClientIP(r), err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, resp, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	resp, err := h.auth.Login(r.Context(), payload)
	h.audit.Record(r.Context(), "login", payload.Username, middleware.ExtractClientIP(r), err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

// Refresh reads the refresh token from the Authorization header and returns a
// fresh access token alongside the unchanged refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	resp, err := h.auth.Refresh(r.Context(), r.Header.Get("Authorization"))
	h.audit.Record(r.Context(), "refresh", resp.Username, middleware.ExtractClientIP(r), err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

// Logout revokes the presented access token. It always answers success so
// transport-level retries stay harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.auth.Logout(r.Context(), r.Header.Get("Authorization"))

	username := ""
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		username = claims.Username
	}
	h.audit.Record(r.Context(), "logout", username, middleware.ExtractClientIP(r), err)

	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}
