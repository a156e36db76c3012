package handler

import (
	"context"
	"net/http"

	"gift-store-api/internal/middleware"
	"gift-store-api/internal/model"
	"gift-store-api/internal/service"
	"gift-store-api/pkg/apierror"
)

type userLister interface {
	List(ctx context.Context) ([]model.PublicUser, error)
}

type UserHandler struct {
	auth  *service.AuthService
	users userLister
}

func NewUserHandler(auth *service.AuthService, users userLister) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("INVALID_AUTH", "authentication required", "", http.StatusUnauthorized))
		return
	}

	user, err := h.auth.FindPrincipal(r.Context(), claims.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.Public(), nil)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users, nil)
}
