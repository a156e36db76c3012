package handler

import (
	"net/http"
	"strconv"

	"gift-store-api/internal/model"
	"gift-store-api/internal/service"
)

type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	events, meta, err := h.audit.Query(r.Context(), model.SecurityEventQuery{
		Action:   q.Get("action"),
		Username: q.Get("username"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, events, &meta)
}
