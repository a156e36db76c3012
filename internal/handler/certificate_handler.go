package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gift-store-api/internal/model"
	"gift-store-api/internal/service"
	"gift-store-api/pkg/apierror"
)

type CertificateHandler struct {
	catalog *service.CatalogService
}

func NewCertificateHandler(catalog *service.CatalogService) *CertificateHandler {
	return &CertificateHandler{catalog: catalog}
}

func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	certs, meta, err := h.catalog.ListCertificates(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, certs, &meta)
}

func (h *CertificateHandler) Get(w http.ResponseWriter, r *http.Request) {
	cert, err := h.catalog.GetCertificate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cert, nil)
}

func (h *CertificateHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CreateCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	cert, err := h.catalog.CreateCertificate(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, cert, nil)
}

func (h *CertificateHandler) Patch(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.PatchCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	cert, err := h.catalog.PatchCertificate(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cert, nil)
}

func (h *CertificateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCertificate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
