package handlers

import (
	"net/http"

	"github.com/secureops-systems/secureops/internal/httputil"
	"github.com/secureops-systems/secureops/internal/middleware"
	"github.com/secureops-systems/secureops/internal/models"
)

// ListIOCs handles GET /api/v1/iocs
func (h *Handler) ListIOCs(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r, 20, 100)
	req := &models.ListIOCsRequest{
		Page:       page.Page,
		Limit:      page.Limit,
		Type:       r.URL.Query().Get("type"),
		IncidentID: r.URL.Query().Get("incident_id"),
		Search:     r.URL.Query().Get("search"),
	}

	resp, err := h.iocs.ListIOCs(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err, http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetIOC handles GET /api/v1/iocs/{id}
func (h *Handler) GetIOC(w http.ResponseWriter, r *http.Request) {
	ioc, err := h.iocs.GetIOC(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ioc)
}

// CreateIOC handles POST /api/v1/iocs
func (h *Handler) CreateIOC(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIOCRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ioc, err := h.iocs.CreateIOC(r.Context(), &req, middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, ioc)
}

// UpdateIOC handles PUT /api/v1/iocs/{id}
func (h *Handler) UpdateIOC(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateIOCRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ioc, err := h.iocs.UpdateIOC(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		h.serviceError(w, r, err, http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ioc)
}

// DeleteIOC handles DELETE /api/v1/iocs/{id}
func (h *Handler) DeleteIOC(w http.ResponseWriter, r *http.Request) {
	if err := h.iocs.DeleteIOC(r.Context(), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
