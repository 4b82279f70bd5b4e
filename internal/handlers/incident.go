package handlers

import (
	"net/http"

	"github.com/secureops-systems/secureops/internal/httputil"
	"github.com/secureops-systems/secureops/internal/middleware"
	"github.com/secureops-systems/secureops/internal/models"
)

// ListIncidents handles GET /api/v1/incidents
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r, 20, 100)
	req := &models.ListIncidentsRequest{
		Page:     page.Page,
		Limit:    page.Limit,
		Status:   r.URL.Query().Get("status"),
		Severity: r.URL.Query().Get("severity"),
		Type:     r.URL.Query().Get("type"),
		Search:   r.URL.Query().Get("search"),
	}

	resp, err := h.incidents.ListIncidents(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err, http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// RecentIncidents handles GET /api/v1/incidents/recent
func (h *Handler) RecentIncidents(w http.ResponseWriter, r *http.Request) {
	limit := httputil.ParseIntParam(r.URL.Query().Get("limit"), 10)

	incidents, err := h.incidents.RecentIncidents(r.Context(), limit)
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"incidents": incidents})
}

// GetIncident handles GET /api/v1/incidents/{id}
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	detail, err := h.incidents.GetIncident(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, detail)
}

// CreateIncident handles POST /api/v1/incidents
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIncidentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inc, err := h.incidents.CreateIncident(r.Context(), &req, middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, inc)
}

// UpdateIncident handles PUT /api/v1/incidents/{id}
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateIncidentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inc, err := h.incidents.UpdateIncident(r.Context(), r.PathValue("id"), &req, middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, inc)
}

// DeleteIncident handles DELETE /api/v1/incidents/{id}
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.incidents.DeleteIncident(ctx, r.PathValue("id"), middleware.GetUserID(ctx), middleware.GetRole(ctx))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IncidentStats handles GET /api/v1/incidents/stats
func (h *Handler) IncidentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.incidents.IncidentStats(r.Context())
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// AddTimelineEvent handles POST /api/v1/incidents/{id}/timeline
func (h *Handler) AddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var req models.AddTimelineEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev, err := h.incidents.AddTimelineEvent(r.Context(), r.PathValue("id"), &req, middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusBadRequest)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, ev)
}

// AttributeIncident handles POST /api/v1/incidents/{id}/attribution
func (h *Handler) AttributeIncident(w http.ResponseWriter, r *http.Request) {
	matches, err := h.incidents.Attribute(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// IncidentReport handles GET /api/v1/incidents/{id}/report
func (h *Handler) IncidentReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.IncidentReport(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report))
}
