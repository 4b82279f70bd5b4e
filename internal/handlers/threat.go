package handlers

import (
	"net/http"

	"github.com/secureops-systems/secureops/internal/httputil"
)

// ListThreatActors handles GET /api/v1/threat-actors
func (h *Handler) ListThreatActors(w http.ResponseWriter, r *http.Request) {
	actors := h.threats.ListActors(r.URL.Query().Get("country"), r.URL.Query().Get("search"))
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"actors": actors})
}

// GetThreatActor handles GET /api/v1/threat-actors/{name}
func (h *Handler) GetThreatActor(w http.ResponseWriter, r *http.Request) {
	actor := h.threats.GetActor(r.PathValue("name"))
	if actor == nil {
		httputil.WriteError(w, http.StatusNotFound, "threat actor not found")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, actor)
}
