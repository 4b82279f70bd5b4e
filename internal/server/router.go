package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/secureops-systems/secureops/internal/handlers"
	"github.com/secureops-systems/secureops/internal/metrics"
	"github.com/secureops-systems/secureops/internal/middleware"
)

// NewRouter constructs the API routing table. All /api/v1 routes sit
// behind JWT auth except login; mutating routes additionally require
// the analyst or admin role, so viewer accounts are read-only.
func NewRouter(h *handlers.Handler, authMW *middleware.AuthMiddleware, corsConfig middleware.CORSConfig) http.Handler {
	mux := http.NewServeMux()

	auth := authMW.RequireAuth
	writer := authMW.RequireRole("admin", "analyst")

	// Public
	mux.HandleFunc("GET /healthz", h.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)

	// Auth
	mux.HandleFunc("GET /api/v1/auth/me", auth(h.Me))

	// Incidents
	mux.HandleFunc("GET /api/v1/incidents", auth(h.ListIncidents))
	mux.HandleFunc("POST /api/v1/incidents", writer(h.CreateIncident))
	mux.HandleFunc("GET /api/v1/incidents/recent", auth(h.RecentIncidents))
	mux.HandleFunc("GET /api/v1/incidents/stats", auth(h.IncidentStats))
	mux.HandleFunc("GET /api/v1/incidents/{id}", auth(h.GetIncident))
	mux.HandleFunc("PUT /api/v1/incidents/{id}", writer(h.UpdateIncident))
	mux.HandleFunc("DELETE /api/v1/incidents/{id}", writer(h.DeleteIncident))
	mux.HandleFunc("POST /api/v1/incidents/{id}/timeline", writer(h.AddTimelineEvent))
	mux.HandleFunc("POST /api/v1/incidents/{id}/attribution", auth(h.AttributeIncident))
	mux.HandleFunc("GET /api/v1/incidents/{id}/report", auth(h.IncidentReport))

	// IOCs
	mux.HandleFunc("GET /api/v1/iocs", auth(h.ListIOCs))
	mux.HandleFunc("POST /api/v1/iocs", writer(h.CreateIOC))
	mux.HandleFunc("GET /api/v1/iocs/{id}", auth(h.GetIOC))
	mux.HandleFunc("PUT /api/v1/iocs/{id}", writer(h.UpdateIOC))
	mux.HandleFunc("DELETE /api/v1/iocs/{id}", writer(h.DeleteIOC))

	// Threat actors
	mux.HandleFunc("GET /api/v1/threat-actors", auth(h.ListThreatActors))
	mux.HandleFunc("GET /api/v1/threat-actors/{name}", auth(h.GetThreatActor))

	// Notifications
	mux.HandleFunc("GET /api/v1/notifications", auth(h.ListNotifications))
	mux.HandleFunc("GET /api/v1/notifications/unread-count", auth(h.UnreadNotificationCount))
	mux.HandleFunc("PUT /api/v1/notifications/read-all", auth(h.MarkAllNotificationsRead))
	mux.HandleFunc("PUT /api/v1/notifications/{id}/read", auth(h.MarkNotificationRead))
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", auth(h.DeleteNotification))

	var handler http.Handler = mux
	handler = metrics.Instrument(handler)
	handler = middleware.CORS(corsConfig)(handler)
	handler = middleware.RequestID(handler)
	return handler
}
