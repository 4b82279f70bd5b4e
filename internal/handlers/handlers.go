package handlers

import (
	"errors"
	"net/http"

	"github.com/secureops-systems/secureops/internal/httputil"
	"github.com/secureops-systems/secureops/internal/logging"
	"github.com/secureops-systems/secureops/internal/repository"
	"github.com/secureops-systems/secureops/internal/service"
)

// Handler bundles the HTTP handlers for the incident API.
type Handler struct {
	auth          *service.AuthService
	incidents     *service.IncidentService
	iocs          *service.IOCService
	threats       *service.ThreatService
	notifications *service.NotificationService
	reports       *service.ReportService
	logger        *logging.Logger
}

func NewHandler(
	auth *service.AuthService,
	incidents *service.IncidentService,
	iocs *service.IOCService,
	threats *service.ThreatService,
	notifications *service.NotificationService,
	reports *service.ReportService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		auth:          auth,
		incidents:     incidents,
		iocs:          iocs,
		threats:       threats,
		notifications: notifications,
		reports:       reports,
		logger:        logger,
	}
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// serviceError maps service and repository errors to HTTP responses.
// Unrecognized errors get fallbackStatus; 5xx responses hide the error
// detail and log it instead.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error, fallbackStatus int) {
	switch {
	case errors.Is(err, repository.ErrIncidentNotFound),
		errors.Is(err, repository.ErrIOCNotFound),
		errors.Is(err, repository.ErrNotificationNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicateIOC):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrUserExists):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		httputil.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		if fallbackStatus >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "request failed",
				logging.Method(r.Method), logging.Path(r.URL.Path), logging.Error(err))
			httputil.WriteError(w, fallbackStatus, "internal server error")
			return
		}
		httputil.WriteError(w, fallbackStatus, err.Error())
	}
}
