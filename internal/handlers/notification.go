package handlers

import (
	"net/http"

	"github.com/secureops-systems/secureops/internal/httputil"
	"github.com/secureops-systems/secureops/internal/middleware"
	"github.com/secureops-systems/secureops/internal/models"
)

// ListNotifications handles GET /api/v1/notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r, 20, 100)
	req := &models.ListNotificationsRequest{
		UserID:     middleware.GetUserID(r.Context()),
		UnreadOnly: httputil.ParseBoolParam(r.URL.Query().Get("unread_only"), false),
		Limit:      page.Limit,
		Offset:     page.Offset(),
	}

	notifications, err := h.notifications.ListNotifications(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// UnreadNotificationCount handles GET /api/v1/notifications/unread-count
func (h *Handler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkNotificationRead handles PUT /api/v1/notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead handles PUT /api/v1/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	err := h.notifications.MarkAllRead(r.Context(), middleware.GetUserID(r.Context()), req.IDs)
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.DeleteNotification(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
