package handlers

import (
	"net/http"

	"github.com/secureops-systems/secureops/internal/httputil"
	"github.com/secureops-systems/secureops/internal/middleware"
	"github.com/secureops-systems/secureops/internal/models"
)

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.serviceError(w, r, err, http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
