package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const adminUsername = "admin"

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleAdminLogin verifies the administrator credential and issues a
// bearer token for the reporting and catalog-mutation endpoints.
func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_request", "")
		return
	}

	hash, err := h.store.GetAdminPasswordHash()
	if err != nil {
		slog.Error("read admin credential", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if hash == "" || req.Username != adminUsername ||
		bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		h.respondError(w, r, http.StatusUnauthorized, "invalid_credentials", "")
		return
	}

	token, err := h.store.CreateAuthSession()
	if err != nil {
		slog.Error("create auth session", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "token": token})
}

func (h *Handler) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		_ = h.store.DeleteAuthSession(token)
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAdmin is middleware that checks for a valid admin bearer token.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.respondError(w, r, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		sess, err := h.store.GetAuthSession(token)
		if err != nil {
			slog.Error("get auth session", "error", err)
			h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
			return
		}
		if sess == nil {
			h.respondError(w, r, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, prefix))
}
