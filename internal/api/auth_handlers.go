package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pppoed/internal/auth"
)

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register handles POST /api/auth/register
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(creds.Name, creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			h.writeError(w, http.StatusConflict, "user already exists")
		case errors.Is(err, auth.ErrWeakPassword):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.writeError(w, http.StatusBadRequest, "email is required")
		default:
			h.internalError(w, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, user)
}

// login handles POST /api/auth/login
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// logout handles POST /api/auth/logout
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		h.auth.Logout(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// currentUser handles GET /api/auth/me
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		h.writeError(w, http.StatusUnauthorized, "missing session token")
		return
	}

	user, err := h.auth.CurrentUser(token)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			h.writeError(w, http.StatusUnauthorized, "session not found")
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// sessionToken extracts the bearer token of the X-Session-Token header
func sessionToken(r *http.Request) string {
	if token := r.Header.Get("X-Session-Token"); token != "" {
		return token
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
