package api

import (
	"encoding/json"
	"net/http"

	"pppoed/internal/model"
)

// getProfile handles GET /api/preferences/profile
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.prefs.Profile())
}

// updateProfile handles PUT /api/preferences/profile
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch profile.Theme {
	case model.ThemeLight, model.ThemeDark:
	default:
		h.writeError(w, http.StatusBadRequest, "invalid theme")
		return
	}
	switch profile.Language {
	case model.LangEnglish, model.LangSpanish, model.LangFrench, model.LangIndonesian:
	default:
		h.writeError(w, http.StatusBadRequest, "invalid language")
		return
	}

	if err := h.prefs.SaveProfile(profile); err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// getNotificationPreferences handles GET /api/preferences/notifications
func (h *Handler) getNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.prefs.Notifications())
}

// updateNotificationPreferences handles PUT /api/preferences/notifications
func (h *Handler) updateNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs model.NotificationPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if prefs.ExpirationDays < 1 || prefs.ExpirationDays > 90 {
		h.writeError(w, http.StatusBadRequest, "expiration_days must be between 1 and 90")
		return
	}
	if prefs.PaymentDays < 1 || prefs.PaymentDays > 90 {
		h.writeError(w, http.StatusBadRequest, "payment_days must be between 1 and 90")
		return
	}
	if prefs.RouterHighCPUThreshold < 1 || prefs.RouterHighCPUThreshold > 100 {
		h.writeError(w, http.StatusBadRequest, "router_high_cpu_threshold must be between 1 and 100")
		return
	}
	if prefs.RouterHighTempThreshold < 1 || prefs.RouterHighTempThreshold > 120 {
		h.writeError(w, http.StatusBadRequest, "router_high_temp_threshold must be between 1 and 120")
		return
	}

	if err := h.prefs.SaveNotifications(prefs); err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, prefs)
}
