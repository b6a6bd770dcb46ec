package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"pppoed/internal/filter"
	"pppoed/internal/model"
	"pppoed/internal/storage"
)

// listNotifications handles GET /api/notifications. Results are sorted
// newest first; the optional type query param keeps one category.
func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.storage.ListNotifications()
	if err != nil {
		h.internalError(w, err)
		return
	}

	if t := r.URL.Query().Get("type"); t != "" {
		notifications = filter.NotificationsByType(notifications, model.NotificationType(t))
	}
	notifications = filter.SortNotifications(notifications)

	h.writeJSON(w, http.StatusOK, notifications)
}

// addNotification handles POST /api/notifications
func (h *Handler) addNotification(w http.ResponseWriter, r *http.Request) {
	var notification model.Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if notification.Title == "" {
		h.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if notification.Type == "" {
		notification.Type = model.NotifySystem
	}
	if notification.ID == "" {
		notification.ID = generateID()
	}

	if err := h.storage.AddNotification(&notification); err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, notification)
}

// unreadCount handles GET /api/notifications/unread-count
func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.storage.UnreadCount()
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// markNotificationRead handles POST /api/notifications/{id}/read
func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "notification ID required")
		return
	}

	if err := h.storage.MarkNotificationRead(id); err != nil {
		if errors.Is(err, storage.ErrNotificationNotFound) {
			h.writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// markAllNotificationsRead handles POST /api/notifications/read-all
func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.MarkAllNotificationsRead(); err != nil {
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// dismissNotification handles DELETE /api/notifications/{id}
func (h *Handler) dismissNotification(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "notification ID required")
		return
	}

	if err := h.storage.DismissNotification(id); err != nil {
		if errors.Is(err, storage.ErrNotificationNotFound) {
			h.writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clearNotifications handles DELETE /api/notifications
func (h *Handler) clearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.ClearNotifications(); err != nil {
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// sweepNotifications handles POST /api/notifications/sweep
func (h *Handler) sweepNotifications(w http.ResponseWriter, r *http.Request) {
	raised, err := h.sweeper.Sweep()
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"raised": raised})
}
