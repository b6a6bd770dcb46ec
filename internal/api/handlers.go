package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"pppoed/internal/auth"
	"pppoed/internal/discovery"
	"pppoed/internal/log"
	"pppoed/internal/model"
	"pppoed/internal/notify"
	"pppoed/internal/storage"
	"pppoed/internal/syncer"
)

// Preferences is the slice of the preference store the API needs
type Preferences interface {
	Profile() model.Profile
	SaveProfile(model.Profile) error
	Notifications() model.NotificationPreferences
	SaveNotifications(model.NotificationPreferences) error
}

// Handler handles HTTP requests
type Handler struct {
	storage storage.Storage
	syncer  *syncer.Syncer
	sweeper *notify.Engine
	prefs   Preferences
	auth    *auth.Service
	scanner *discovery.Scanner

	// expand/collapse state of the router group view
	expandMu sync.Mutex
	expanded map[string]bool
}

// NewHandler creates a new API handler
func NewHandler(s storage.Storage, sy *syncer.Syncer, sweeper *notify.Engine, prefs Preferences, authSvc *auth.Service, scanner *discovery.Scanner) *Handler {
	return &Handler{
		storage:  s,
		syncer:   sy,
		sweeper:  sweeper,
		prefs:    prefs,
		auth:     authSvc,
		scanner:  scanner,
		expanded: make(map[string]bool),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Client CRUD
	mux.HandleFunc("GET /api/clients", h.listClients)
	mux.HandleFunc("POST /api/clients", h.createClient)
	mux.HandleFunc("GET /api/clients/{id}", h.getClient)
	mux.HandleFunc("PUT /api/clients/{id}", h.updateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", h.deleteClient)
	mux.HandleFunc("PUT /api/clients/{id}/connection", h.setClientConnection)

	// Router CRUD and derived views
	mux.HandleFunc("GET /api/routers", h.listRouters)
	mux.HandleFunc("POST /api/routers", h.createRouter)
	mux.HandleFunc("GET /api/routers/groups", h.listRouterGroups)
	mux.HandleFunc("POST /api/routers/groups/{location}/toggle", h.toggleRouterGroup)
	mux.HandleFunc("GET /api/routers/stats", h.routerStats)
	mux.HandleFunc("GET /api/routers/{id}", h.getRouter)
	mux.HandleFunc("PUT /api/routers/{id}", h.updateRouter)
	mux.HandleFunc("DELETE /api/routers/{id}", h.deleteRouter)

	// Synchronization
	mux.HandleFunc("POST /api/sync", h.syncRouters)
	mux.HandleFunc("GET /api/sync/status", h.syncStatus)

	// Subnet discovery
	mux.HandleFunc("POST /api/discovery/scan", h.discoveryScan)
	mux.HandleFunc("GET /api/discovery/status", h.discoveryStatus)

	// Notifications
	mux.HandleFunc("GET /api/notifications", h.listNotifications)
	mux.HandleFunc("POST /api/notifications", h.addNotification)
	mux.HandleFunc("GET /api/notifications/unread-count", h.unreadCount)
	mux.HandleFunc("POST /api/notifications/read-all", h.markAllNotificationsRead)
	mux.HandleFunc("POST /api/notifications/sweep", h.sweepNotifications)
	mux.HandleFunc("DELETE /api/notifications", h.clearNotifications)
	mux.HandleFunc("POST /api/notifications/{id}/read", h.markNotificationRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", h.dismissNotification)

	// Preferences
	mux.HandleFunc("GET /api/preferences/profile", h.getProfile)
	mux.HandleFunc("PUT /api/preferences/profile", h.updateProfile)
	mux.HandleFunc("GET /api/preferences/notifications", h.getNotificationPreferences)
	mux.HandleFunc("PUT /api/preferences/notifications", h.updateNotificationPreferences)

	// Dashboard
	mux.HandleFunc("GET /api/dashboard", h.dashboard)

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
	mux.HandleFunc("GET /api/auth/me", h.currentUser)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// generateID generates a UUIDv7
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
