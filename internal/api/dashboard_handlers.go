package api

import (
	"net/http"
	"time"

	"pppoed/internal/filter"
)

// dashboard handles GET /api/dashboard
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	routers, err := h.storage.ListRouters(nil)
	if err != nil {
		h.internalError(w, err)
		return
	}
	clients, err := h.storage.ListClients(nil)
	if err != nil {
		h.internalError(w, err)
		return
	}

	d := filter.BuildDashboard(routers, clients, h.prefs.Notifications(), time.Now())
	h.writeJSON(w, http.StatusOK, d)
}
