package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"pppoed/internal/filter"
	"pppoed/internal/model"
	"pppoed/internal/storage"
	"pppoed/internal/syncer"
)

// routerGroupView is one location group with its expand state
type routerGroupView struct {
	Location string         `json:"location"`
	Expanded bool           `json:"expanded"`
	Routers  []model.Router `json:"routers"`
}

// listRouters handles GET /api/routers
func (h *Handler) listRouters(w http.ResponseWriter, r *http.Request) {
	var f *model.RouterFilter
	if location := r.URL.Query().Get("location"); location != "" {
		f = &model.RouterFilter{Location: location}
	}

	routers, err := h.storage.ListRouters(f)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, routers)
}

// getRouter handles GET /api/routers/{id}
func (h *Handler) getRouter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "router ID required")
		return
	}

	router, err := h.storage.GetRouter(id)
	if err != nil {
		if errors.Is(err, storage.ErrRouterNotFound) {
			h.writeError(w, http.StatusNotFound, "router not found")
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, router)
}

// createRouter handles POST /api/routers
func (h *Handler) createRouter(w http.ResponseWriter, r *http.Request) {
	var router model.Router
	if err := json.NewDecoder(r.Body).Decode(&router); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if router.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if router.IPAddress == "" {
		h.writeError(w, http.StatusBadRequest, "ip_address is required")
		return
	}
	if router.Port == 0 {
		router.Port = 8728
	}
	if router.ID == "" {
		router.ID = generateID()
	}

	if err := h.storage.CreateRouter(&router); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			h.writeError(w, http.StatusConflict, "router already exists")
		case errors.Is(err, storage.ErrInvalidID):
			h.writeError(w, http.StatusBadRequest, "invalid router ID")
		default:
			h.internalError(w, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, router)
}

// updateRouter handles PUT /api/routers/{id}
func (h *Handler) updateRouter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "router ID required")
		return
	}

	var router model.Router
	if err := json.NewDecoder(r.Body).Decode(&router); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	router.ID = id

	if err := h.storage.UpdateRouter(&router); err != nil {
		if errors.Is(err, storage.ErrRouterNotFound) {
			h.writeError(w, http.StatusNotFound, "router not found")
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, router)
}

// deleteRouter handles DELETE /api/routers/{id}. Clients of the router
// are deleted with it.
func (h *Handler) deleteRouter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "router ID required")
		return
	}

	if err := h.storage.DeleteRouter(id); err != nil {
		if errors.Is(err, storage.ErrRouterNotFound) {
			h.writeError(w, http.StatusNotFound, "router not found")
			return
		}
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listRouterGroups handles GET /api/routers/groups
func (h *Handler) listRouterGroups(w http.ResponseWriter, r *http.Request) {
	routers, err := h.storage.ListRouters(nil)
	if err != nil {
		h.internalError(w, err)
		return
	}

	groups := filter.GroupByLocation(routers)

	h.expandMu.Lock()
	h.expanded = filter.MergeExpanded(h.expanded, groups)
	views := make([]routerGroupView, len(groups))
	for i, group := range groups {
		views[i] = routerGroupView{
			Location: group.Location,
			Expanded: h.expanded[group.Location],
			Routers:  group.Routers,
		}
	}
	h.expandMu.Unlock()

	h.writeJSON(w, http.StatusOK, views)
}

// toggleRouterGroup handles POST /api/routers/groups/{location}/toggle
func (h *Handler) toggleRouterGroup(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	if location == "" {
		h.writeError(w, http.StatusBadRequest, "location required")
		return
	}

	h.expandMu.Lock()
	expanded, ok := h.expanded[location]
	if ok {
		h.expanded[location] = !expanded
	}
	h.expandMu.Unlock()

	if !ok {
		h.writeError(w, http.StatusNotFound, "location not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"expanded": !expanded})
}

// routerStats handles GET /api/routers/stats
func (h *Handler) routerStats(w http.ResponseWriter, r *http.Request) {
	routers, err := h.storage.ListRouters(nil)
	if err != nil {
		h.internalError(w, err)
		return
	}

	stats := filter.Stats(routers, h.prefs.Notifications())
	h.writeJSON(w, http.StatusOK, stats)
}

// syncRouters handles POST /api/sync. The sync runs on the request
// context, so a disconnecting caller cancels it and no partial state
// is committed.
func (h *Handler) syncRouters(w http.ResponseWriter, r *http.Request) {
	if err := h.syncer.Sync(r.Context()); err != nil {
		if errors.Is(err, syncer.ErrSyncInProgress) {
			h.writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		h.internalError(w, err)
		return
	}

	routers, err := h.storage.ListRouters(nil)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, routers)
}

// syncStatus handles GET /api/sync/status
func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"syncing":        h.syncer.Syncing(),
		"last_sync_time": h.syncer.LastSyncTime(),
	}
	if err := h.syncer.Err(); err != nil {
		status["error"] = err.Error()
	}
	h.writeJSON(w, http.StatusOK, status)
}
