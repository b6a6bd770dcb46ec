package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"pppoed/internal/model"
	"pppoed/internal/storage"
)

// listClients handles GET /api/clients with the filter query params
// q, router, status, and expiration
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &model.ClientFilter{
		SearchTerm: query.Get("q"),
		RouterID:   query.Get("router"),
		Status:     model.ConnectionStatus(query.Get("status")),
		Expiration: model.ExpirationFilter(query.Get("expiration")),
		Window:     h.prefs.Notifications().ExpirationDays,
	}

	clients, err := h.storage.ListClients(filter)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, clients)
}

// getClient handles GET /api/clients/{id}
func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "client ID required")
		return
	}

	client, err := h.storage.GetClient(id)
	if err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			h.writeError(w, http.StatusNotFound, "client not found")
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, client)
}

// createClient handles POST /api/clients
func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var client model.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate required fields
	if client.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if client.Username == "" {
		h.writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if client.RouterID == "" {
		h.writeError(w, http.StatusBadRequest, "router_id is required")
		return
	}

	// Generate ID if not provided
	if client.ID == "" {
		client.ID = generateID()
	}

	if err := h.storage.CreateClient(&client); err != nil {
		switch {
		case errors.Is(err, storage.ErrRouterNotFound):
			h.writeError(w, http.StatusBadRequest, "router not found: "+client.RouterID)
		case errors.Is(err, storage.ErrAlreadyExists):
			h.writeError(w, http.StatusConflict, "client already exists")
		case errors.Is(err, storage.ErrInvalidID):
			h.writeError(w, http.StatusBadRequest, "invalid client ID")
		default:
			h.internalError(w, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, client)
}

// updateClient handles PUT /api/clients/{id}
func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "client ID required")
		return
	}

	var client model.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Ensure ID matches URL
	client.ID = id

	if err := h.storage.UpdateClient(&client); err != nil {
		switch {
		case errors.Is(err, storage.ErrClientNotFound):
			h.writeError(w, http.StatusNotFound, "client not found")
		case errors.Is(err, storage.ErrRouterNotFound):
			h.writeError(w, http.StatusBadRequest, "router not found: "+client.RouterID)
		default:
			h.internalError(w, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, client)
}

// deleteClient handles DELETE /api/clients/{id}
func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "client ID required")
		return
	}

	if err := h.storage.DeleteClient(id); err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			h.writeError(w, http.StatusNotFound, "client not found")
			return
		}
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setClientConnection handles PUT /api/clients/{id}/connection
func (h *Handler) setClientConnection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "client ID required")
		return
	}

	var body struct {
		Connected bool `json:"connected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.storage.SetClientConnection(id, body.Connected); err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			h.writeError(w, http.StatusNotFound, "client not found")
			return
		}
		h.internalError(w, err)
		return
	}

	client, err := h.storage.GetClient(id)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, client)
}
