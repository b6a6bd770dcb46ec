package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pppoed/internal/discovery"
)

// discoveryScan handles POST /api/discovery/scan. The sweep runs on the
// request context, so a disconnecting caller aborts it.
func (h *Handler) discoveryScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subnet string `json:"subnet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subnet == "" {
		h.writeError(w, http.StatusBadRequest, "subnet is required")
		return
	}

	scan, err := h.scanner.Scan(r.Context(), req.Subnet)
	if err != nil {
		switch {
		case errors.Is(err, discovery.ErrScanInProgress):
			h.writeError(w, http.StatusConflict, "scan already in progress")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.writeError(w, http.StatusRequestTimeout, "scan aborted")
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, scan)
}

// discoveryStatus handles GET /api/discovery/status
func (h *Handler) discoveryStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"scanning": h.scanner.Scanning(),
	}
	if last := h.scanner.LastScan(); last != nil {
		status["last_scan"] = last
	}
	h.writeJSON(w, http.StatusOK, status)
}
