package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pppoed/internal/discovery"
)

func TestHandler_DiscoveryScan(t *testing.T) {
	handler := setupTestHandler()

	body := `{"subnet": "127.0.0.1/32"}`
	req := httptest.NewRequest("POST", "/api/discovery/scan", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.discoveryScan(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var scan discovery.Scan
	if err := json.NewDecoder(resp.Body).Decode(&scan); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if scan.Subnet != "127.0.0.1/32" {
		t.Errorf("Expected subnet echoed back, got %q", scan.Subnet)
	}
	if scan.TotalHosts != 1 {
		t.Errorf("Expected 1 host, got %d", scan.TotalHosts)
	}
}

func TestHandler_DiscoveryScan_Validation(t *testing.T) {
	handler := setupTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"missing subnet", `{}`},
		{"invalid subnet", `{"subnet": "not-a-subnet"}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/discovery/scan", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.discoveryScan(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Result().StatusCode)
			}
		})
	}
}

func TestHandler_DiscoveryStatus(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/discovery/status", nil)
	w := httptest.NewRecorder()

	handler.discoveryStatus(w, req)

	var status map[string]interface{}
	if err := json.NewDecoder(w.Result().Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if scanning, ok := status["scanning"].(bool); !ok || scanning {
		t.Errorf("Expected scanning false, got %v", status["scanning"])
	}
	if _, ok := status["last_scan"]; ok {
		t.Error("Expected no last_scan before the first sweep")
	}
}
