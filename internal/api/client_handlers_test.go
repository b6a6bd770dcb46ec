package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pppoed/internal/model"
)

func TestHandler_ListClients(t *testing.T) {
	handler, _ := setupSeededHandler()

	req := httptest.NewRequest("GET", "/api/clients", nil)
	w := httptest.NewRecorder()

	handler.listClients(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var clients []model.Client
	if err := json.NewDecoder(resp.Body).Decode(&clients); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(clients) != 8 {
		t.Errorf("Expected 8 seeded clients, got %d", len(clients))
	}
}

func TestHandler_ListClients_Filtered(t *testing.T) {
	handler, _ := setupSeededHandler()

	req := httptest.NewRequest("GET", "/api/clients?router=router-01&status=connected", nil)
	w := httptest.NewRecorder()

	handler.listClients(w, req)

	var clients []model.Client
	if err := json.NewDecoder(w.Result().Body).Decode(&clients); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(clients) != 3 {
		t.Fatalf("Expected 3 connected clients on router-01, got %d", len(clients))
	}
	for _, c := range clients {
		if c.RouterID != "router-01" || !c.IsConnected {
			t.Errorf("Client %s escaped the filter", c.ID)
		}
	}
}

func TestHandler_ListClients_ConnectedOnly(t *testing.T) {
	handler, _ := setupSeededHandler()

	req := httptest.NewRequest("GET", "/api/clients?status=connected", nil)
	w := httptest.NewRecorder()

	handler.listClients(w, req)

	var clients []model.Client
	if err := json.NewDecoder(w.Result().Body).Decode(&clients); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	wantIDs := []string{"1", "2", "4", "5", "7", "8"}
	if len(clients) != len(wantIDs) {
		t.Fatalf("Expected %d connected clients, got %d", len(wantIDs), len(clients))
	}
	for i, want := range wantIDs {
		if clients[i].ID != want {
			t.Errorf("Client %d: expected ID %s, got %s", i, want, clients[i].ID)
		}
		if !clients[i].IsConnected {
			t.Errorf("Client %s is not connected", clients[i].ID)
		}
	}
}

func TestHandler_ListClients_Search(t *testing.T) {
	handler, _ := setupSeededHandler()

	req := httptest.NewRequest("GET", "/api/clients?q=bay", nil)
	w := httptest.NewRecorder()

	handler.listClients(w, req)

	var clients []model.Client
	json.NewDecoder(w.Result().Body).Decode(&clients)
	if len(clients) != 1 || clients[0].ID != "1" {
		t.Errorf("Expected search to return client 1, got %+v", clients)
	}
}

func TestHandler_GetClient(t *testing.T) {
	handler, _ := setupSeededHandler()

	req := httptest.NewRequest("GET", "/api/clients/1", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	handler.getClient(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var client model.Client
	if err := json.NewDecoder(resp.Body).Decode(&client); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if client.Name != "Bayot" {
		t.Errorf("Expected client Bayot, got %q", client.Name)
	}
}

func TestHandler_GetClient_NotFound(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/clients/ghost", nil)
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()

	handler.getClient(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Result().StatusCode)
	}
}

func TestHandler_CreateClient(t *testing.T) {
	handler, _ := setupSeededHandler()

	clientJSON := `{
		"name": "New Tenant",
		"username": "new_tenant",
		"router_id": "router-01",
		"plan": "Basic 25Mbps"
	}`

	req := httptest.NewRequest("POST", "/api/clients", bytes.NewReader([]byte(clientJSON)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.createClient(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var client model.Client
	if err := json.NewDecoder(resp.Body).Decode(&client); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if client.ID == "" {
		t.Error("Expected generated client ID")
	}
	if client.Name != "New Tenant" {
		t.Errorf("Expected name 'New Tenant', got %q", client.Name)
	}
}

func TestHandler_CreateClient_MissingFields(t *testing.T) {
	handler, _ := setupSeededHandler()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"username": "u", "router_id": "router-01"}`},
		{"missing username", `{"name": "n", "router_id": "router-01"}`},
		{"missing router", `{"name": "n", "username": "u"}`},
		{"invalid json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/clients", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.createClient(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Result().StatusCode)
			}
		})
	}
}

func TestHandler_CreateClient_UnknownRouter(t *testing.T) {
	handler := setupTestHandler()

	body := `{"name": "n", "username": "u", "router_id": "no-such-router"}`
	req := httptest.NewRequest("POST", "/api/clients", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.createClient(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown router, got %d", w.Result().StatusCode)
	}
}

func TestHandler_CreateClient_Duplicate(t *testing.T) {
	handler, _ := setupSeededHandler()

	body := `{"id": "1", "name": "Clone", "username": "clone", "router_id": "router-01"}`
	req := httptest.NewRequest("POST", "/api/clients", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.createClient(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Result().StatusCode)
	}
}

func TestHandler_UpdateClient(t *testing.T) {
	handler, store := setupSeededHandler()

	body := `{
		"name": "Bayot Renamed",
		"username": "Bayot",
		"router_id": "router-01",
		"plan": "Premium Plus 100Mbps"
	}`
	req := httptest.NewRequest("PUT", "/api/clients/1", bytes.NewReader([]byte(body)))
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	handler.updateClient(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Result().StatusCode)
	}

	got, err := store.GetClient("1")
	if err != nil {
		t.Fatalf("Failed to get client: %v", err)
	}
	if got.Name != "Bayot Renamed" || got.Plan != "Premium Plus 100Mbps" {
		t.Errorf("Update not applied: %+v", got)
	}
}

func TestHandler_UpdateClient_NotFound(t *testing.T) {
	handler, _ := setupSeededHandler()

	body := `{"name": "n", "username": "u", "router_id": "router-01"}`
	req := httptest.NewRequest("PUT", "/api/clients/ghost", bytes.NewReader([]byte(body)))
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()

	handler.updateClient(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Result().StatusCode)
	}
}

func TestHandler_DeleteClient(t *testing.T) {
	handler, store := setupSeededHandler()

	req := httptest.NewRequest("DELETE", "/api/clients/1", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	handler.deleteClient(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Result().StatusCode)
	}
	if _, err := store.GetClient("1"); err == nil {
		t.Error("Client still present after delete")
	}
}

func TestHandler_SetClientConnection(t *testing.T) {
	handler, store := setupSeededHandler()

	req := httptest.NewRequest("PUT", "/api/clients/1/connection",
		bytes.NewReader([]byte(`{"connected": false}`)))
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	handler.setClientConnection(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var client model.Client
	if err := json.NewDecoder(resp.Body).Decode(&client); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if client.IsConnected {
		t.Error("Expected client to be disconnected")
	}

	// The router counters follow the tracked client rows
	router, _ := store.GetRouter("router-01")
	if router.ConnectedClients != 2 || router.TotalClients != 3 {
		t.Errorf("Counters %d/%d, want connected 2 of 3",
			router.ConnectedClients, router.TotalClients)
	}
}
