package filter

import (
	"testing"

	"pppoed/internal/model"
)

func testRouters() []model.Router {
	return []model.Router{
		{ID: "router-01", Location: "HEX Building", TotalClients: 18, ConnectedClients: 15, DisconnectedClients: 3,
			Health: model.Health{CPUUsage: 35, MemoryUsage: 42, Temperature: 48}},
		{ID: "router-02", Location: "CCR Building", TotalClients: 32, ConnectedClients: 28, DisconnectedClients: 4,
			Health: model.Health{CPUUsage: 62, MemoryUsage: 55, Temperature: 55}},
		{ID: "router-03", Location: "Main Building", TotalClients: 10, ConnectedClients: 8, DisconnectedClients: 2,
			Health: model.Health{CPUUsage: 40, MemoryUsage: 50, Temperature: 45}},
		{ID: "router-04", Location: "Main Building", TotalClients: 5, ConnectedClients: 5, DisconnectedClients: 0,
			Health: model.Health{CPUUsage: 30, MemoryUsage: 35, Temperature: 42}},
	}
}

func TestGroupByLocation_PreservesOrder(t *testing.T) {
	groups := GroupByLocation(testRouters())

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	wantLocations := []string{"HEX Building", "CCR Building", "Main Building"}
	for i, want := range wantLocations {
		if groups[i].Location != want {
			t.Errorf("group %d: expected location %q, got %q", i, want, groups[i].Location)
		}
	}

	if len(groups[2].Routers) != 2 {
		t.Fatalf("expected 2 routers in Main Building, got %d", len(groups[2].Routers))
	}
	if groups[2].Routers[0].ID != "router-03" || groups[2].Routers[1].ID != "router-04" {
		t.Errorf("Main Building routers out of order: %s, %s",
			groups[2].Routers[0].ID, groups[2].Routers[1].ID)
	}
}

func TestGroupByLocation_Empty(t *testing.T) {
	groups := GroupByLocation(nil)
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestMergeExpanded_NewLocationsDefaultExpanded(t *testing.T) {
	groups := GroupByLocation(testRouters())
	merged := MergeExpanded(nil, groups)

	for _, g := range groups {
		if !merged[g.Location] {
			t.Errorf("new location %q should default to expanded", g.Location)
		}
	}
}

func TestMergeExpanded_KeepsToggles(t *testing.T) {
	groups := GroupByLocation(testRouters())
	prev := map[string]bool{
		"HEX Building": false, // collapsed by the operator
		"Old Building": true,  // no longer present
	}

	merged := MergeExpanded(prev, groups)

	if merged["HEX Building"] {
		t.Error("collapsed state of HEX Building was lost")
	}
	if _, ok := merged["Old Building"]; ok {
		t.Error("vanished location should be dropped")
	}
	if !merged["Main Building"] {
		t.Error("new location Main Building should be expanded")
	}
}

func TestMergeExpanded_Idempotent(t *testing.T) {
	groups := GroupByLocation(testRouters())
	once := MergeExpanded(map[string]bool{"CCR Building": false}, groups)
	twice := MergeExpanded(once, groups)

	if len(once) != len(twice) {
		t.Fatalf("expected identical maps, got %d and %d entries", len(once), len(twice))
	}
	for location, expanded := range once {
		if twice[location] != expanded {
			t.Errorf("location %q changed from %v to %v", location, expanded, twice[location])
		}
	}
}

func TestHasIssues(t *testing.T) {
	prefs := model.DefaultNotificationPreferences() // CPU 80, temp 60

	tests := []struct {
		name   string
		health model.Health
		want   bool
	}{
		{"healthy", model.Health{CPUUsage: 50, MemoryUsage: 50, Temperature: 50}, false},
		{"high cpu", model.Health{CPUUsage: 85, MemoryUsage: 50, Temperature: 50}, true},
		{"high memory", model.Health{CPUUsage: 50, MemoryUsage: 75, Temperature: 50}, true},
		{"high temperature", model.Health{CPUUsage: 50, MemoryUsage: 50, Temperature: 65}, true},
		{"at thresholds", model.Health{CPUUsage: 80, MemoryUsage: 70, Temperature: 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := model.Router{Health: tt.health}
			if got := HasIssues(&router, prefs); got != tt.want {
				t.Errorf("HasIssues = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	prefs := model.DefaultNotificationPreferences()
	stats := Stats(testRouters(), prefs)

	if stats.TotalClients != 65 {
		t.Errorf("expected 65 total clients, got %d", stats.TotalClients)
	}
	if stats.ConnectedClients != 56 {
		t.Errorf("expected 56 connected clients, got %d", stats.ConnectedClients)
	}
	if stats.DisconnectedClients != 9 {
		t.Errorf("expected 9 disconnected clients, got %d", stats.DisconnectedClients)
	}
	if stats.WithIssues != 0 {
		t.Errorf("expected 0 routers with issues, got %d", stats.WithIssues)
	}
}

func TestStats_CountsIssues(t *testing.T) {
	routers := testRouters()
	routers[1].Health.CPUUsage = 95
	routers[3].Health.Temperature = 70

	stats := Stats(routers, model.DefaultNotificationPreferences())
	if stats.WithIssues != 2 {
		t.Errorf("expected 2 routers with issues, got %d", stats.WithIssues)
	}
}
