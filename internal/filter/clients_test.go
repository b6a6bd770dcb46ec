package filter

import (
	"testing"
	"time"

	"pppoed/internal/model"
)

var filterNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testClients returns a small fixture set anchored around filterNow
func testClients() []model.Client {
	day := func(offset int) time.Time {
		return filterNow.AddDate(0, 0, offset)
	}
	return []model.Client{
		{ID: "1", Name: "John Bayot", Username: "john_bayot", RouterID: "router-01", IsConnected: true, ExpirationDate: day(30)},
		{ID: "2", Name: "Priya Shukla", Username: "priya_s", RouterID: "router-01", IsConnected: true, ExpirationDate: day(3)},
		{ID: "3", Name: "Mike Johnson", Username: "mike_johnson", RouterID: "router-02", IsConnected: false, ExpirationDate: day(-10)},
		{ID: "4", Name: "Sarah Lee", Username: "sarah_lee", RouterID: "router-02", IsConnected: true, ExpirationDate: day(7)},
		{ID: "5", Name: "David Wilson", Username: "david_w", RouterID: "router-03", IsConnected: false, ExpirationDate: day(-1)},
	}
}

func clientIDs(clients []model.Client) []string {
	ids := make([]string, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	return ids
}

func assertIDs(t *testing.T, got []model.Client, want ...string) {
	t.Helper()
	ids := clientIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("expected clients %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected clients %v, got %v", want, ids)
		}
	}
}

func TestClients_NilFilter(t *testing.T) {
	clients := testClients()
	got := Clients(clients, nil)
	if len(got) != len(clients) {
		t.Errorf("expected all %d clients, got %d", len(clients), len(got))
	}
}

func TestClients_StatusConnected(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{Status: model.StatusConnected, Now: filterNow})
	assertIDs(t, got, "1", "2", "4")
}

func TestClients_StatusDisconnected(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{Status: model.StatusDisconnected, Now: filterNow})
	assertIDs(t, got, "3", "5")
}

func TestClients_RouterFilter(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{RouterID: "router-02", Now: filterNow})
	assertIDs(t, got, "3", "4")

	// "all" disables the dimension
	got = Clients(testClients(), &model.ClientFilter{RouterID: "all", Now: filterNow})
	if len(got) != 5 {
		t.Errorf("expected router 'all' to match everything, got %d clients", len(got))
	}
}

func TestClients_SearchCaseInsensitive(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{SearchTerm: "BAYOT", Now: filterNow})
	assertIDs(t, got, "1")
}

func TestClients_SearchMatchesUsernameAndID(t *testing.T) {
	// matches username
	got := Clients(testClients(), &model.ClientFilter{SearchTerm: "priya_s", Now: filterNow})
	assertIDs(t, got, "2")

	// matches ID substring
	got = Clients(testClients(), &model.ClientFilter{SearchTerm: "5", Now: filterNow})
	assertIDs(t, got, "5")
}

func TestClients_SearchTrimsWhitespace(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{SearchTerm: "  sarah  ", Now: filterNow})
	assertIDs(t, got, "4")
}

func TestClients_Expired(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{Expiration: model.Expired, Now: filterNow})
	assertIDs(t, got, "3", "5")
}

func TestClients_ExpiringSoon(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{Expiration: model.ExpiringSoon, Window: 7, Now: filterNow})
	assertIDs(t, got, "2", "4")
}

func TestClients_ExpirationBoundaries(t *testing.T) {
	clients := []model.Client{
		{ID: "at-now", ExpirationDate: filterNow},
		{ID: "at-horizon", ExpirationDate: filterNow.AddDate(0, 0, 7)},
		{ID: "past-horizon", ExpirationDate: filterNow.AddDate(0, 0, 8)},
	}

	// Expiration exactly at now is expiring-soon, not expired
	got := Clients(clients, &model.ClientFilter{Expiration: model.Expired, Now: filterNow})
	assertIDs(t, got)

	got = Clients(clients, &model.ClientFilter{Expiration: model.ExpiringSoon, Window: 7, Now: filterNow})
	assertIDs(t, got, "at-now", "at-horizon")
}

func TestClients_ExpiredAndExpiringSoonDisjoint(t *testing.T) {
	clients := testClients()
	expired := Clients(clients, &model.ClientFilter{Expiration: model.Expired, Now: filterNow})
	expiring := Clients(clients, &model.ClientFilter{Expiration: model.ExpiringSoon, Window: 7, Now: filterNow})

	seen := make(map[string]bool)
	for _, c := range expired {
		seen[c.ID] = true
	}
	for _, c := range expiring {
		if seen[c.ID] {
			t.Errorf("client %s is both expired and expiring-soon", c.ID)
		}
	}
}

func TestClients_DimensionsCombineWithAND(t *testing.T) {
	got := Clients(testClients(), &model.ClientFilter{
		RouterID: "router-02",
		Status:   model.StatusConnected,
		Now:      filterNow,
	})
	assertIDs(t, got, "4")
}

func TestClients_DefaultWindow(t *testing.T) {
	// Zero window falls back to DefaultExpiringSoonDays
	got := Clients(testClients(), &model.ClientFilter{Expiration: model.ExpiringSoon, Now: filterNow})
	assertIDs(t, got, "2", "4")
}

func TestExpiringClients_ExcludesExpired(t *testing.T) {
	got := ExpiringClients(testClients(), 30, filterNow)
	assertIDs(t, got, "1", "2", "4")
}
