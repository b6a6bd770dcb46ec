package storage

import (
	"errors"
	"testing"

	"pppoed/internal/model"
)

func sqliteStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	ss, err := NewSQLiteStorage(t.TempDir())
	if err != nil {
		t.Fatalf("opening sqlite storage: %v", err)
	}
	t.Cleanup(func() { ss.Close() })
	return ss
}

func TestSQLite_ClientCRUD(t *testing.T) {
	ss := sqliteStore(t)

	router := &model.Router{ID: "router-01", Name: "Test", IPAddress: "192.168.1.1", Port: 8728}
	if err := ss.CreateRouter(router); err != nil {
		t.Fatalf("creating router: %v", err)
	}

	client := newClient("c1")
	client.IsConnected = true
	if err := ss.CreateClient(client); err != nil {
		t.Fatalf("creating client: %v", err)
	}

	got, err := ss.GetClient("c1")
	if err != nil {
		t.Fatalf("getting client: %v", err)
	}
	if got.Name != "Client c1" || !got.IsConnected {
		t.Errorf("unexpected client: %+v", got)
	}

	got.Plan = "Premium 50Mbps"
	if err := ss.UpdateClient(got); err != nil {
		t.Fatalf("updating client: %v", err)
	}
	updated, _ := ss.GetClient("c1")
	if updated.Plan != "Premium 50Mbps" {
		t.Errorf("expected updated plan, got %q", updated.Plan)
	}

	if err := ss.DeleteClient("c1"); err != nil {
		t.Fatalf("deleting client: %v", err)
	}
	if _, err := ss.GetClient("c1"); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestSQLite_CreateClient_UnknownRouter(t *testing.T) {
	ss := sqliteStore(t)
	if err := ss.CreateClient(newClient("c1")); !errors.Is(err, ErrRouterNotFound) {
		t.Errorf("expected ErrRouterNotFound, got %v", err)
	}
}

func TestSQLite_UpdateClient_MissingClientWinsOverMissingRouter(t *testing.T) {
	ss := sqliteStore(t)

	// Both the client and the router it names are unknown; the client
	// check comes first on every backend so the API maps this to a 404
	ghost := newClient("ghost")
	ghost.RouterID = "no-such-router"
	if err := ss.UpdateClient(ghost); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}

	ms := NewMemoryStorage()
	if err := ms.UpdateClient(ghost); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("memory backend: expected ErrClientNotFound, got %v", err)
	}
}

func TestSQLite_CountersFollowClientMutations(t *testing.T) {
	ss := sqliteStore(t)
	ss.CreateRouter(&model.Router{ID: "router-01", Name: "Test", IPAddress: "192.168.1.1"})

	c1 := newClient("c1")
	c1.IsConnected = true
	if err := ss.CreateClient(c1); err != nil {
		t.Fatalf("creating client: %v", err)
	}
	if err := ss.CreateClient(newClient("c2")); err != nil {
		t.Fatalf("creating client: %v", err)
	}

	router, err := ss.GetRouter("router-01")
	if err != nil {
		t.Fatalf("getting router: %v", err)
	}
	if router.TotalClients != 2 || router.ConnectedClients != 1 || router.DisconnectedClients != 1 {
		t.Errorf("counters %d/%d/%d, want 2/1/1",
			router.TotalClients, router.ConnectedClients, router.DisconnectedClients)
	}

	if err := ss.SetClientConnection("c2", true); err != nil {
		t.Fatalf("setting connection: %v", err)
	}
	router, _ = ss.GetRouter("router-01")
	if router.ConnectedClients != 2 {
		t.Errorf("expected 2 connected after flip, got %d", router.ConnectedClients)
	}
}

func TestSQLite_DeleteRouterCascades(t *testing.T) {
	ss := sqliteStore(t)
	ss.CreateRouter(&model.Router{ID: "router-01", Name: "Test", IPAddress: "192.168.1.1"})
	if err := ss.CreateClient(newClient("c1")); err != nil {
		t.Fatalf("creating client: %v", err)
	}

	if err := ss.DeleteRouter("router-01"); err != nil {
		t.Fatalf("deleting router: %v", err)
	}

	// ON DELETE CASCADE removes the clients with the router
	clients, err := ss.ListClients(nil)
	if err != nil {
		t.Fatalf("listing clients: %v", err)
	}
	if len(clients) != 0 {
		t.Errorf("expected cascade to remove clients, %d remain", len(clients))
	}
}

func TestSQLite_SeedIsIdempotent(t *testing.T) {
	ss := sqliteStore(t)

	if err := ss.Seed(); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if err := ss.Seed(); err != nil {
		t.Fatalf("re-seeding: %v", err)
	}

	routers, _ := ss.ListRouters(nil)
	if len(routers) != 6 {
		t.Errorf("expected 6 routers after double seed, got %d", len(routers))
	}
	clients, _ := ss.ListClients(nil)
	if len(clients) != 8 {
		t.Errorf("expected 8 clients after double seed, got %d", len(clients))
	}

	// Seeded counters are loaded verbatim, not recomputed
	r1, _ := ss.GetRouter("router-01")
	if r1.TotalClients != 18 || r1.ConnectedClients != 15 {
		t.Errorf("router-01 counters %d/%d, want 18/15", r1.TotalClients, r1.ConnectedClients)
	}
}

func TestSQLite_FilterMatchesMemoryBackend(t *testing.T) {
	ss := sqliteStore(t)
	if err := ss.Seed(); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	ms := NewMemoryStorage()
	ms.Seed()

	filters := []*model.ClientFilter{
		nil,
		{Status: model.StatusConnected},
		{RouterID: "router-01"},
		{SearchTerm: "bay"},
		{RouterID: "router-02", Status: model.StatusDisconnected},
	}

	for _, f := range filters {
		fromSQL, err := ss.ListClients(f)
		if err != nil {
			t.Fatalf("sqlite list: %v", err)
		}
		fromMem, err := ms.ListClients(f)
		if err != nil {
			t.Fatalf("memory list: %v", err)
		}
		if len(fromSQL) != len(fromMem) {
			t.Errorf("filter %+v: sqlite %d clients, memory %d", f, len(fromSQL), len(fromMem))
			continue
		}
		for i := range fromSQL {
			if fromSQL[i].ID != fromMem[i].ID {
				t.Errorf("filter %+v: order differs at %d (%s vs %s)",
					f, i, fromSQL[i].ID, fromMem[i].ID)
			}
		}
	}
}

func TestSQLite_NotificationLifecycle(t *testing.T) {
	ss := sqliteStore(t)

	if err := ss.AddNotification(&model.Notification{ID: "n1", Type: model.NotifySystem, Title: "one"}); err != nil {
		t.Fatalf("adding notification: %v", err)
	}
	if err := ss.AddNotification(&model.Notification{ID: "n2", Type: model.NotifyRouter, Title: "two"}); err != nil {
		t.Fatalf("adding notification: %v", err)
	}

	count, err := ss.UnreadCount()
	if err != nil {
		t.Fatalf("counting unread: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 unread, got %d", count)
	}

	if err := ss.MarkNotificationRead("n1"); err != nil {
		t.Fatalf("marking read: %v", err)
	}
	if err := ss.MarkNotificationRead("ghost"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("expected ErrNotificationNotFound, got %v", err)
	}

	count, _ = ss.UnreadCount()
	if count != 1 {
		t.Errorf("expected 1 unread, got %d", count)
	}

	if err := ss.DismissNotification("n2"); err != nil {
		t.Fatalf("dismissing: %v", err)
	}
	if err := ss.ClearNotifications(); err != nil {
		t.Fatalf("clearing: %v", err)
	}
	notifications, _ := ss.ListNotifications()
	if len(notifications) != 0 {
		t.Errorf("expected empty inbox, got %d", len(notifications))
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	ss, err := NewSQLiteStorage(dir)
	if err != nil {
		t.Fatalf("opening sqlite storage: %v", err)
	}
	if err := ss.CreateRouter(&model.Router{ID: "r1", Name: "Keep", IPAddress: "10.0.0.1"}); err != nil {
		t.Fatalf("creating router: %v", err)
	}
	if err := ss.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	reopened, err := NewSQLiteStorage(dir)
	if err != nil {
		t.Fatalf("reopening sqlite storage: %v", err)
	}
	defer reopened.Close()

	router, err := reopened.GetRouter("r1")
	if err != nil {
		t.Fatalf("getting router after reopen: %v", err)
	}
	if router.Name != "Keep" {
		t.Errorf("expected router to survive reopen, got %+v", router)
	}
}
