package storage

import (
	"sync"
	"time"

	"pppoed/internal/filter"
	"pppoed/internal/model"
)

// MemoryStorage implements Storage entirely in memory. Slices keep
// insertion order so list results are stable across calls.
type MemoryStorage struct {
	mu            sync.RWMutex
	clients       []model.Client
	routers       []model.Router
	notifications []model.Notification
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Client operations

// ListClients returns clients matching the filter, in insertion order
func (ms *MemoryStorage) ListClients(f *model.ClientFilter) ([]model.Client, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	clients := make([]model.Client, len(ms.clients))
	copy(clients, ms.clients)
	return filter.Clients(clients, f), nil
}

// GetClient retrieves a client by ID
func (ms *MemoryStorage) GetClient(id string) (*model.Client, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for i := range ms.clients {
		if ms.clients[i].ID == id {
			clone := ms.clients[i]
			return &clone, nil
		}
	}
	return nil, ErrClientNotFound
}

// CreateClient adds a new client. The referenced router must exist.
func (ms *MemoryStorage) CreateClient(client *model.Client) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if client.ID == "" {
		return ErrInvalidID
	}
	for i := range ms.clients {
		if ms.clients[i].ID == client.ID {
			return ErrAlreadyExists
		}
	}
	if ms.routerIndex(client.RouterID) < 0 {
		return ErrRouterNotFound
	}

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now
	ms.clients = append(ms.clients, *client)
	ms.refreshCounters(client.RouterID)
	return nil
}

// UpdateClient updates an existing client. The referenced router must exist.
func (ms *MemoryStorage) UpdateClient(client *model.Client) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if client.ID == "" {
		return ErrInvalidID
	}
	idx := -1
	for i := range ms.clients {
		if ms.clients[i].ID == client.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrClientNotFound
	}
	if ms.routerIndex(client.RouterID) < 0 {
		return ErrRouterNotFound
	}

	prevRouter := ms.clients[idx].RouterID
	client.CreatedAt = ms.clients[idx].CreatedAt
	client.UpdatedAt = time.Now()
	ms.clients[idx] = *client

	ms.refreshCounters(client.RouterID)
	if prevRouter != client.RouterID {
		ms.refreshCounters(prevRouter)
	}
	return nil
}

// DeleteClient removes a client
func (ms *MemoryStorage) DeleteClient(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := range ms.clients {
		if ms.clients[i].ID == id {
			routerID := ms.clients[i].RouterID
			ms.clients = append(ms.clients[:i], ms.clients[i+1:]...)
			ms.refreshCounters(routerID)
			return nil
		}
	}
	return ErrClientNotFound
}

// SetClientConnection flips the connection flag of a client
func (ms *MemoryStorage) SetClientConnection(id string, connected bool) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := range ms.clients {
		if ms.clients[i].ID == id {
			ms.clients[i].IsConnected = connected
			ms.clients[i].UpdatedAt = time.Now()
			ms.refreshCounters(ms.clients[i].RouterID)
			return nil
		}
	}
	return ErrClientNotFound
}

// Router operations

// ListRouters returns routers matching the filter, in insertion order
func (ms *MemoryStorage) ListRouters(f *model.RouterFilter) ([]model.Router, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	routers := make([]model.Router, 0, len(ms.routers))
	for i := range ms.routers {
		if f != nil && f.Location != "" && ms.routers[i].Location != f.Location {
			continue
		}
		routers = append(routers, ms.routers[i])
	}
	return routers, nil
}

// GetRouter retrieves a router by ID
func (ms *MemoryStorage) GetRouter(id string) (*model.Router, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if i := ms.routerIndex(id); i >= 0 {
		clone := ms.routers[i]
		return &clone, nil
	}
	return nil, ErrRouterNotFound
}

// CreateRouter adds a new router
func (ms *MemoryStorage) CreateRouter(router *model.Router) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if router.ID == "" {
		return ErrInvalidID
	}
	if ms.routerIndex(router.ID) >= 0 {
		return ErrAlreadyExists
	}

	now := time.Now()
	router.CreatedAt = now
	router.UpdatedAt = now
	ms.routers = append(ms.routers, *router)
	return nil
}

// UpdateRouter updates an existing router
func (ms *MemoryStorage) UpdateRouter(router *model.Router) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	i := ms.routerIndex(router.ID)
	if i < 0 {
		return ErrRouterNotFound
	}
	router.CreatedAt = ms.routers[i].CreatedAt
	router.UpdatedAt = time.Now()
	ms.routers[i] = *router
	return nil
}

// DeleteRouter removes a router and cascades to its clients
func (ms *MemoryStorage) DeleteRouter(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	i := ms.routerIndex(id)
	if i < 0 {
		return ErrRouterNotFound
	}
	ms.routers = append(ms.routers[:i], ms.routers[i+1:]...)

	kept := ms.clients[:0]
	for _, client := range ms.clients {
		if client.RouterID != id {
			kept = append(kept, client)
		}
	}
	ms.clients = kept
	return nil
}

// ReplaceRouters commits a synced router collection in one step. Rows
// are matched by ID: counters and health are applied to existing
// routers, routers created since the snapshot was taken are kept, and
// snapshot rows that no longer exist are skipped.
func (ms *MemoryStorage) ReplaceRouters(routers []model.Router) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for i := range routers {
		j := ms.routerIndex(routers[i].ID)
		if j < 0 {
			continue
		}
		ms.routers[j].ConnectedClients = routers[i].ConnectedClients
		ms.routers[j].DisconnectedClients = routers[i].DisconnectedClients
		ms.routers[j].TotalClients = routers[i].TotalClients
		ms.routers[j].Health = routers[i].Health
		ms.routers[j].UpdatedAt = now
	}
	return nil
}

// Notification operations

// ListNotifications returns all notifications in insertion order
func (ms *MemoryStorage) ListNotifications() ([]model.Notification, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	notifications := make([]model.Notification, len(ms.notifications))
	copy(notifications, ms.notifications)
	return notifications, nil
}

// GetNotification retrieves a notification by ID
func (ms *MemoryStorage) GetNotification(id string) (*model.Notification, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for i := range ms.notifications {
		if ms.notifications[i].ID == id {
			clone := ms.notifications[i]
			return &clone, nil
		}
	}
	return nil, ErrNotificationNotFound
}

// AddNotification appends a notification to the inbox
func (ms *MemoryStorage) AddNotification(notification *model.Notification) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if notification.ID == "" {
		return ErrInvalidID
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	ms.notifications = append(ms.notifications, *notification)
	return nil
}

// MarkNotificationRead marks one notification as read
func (ms *MemoryStorage) MarkNotificationRead(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := range ms.notifications {
		if ms.notifications[i].ID == id {
			ms.notifications[i].IsRead = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

// MarkAllNotificationsRead marks the whole inbox as read
func (ms *MemoryStorage) MarkAllNotificationsRead() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := range ms.notifications {
		ms.notifications[i].IsRead = true
	}
	return nil
}

// DismissNotification removes one notification
func (ms *MemoryStorage) DismissNotification(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := range ms.notifications {
		if ms.notifications[i].ID == id {
			ms.notifications = append(ms.notifications[:i], ms.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotificationNotFound
}

// ClearNotifications empties the inbox
func (ms *MemoryStorage) ClearNotifications() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.notifications = nil
	return nil
}

// UnreadCount returns the number of unread notifications
func (ms *MemoryStorage) UnreadCount() (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return filter.CountUnread(ms.notifications), nil
}

// routerIndex returns the slice index of a router, or -1. Callers hold the lock.
func (ms *MemoryStorage) routerIndex(id string) int {
	for i := range ms.routers {
		if ms.routers[i].ID == id {
			return i
		}
	}
	return -1
}

// refreshCounters recomputes the cached client counters of one router from
// the client collection. Callers hold the lock.
func (ms *MemoryStorage) refreshCounters(routerID string) {
	i := ms.routerIndex(routerID)
	if i < 0 {
		return
	}

	total, connected := 0, 0
	for _, client := range ms.clients {
		if client.RouterID != routerID {
			continue
		}
		total++
		if client.IsConnected {
			connected++
		}
	}

	ms.routers[i].TotalClients = total
	ms.routers[i].ConnectedClients = connected
	ms.routers[i].DisconnectedClients = total - connected
}
