package storage

import (
	"errors"

	"pppoed/internal/model"
)

var (
	ErrClientNotFound       = errors.New("client not found")
	ErrRouterNotFound       = errors.New("router not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidID            = errors.New("invalid ID")
	ErrAlreadyExists        = errors.New("already exists")
)

// ClientStorage manages PPPoE subscriber records.
// CreateClient and UpdateClient enforce that RouterID references an
// existing router; DeleteRouter cascades to the router's clients.
type ClientStorage interface {
	ListClients(filter *model.ClientFilter) ([]model.Client, error)
	GetClient(id string) (*model.Client, error)
	CreateClient(client *model.Client) error
	UpdateClient(client *model.Client) error
	DeleteClient(id string) error
	SetClientConnection(id string, connected bool) error
}

// RouterStorage manages router records and their cached client counters
type RouterStorage interface {
	ListRouters(filter *model.RouterFilter) ([]model.Router, error)
	GetRouter(id string) (*model.Router, error)
	CreateRouter(router *model.Router) error
	UpdateRouter(router *model.Router) error
	DeleteRouter(id string) error

	// ReplaceRouters commits a synced collection in one step, matching
	// rows by ID so routers created after the snapshot survive. The
	// mock sync uses it so readers never observe a half-updated set.
	ReplaceRouters(routers []model.Router) error
}

// NotificationStorage manages the operator inbox
type NotificationStorage interface {
	ListNotifications() ([]model.Notification, error)
	GetNotification(id string) (*model.Notification, error)
	AddNotification(notification *model.Notification) error
	MarkNotificationRead(id string) error
	MarkAllNotificationsRead() error
	DismissNotification(id string) error
	ClearNotifications() error
	UnreadCount() (int, error)
}

// Storage is the full backend contract
type Storage interface {
	ClientStorage
	RouterStorage
	NotificationStorage
}
