package model

import (
	"time"
)

// Client represents a PPPoE subscriber account on one of the managed routers
type Client struct {
	ID             string    `json:"id"`
	RouterID       string    `json:"router_id"`
	Username       string    `json:"username"`
	Password       string    `json:"password,omitempty"` // PPPoE secret
	Name           string    `json:"name"`
	Location       string    `json:"location"` // room number or building area
	Plan           string    `json:"plan"`
	PaymentDate    time.Time `json:"payment_date"`
	ExpirationDate time.Time `json:"expiration_date"`
	IsConnected    bool      `json:"is_connected"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConnectionStatus filters clients by their PPPoE session state
type ConnectionStatus string

const (
	StatusAll          ConnectionStatus = "all"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// ExpirationFilter selects clients by subscription expiry
type ExpirationFilter string

const (
	ExpirationAll ExpirationFilter = "all"
	ExpiringSoon  ExpirationFilter = "expiring-soon"
	Expired       ExpirationFilter = "expired"
)

// ClientFilter holds filter criteria for listing clients.
// All active dimensions must match (AND); the search term matches
// name, ID, or username (OR within the dimension).
type ClientFilter struct {
	SearchTerm string
	RouterID   string // "" or "all" disables the dimension
	Status     ConnectionStatus
	Expiration ExpirationFilter

	// Window is the expiring-soon horizon in days. Zero selects the
	// default; callers normally thread NotificationPreferences.ExpirationDays.
	Window int

	// Now anchors the expiration predicates. Zero means time.Now().
	Now time.Time
}
