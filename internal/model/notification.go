package model

import (
	"time"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotifyExpiration NotificationType = "expiration"
	NotifyPayment    NotificationType = "payment"
	NotifyRouter     NotificationType = "router"
	NotifySystem     NotificationType = "system"
	NotifyConnection NotificationType = "connection"
)

// Notification is a single inbox entry for the operator
type Notification struct {
	ID              string           `json:"id"`
	Type            NotificationType `json:"type"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	IsRead          bool             `json:"is_read"`
	CreatedAt       time.Time        `json:"created_at"`
	RelatedClientID string           `json:"related_client_id,omitempty"`
	RelatedRouterID string           `json:"related_router_id,omitempty"`
	ActionLabel     string           `json:"action_label,omitempty"`
}

// NotificationPreferences is the per-session notification configuration.
// The threshold fields are the single source of truth for the derivation
// layer: the filter window, the dashboard expiring-soon count, and the
// router issue detection all read from here.
type NotificationPreferences struct {
	Enabled                 bool    `json:"enabled"`
	ExpirationEnabled       bool    `json:"expiration_enabled"`
	ExpirationDays          int     `json:"expiration_days"`
	PaymentEnabled          bool    `json:"payment_enabled"`
	PaymentDays             int     `json:"payment_days"`
	RouterEnabled           bool    `json:"router_enabled"`
	RouterHighCPUThreshold  float64 `json:"router_high_cpu_threshold"`  // percent
	RouterHighTempThreshold float64 `json:"router_high_temp_threshold"` // celsius
	SystemEnabled           bool    `json:"system_enabled"`
	ConnectionEnabled       bool    `json:"connection_enabled"`
}

// DefaultNotificationPreferences returns the out-of-the-box configuration
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Enabled:                 true,
		ExpirationEnabled:       true,
		ExpirationDays:          7,
		PaymentEnabled:          true,
		PaymentDays:             3,
		RouterEnabled:           true,
		RouterHighCPUThreshold:  80,
		RouterHighTempThreshold: 60,
		SystemEnabled:           true,
		ConnectionEnabled:       true,
	}
}
