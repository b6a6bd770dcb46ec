package model

import (
	"time"
)

// Router represents a managed PPPoE concentrator
type Router struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	Port      int    `json:"port"`
	Location  string `json:"location"` // building area, used for grouping
	Model     string `json:"model,omitempty"`

	// Client counters are a cached projection of the client collection.
	// They are recomputed on client mutations and walked by the mock sync.
	ConnectedClients    int `json:"connected_clients"`
	DisconnectedClients int `json:"disconnected_clients"`
	TotalClients        int `json:"total_clients"`

	Health    Health    `json:"health"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Health is a point-in-time snapshot of router vitals
type Health struct {
	CPUUsage    float64   `json:"cpu_usage"`    // percent
	MemoryUsage float64   `json:"memory_usage"` // percent
	Temperature float64   `json:"temperature"`  // celsius
	Uptime      string    `json:"uptime"`       // e.g. "45d 12h 33m"
	LastSeen    time.Time `json:"last_seen"`
}

// RouterFilter holds filter criteria for listing routers
type RouterFilter struct {
	Location string // exact match, "" disables
}

// RouterGroup is one location bucket produced by grouping
type RouterGroup struct {
	Location string   `json:"location"`
	Routers  []Router `json:"routers"`
}

// RouterStats aggregates counters across the router collection
type RouterStats struct {
	TotalClients        int `json:"total_clients"`
	ConnectedClients    int `json:"connected_clients"`
	DisconnectedClients int `json:"disconnected_clients"`
	WithIssues          int `json:"with_issues"`
}
