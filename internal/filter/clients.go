// Package filter holds the pure derivation layer: client filtering,
// router grouping, aggregate statistics, and dashboard summaries.
// Nothing in this package mutates state.
package filter

import (
	"strings"
	"time"

	"pppoed/internal/model"
)

// DefaultExpiringSoonDays is the expiring-soon horizon used when a filter
// does not thread the configured NotificationPreferences.ExpirationDays.
const DefaultExpiringSoonDays = 7

// Clients returns the subset of clients satisfying every active dimension
// of the filter. The input order is preserved. A nil filter returns the
// input unchanged.
func Clients(clients []model.Client, filter *model.ClientFilter) []model.Client {
	if filter == nil {
		return clients
	}

	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := filter.Window
	if window <= 0 {
		window = DefaultExpiringSoonDays
	}
	horizon := now.AddDate(0, 0, window)
	term := strings.ToLower(strings.TrimSpace(filter.SearchTerm))

	result := make([]model.Client, 0, len(clients))
	for _, client := range clients {
		if !matchesSearch(&client, term) {
			continue
		}
		if !matchesRouter(&client, filter.RouterID) {
			continue
		}
		if !matchesStatus(&client, filter.Status) {
			continue
		}
		if !matchesExpiration(&client, filter.Expiration, now, horizon) {
			continue
		}
		result = append(result, client)
	}
	return result
}

// ExpiringClients returns clients whose subscription expires within the
// given number of days, not counting already expired ones.
func ExpiringClients(clients []model.Client, days int, now time.Time) []model.Client {
	if now.IsZero() {
		now = time.Now()
	}
	return Clients(clients, &model.ClientFilter{
		Expiration: model.ExpiringSoon,
		Window:     days,
		Now:        now,
	})
}

// matchesSearch checks the search term against name, ID, and username
func matchesSearch(client *model.Client, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(client.Name), term) ||
		strings.Contains(strings.ToLower(client.ID), term) ||
		strings.Contains(strings.ToLower(client.Username), term)
}

func matchesRouter(client *model.Client, routerID string) bool {
	if routerID == "" || routerID == "all" {
		return true
	}
	return client.RouterID == routerID
}

func matchesStatus(client *model.Client, status model.ConnectionStatus) bool {
	switch status {
	case model.StatusConnected:
		return client.IsConnected
	case model.StatusDisconnected:
		return !client.IsConnected
	default:
		return true
	}
}

func matchesExpiration(client *model.Client, f model.ExpirationFilter, now, horizon time.Time) bool {
	switch f {
	case model.Expired:
		return client.ExpirationDate.Before(now)
	case model.ExpiringSoon:
		return !client.ExpirationDate.Before(now) && !client.ExpirationDate.After(horizon)
	default:
		return true
	}
}
