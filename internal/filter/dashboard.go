package filter

import (
	"time"

	"pppoed/internal/model"
)

// Summary is the dashboard headline block
type Summary struct {
	TotalRouters     int `json:"total_routers"`
	TotalClients     int `json:"total_clients"`
	ConnectedClients int `json:"connected_clients"`
	ExpiringSoon     int `json:"expiring_soon"`
}

// ChartSlice is one labelled value of a dashboard chart
type ChartSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Dashboard bundles the summary with the chart partitions
type Dashboard struct {
	Summary       Summary      `json:"summary"`
	ClientStatus  []ChartSlice `json:"client_status"`
	PaymentStatus []ChartSlice `json:"payment_status"`
}

// BuildDashboard derives the dashboard from current store state. The
// expiring-soon window comes from the notification preferences; zero now
// means time.Now().
func BuildDashboard(routers []model.Router, clients []model.Client, prefs model.NotificationPreferences, now time.Time) Dashboard {
	if now.IsZero() {
		now = time.Now()
	}

	connected := 0
	for _, c := range clients {
		if c.IsConnected {
			connected++
		}
	}

	dueSoon := 0
	dueHorizon := now.AddDate(0, 0, prefs.PaymentDays)
	for _, c := range clients {
		if !c.PaymentDate.Before(now) && !c.PaymentDate.After(dueHorizon) {
			dueSoon++
		}
	}

	return Dashboard{
		Summary: Summary{
			TotalRouters:     len(routers),
			TotalClients:     len(clients),
			ConnectedClients: connected,
			ExpiringSoon:     len(ExpiringClients(clients, prefs.ExpirationDays, now)),
		},
		ClientStatus: []ChartSlice{
			{Label: "Connected", Value: connected},
			{Label: "Disconnected", Value: len(clients) - connected},
		},
		PaymentStatus: []ChartSlice{
			{Label: "Due Soon", Value: dueSoon},
			{Label: "Current", Value: len(clients) - dueSoon},
		},
	}
}
