package filter

import (
	"testing"
	"time"

	"pppoed/internal/model"
)

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	prefs := model.DefaultNotificationPreferences() // 7 day expiration, 3 day payment

	clients := []model.Client{
		{ID: "1", IsConnected: true, ExpirationDate: now.AddDate(0, 0, 3), PaymentDate: now.AddDate(0, 0, 1)},
		{ID: "2", IsConnected: true, ExpirationDate: now.AddDate(0, 0, 30), PaymentDate: now.AddDate(0, 0, 10)},
		{ID: "3", IsConnected: false, ExpirationDate: now.AddDate(0, 0, -2), PaymentDate: now.AddDate(0, 0, -1)},
	}
	routers := []model.Router{{ID: "router-01"}, {ID: "router-02"}}

	d := BuildDashboard(routers, clients, prefs, now)

	if d.Summary.TotalRouters != 2 {
		t.Errorf("expected 2 routers, got %d", d.Summary.TotalRouters)
	}
	if d.Summary.TotalClients != 3 {
		t.Errorf("expected 3 clients, got %d", d.Summary.TotalClients)
	}
	if d.Summary.ConnectedClients != 2 {
		t.Errorf("expected 2 connected, got %d", d.Summary.ConnectedClients)
	}
	// Only client 1 expires within 7 days; client 3 is already expired
	if d.Summary.ExpiringSoon != 1 {
		t.Errorf("expected 1 expiring soon, got %d", d.Summary.ExpiringSoon)
	}
}

func TestBuildDashboard_ChartsSumToTotals(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	prefs := model.DefaultNotificationPreferences()

	clients := []model.Client{
		{ID: "1", IsConnected: true, PaymentDate: now.AddDate(0, 0, 2)},
		{ID: "2", IsConnected: false, PaymentDate: now.AddDate(0, 0, 20)},
		{ID: "3", IsConnected: false, PaymentDate: now.AddDate(0, 0, -5)},
	}

	d := BuildDashboard(nil, clients, prefs, now)

	statusTotal := 0
	for _, slice := range d.ClientStatus {
		statusTotal += slice.Value
	}
	if statusTotal != len(clients) {
		t.Errorf("client status chart sums to %d, want %d", statusTotal, len(clients))
	}

	paymentTotal := 0
	for _, slice := range d.PaymentStatus {
		paymentTotal += slice.Value
	}
	if paymentTotal != len(clients) {
		t.Errorf("payment chart sums to %d, want %d", paymentTotal, len(clients))
	}

	if d.PaymentStatus[0].Label != "Due Soon" || d.PaymentStatus[0].Value != 1 {
		t.Errorf("expected 1 payment due soon, got %+v", d.PaymentStatus[0])
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard(nil, nil, model.DefaultNotificationPreferences(), time.Time{})

	if d.Summary.TotalClients != 0 || d.Summary.TotalRouters != 0 {
		t.Errorf("expected empty summary, got %+v", d.Summary)
	}
	if len(d.ClientStatus) != 2 || len(d.PaymentStatus) != 2 {
		t.Error("charts should always carry both slices")
	}
}
