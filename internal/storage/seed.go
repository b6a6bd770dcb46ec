package storage

import (
	"time"

	"pppoed/internal/model"
)

// Seed loads the demo dataset. Router client counters come from the
// routers themselves and may include subscribers not tracked here, so
// the rows are loaded verbatim instead of going through the create path.
func (ms *MemoryStorage) Seed() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.clients = SeedClients()
	ms.routers = SeedRouters()
	ms.notifications = SeedNotifications()
}

// SeedClients returns the demo client dataset
func SeedClients() []model.Client {
	return []model.Client{
		{
			ID: "1", RouterID: "router-01",
			Username: "Bayot", Password: "secret123", Name: "Bayot",
			Location: "Phase 1 (hex)- Room 101", Plan: "Premium 50Mbps",
			PaymentDate:    date(2025, time.May, 15),
			ExpirationDate: date(2025, time.July, 15),
			IsConnected:    true, Notes: "Regular customer",
		},
		{
			ID: "2", RouterID: "router-01",
			Username: "Shukla", Password: "pass456", Name: "Shukla",
			Location: "Phase 2 (CCR)- Room 205", Plan: "Basic 25Mbps",
			PaymentDate:    date(2025, time.June, 1),
			ExpirationDate: date(2025, time.June, 25),
			IsConnected:    true, Notes: "New customer",
		},
		{
			ID: "3", RouterID: "router-02",
			Username: "mike_johnson", Password: "mike789", Name: "Mike Johnson",
			Location: "Room 310", Plan: "Premium 50Mbps",
			PaymentDate:    date(2025, time.May, 20),
			ExpirationDate: date(2025, time.June, 20),
			IsConnected:    false, Notes: "Often pays late",
		},
		{
			ID: "4", RouterID: "router-02",
			Username: "sarah_lee", Password: "sarah321", Name: "Sarah Lee",
			Location: "Room 422", Plan: "Premium Plus 100Mbps",
			PaymentDate:    date(2025, time.May, 30),
			ExpirationDate: date(2025, time.June, 30),
			IsConnected:    true,
		},
		{
			ID: "5", RouterID: "router-03",
			Username: "david_wilson", Password: "david555", Name: "David Wilson",
			Location: "Room 115", Plan: "Basic 25Mbps",
			PaymentDate:    date(2025, time.June, 5),
			ExpirationDate: date(2025, time.June, 23),
			IsConnected:    true, Notes: "Student package",
		},
		{
			ID: "6", RouterID: "router-03",
			Username: "emma_brown", Password: "emma777", Name: "Emma Brown",
			Location: "Room 250", Plan: "Premium 50Mbps",
			PaymentDate:    date(2025, time.May, 25),
			ExpirationDate: date(2025, time.July, 25),
			IsConnected:    false, Notes: "Business customer",
		},
		{
			ID: "7", RouterID: "router-01",
			Username: "alex_martin", Password: "alex999", Name: "Alex Martin",
			Location: "Room 301", Plan: "Basic 25Mbps",
			PaymentDate:    date(2025, time.June, 10),
			ExpirationDate: date(2025, time.August, 10),
			IsConnected:    true,
		},
		{
			ID: "8", RouterID: "router-04",
			Username: "lisa_taylor", Password: "lisa333", Name: "Lisa Taylor",
			Location: "Room 190", Plan: "Premium Plus 100Mbps",
			PaymentDate:    date(2025, time.May, 28),
			ExpirationDate: date(2025, time.June, 22),
			IsConnected:    true, Notes: "Needs technical support frequently",
		},
	}
}

// SeedRouters returns the demo router dataset
func SeedRouters() []model.Router {
	now := time.Now()
	return []model.Router{
		{
			ID: "router-01", Name: "Phase 1 (Hex)",
			IPAddress: "192.168.1.1", Username: "admin", Password: "admin123", Port: 8728,
			ConnectedClients: 15, DisconnectedClients: 3, TotalClients: 18,
			Location: "HEX Building", Model: "Mikrotik hEX S (RB760iGS)",
			Health: model.Health{
				CPUUsage: 35, MemoryUsage: 42, Uptime: "45d 12h 33m",
				Temperature: 48, LastSeen: now,
			},
		},
		{
			ID: "router-02", Name: "Phase 2 (CCR)",
			IPAddress: "192.168.2.1", Username: "admin", Password: "secure456", Port: 8728,
			ConnectedClients: 28, DisconnectedClients: 4, TotalClients: 32,
			Location: "CCR Building", Model: "Mikrotik CCR1009-7G-1C-PC",
			Health: model.Health{
				CPUUsage: 62, MemoryUsage: 58, Uptime: "15d 7h 22m",
				Temperature: 55, LastSeen: now,
			},
		},
		{
			ID: "router-03", Name: "Phase 3 (Rb4011)",
			IPAddress: "192.168.3.1", Username: "admin", Password: "password789", Port: 8728,
			ConnectedClients: 20, DisconnectedClients: 2, TotalClients: 22,
			Location: "Main Building", Model: "Mikrotik RB4011iGS+5HacQ2HnD",
			Health: model.Health{
				CPUUsage: 28, MemoryUsage: 32, Uptime: "30d 5h 47m",
				Temperature: 42, LastSeen: now,
			},
		},
		{
			ID: "router-04", Name: "Phase 4 (Rb4011)",
			IPAddress: "192.168.4.1", Username: "admin", Password: "adminpass", Port: 8728,
			ConnectedClients: 12, DisconnectedClients: 6, TotalClients: 18,
			Location: "Main Building", Model: "Mikrotik RB4011iGS+5HacQ2HnD",
			Health: model.Health{
				CPUUsage: 45, MemoryUsage: 38, Uptime: "25d 9h 12m",
				Temperature: 44, LastSeen: now,
			},
		},
		{
			ID: "router-05", Name: "VIP Section",
			IPAddress: "192.168.5.1", Username: "admin", Password: "vipsecure", Port: 8728,
			ConnectedClients: 5, DisconnectedClients: 0, TotalClients: 5,
			Location: "VIP Building", Model: "Mikrotik RB5009UG+S+IN",
			Health: model.Health{
				CPUUsage: 15, MemoryUsage: 22, Uptime: "60d 2h 15m",
				Temperature: 38, LastSeen: now,
			},
		},
		{
			ID: "router-06", Name: "Staff Housing",
			IPAddress: "192.168.6.1", Username: "admin", Password: "staffpass", Port: 8728,
			ConnectedClients: 7, DisconnectedClients: 1, TotalClients: 8,
			Location: "Staff Building", Model: "Mikrotik hAP ac2",
			Health: model.Health{
				CPUUsage: 72, MemoryUsage: 68, Uptime: "5d 3h 45m",
				Temperature: 62, LastSeen: now,
			},
		},
	}
}

// SeedNotifications returns the demo notification inbox
func SeedNotifications() []model.Notification {
	now := time.Now()
	return []model.Notification{
		{
			ID: "1", Type: model.NotifyExpiration,
			Title:   "Subscription Expiring",
			Message: `Client "Bayot" subscription will expire in 3 days.`,
			IsRead:  false, CreatedAt: now.Add(-2 * time.Hour),
			RelatedClientID: "1", ActionLabel: "Notify Client",
		},
		{
			ID: "2", Type: model.NotifyPayment,
			Title:   "Payment Due",
			Message: `Payment for client "Shukla" is due tomorrow.`,
			IsRead:  false, CreatedAt: now.Add(-5 * time.Hour),
			RelatedClientID: "2", ActionLabel: "Send Reminder",
		},
		{
			ID: "3", Type: model.NotifyRouter,
			Title:   "Router CPU Alert",
			Message: "Phase 2 (CCR) router has high CPU usage (85%).",
			IsRead:  false, CreatedAt: now.Add(-12 * time.Hour),
			RelatedRouterID: "router-02", ActionLabel: "View Router",
		},
		{
			ID: "4", Type: model.NotifyConnection,
			Title:   "Connection Lost",
			Message: `Client "Michael Chen" has been disconnected.`,
			IsRead:  true, CreatedAt: now.Add(-24 * time.Hour),
			RelatedClientID: "5", ActionLabel: "Check Status",
		},
		{
			ID: "5", Type: model.NotifyRouter,
			Title:   "Router Temperature Warning",
			Message: "Staff Housing router temperature is above 60°C.",
			IsRead:  true, CreatedAt: now.Add(-36 * time.Hour),
			RelatedRouterID: "router-06",
		},
		{
			ID: "6", Type: model.NotifyExpiration,
			Title:   "Multiple Subscriptions Expiring",
			Message: "3 client subscriptions will expire this week.",
			IsRead:  true, CreatedAt: now.Add(-48 * time.Hour),
			ActionLabel: "View Clients",
		},
		{
			ID: "7", Type: model.NotifySystem,
			Title:   "System Update",
			Message: "PPPoE Management system has been updated to version 1.2.0.",
			IsRead:  true, CreatedAt: now.Add(-72 * time.Hour),
		},
		{
			ID: "8", Type: model.NotifySystem,
			Title:   "New Client Added",
			Message: `Client "Sarah Johnson" was successfully added to Phase 3.`,
			IsRead:  true, CreatedAt: now.Add(-96 * time.Hour),
			RelatedClientID: "12",
		},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
