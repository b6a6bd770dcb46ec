package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"pppoed/internal/filter"
	"pppoed/internal/log"
	"pppoed/internal/model"
	"pppoed/internal/storage"
)

// PreferencesSource supplies the current notification preferences
type PreferencesSource func() model.NotificationPreferences

// Engine scans clients and routers and raises notifications according
// to the configured preferences
type Engine struct {
	store storage.Storage
	prefs PreferencesSource
	now   func() time.Time
}

// NewEngine creates a sweep engine. A nil prefs source uses the defaults.
func NewEngine(store storage.Storage, prefs PreferencesSource) *Engine {
	if prefs == nil {
		prefs = func() model.NotificationPreferences {
			return model.DefaultNotificationPreferences()
		}
	}
	return &Engine{
		store: store,
		prefs: prefs,
		now:   time.Now,
	}
}

// Sweep examines all clients and routers and adds a notification for
// every condition the preferences enable. An entity raises at most one
// notification per condition per sweep, and conditions already covered
// by an unread notification are skipped.
func (e *Engine) Sweep() (int, error) {
	prefs := e.prefs()
	if !prefs.Enabled {
		return 0, nil
	}

	existing, err := e.store.ListNotifications()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool)
	for _, n := range existing {
		if !n.IsRead {
			seen[dedupeKey(n.Type, n.RelatedClientID+n.RelatedRouterID)] = true
		}
	}

	now := e.now()
	var pending []model.Notification

	if prefs.ExpirationEnabled || prefs.PaymentEnabled {
		clients, err := e.store.ListClients(nil)
		if err != nil {
			return 0, err
		}
		pending = append(pending, e.sweepClients(clients, prefs, now, seen)...)
	}

	if prefs.RouterEnabled {
		routers, err := e.store.ListRouters(nil)
		if err != nil {
			return 0, err
		}
		pending = append(pending, e.sweepRouters(routers, prefs, now, seen)...)
	}

	for i := range pending {
		if err := e.store.AddNotification(&pending[i]); err != nil {
			return 0, err
		}
	}

	if len(pending) > 0 {
		log.Info("notification sweep raised alerts", "count", len(pending))
	}
	return len(pending), nil
}

func (e *Engine) sweepClients(clients []model.Client, prefs model.NotificationPreferences, now time.Time, seen map[string]bool) []model.Notification {
	var out []model.Notification

	if prefs.ExpirationEnabled {
		for _, client := range filter.ExpiringClients(clients, prefs.ExpirationDays, now) {
			key := dedupeKey(model.NotifyExpiration, client.ID)
			if seen[key] {
				continue
			}
			seen[key] = true

			days := int(client.ExpirationDate.Sub(now).Hours() / 24)
			out = append(out, model.Notification{
				ID:    generateID(),
				Type:  model.NotifyExpiration,
				Title: "Subscription Expiring",
				Message: fmt.Sprintf("Client %q subscription will expire in %d days.",
					client.Name, days),
				CreatedAt:       now,
				RelatedClientID: client.ID,
				ActionLabel:     "Notify Client",
			})
		}
	}

	if prefs.PaymentEnabled {
		horizon := now.AddDate(0, 0, prefs.PaymentDays)
		for _, client := range clients {
			if client.PaymentDate.Before(now) || client.PaymentDate.After(horizon) {
				continue
			}
			key := dedupeKey(model.NotifyPayment, client.ID)
			if seen[key] {
				continue
			}
			seen[key] = true

			out = append(out, model.Notification{
				ID:              generateID(),
				Type:            model.NotifyPayment,
				Title:           "Payment Due",
				Message:         fmt.Sprintf("Payment for client %q is due soon.", client.Name),
				CreatedAt:       now,
				RelatedClientID: client.ID,
				ActionLabel:     "Send Reminder",
			})
		}
	}

	return out
}

func (e *Engine) sweepRouters(routers []model.Router, prefs model.NotificationPreferences, now time.Time, seen map[string]bool) []model.Notification {
	var out []model.Notification

	for _, router := range routers {
		var message string
		switch {
		case router.Health.CPUUsage > prefs.RouterHighCPUThreshold:
			message = fmt.Sprintf("%s router has high CPU usage (%.0f%%).",
				router.Name, router.Health.CPUUsage)
		case router.Health.Temperature > prefs.RouterHighTempThreshold:
			message = fmt.Sprintf("%s router temperature is above %.0f°C.",
				router.Name, prefs.RouterHighTempThreshold)
		default:
			continue
		}

		key := dedupeKey(model.NotifyRouter, router.ID)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, model.Notification{
			ID:              generateID(),
			Type:            model.NotifyRouter,
			Title:           "Router Alert",
			Message:         message,
			CreatedAt:       now,
			RelatedRouterID: router.ID,
			ActionLabel:     "View Router",
		})
	}

	return out
}

func dedupeKey(t model.NotificationType, entityID string) string {
	return string(t) + ":" + entityID
}

// generateID generates a UUIDv7 for a notification
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
