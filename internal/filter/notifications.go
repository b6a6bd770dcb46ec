package filter

import (
	"sort"

	"pppoed/internal/model"
)

// NotificationsByType returns the notifications of one type, preserving order
func NotificationsByType(notifications []model.Notification, t model.NotificationType) []model.Notification {
	result := make([]model.Notification, 0)
	for _, n := range notifications {
		if n.Type == t {
			result = append(result, n)
		}
	}
	return result
}

// SortNotifications returns a copy sorted by creation time, newest first
func SortNotifications(notifications []model.Notification) []model.Notification {
	sorted := make([]model.Notification, len(notifications))
	copy(sorted, notifications)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// CountUnread returns the number of unread notifications
func CountUnread(notifications []model.Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}
