package filter

import (
	"pppoed/internal/model"
)

// HighMemoryThreshold marks a router as having issues when memory usage
// exceeds it. Unlike CPU and temperature this has no user-configurable
// preference, so it stays a package constant.
const HighMemoryThreshold = 70.0

// GroupByLocation partitions routers into location buckets, preserving
// encounter order both across groups and within each group.
func GroupByLocation(routers []model.Router) []model.RouterGroup {
	index := make(map[string]int)
	groups := make([]model.RouterGroup, 0)

	for _, router := range routers {
		i, ok := index[router.Location]
		if !ok {
			i = len(groups)
			index[router.Location] = i
			groups = append(groups, model.RouterGroup{Location: router.Location})
		}
		groups[i].Routers = append(groups[i].Routers, router)
	}
	return groups
}

// MergeExpanded reconciles the expand/collapse state with a fresh grouping.
// Locations already present keep their toggle; new locations default to
// expanded; locations that disappeared are dropped. Applying it twice with
// the same groups is a no-op.
func MergeExpanded(prev map[string]bool, groups []model.RouterGroup) map[string]bool {
	merged := make(map[string]bool, len(groups))
	for _, group := range groups {
		if expanded, ok := prev[group.Location]; ok {
			merged[group.Location] = expanded
		} else {
			merged[group.Location] = true
		}
	}
	return merged
}

// HasIssues reports whether a router breaches any health threshold.
// CPU and temperature limits come from the notification preferences.
func HasIssues(router *model.Router, prefs model.NotificationPreferences) bool {
	return router.Health.CPUUsage > prefs.RouterHighCPUThreshold ||
		router.Health.MemoryUsage > HighMemoryThreshold ||
		router.Health.Temperature > prefs.RouterHighTempThreshold
}

// Stats aggregates the cached client counters and the issue count across
// the router collection.
func Stats(routers []model.Router, prefs model.NotificationPreferences) model.RouterStats {
	var stats model.RouterStats
	for i := range routers {
		stats.TotalClients += routers[i].TotalClients
		stats.ConnectedClients += routers[i].ConnectedClients
		stats.DisconnectedClients += routers[i].DisconnectedClients
		if HasIssues(&routers[i], prefs) {
			stats.WithIssues++
		}
	}
	return stats
}
