package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRSVPUpdates()
	IncPromotions()
	IncRejected(kind string)
	IncSyncFailures()
	IncRemindersScheduled()
	IncRemindersCancelled()
	IncRatingsApplied(n int)
	ObserveOperationDuration(op string, duration float64)
	SetStartupTime(duration float64)
}
