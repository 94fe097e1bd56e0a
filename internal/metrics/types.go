package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	RSVPUpdates        prometheus.Counter
	Promotions         prometheus.Counter
	Rejected           *prometheus.CounterVec
	SyncFailures       prometheus.Counter
	RemindersScheduled prometheus.Counter
	RemindersCancelled prometheus.Counter
	RatingsApplied     prometheus.Counter
	OperationDuration  *prometheus.HistogramVec
	StartupTimeSeconds prometheus.Gauge
}
