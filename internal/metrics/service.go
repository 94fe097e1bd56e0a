package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RSVPUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_rsvp_updates_total",
			Help: "The total number of applied RSVP updates.",
		}),
		Promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_waitlist_promotions_total",
			Help: "The total number of waitlisted participants promoted to going.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_rejected_mutations_total",
			Help: "The total number of mutations rejected by a business rule.",
		}, []string{"kind"}),
		SyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_sync_failures_total",
			Help: "The total number of remote sync tasks that failed.",
		}),
		RemindersScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_reminders_scheduled_total",
			Help: "The total number of match reminders scheduled.",
		}),
		RemindersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_reminders_cancelled_total",
			Help: "The total number of match reminders cancelled.",
		}),
		RatingsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_ratings_applied_total",
			Help: "The total number of player ratings updated from match results.",
		}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchday_operation_duration_seconds",
			Help:    "The duration of match coordinator operations.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchday_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RSVPUpdates,
		s.Promotions,
		s.Rejected,
		s.SyncFailures,
		s.RemindersScheduled,
		s.RemindersCancelled,
		s.RatingsApplied,
		s.OperationDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRSVPUpdates() {
	s.RSVPUpdates.Inc()
}

func (s *Service) IncPromotions() {
	s.Promotions.Inc()
}

func (s *Service) IncRejected(kind string) {
	s.Rejected.WithLabelValues(kind).Inc()
}

func (s *Service) IncSyncFailures() {
	s.SyncFailures.Inc()
}

func (s *Service) IncRemindersScheduled() {
	s.RemindersScheduled.Inc()
}

func (s *Service) IncRemindersCancelled() {
	s.RemindersCancelled.Inc()
}

func (s *Service) IncRatingsApplied(n int) {
	s.RatingsApplied.Add(float64(n))
}

func (s *Service) ObserveOperationDuration(op string, duration float64) {
	s.OperationDuration.WithLabelValues(op).Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
