package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	rsvpUpdates        int
	promotions         int
	rejected           map[string]int
	syncFailures       int
	remindersScheduled int
	remindersCancelled int
	ratingsApplied     int
	operations         map[string]int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		rejected:   make(map[string]int),
		operations: make(map[string]int),
	}
}

func (m *Mock) IncRSVPUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rsvpUpdates++
}

func (m *Mock) IncPromotions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions++
}

func (m *Mock) IncRejected(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[kind]++
}

func (m *Mock) IncSyncFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncFailures++
}

func (m *Mock) IncRemindersScheduled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remindersScheduled++
}

func (m *Mock) IncRemindersCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remindersCancelled++
}

func (m *Mock) IncRatingsApplied(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingsApplied += n
}

func (m *Mock) ObserveOperationDuration(op string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op]++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// RSVPUpdates returns the number of times IncRSVPUpdates was called.
func (m *Mock) RSVPUpdates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rsvpUpdates
}

// Promotions returns the number of times IncPromotions was called.
func (m *Mock) Promotions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.promotions
}

// Rejected returns how many rejections of the given kind were counted.
func (m *Mock) Rejected(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejected[kind]
}

// SyncFailures returns the number of times IncSyncFailures was called.
func (m *Mock) SyncFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncFailures
}

// RemindersScheduled returns the number of times IncRemindersScheduled was called.
func (m *Mock) RemindersScheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remindersScheduled
}

// RemindersCancelled returns the number of times IncRemindersCancelled was called.
func (m *Mock) RemindersCancelled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remindersCancelled
}

// RatingsApplied returns the sum passed to IncRatingsApplied.
func (m *Mock) RatingsApplied() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingsApplied
}

// Operations returns how many durations were observed for op.
func (m *Mock) Operations(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operations[op]
}
