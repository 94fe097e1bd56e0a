package notifier

import (
	"context"
	"sync"
	"time"
)

// Mock is a mock implementation of the Scheduler interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	ScheduleFunc func(matchID, userID, title string, start time.Time) error
	CancelFunc   func(matchID, userID string) error

	// Call records
	ScheduleCalls []ScheduleCall
	CancelCalls   []CancelCall
}

// ScheduleCall holds the arguments for a call to Schedule.
type ScheduleCall struct {
	MatchID string
	UserID  string
	Title   string
	Start   time.Time
}

// CancelCall holds the arguments for a call to Cancel.
type CancelCall struct {
	MatchID string
	UserID  string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScheduleCalls = nil
	m.CancelCalls = nil
}

func (m *Mock) Schedule(ctx context.Context, matchID, userID, title string, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScheduleCalls = append(m.ScheduleCalls, ScheduleCall{MatchID: matchID, UserID: userID, Title: title, Start: start})
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(matchID, userID, title, start)
	}
	return nil
}

func (m *Mock) Cancel(ctx context.Context, matchID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls = append(m.CancelCalls, CancelCall{MatchID: matchID, UserID: userID})
	if m.CancelFunc != nil {
		return m.CancelFunc(matchID, userID)
	}
	return nil
}

// Scheduled returns a copy of the recorded Schedule calls.
func (m *Mock) Scheduled() []ScheduleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ScheduleCall(nil), m.ScheduleCalls...)
}

// Cancelled returns a copy of the recorded Cancel calls.
func (m *Mock) Cancelled() []CancelCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CancelCall(nil), m.CancelCalls...)
}
