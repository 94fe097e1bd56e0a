package remotesync

import (
	"context"
	"sync"

	"github.com/mauv0809/matchday/internal/club"
)

// MockRemote is an in-memory Remote for testing.
// It is safe for concurrent use.
type MockRemote struct {
	mu sync.Mutex

	Snapshots map[string]club.Match

	// Spies for method calls
	PushFunc func(m club.Match) error
	PullFunc func(matchID string) (*club.Match, error)

	// Call records
	PushCalls []club.Match
	PullCalls []string
}

// NewMockRemote creates a new mock instance.
func NewMockRemote() *MockRemote {
	return &MockRemote{Snapshots: make(map[string]club.Match)}
}

func (m *MockRemote) Push(ctx context.Context, match club.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushCalls = append(m.PushCalls, match.Clone())
	if m.PushFunc != nil {
		if err := m.PushFunc(match); err != nil {
			return err
		}
	}
	m.Snapshots[match.ID] = match.Clone()
	return nil
}

func (m *MockRemote) Pull(ctx context.Context, matchID string) (*club.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PullCalls = append(m.PullCalls, matchID)
	if m.PullFunc != nil {
		return m.PullFunc(matchID)
	}
	s, ok := m.Snapshots[matchID]
	if !ok {
		return nil, nil
	}
	c := s.Clone()
	return &c, nil
}

// Pushed returns a copy of the recorded Push calls.
func (m *MockRemote) Pushed() []club.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]club.Match(nil), m.PushCalls...)
}

// MockQueue records enqueued tasks instead of syncing them.
type MockQueue struct {
	mu sync.Mutex

	EnqueueFunc func(t Task) error

	Tasks []Task
}

// NewMockQueue creates a new mock instance.
func NewMockQueue() *MockQueue {
	return &MockQueue{}
}

func (q *MockQueue) Enqueue(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.EnqueueFunc != nil {
		if err := q.EnqueueFunc(t); err != nil {
			return err
		}
	}
	q.Tasks = append(q.Tasks, t)
	return nil
}

// Ops returns the operation of every recorded task in order.
func (q *MockQueue) Ops() []Op {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := make([]Op, len(q.Tasks))
	for i, t := range q.Tasks {
		ops[i] = t.Op
	}
	return ops
}
