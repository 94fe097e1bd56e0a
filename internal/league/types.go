package league

import (
	"sync"

	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
)

// Manager runs tournament operations. Operations on one tournament are
// serialised; different tournaments proceed independently.
type Manager struct {
	store   Store
	actors  access.ActorResolver
	metrics metrics.Metrics
	newID   func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Result is the outcome of a tournament operation. A rejected operation
// carries a Rejection and the unchanged tournament.
type Result struct {
	Tournament club.Tournament `json:"tournament"`
	TeamID     string          `json:"team_id,omitempty"`
	FixtureID  string          `json:"fixture_id,omitempty"`
	Rejection  *club.Rejection `json:"rejection,omitempty"`
}

// OK reports whether the operation was applied.
func (r Result) OK() bool {
	return r.Rejection == nil
}

// Option configures a Manager.
type Option func(*Manager)

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}
