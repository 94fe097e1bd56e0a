package lifecycle

import (
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/remotesync"
)

// Store defines the persistence operations required by the coordinator.
type Store interface {
	LoadMatch(matchID string) (*club.Match, error)
	SaveMatch(match club.Match) error
	DeleteMatch(matchID string) error
}

// Syncer accepts committed snapshots for best-effort remote delivery.
type Syncer interface {
	Enqueue(t remotesync.Task) error
}
