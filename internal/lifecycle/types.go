package lifecycle

import (
	"sync"
	"time"

	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/notifier"
	"github.com/mauv0809/matchday/internal/remotesync"
)

// Deps are the collaborators shared by every coordinator.
type Deps struct {
	Store     Store
	Sync      Syncer
	Reminders notifier.Scheduler
	Actors    access.ActorResolver
	Metrics   metrics.Metrics
	Now       func() time.Time
	NewID     func() string
}

// Coordinator owns one match. All mutations on the match are serialised by
// the coordinator; different coordinators run independently.
type Coordinator struct {
	deps Deps

	mu    sync.Mutex
	match club.Match

	obsMu     sync.RWMutex
	observers []func(club.Match)

	// Reminder changes are drained in commit order outside mu.
	remMu      sync.Mutex
	remIdle    *sync.Cond
	remPending []reminderBatch
	remRunning bool
}

// Result is the outcome of a coordinator operation. A rejected operation
// carries a Rejection and the unchanged snapshot.
type Result struct {
	Match         club.Match              `json:"match"`
	Status        club.RSVPStatus         `json:"status,omitempty"`
	Message       string                  `json:"message,omitempty"`
	Promoted      []string                `json:"promoted,omitempty"`
	ParticipantID string                  `json:"participant_id,omitempty"`
	Rejection     *club.Rejection         `json:"rejection,omitempty"`
	SyncWarning   *remotesync.SyncWarning `json:"sync_warning,omitempty"`
}

// OK reports whether the operation was applied.
func (r Result) OK() bool {
	return r.Rejection == nil
}

// EventInput is a new entry for the match event log.
type EventInput struct {
	Type     club.EventType `json:"type"`
	Minute   int            `json:"minute"`
	PlayerID string         `json:"player_id"`
}

// DetailsUpdate changes descriptive match fields. Nil fields are left as they are.
type DetailsUpdate struct {
	Location        *string `json:"location,omitempty"`
	Format          *string `json:"format,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	MaxPlayers      *int    `json:"max_players,omitempty"`
	RatingAffecting *bool   `json:"rating_affecting,omitempty"`
}

// Scoreline is the current score of a match. Final is set when the scores
// were entered on completion rather than counted from goal events.
type Scoreline struct {
	Home  int  `json:"home"`
	Away  int  `json:"away"`
	Final bool `json:"final"`
}

// NewMatch describes a match to create.
type NewMatch struct {
	HomeTeam        club.Team `json:"home_team"`
	AwayTeam        club.Team `json:"away_team"`
	Location        string    `json:"location"`
	StartTime       time.Time `json:"start_time"`
	Format          string    `json:"format"`
	Notes           string    `json:"notes"`
	MaxPlayers      int       `json:"max_players"`
	RatingAffecting bool      `json:"rating_affecting"`
	OrganiserIDs    []string  `json:"organiser_ids"`
}
