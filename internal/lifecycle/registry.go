package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/remotesync"
	"golang.org/x/sync/singleflight"
)

// Registry hands out one coordinator per match id, loading matches on first
// use.
type Registry struct {
	deps   Deps
	remote remotesync.Remote

	mu           sync.Mutex
	coordinators map[string]*Coordinator
	observers    []func(club.Match)

	loads singleflight.Group
}

// NewRegistry creates a registry. A nil remote disables reconciliation on load.
func NewRegistry(deps Deps, remote remotesync.Remote) *Registry {
	return &Registry{
		deps:         withDefaults(deps),
		remote:       remote,
		coordinators: make(map[string]*Coordinator),
	}
}

// OnChange registers an observer on every current and future coordinator.
func (r *Registry) OnChange(fn func(club.Match)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
	for _, c := range r.coordinators {
		c.OnChange(fn)
	}
}

// Get returns the coordinator for matchID. On first use the local snapshot
// is loaded and replaced wholesale by the remote copy when one exists.
// Concurrent first uses share one load, and the coordinator is registered
// before the load is released, so a reconciled remote copy is never written
// over a snapshot committed by the coordinator.
func (r *Registry) Get(ctx context.Context, matchID string) (*Coordinator, error) {
	if c := r.cached(matchID); c != nil {
		return found(c)
	}

	v, err, shared := r.loads.Do(matchID, func() (any, error) {
		if c := r.cached(matchID); c != nil {
			return c, nil
		}
		m, err := r.load(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return r.register(*m), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("Shared match load", "matchID", matchID)
	}
	return found(v.(*Coordinator))
}

func found(c *Coordinator) (*Coordinator, error) {
	if c.Deleted() {
		return nil, club.ErrMatchNotFound
	}
	return c, nil
}

func (r *Registry) cached(matchID string) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coordinators[matchID]
}

// Flush waits for the queued reminder changes of every loaded match.
func (r *Registry) Flush() {
	r.mu.Lock()
	coordinators := make([]*Coordinator, 0, len(r.coordinators))
	for _, c := range r.coordinators {
		coordinators = append(coordinators, c)
	}
	r.mu.Unlock()
	for _, c := range coordinators {
		c.Flush()
	}
}

func (r *Registry) register(m club.Match) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.coordinators[m.ID]; ok {
		return c
	}
	c := New(m, r.deps)
	for _, fn := range r.observers {
		c.OnChange(fn)
	}
	r.coordinators[m.ID] = c
	return c
}

func (r *Registry) load(ctx context.Context, matchID string) (*club.Match, error) {
	local, err := r.deps.Store.LoadMatch(matchID)
	if err != nil && !errors.Is(err, club.ErrMatchNotFound) {
		return nil, err
	}

	if r.remote != nil {
		remote, err := r.remote.Pull(ctx, matchID)
		switch {
		case err != nil:
			log.Warn("Failed to pull remote match, using local copy", "error", err, "matchID", matchID)
		case remote != nil:
			if err := r.deps.Store.SaveMatch(*remote); err != nil {
				return nil, fmt.Errorf("failed to store remote copy of match %s: %w", matchID, err)
			}
			log.Info("Reconciled match from remote", "matchID", matchID, "hadLocal", local != nil)
			local = remote
		}
	}

	if local == nil || local.Deleted {
		return nil, club.ErrMatchNotFound
	}
	return local, nil
}

// Create persists a new scheduled match owned by the current actor and
// returns its coordinator. A rejected creation returns a nil coordinator.
func (r *Registry) Create(ctx context.Context, in NewMatch) (*Coordinator, Result, error) {
	actor, err := r.deps.Actors.CurrentActor(ctx)
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to resolve current actor: %w", err)
	}
	if actor == nil {
		return nil, Result{Rejection: noSession()}, nil
	}
	if !access.CanCreateMatch(actor) {
		return nil, Result{Rejection: club.Reject(club.KindAuthorization, "You cannot create matches.")}, nil
	}
	if in.MaxPlayers < 0 {
		return nil, Result{Rejection: club.Reject(club.KindValidation, "Max players cannot be negative.")}, nil
	}
	if in.StartTime.IsZero() {
		return nil, Result{Rejection: club.Reject(club.KindValidation, "A start time is required.")}, nil
	}

	m := club.Match{
		SchemaVersion:   club.CurrentSchemaVersion,
		ID:              r.deps.NewID(),
		HomeTeam:        in.HomeTeam,
		AwayTeam:        in.AwayTeam,
		Participants:    []club.Participant{},
		Events:          []club.MatchEvent{},
		Location:        in.Location,
		StartTime:       in.StartTime,
		Format:          in.Format,
		Notes:           in.Notes,
		MaxPlayers:      in.MaxPlayers,
		RatingAffecting: in.RatingAffecting,
		Status:          club.MatchScheduled,
		OwnerID:         actor.ID,
		OrganiserIDs:    club.NormalizeOrganisers(actor.ID, in.OrganiserIDs),
	}
	if m.MaxPlayers == 0 {
		m.MaxPlayers = club.DefaultMaxPlayers
	}
	if m.HomeTeam.ID == "" {
		m.HomeTeam.ID = r.deps.NewID()
	}
	if m.AwayTeam.ID == "" {
		m.AwayTeam.ID = r.deps.NewID()
	}
	if m.HomeTeam.ID == m.AwayTeam.ID {
		return nil, Result{Rejection: club.Reject(club.KindValidation, "A match needs two different teams.")}, nil
	}

	if err := r.deps.Store.SaveMatch(m); err != nil {
		return nil, Result{}, fmt.Errorf("failed to persist new match: %w", err)
	}
	res := Result{Match: m.Clone()}
	if r.deps.Sync != nil {
		if err := r.deps.Sync.Enqueue(remotesync.Task{Op: remotesync.OpDetails, MatchID: m.ID, Snapshot: m.Clone(), EnqueuedAt: r.deps.Now()}); err != nil {
			log.Warn("Failed to enqueue remote sync", "error", err, "op", "create", "matchID", m.ID)
			res.SyncWarning = &remotesync.SyncWarning{Op: remotesync.OpDetails, MatchID: m.ID, Err: err}
		}
	}
	log.Info("Created match", "matchID", m.ID, "ownerID", actor.ID, "start", m.StartTime)
	return r.register(m), res, nil
}
