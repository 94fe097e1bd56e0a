package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/notifier"
	"github.com/mauv0809/matchday/internal/remotesync"
)

// New creates a coordinator for an already persisted match.
func New(match club.Match, deps Deps) *Coordinator {
	c := &Coordinator{
		deps:  withDefaults(deps),
		match: match.Clone(),
	}
	c.remIdle = sync.NewCond(&c.remMu)
	return c
}

func withDefaults(deps Deps) Deps {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Reminders == nil {
		deps.Reminders = notifier.Noop{}
	}
	if deps.Actors == nil {
		deps.Actors = access.ContextResolver{}
	}
	return deps
}

// ID returns the id of the coordinated match.
func (c *Coordinator) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.match.ID
}

// OnChange registers an observer called with the new snapshot after every
// committed mutation.
func (c *Coordinator) OnChange(fn func(club.Match)) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, fn)
}

// tx is the working state of one mutation.
type tx struct {
	match     *club.Match
	actor     *access.Actor
	now       time.Time
	result    *Result
	reminders []reminder
}

func (t *tx) arm(userID string) {
	t.reminders = append(t.reminders, reminder{userID: userID, arm: true})
}
func (t *tx) disarm(userID string) { t.reminders = append(t.reminders, reminder{userID: userID}) }

// mutate runs fn against a working copy of the match. A rejection leaves the
// match untouched. Otherwise the copy is saved, becomes the current
// snapshot, and is enqueued for remote sync; reminder changes are then
// queued and observers notified. A deleted working copy is removed from the
// store instead of saved.
func (c *Coordinator) mutate(ctx context.Context, op string, syncOp remotesync.Op, fn func(t *tx) *club.Rejection) (Result, error) {
	start := time.Now()
	defer func() {
		if c.deps.Metrics != nil {
			c.deps.Metrics.ObserveOperationDuration(op, time.Since(start).Seconds())
		}
	}()

	actor, err := c.deps.Actors.CurrentActor(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve current actor: %w", err)
	}

	c.mu.Lock()
	working := c.match.Clone()
	res := Result{}
	t := &tx{match: &working, actor: actor, now: c.deps.Now(), result: &res}

	if rej := fn(t); rej != nil {
		current := c.match.Clone()
		c.mu.Unlock()
		log.Info("Rejected match operation", "op", op, "matchID", current.ID, "kind", rej.Kind, "reason", rej.Message)
		if c.deps.Metrics != nil {
			c.deps.Metrics.IncRejected(string(rej.Kind))
		}
		return Result{Match: current, Rejection: rej}, nil
	}

	persist := c.deps.Store.SaveMatch
	if working.Deleted {
		persist = func(m club.Match) error { return c.deps.Store.DeleteMatch(m.ID) }
	}
	if err := persist(working); err != nil {
		c.mu.Unlock()
		log.Error("Failed to persist match", "error", err, "op", op, "matchID", working.ID)
		return Result{}, fmt.Errorf("failed to persist match %s: %w", working.ID, err)
	}
	c.match = working
	res.Match = working.Clone()

	if c.deps.Sync != nil {
		task := remotesync.Task{Op: syncOp, MatchID: working.ID, Snapshot: working.Clone(), EnqueuedAt: t.now}
		if err := c.deps.Sync.Enqueue(task); err != nil {
			log.Warn("Failed to enqueue remote sync", "error", err, "op", op, "matchID", working.ID)
			res.SyncWarning = &remotesync.SyncWarning{Op: syncOp, MatchID: working.ID, Err: err}
			if c.deps.Metrics != nil {
				c.deps.Metrics.IncSyncFailures()
			}
		}
	}

	c.queueReminders(ctx, working.Clone(), t.reminders)
	c.mu.Unlock()

	log.Debug("Committed match operation", "op", op, "matchID", working.ID, "status", working.Status)
	c.notify(res.Match)
	return res, nil
}

func (c *Coordinator) notify(m club.Match) {
	c.obsMu.RLock()
	observers := slices.Clone(c.observers)
	c.obsMu.RUnlock()
	for _, fn := range observers {
		fn(m.Clone())
	}
}

func noSession() *club.Rejection {
	return club.Reject(club.KindAuthorization, "You need to be signed in.")
}

func matchDeleted() *club.Rejection {
	return club.Reject(club.KindState, "This match was deleted.")
}

func lockedMatch(m *club.Match) *club.Rejection {
	if m.Deleted {
		return matchDeleted()
	}
	switch m.Status {
	case club.MatchCompleted:
		return club.Reject(club.KindState, "This match is completed and can no longer be changed.")
	case club.MatchCancelled:
		return club.Reject(club.KindState, "This match was cancelled and can no longer be changed.")
	}
	return nil
}
