package remotesync

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/pubsub"
	"github.com/mauv0809/matchday/internal/rating"
	"golang.org/x/sync/errgroup"
)

// Outbox queues sync tasks after a local commit and drains them on a single
// worker. Failures never reach the caller that enqueued the task; they are
// logged, counted and handed to warning observers.
type Outbox struct {
	remote    Remote
	publisher pubsub.PubSubClient
	metrics   metrics.Metrics

	tasks chan Task
	done  chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool
	onWarn  []func(SyncWarning)
}

// NewOutbox creates an outbox. A nil remote or publisher disables that leg.
func NewOutbox(remote Remote, publisher pubsub.PubSubClient, metrics metrics.Metrics, size int) *Outbox {
	if size <= 0 {
		size = 1
	}
	return &Outbox{
		remote:    remote,
		publisher: publisher,
		metrics:   metrics,
		tasks:     make(chan Task, size),
		done:      make(chan struct{}),
	}
}

// OnWarning registers an observer for failed tasks.
func (o *Outbox) OnWarning(fn func(SyncWarning)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onWarn = append(o.onWarn, fn)
}

// Enqueue hands a task to the worker without blocking.
func (o *Outbox) Enqueue(t Task) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return ErrClosed
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}
	select {
	case o.tasks <- t:
		return nil
	default:
		log.Warn("Sync queue full, dropping task", "op", t.Op, "matchID", t.MatchID)
		return ErrQueueFull
	}
}

// Start runs the worker in the background until ctx is done or the outbox is closed.
func (o *Outbox) Start(ctx context.Context) {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()
	go o.Run(ctx)
}

// Run drains the queue until ctx is done or Close has been called and the
// queue is empty.
func (o *Outbox) Run(ctx context.Context) {
	defer close(o.done)
	for {
		select {
		case <-ctx.Done():
			log.Info("Sync outbox stopped", "pending", len(o.tasks))
			return
		case t, ok := <-o.tasks:
			if !ok {
				return
			}
			o.process(ctx, t)
		}
	}
}

// Close stops accepting tasks and waits for the worker to drain the queue.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.tasks)
	started := o.started
	o.mu.Unlock()
	if started {
		<-o.done
	}
}

// process pushes the snapshot and publishes its events in parallel. A
// completed rated match additionally requests server-side rating application.
func (o *Outbox) process(ctx context.Context, t Task) {
	var g errgroup.Group

	if o.remote != nil {
		g.Go(func() error {
			if err := o.remote.Push(ctx, t.Snapshot); err != nil {
				o.warn(SyncWarning{Op: t.Op, MatchID: t.MatchID, Err: err})
				return err
			}
			return nil
		})
	}

	if o.publisher != nil {
		g.Go(func() error {
			if err := o.publisher.SendMessage(ctx, pubsub.EventMatchUpdated, t.Snapshot); err != nil {
				o.warn(SyncWarning{Op: t.Op, MatchID: t.MatchID, Err: err})
				return err
			}
			return nil
		})
		if req, ok := ratingRequest(t); ok {
			g.Go(func() error {
				if err := o.publisher.SendMessage(ctx, pubsub.EventApplyRatings, req); err != nil {
					o.warn(SyncWarning{Op: t.Op, MatchID: t.MatchID, Err: err})
					return err
				}
				log.Info("Requested rating application", "matchID", t.MatchID)
				return nil
			})
		}
	}

	if err := g.Wait(); err == nil {
		log.Debug("Synced match", "op", t.Op, "matchID", t.MatchID, "lag", time.Since(t.EnqueuedAt))
	}
}

func ratingRequest(t Task) (rating.Request, bool) {
	m := t.Snapshot
	if t.Op != OpComplete || !m.RatingAffecting || m.Status != club.MatchCompleted {
		return rating.Request{}, false
	}
	if m.FinalHomeScore == nil || m.FinalAwayScore == nil {
		return rating.Request{}, false
	}
	return rating.Request{MatchID: m.ID, HomeScore: *m.FinalHomeScore, AwayScore: *m.FinalAwayScore}, true
}

func (o *Outbox) warn(w SyncWarning) {
	log.Warn("Remote sync failed", "op", w.Op, "matchID", w.MatchID, "error", w.Err)
	o.metrics.IncSyncFailures()
	o.mu.RLock()
	observers := slices.Clone(o.onWarn)
	o.mu.RUnlock()
	for _, fn := range observers {
		fn(w)
	}
}
