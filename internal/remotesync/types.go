package remotesync

import (
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/matchday/internal/club"
)

// Op names the local mutation a sync task mirrors.
type Op string

const (
	OpRSVP     Op = "rsvp"
	OpEvent    Op = "event"
	OpRoster   Op = "roster"
	OpDetails  Op = "details"
	OpCancel   Op = "cancel"
	OpComplete Op = "complete"
	OpDelete   Op = "delete"
)

// Task carries a committed snapshot to the remote side.
type Task struct {
	Op         Op
	MatchID    string
	Snapshot   club.Match
	EnqueuedAt time.Time
}

var (
	ErrQueueFull = errors.New("sync queue full")
	ErrClosed    = errors.New("sync outbox closed")
)

// SyncWarning reports a remote failure after the local commit succeeded.
type SyncWarning struct {
	Op      Op     `json:"op"`
	MatchID string `json:"match_id"`
	Err     error  `json:"-"`
}

func (w SyncWarning) Error() string {
	return fmt.Sprintf("sync %s for match %s failed: %v", w.Op, w.MatchID, w.Err)
}

func (w SyncWarning) Unwrap() error { return w.Err }
