package notifier

import (
	"context"
	"time"
)

// Scheduler arms and disarms per-player match reminders. Reminders are
// advisory: implementations should not fail a caller because a player cannot
// be reached.
type Scheduler interface {
	Schedule(ctx context.Context, matchID, userID, title string, start time.Time) error
	Cancel(ctx context.Context, matchID, userID string) error
}

// Noop is used when no reminder provider is configured.
type Noop struct{}

func (Noop) Schedule(context.Context, string, string, string, time.Time) error { return nil }
func (Noop) Cancel(context.Context, string, string) error                      { return nil }
