package lifecycle

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
)

type reminder struct {
	userID string
	arm    bool
}

// reminderBatch is the reminder work of one committed mutation.
type reminderBatch struct {
	ctx       context.Context
	match     club.Match
	reminders []reminder
}

// queueReminders hands the reminder changes of a commit to the drain
// goroutine. It must be called with c.mu held so batches keep commit order.
func (c *Coordinator) queueReminders(ctx context.Context, m club.Match, reminders []reminder) {
	if len(reminders) == 0 {
		return
	}
	c.remMu.Lock()
	defer c.remMu.Unlock()
	// The request context ends with the caller; scheduler calls must outlive it.
	c.remPending = append(c.remPending, reminderBatch{ctx: context.WithoutCancel(ctx), match: m, reminders: reminders})
	if c.remRunning {
		return
	}
	c.remRunning = true
	go c.drainReminders()
}

func (c *Coordinator) drainReminders() {
	for {
		c.remMu.Lock()
		if len(c.remPending) == 0 {
			c.remRunning = false
			c.remIdle.Broadcast()
			c.remMu.Unlock()
			return
		}
		b := c.remPending[0]
		c.remPending = c.remPending[1:]
		c.remMu.Unlock()

		c.dispatchReminders(b.ctx, b.match, b.reminders)
	}
}

// Flush blocks until every queued reminder change has reached the scheduler.
func (c *Coordinator) Flush() {
	c.remMu.Lock()
	defer c.remMu.Unlock()
	for c.remRunning {
		c.remIdle.Wait()
	}
}

func (c *Coordinator) dispatchReminders(ctx context.Context, m club.Match, reminders []reminder) {
	title := reminderTitle(m)
	for _, r := range reminders {
		var err error
		if r.arm {
			err = c.deps.Reminders.Schedule(ctx, m.ID, r.userID, title, m.StartTime)
		} else {
			err = c.deps.Reminders.Cancel(ctx, m.ID, r.userID)
		}
		if err != nil {
			log.Warn("Failed to update match reminder", "error", err, "matchID", m.ID, "userID", r.userID, "arm", r.arm)
		}
	}
}

func reminderTitle(m club.Match) string {
	if m.HomeTeam.Name != "" && m.AwayTeam.Name != "" {
		return fmt.Sprintf("%s vs %s", m.HomeTeam.Name, m.AwayTeam.Name)
	}
	if m.Location != "" {
		return "Match at " + m.Location
	}
	return "Match"
}
