package lifecycle

import (
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/roster"
	"github.com/mauv0809/matchday/internal/stats"
)

// Snapshot returns a copy of the current match.
func (c *Coordinator) Snapshot() club.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.match.Clone()
}

// Scoreline returns the entered final score of a completed match, or a
// provisional score counted from goal events of rostered players.
func (c *Coordinator) Scoreline() Scoreline {
	return ScorelineOf(c.Snapshot())
}

// ScorelineOf computes the scoreline of a snapshot.
func ScorelineOf(m club.Match) Scoreline {
	if m.Status == club.MatchCompleted && m.FinalHomeScore != nil && m.FinalAwayScore != nil {
		return Scoreline{Home: *m.FinalHomeScore, Away: *m.FinalAwayScore, Final: true}
	}
	teamOf := make(map[string]string, len(m.Participants))
	for _, p := range m.Participants {
		teamOf[p.ID] = p.TeamID
	}
	var s Scoreline
	for _, e := range m.Events {
		if e.Type != club.EventGoal {
			continue
		}
		team, ok := teamOf[e.PlayerID]
		if !ok || team == "" {
			continue
		}
		switch team {
		case m.HomeTeam.ID:
			s.Home++
		case m.AwayTeam.ID:
			s.Away++
		}
	}
	return s
}

// Stats returns per-participant counters for the match.
func (c *Coordinator) Stats() map[string]stats.PlayerStats {
	m := c.Snapshot()
	return stats.Aggregate(m.Participants, m.Events)
}

// SummaryRows returns the stats table ordered for display.
func (c *Coordinator) SummaryRows() []stats.Row {
	m := c.Snapshot()
	return stats.SummaryRows(m.Participants, m.Events)
}

// Waitlist returns the waitlisted participants in promotion order.
func (c *Coordinator) Waitlist() []club.Participant {
	m := c.Snapshot()
	return roster.Waitlist(m.Participants)
}
