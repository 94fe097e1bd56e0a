package stats

import (
	"cmp"
	"slices"

	"github.com/mauv0809/matchday/internal/club"
)

// PlayerStats holds one participant's counters for a single match.
type PlayerStats struct {
	Goals       int `json:"goals"`
	Assists     int `json:"assists"`
	YellowCards int `json:"yellow_cards"`
	RedCards    int `json:"red_cards"`
	Saves       int `json:"saves"`
}

// Row is a PlayerStats entry labelled with the participant it belongs to.
type Row struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	PlayerStats
}

// Aggregate folds the event log into per-participant counters. Every
// participant gets an entry. Events for players that are not on the roster
// are ignored.
func Aggregate(participants []club.Participant, events []club.MatchEvent) map[string]PlayerStats {
	out := make(map[string]PlayerStats, len(participants))
	for _, p := range participants {
		out[p.ID] = PlayerStats{}
	}
	for _, e := range events {
		s, ok := out[e.PlayerID]
		if !ok {
			continue
		}
		switch e.Type {
		case club.EventGoal:
			s.Goals++
		case club.EventAssist:
			s.Assists++
		case club.EventYellow:
			s.YellowCards++
		case club.EventRed:
			s.RedCards++
		case club.EventSave:
			s.Saves++
		}
		out[e.PlayerID] = s
	}
	return out
}

// SummaryRows returns the aggregated counters ordered by goals, then assists,
// both descending, then by name.
func SummaryRows(participants []club.Participant, events []club.MatchEvent) []Row {
	agg := Aggregate(participants, events)
	rows := make([]Row, 0, len(agg))
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		rows = append(rows, Row{PlayerID: p.ID, Name: p.Name, PlayerStats: agg[p.ID]})
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Goals, a.Goals); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Assists, a.Assists); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return rows
}
