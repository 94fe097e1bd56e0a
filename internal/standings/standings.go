package standings

import (
	"cmp"
	"slices"

	"github.com/mauv0809/matchday/internal/club"
)

const (
	PointsWin  = 3
	PointsDraw = 1
)

// Row is one team's line in the league table.
type Row struct {
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

// Calculate derives the ranked table of a tournament. Only completed fixtures
// with both scores count. Fixtures that reference a team no longer registered
// are skipped. Every registered team appears, including those without a
// result.
func Calculate(t club.Tournament) []Row {
	index := make(map[string]*Row, len(t.Teams))
	order := make([]string, 0, len(t.Teams))
	for _, team := range t.Teams {
		if _, dup := index[team.ID]; dup {
			continue
		}
		index[team.ID] = &Row{TeamID: team.ID, TeamName: team.Name}
		order = append(order, team.ID)
	}

	for _, m := range t.Matches {
		if !m.IsCompleted() || m.HomeScore == nil || m.AwayScore == nil {
			continue
		}
		home, away := index[m.HomeTeamID], index[m.AwayTeamID]
		if home == nil || away == nil || home == away {
			continue
		}
		hs, as := *m.HomeScore, *m.AwayScore
		record(home, hs, as)
		record(away, as, hs)
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		r := index[id]
		r.GoalDifference = r.GoalsFor - r.GoalsAgainst
		rows = append(rows, *r)
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.GoalDifference, a.GoalDifference); c != 0 {
			return c
		}
		if c := cmp.Compare(b.GoalsFor, a.GoalsFor); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamName, b.TeamName)
	})
	return rows
}

func record(r *Row, scored, conceded int) {
	r.Played++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		r.Won++
		r.Points += PointsWin
	case scored == conceded:
		r.Drawn++
		r.Points += PointsDraw
	default:
		r.Lost++
	}
}
