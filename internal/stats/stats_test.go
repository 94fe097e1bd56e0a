package stats

import (
	"testing"

	"github.com/mauv0809/matchday/internal/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(t club.EventType, playerID string) club.MatchEvent {
	return club.MatchEvent{Type: t, PlayerID: playerID}
}

func TestAggregate(t *testing.T) {
	participants := []club.Participant{{ID: "p1", Name: "Ada"}, {ID: "p2", Name: "Ben"}, {ID: "p3", Name: "Cy"}}
	events := []club.MatchEvent{
		ev(club.EventGoal, "p1"),
		ev(club.EventGoal, "p1"),
		ev(club.EventAssist, "p2"),
		ev(club.EventYellow, "p2"),
		ev(club.EventRed, "p2"),
		ev(club.EventSave, "p1"),
		ev(club.EventGoal, "ghost"),
	}

	got := Aggregate(participants, events)

	require.Len(t, got, 3, "every participant appears, unknown players do not")
	assert.Equal(t, PlayerStats{Goals: 2, Saves: 1}, got["p1"])
	assert.Equal(t, PlayerStats{Assists: 1, YellowCards: 1, RedCards: 1}, got["p2"])
	assert.Equal(t, PlayerStats{}, got["p3"])
	_, ok := got["ghost"]
	assert.False(t, ok)
}

func TestSummaryRows(t *testing.T) {
	t.Run("equal goals are ordered by name", func(t *testing.T) {
		participants := []club.Participant{{ID: "z", Name: "Zoe"}, {ID: "a", Name: "Amy"}}
		events := []club.MatchEvent{ev(club.EventGoal, "z"), ev(club.EventGoal, "a")}

		rows := SummaryRows(participants, events)

		require.Len(t, rows, 2)
		assert.Equal(t, "Amy", rows[0].Name)
		assert.Equal(t, "Zoe", rows[1].Name)
	})

	t.Run("goals then assists then name", func(t *testing.T) {
		participants := []club.Participant{
			{ID: "1", Name: "bob"},
			{ID: "2", Name: "Bob"},
			{ID: "3", Name: "Cat"},
			{ID: "4", Name: "Dan"},
		}
		events := []club.MatchEvent{
			ev(club.EventGoal, "4"),
			ev(club.EventGoal, "4"),
			ev(club.EventGoal, "3"),
			ev(club.EventAssist, "3"),
			ev(club.EventGoal, "1"),
			ev(club.EventGoal, "2"),
		}

		rows := SummaryRows(participants, events)

		names := make([]string, len(rows))
		for i, r := range rows {
			names[i] = r.Name
		}
		// Ordinal comparison puts upper case before lower case.
		assert.Equal(t, []string{"Dan", "Cat", "Bob", "bob"}, names)
	})

	t.Run("empty roster", func(t *testing.T) {
		assert.Empty(t, SummaryRows(nil, []club.MatchEvent{ev(club.EventGoal, "x")}))
	})
}
