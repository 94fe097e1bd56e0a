package rating

import (
	"testing"

	"github.com/mauv0809/matchday/internal/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNewRating(t *testing.T) {
	tests := []struct {
		name     string
		player   int
		opponent int
		didWin   bool
		want     int
	}{
		{"equal ratings win", 1500, 1500, true, 1512},
		{"equal ratings loss", 1500, 1500, false, 1488},
		{"underdog win gains more", 1400, 1600, true, 1418},
		{"favourite loss drops more", 1600, 1400, false, 1582},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateNewRating(tt.player, tt.opponent, tt.didWin, DefaultKFactor))
		})
	}
}

func TestExpectedScoreIsSymmetric(t *testing.T) {
	ratings := []int{0, 800, 1199, 1200, 1500, 2100, 3000, -50}
	for _, a := range ratings {
		for _, b := range ratings {
			assert.InDelta(t, 1.0, ExpectedScore(a, b)+ExpectedScore(b, a), 1e-12, "a=%d b=%d", a, b)
		}
	}
	assert.InDelta(t, 0.5, ExpectedScore(1500, 1500), 1e-12)
}

func completedMatch(home, away int) club.Match {
	return club.Match{
		ID:              "m1",
		HomeTeam:        club.Team{ID: "h"},
		AwayTeam:        club.Team{ID: "a"},
		Status:          club.MatchCompleted,
		RatingAffecting: true,
		FinalHomeScore:  &home,
		FinalAwayScore:  &away,
		Participants: []club.Participant{
			{ID: "h1", TeamID: "h", Status: club.RSVPGoing},
			{ID: "h2", TeamID: "h", Status: club.RSVPGoing},
			{ID: "a1", TeamID: "a", Status: club.RSVPGoing},
			{ID: "a2", TeamID: "a", Status: club.RSVPWaitlisted},
		},
	}
}

func TestChanges(t *testing.T) {
	t.Run("winners gain against the opposing mean", func(t *testing.T) {
		m := completedMatch(3, 1)
		changes := Changes(m, map[string]int{"h1": 1500, "h2": 1500, "a1": 1500})
		require.Len(t, changes, 3, "waitlisted players are not rated")
		byID := map[string]club.RatingChange{}
		for _, c := range changes {
			byID[c.PlayerID] = c
		}
		assert.Equal(t, 1512, byID["h1"].After)
		assert.Equal(t, 1512, byID["h2"].After)
		assert.Equal(t, 1488, byID["a1"].After)
		assert.Equal(t, 1500, byID["a1"].Before)
	})

	t.Run("missing ratings fall back to default", func(t *testing.T) {
		changes := Changes(completedMatch(0, 2), nil)
		require.Len(t, changes, 3)
		assert.Equal(t, club.DefaultRating, changes[0].Before)
	})

	t.Run("draw leaves ratings unchanged", func(t *testing.T) {
		assert.Empty(t, Changes(completedMatch(2, 2), nil))
	})

	t.Run("unrated match produces nothing", func(t *testing.T) {
		m := completedMatch(2, 0)
		m.RatingAffecting = false
		assert.Empty(t, Changes(m, nil))
	})

	t.Run("scheduled match produces nothing", func(t *testing.T) {
		m := completedMatch(2, 0)
		m.Status = club.MatchScheduled
		assert.Empty(t, Changes(m, nil))
	})
}
