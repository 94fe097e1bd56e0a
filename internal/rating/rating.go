package rating

import (
	"math"

	"github.com/mauv0809/matchday/internal/club"
)

// DefaultKFactor is the K-factor used for every rated club match.
const DefaultKFactor = 24

// ExpectedScore is the logistic probability that player beats opponent.
func ExpectedScore(player, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-player)/400))
}

// CalculateNewRating returns the player's rating after one decided result.
func CalculateNewRating(player, opponent int, didWin bool, kFactor float64) int {
	actual := 0.0
	if didWin {
		actual = 1
	}
	return int(math.Round(float64(player) + kFactor*(actual-ExpectedScore(player, opponent))))
}

// Request asks the rating worker to apply the result of a completed match.
// It travels over Pub/Sub as msgpack.
type Request struct {
	MatchID   string `msgpack:"match_id" json:"match_id"`
	HomeScore int    `msgpack:"home_score" json:"home_score"`
	AwayScore int    `msgpack:"away_score" json:"away_score"`
}

// Changes computes the rating movement of every going participant of a
// completed, rating-affecting match. Each player is rated against the mean
// rating of the going players on the other side. Draws and matches where a
// side fielded nobody produce no changes. ratings maps player id to the
// current rating; players missing from it fall back to their elo snapshot.
func Changes(m club.Match, ratings map[string]int) []club.RatingChange {
	if m.Status != club.MatchCompleted || !m.RatingAffecting {
		return nil
	}
	if m.FinalHomeScore == nil || m.FinalAwayScore == nil || *m.FinalHomeScore == *m.FinalAwayScore {
		return nil
	}
	homeWon := *m.FinalHomeScore > *m.FinalAwayScore

	current := func(p club.Participant) int {
		if r, ok := ratings[p.ID]; ok {
			return r
		}
		if p.EloSnapshot > 0 {
			return p.EloSnapshot
		}
		return club.DefaultRating
	}

	var home, away []club.Participant
	for _, p := range m.Participants {
		if p.Status != club.RSVPGoing {
			continue
		}
		switch p.TeamID {
		case m.HomeTeam.ID:
			home = append(home, p)
		case m.AwayTeam.ID:
			away = append(away, p)
		}
	}
	if len(home) == 0 || len(away) == 0 {
		return nil
	}

	mean := func(ps []club.Participant) int {
		sum := 0
		for _, p := range ps {
			sum += current(p)
		}
		return int(math.Round(float64(sum) / float64(len(ps))))
	}
	homeMean, awayMean := mean(home), mean(away)

	changes := make([]club.RatingChange, 0, len(home)+len(away))
	for _, p := range home {
		before := current(p)
		changes = append(changes, club.RatingChange{
			PlayerID: p.ID,
			Before:   before,
			After:    CalculateNewRating(before, awayMean, homeWon, DefaultKFactor),
		})
	}
	for _, p := range away {
		before := current(p)
		changes = append(changes, club.RatingChange{
			PlayerID: p.ID,
			Before:   before,
			After:    CalculateNewRating(before, homeMean, !homeWon, DefaultKFactor),
		})
	}
	return changes
}
