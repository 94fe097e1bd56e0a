package league

import "github.com/mauv0809/matchday/internal/club"

// Store is the part of the club store tournaments need.
type Store interface {
	LoadTournament(tournamentID string) (*club.Tournament, error)
	SaveTournament(tournament club.Tournament) error
}
