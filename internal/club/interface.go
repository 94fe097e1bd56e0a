package club

// ClubStore is the local, authoritative persistence for players, match
// snapshots and tournaments.
type ClubStore interface {
	LoadMatch(matchID string) (*Match, error)
	SaveMatch(match Match) error
	DeleteMatch(matchID string) error
	GetAllMatches() ([]Match, error)

	LoadTournament(tournamentID string) (*Tournament, error)
	SaveTournament(tournament Tournament) error

	UpsertPlayer(player Player) error
	GetPlayer(playerID string) (*Player, error)
	GetPlayers(playerIDs []string) ([]Player, error)
	GetPlayersSortedByRating() ([]Player, error)
	ApplyRatingChanges(matchID string, changes []RatingChange) (int, error)
	GetRatingHistory(playerID string) ([]RatingChange, error)
}
