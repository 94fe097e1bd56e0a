package club

import (
	"sync"
)

// MockStore is an in-memory implementation of the ClubStore interface for
// testing. Any XxxFunc that is set replaces the default behaviour.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Matches     map[string]Match
	Tournaments map[string]Tournament
	Players     map[string]Player

	// Spies for method calls
	LoadMatchFunc          func(matchID string) (*Match, error)
	SaveMatchFunc          func(match Match) error
	SaveTournamentFunc     func(tournament Tournament) error
	ApplyRatingChangesFunc func(matchID string, changes []RatingChange) (int, error)

	// Call records
	SaveMatchCalls          []Match
	DeleteMatchCalls        []string
	SaveTournamentCalls     []Tournament
	ApplyRatingChangesCalls []struct {
		MatchID string
		Changes []RatingChange
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{
		Matches:     make(map[string]Match),
		Tournaments: make(map[string]Tournament),
		Players:     make(map[string]Player),
	}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveMatchCalls = nil
	m.DeleteMatchCalls = nil
	m.SaveTournamentCalls = nil
	m.ApplyRatingChangesCalls = nil
}

func (m *MockStore) LoadMatch(matchID string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadMatchFunc != nil {
		return m.LoadMatchFunc(matchID)
	}
	match, ok := m.Matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	c := match.Clone()
	return &c, nil
}

func (m *MockStore) SaveMatch(match Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveMatchCalls = append(m.SaveMatchCalls, match.Clone())
	if m.SaveMatchFunc != nil {
		if err := m.SaveMatchFunc(match); err != nil {
			return err
		}
	}
	m.Matches[match.ID] = match.Clone()
	return nil
}

func (m *MockStore) DeleteMatch(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteMatchCalls = append(m.DeleteMatchCalls, matchID)
	delete(m.Matches, matchID)
	return nil
}

func (m *MockStore) GetAllMatches() ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matches := make([]Match, 0, len(m.Matches))
	for _, match := range m.Matches {
		matches = append(matches, match.Clone())
	}
	return matches, nil
}

func (m *MockStore) LoadTournament(tournamentID string) (*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tournaments[tournamentID]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (m *MockStore) SaveTournament(tournament Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveTournamentCalls = append(m.SaveTournamentCalls, tournament.Clone())
	if m.SaveTournamentFunc != nil {
		if err := m.SaveTournamentFunc(tournament); err != nil {
			return err
		}
	}
	m.Tournaments[tournament.ID] = tournament.Clone()
	return nil
}

func (m *MockStore) UpsertPlayer(player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Players[player.ID]; ok {
		player.Rating = existing.Rating
	} else if player.Rating == 0 {
		player.Rating = DefaultRating
	}
	m.Players[player.ID] = player
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := []Player{}
	for _, id := range playerIDs {
		if p, ok := m.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players, nil
}

func (m *MockStore) GetPlayersSortedByRating() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := make([]Player, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, p)
	}
	return players, nil
}

func (m *MockStore) ApplyRatingChanges(matchID string, changes []RatingChange) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyRatingChangesCalls = append(m.ApplyRatingChangesCalls, struct {
		MatchID string
		Changes []RatingChange
	}{matchID, changes})
	if m.ApplyRatingChangesFunc != nil {
		return m.ApplyRatingChangesFunc(matchID, changes)
	}
	for _, c := range changes {
		if p, ok := m.Players[c.PlayerID]; ok {
			p.Rating = c.After
			m.Players[c.PlayerID] = p
		}
	}
	return len(changes), nil
}

func (m *MockStore) GetRatingHistory(playerID string) ([]RatingChange, error) {
	return []RatingChange{}, nil
}
