package club

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// LoadMatch returns the stored snapshot or ErrMatchNotFound.
func (s *store) LoadMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow("SELECT snapshot_json FROM matches WHERE id = ?", matchID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	match, err := DecodeMatch([]byte(raw))
	if err != nil {
		log.Error("Failed to decode stored match snapshot", "error", err, "matchID", matchID)
		return nil, err
	}
	return &match, nil
}

// SaveMatch upserts the full snapshot. The last write wins.
func (s *store) SaveMatch(match Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := EncodeMatch(match)
	if err != nil {
		return fmt.Errorf("failed to encode match %s: %w", match.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO matches (id, owner_id, status, start_time, snapshot_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			status = excluded.status,
			start_time = excluded.start_time,
			snapshot_json = excluded.snapshot_json,
			updated_at = excluded.updated_at;
	`, match.ID, match.OwnerID, string(match.Status), match.StartTime.Unix(), string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", match.ID, err)
	}
	log.Debug("Saved match snapshot", "matchID", match.ID, "status", match.Status)
	return nil
}

func (s *store) DeleteMatch(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID); err != nil {
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	return nil
}

// GetAllMatches returns every readable snapshot, newest first. Rows that fail
// to decode are logged and skipped.
func (s *store) GetAllMatches() ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, snapshot_json FROM matches ORDER BY start_time DESC")
	if err != nil {
		log.Error("Failed to query all matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		match, err := DecodeMatch([]byte(raw))
		if err != nil {
			log.Error("Skipping unreadable match snapshot", "error", err, "matchID", id)
			continue
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (s *store) LoadTournament(tournamentID string) (*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow("SELECT snapshot_json FROM tournaments WHERE id = ?", tournamentID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
	}
	t, err := DecodeTournament([]byte(raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *store) SaveTournament(tournament Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := EncodeTournament(tournament)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", tournament.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO tournaments (id, owner_id, snapshot_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			snapshot_json = excluded.snapshot_json,
			updated_at = excluded.updated_at;
	`, tournament.ID, tournament.OwnerID, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", tournament.ID, err)
	}
	return nil
}

// UpsertPlayer inserts a player or refreshes the account-owned fields of an
// existing one. The rating is only written on insert.
func (s *store) UpsertPlayer(player Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player.Role == "" {
		player.Role = RolePlayer
	}
	if player.Rating == 0 {
		player.Rating = DefaultRating
	}
	var coachExpires *int64
	if player.CoachExpiresAt != nil {
		v := player.CoachExpiresAt.Unix()
		coachExpires = &v
	}
	_, err := s.db.Exec(`
		INSERT INTO players (id, name, rating, role, suspended, slack_user_id, coach_status, coach_expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			suspended = excluded.suspended,
			slack_user_id = excluded.slack_user_id,
			coach_status = excluded.coach_status,
			coach_expires_at = excluded.coach_expires_at;
	`, player.ID, player.Name, player.Rating, string(player.Role), player.Suspended, player.SlackUserID, string(player.CoachStatus), coachExpires)
	if err != nil {
		log.Error("Failed to upsert player", "error", err, "playerID", player.ID)
		return err
	}
	log.Debug("Upserted player", "playerID", player.ID, "name", player.Name)
	return nil
}

const playerColumns = "id, name, rating, role, suspended, slack_user_id, coach_status, coach_expires_at"

func scanPlayer(scanner interface{ Scan(...any) error }) (Player, error) {
	var (
		p            Player
		role, coach  string
		slackID      sql.NullString
		coachExpires sql.NullInt64
	)
	if err := scanner.Scan(&p.ID, &p.Name, &p.Rating, &role, &p.Suspended, &slackID, &coach, &coachExpires); err != nil {
		return Player{}, err
	}
	p.Role = Role(role)
	p.CoachStatus = CoachStatus(coach)
	if slackID.Valid {
		p.SlackUserID = &slackID.String
	}
	if coachExpires.Valid {
		t := time.Unix(coachExpires.Int64, 0).UTC()
		p.CoachExpiresAt = &t
	}
	return p, nil
}

func (s *store) GetPlayer(playerID string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT "+playerColumns+" FROM players WHERE id = ?", playerID)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	return &p, nil
}

func (s *store) GetPlayers(playerIDs []string) ([]Player, error) {
	if len(playerIDs) == 0 {
		return []Player{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	rows, err := s.db.Query("SELECT "+playerColumns+" FROM players WHERE id IN ("+placeholders+")", ToAnySlice(playerIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetPlayersSortedByRating returns all players, highest rating first.
func (s *store) GetPlayersSortedByRating() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT " + playerColumns + " FROM players ORDER BY rating DESC, name ASC")
	if err != nil {
		log.Error("Failed to query players sorted by rating", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ApplyRatingChanges records the rating movement of a match and updates the
// players' ratings in one transaction. A (player, match) pair is applied at
// most once, so redelivered rating requests are harmless. It returns the
// number of players actually updated.
func (s *store) ApplyRatingChanges(matchID string, changes []RatingChange) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin rating transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	applied := 0
	for _, change := range changes {
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO rating_history (player_id, match_id, rating_before, rating_after, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, change.PlayerID, matchID, change.Before, change.After, now)
		if err != nil {
			return 0, fmt.Errorf("failed to record rating history for %s: %w", change.PlayerID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			log.Debug("Rating already applied", "matchID", matchID, "playerID", change.PlayerID)
			continue
		}
		if _, err := tx.Exec("UPDATE players SET rating = ? WHERE id = ?", change.After, change.PlayerID); err != nil {
			return 0, fmt.Errorf("failed to update rating for %s: %w", change.PlayerID, err)
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rating transaction: %w", err)
	}
	log.Info("Applied rating changes", "matchID", matchID, "applied", applied, "requested", len(changes))
	return applied, nil
}

// GetRatingHistory returns a player's rating changes, oldest first.
func (s *store) GetRatingHistory(playerID string) ([]RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT player_id, rating_before, rating_after
		FROM rating_history
		WHERE player_id = ?
		ORDER BY id ASC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	history := []RatingChange{}
	for rows.Next() {
		var c RatingChange
		if err := rows.Scan(&c.PlayerID, &c.Before, &c.After); err != nil {
			return nil, err
		}
		history = append(history, c)
	}
	return history, rows.Err()
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
