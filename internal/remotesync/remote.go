package remotesync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
)

// Remote is the backing store that holds the shared copy of each match.
type Remote interface {
	Push(ctx context.Context, m club.Match) error
	// Pull returns nil without error when the remote has no copy.
	Pull(ctx context.Context, matchID string) (*club.Match, error)
}

// SQLRemote stores msgpack snapshots in the remote_snapshots table of a
// libsql (Turso) primary.
type SQLRemote struct {
	db *sql.DB
}

// NewSQLRemote creates a remote over an opened database.
func NewSQLRemote(db *sql.DB) *SQLRemote {
	return &SQLRemote{db: db}
}

func (r *SQLRemote) Push(ctx context.Context, m club.Match) error {
	payload, err := club.MarshalMatchBinary(m)
	if err != nil {
		return fmt.Errorf("failed to encode remote snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO remote_snapshots (match_id, payload, pushed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			payload = excluded.payload,
			pushed_at = excluded.pushed_at;
	`, m.ID, payload, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to push match %s: %w", m.ID, err)
	}
	log.Debug("Pushed remote snapshot", "matchID", m.ID, "bytes", len(payload))
	return nil
}

func (r *SQLRemote) Pull(ctx context.Context, matchID string) (*club.Match, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM remote_snapshots WHERE match_id = ?", matchID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pull match %s: %w", matchID, err)
	}
	m, err := club.UnmarshalMatchBinary(payload)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
