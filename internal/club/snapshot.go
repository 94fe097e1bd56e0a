package club

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// CurrentSchemaVersion is written into every snapshot this build encodes.
// Version 0 marks snapshots written before organisers and capacity were stored.
const CurrentSchemaVersion = 1

// DefaultMaxPlayers is the capacity given to legacy snapshots whose teams
// carry no capacity either.
const DefaultMaxPlayers = 10

// EncodeMatch serialises a match snapshot as JSON for local storage.
func EncodeMatch(m Match) ([]byte, error) {
	m.SchemaVersion = CurrentSchemaVersion
	return json.Marshal(m)
}

// DecodeMatch parses a JSON snapshot and upgrades it to the current schema.
func DecodeMatch(data []byte) (Match, error) {
	var m Match
	if err := json.Unmarshal(data, &m); err != nil {
		return Match{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := UpgradeMatch(&m); err != nil {
		return Match{}, err
	}
	return m, nil
}

// MarshalMatchBinary serialises a snapshot as msgpack using the JSON field names.
func MarshalMatchBinary(m Match) ([]byte, error) {
	m.SchemaVersion = CurrentSchemaVersion
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalMatchBinary is the msgpack counterpart of DecodeMatch.
func UnmarshalMatchBinary(data []byte) (Match, error) {
	var m Match
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&m); err != nil {
		return Match{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := UpgradeMatch(&m); err != nil {
		return Match{}, err
	}
	return m, nil
}

// UpgradeMatch fills defaults for older schema versions and validates the
// fields every later code path relies on.
func UpgradeMatch(m *Match) error {
	switch m.SchemaVersion {
	case CurrentSchemaVersion:
	case 0:
		log.Warn("Upgrading legacy match snapshot", "matchID", m.ID)
		if m.MaxPlayers <= 0 {
			m.MaxPlayers = m.HomeTeam.Capacity + m.AwayTeam.Capacity
			if m.MaxPlayers <= 0 {
				m.MaxPlayers = DefaultMaxPlayers
			}
		}
		if m.Status == "" {
			m.Status = MatchScheduled
		}
		m.SchemaVersion = CurrentSchemaVersion
	default:
		return fmt.Errorf("%w: unsupported schema version %d for match %s", ErrCorruptSnapshot, m.SchemaVersion, m.ID)
	}

	if m.ID == "" {
		return fmt.Errorf("%w: match has no id", ErrCorruptSnapshot)
	}
	switch m.Status {
	case MatchScheduled, MatchCompleted, MatchCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q for match %s", ErrCorruptSnapshot, m.Status, m.ID)
	}
	if m.MaxPlayers <= 0 {
		return fmt.Errorf("%w: match %s has no capacity", ErrCorruptSnapshot, m.ID)
	}
	m.OrganiserIDs = NormalizeOrganisers(m.OwnerID, m.OrganiserIDs)
	if m.Participants == nil {
		m.Participants = []Participant{}
	}
	if m.Events == nil {
		m.Events = []MatchEvent{}
	}
	return nil
}

// EncodeTournament serialises a tournament snapshot as JSON.
func EncodeTournament(t Tournament) ([]byte, error) {
	t.SchemaVersion = CurrentSchemaVersion
	return json.Marshal(t)
}

// DecodeTournament parses a tournament snapshot.
func DecodeTournament(data []byte) (Tournament, error) {
	var t Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return Tournament{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	switch t.SchemaVersion {
	case CurrentSchemaVersion:
	case 0:
		log.Warn("Upgrading legacy tournament snapshot", "tournamentID", t.ID)
		t.SchemaVersion = CurrentSchemaVersion
	default:
		return Tournament{}, fmt.Errorf("%w: unsupported schema version %d for tournament %s", ErrCorruptSnapshot, t.SchemaVersion, t.ID)
	}
	if t.ID == "" {
		return Tournament{}, fmt.Errorf("%w: tournament has no id", ErrCorruptSnapshot)
	}
	if t.Dispute == "" {
		t.Dispute = DisputeNone
	}
	t.OrganiserIDs = NormalizeOrganisers(t.OwnerID, t.OrganiserIDs)
	return t, nil
}
