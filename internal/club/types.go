package club

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Role is a player's account role.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// CoachStatus is the state of a player's coach subscription.
type CoachStatus string

const (
	CoachNone    CoachStatus = ""
	CoachActive  CoachStatus = "active"
	CoachExpired CoachStatus = "expired"
	CoachPaused  CoachStatus = "paused"
)

// Player represents a club member. Owned by the account system; the engine
// only reads id, rating and role.
type Player struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Rating         int         `json:"rating"`
	Role           Role        `json:"role"`
	Suspended      bool        `json:"suspended"`
	SlackUserID    *string     `json:"slack_user_id,omitempty"`
	CoachStatus    CoachStatus `json:"coach_status,omitempty"`
	CoachExpiresAt *time.Time  `json:"coach_expires_at,omitempty"`
}

// DefaultRating is the rating assigned to players without history.
const DefaultRating = 1200

// RSVPStatus is a participant's attendance intent for one match.
type RSVPStatus string

const (
	RSVPInvited    RSVPStatus = "invited"
	RSVPGoing      RSVPStatus = "going"
	RSVPMaybe      RSVPStatus = "maybe"
	RSVPDeclined   RSVPStatus = "declined"
	RSVPWaitlisted RSVPStatus = "waitlisted"
)

// Valid reports whether s is one of the known RSVP states.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPInvited, RSVPGoing, RSVPMaybe, RSVPDeclined, RSVPWaitlisted:
		return true
	}
	return false
}

// BenchGroup is the position group given to participants that joined outside a lineup.
const BenchGroup = "bench"

// Participant is one player's entry on a match roster.
type Participant struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TeamID        string     `json:"team_id"`
	EloSnapshot   int        `json:"elo_snapshot"`
	PositionGroup string     `json:"position_group"`
	Status        RSVPStatus `json:"status"`
	InvitedAt     time.Time  `json:"invited_at"`
	WaitlistedAt  *time.Time `json:"waitlisted_at,omitempty"`
}

// EventType is the kind of an in-match event.
type EventType string

const (
	EventGoal   EventType = "goal"
	EventAssist EventType = "assist"
	EventYellow EventType = "yellow"
	EventRed    EventType = "red"
	EventSave   EventType = "save"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventGoal, EventAssist, EventYellow, EventRed, EventSave:
		return true
	}
	return false
}

// MatchEvent is an immutable entry in a match's event log.
type MatchEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Minute     int       `json:"minute"`
	PlayerID   string    `json:"player_id"`
	RecordedBy string    `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchCancelled
}

// Team is a named group of players.
type Team struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Members  []Player `json:"members"`
	Capacity int      `json:"capacity"`
}

// Match is the aggregate owned by one lifecycle coordinator. It doubles as the
// persisted snapshot.
type Match struct {
	SchemaVersion   int           `json:"schema_version,omitempty"`
	ID              string        `json:"id"`
	HomeTeam        Team          `json:"home_team"`
	AwayTeam        Team          `json:"away_team"`
	Participants    []Participant `json:"participants"`
	Events          []MatchEvent  `json:"events"`
	Location        string        `json:"location"`
	StartTime       time.Time     `json:"start_time"`
	Format          string        `json:"format"`
	Notes           string        `json:"notes"`
	MaxPlayers      int           `json:"max_players"`
	RatingAffecting bool          `json:"rating_affecting"`
	Status          MatchStatus   `json:"status"`
	FinalHomeScore  *int          `json:"final_home_score,omitempty"`
	FinalAwayScore  *int          `json:"final_away_score,omitempty"`
	OwnerID         string        `json:"owner_id"`
	OrganiserIDs    []string      `json:"organiser_ids"`
	Deleted         bool          `json:"deleted,omitempty"`
}

// TournamentMatchStatus is the state of a fixture inside a tournament.
type TournamentMatchStatus string

const (
	FixtureScheduled TournamentMatchStatus = "scheduled"
	FixtureCompleted TournamentMatchStatus = "completed"
)

// TournamentMatch is a fixture between two registered teams.
type TournamentMatch struct {
	ID         string                `json:"id"`
	HomeTeamID string                `json:"home_team_id"`
	AwayTeamID string                `json:"away_team_id"`
	StartTime  time.Time             `json:"start_time"`
	HomeScore  *int                  `json:"home_score,omitempty"`
	AwayScore  *int                  `json:"away_score,omitempty"`
	Status     TournamentMatchStatus `json:"status"`
	Completed  bool                  `json:"is_completed"`
}

// IsCompleted accepts either completion marker used by older clients.
func (m TournamentMatch) IsCompleted() bool {
	return m.Completed || m.Status == FixtureCompleted
}

// DisputeStatus tracks a tournament-level result dispute.
type DisputeStatus string

const (
	DisputeNone     DisputeStatus = "none"
	DisputeOpen     DisputeStatus = "open"
	DisputeResolved DisputeStatus = "resolved"
)

// Tournament groups teams and fixtures.
type Tournament struct {
	SchemaVersion int               `json:"schema_version,omitempty"`
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Teams         []Team            `json:"teams"`
	Matches       []TournamentMatch `json:"matches"`
	OwnerID       string            `json:"owner_id"`
	OrganiserIDs  []string          `json:"organiser_ids"`
	Dispute       DisputeStatus     `json:"dispute_status"`
}

// RatingChange is one player's rating movement caused by a match.
type RatingChange struct {
	PlayerID string `json:"player_id"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}
