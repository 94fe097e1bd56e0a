package league

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = &access.Actor{ID: "owner", Role: club.RolePlayer}
	org      = &access.Actor{ID: "org", Role: club.RolePlayer}
	admin    = &access.Actor{ID: "admin", Role: club.RoleAdmin}
	stranger = &access.Actor{ID: "stranger", Role: club.RolePlayer}
	kickoff  = time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
)

func as(a *access.Actor) context.Context {
	return access.WithActor(context.Background(), a)
}

func setup(t *testing.T) (*Manager, *club.MockStore, *metrics.Mock) {
	t.Helper()
	store := club.NewMock()
	store.Tournaments["t1"] = club.Tournament{
		ID:           "t1",
		Name:         "Spring League",
		OwnerID:      "owner",
		OrganiserIDs: []string{"owner", "org"},
		Teams: []club.Team{
			{ID: "a", Name: "Alpha"},
			{ID: "b", Name: "Bravo"},
			{ID: "c", Name: "Charlie"},
		},
		Matches: []club.TournamentMatch{
			{ID: "f1", HomeTeamID: "a", AwayTeamID: "b", Status: club.FixtureScheduled},
		},
		Dispute: club.DisputeNone,
	}
	n := 0
	m := metrics.NewMock()
	return NewManager(store, nil, m, WithIDs(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})), store, m
}

func requireRejected(t *testing.T, res Result, err error, kind club.RejectionKind) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, res.Rejection)
	assert.Equal(t, kind, res.Rejection.Kind)
}

func TestCreate(t *testing.T) {
	m, store, _ := setup(t)

	res, err := m.Create(as(owner), "  Summer Cup ", []string{"org", "owner"})

	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "id-1", res.Tournament.ID)
	assert.Equal(t, "Summer Cup", res.Tournament.Name)
	assert.Equal(t, []string{"owner", "org"}, res.Tournament.OrganiserIDs)
	assert.Equal(t, club.DisputeNone, res.Tournament.Dispute)
	assert.Contains(t, store.Tournaments, "id-1")

	res, err = m.Create(context.Background(), "Nope", nil)
	requireRejected(t, res, err, club.KindAuthorization)

	res, err = m.Create(as(owner), " ", nil)
	requireRejected(t, res, err, club.KindValidation)
}

func TestAddTeam(t *testing.T) {
	t.Run("organiser adds a team", func(t *testing.T) {
		m, store, _ := setup(t)

		res, err := m.AddTeam(as(org), "t1", "Delta")

		require.NoError(t, err)
		assert.Equal(t, "id-1", res.TeamID)
		assert.Len(t, store.Tournaments["t1"].Teams, 4)
	})

	tests := []struct {
		name  string
		actor *access.Actor
		team  string
		kind  club.RejectionKind
	}{
		{"duplicate name ignoring case", owner, "alpha", club.KindValidation},
		{"empty name", owner, "  ", club.KindValidation},
		{"not an organiser", stranger, "Delta", club.KindAuthorization},
		{"no session", nil, "Delta", club.KindAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store, mm := setup(t)

			res, err := m.AddTeam(as(tt.actor), "t1", tt.team)

			requireRejected(t, res, err, tt.kind)
			assert.Len(t, res.Tournament.Teams, 3)
			assert.Empty(t, store.SaveTournamentCalls)
			assert.Equal(t, 1, mm.Rejected(string(tt.kind)))
		})
	}
}

func TestRemoveTeam(t *testing.T) {
	m, _, _ := setup(t)

	res, err := m.RemoveTeam(as(admin), "t1", "c")
	require.NoError(t, err)
	assert.Len(t, res.Tournament.Teams, 2)

	res, err = m.RemoveTeam(as(owner), "t1", "a")
	requireRejected(t, res, err, club.KindValidation)

	res, err = m.RemoveTeam(as(owner), "t1", "zulu")
	requireRejected(t, res, err, club.KindValidation)
}

func TestScheduleMatch(t *testing.T) {
	m, _, _ := setup(t)

	res, err := m.ScheduleMatch(as(owner), "t1", "b", "c", kickoff)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "id-1", res.FixtureID)
	require.Len(t, res.Tournament.Matches, 2)
	assert.Equal(t, club.FixtureScheduled, res.Tournament.Matches[1].Status)
	assert.Equal(t, kickoff, res.Tournament.Matches[1].StartTime)

	res, err = m.ScheduleMatch(as(owner), "t1", "b", "b", kickoff)
	requireRejected(t, res, err, club.KindValidation)

	res, err = m.ScheduleMatch(as(owner), "t1", "b", "zulu", kickoff)
	requireRejected(t, res, err, club.KindValidation)

	res, err = m.ScheduleMatch(as(stranger), "t1", "b", "c", kickoff)
	requireRejected(t, res, err, club.KindAuthorization)
}

func TestRecordResult(t *testing.T) {
	m, _, _ := setup(t)

	res, err := m.RecordResult(as(org), "t1", "f1", 2, -1)

	require.NoError(t, err)
	f := res.Tournament.Matches[0]
	assert.True(t, f.IsCompleted())
	assert.Equal(t, 2, *f.HomeScore)
	assert.Equal(t, 0, *f.AwayScore)

	table, err := m.Standings("t1")
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, "a", table[0].TeamID)
	assert.Equal(t, 3, table[0].Points)

	res, err = m.RecordResult(as(org), "t1", "nope", 1, 1)
	requireRejected(t, res, err, club.KindValidation)

	res, err = m.RecordResult(as(stranger), "t1", "f1", 0, 5)
	requireRejected(t, res, err, club.KindAuthorization)
}

func TestDisputes(t *testing.T) {
	m, _, _ := setup(t)

	res, err := m.ResolveDispute(as(owner), "t1")
	requireRejected(t, res, err, club.KindState)

	res, err = m.OpenDispute(as(owner), "t1")
	require.NoError(t, err)
	assert.Equal(t, club.DisputeOpen, res.Tournament.Dispute)

	res, err = m.OpenDispute(as(owner), "t1")
	requireRejected(t, res, err, club.KindState)

	res, err = m.ResolveDispute(as(org), "t1")
	require.NoError(t, err)
	assert.Equal(t, club.DisputeResolved, res.Tournament.Dispute)

	res, err = m.OpenDispute(as(org), "t1")
	require.NoError(t, err)
	assert.Equal(t, club.DisputeOpen, res.Tournament.Dispute)

	res, err = m.ResolveDispute(as(stranger), "t1")
	requireRejected(t, res, err, club.KindAuthorization)
}

func TestErrors(t *testing.T) {
	t.Run("unknown tournament", func(t *testing.T) {
		m, _, _ := setup(t)
		_, err := m.AddTeam(as(owner), "missing", "Delta")
		assert.ErrorIs(t, err, club.ErrTournamentNotFound)

		_, err = m.Standings("missing")
		assert.ErrorIs(t, err, club.ErrTournamentNotFound)
	})

	t.Run("persistence failure", func(t *testing.T) {
		m, store, _ := setup(t)
		boom := errors.New("disk full")
		store.SaveTournamentFunc = func(club.Tournament) error { return boom }

		_, err := m.AddTeam(as(owner), "t1", "Delta")

		assert.ErrorIs(t, err, boom)
		assert.Len(t, store.Tournaments["t1"].Teams, 3)
	})
}
