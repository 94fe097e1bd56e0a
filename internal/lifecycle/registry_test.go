package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/notifier"
	"github.com/mauv0809/matchday/internal/remotesync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(store *club.MockStore, queue *remotesync.MockQueue, remote remotesync.Remote) *Registry {
	n := 0
	return NewRegistry(Deps{
		Store:     store,
		Sync:      queue,
		Reminders: notifier.NewMock(),
		Metrics:   metrics.NewMock(),
		Now:       func() time.Time { return now },
		NewID: func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		},
	}, remote)
}

func TestRegistry_Get(t *testing.T) {
	t.Run("loads the local snapshot once", func(t *testing.T) {
		// Setup
		store := club.NewMock()
		store.Matches["m1"] = baseMatch()
		r := newRegistry(store, remotesync.NewMockQueue(), nil)

		// Execute
		c1, err := r.Get(context.Background(), "m1")
		require.NoError(t, err)
		delete(store.Matches, "m1")
		c2, err := r.Get(context.Background(), "m1")

		// Assert
		require.NoError(t, err)
		assert.Same(t, c1, c2)
		assert.Equal(t, "m1", c1.ID())
	})

	t.Run("remote copy replaces local", func(t *testing.T) {
		// Setup
		store := club.NewMock()
		store.Matches["m1"] = baseMatch()
		remote := remotesync.NewMockRemote()
		newer := baseMatch()
		newer.Location = "Remote Park"
		newer.MaxPlayers = 8
		remote.Snapshots["m1"] = newer
		r := newRegistry(store, remotesync.NewMockQueue(), remote)

		// Execute
		c, err := r.Get(context.Background(), "m1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Remote Park", c.Snapshot().Location)
		assert.Equal(t, 8, c.Snapshot().MaxPlayers)
		assert.Equal(t, "Remote Park", store.Matches["m1"].Location, "remote copy is written back locally")
	})

	t.Run("remote copy without local snapshot", func(t *testing.T) {
		store := club.NewMock()
		remote := remotesync.NewMockRemote()
		remote.Snapshots["m1"] = baseMatch()
		r := newRegistry(store, remotesync.NewMockQueue(), remote)

		c, err := r.Get(context.Background(), "m1")

		require.NoError(t, err)
		assert.Len(t, c.Snapshot().Participants, 5)
		assert.Contains(t, store.Matches, "m1")
	})

	t.Run("pull failure falls back to local", func(t *testing.T) {
		store := club.NewMock()
		store.Matches["m1"] = baseMatch()
		remote := remotesync.NewMockRemote()
		remote.PullFunc = func(string) (*club.Match, error) { return nil, errors.New("offline") }
		r := newRegistry(store, remotesync.NewMockQueue(), remote)

		c, err := r.Get(context.Background(), "m1")

		require.NoError(t, err)
		assert.Equal(t, baseMatch().Location, c.Snapshot().Location)
	})

	t.Run("unknown match", func(t *testing.T) {
		r := newRegistry(club.NewMock(), remotesync.NewMockQueue(), remotesync.NewMockRemote())
		_, err := r.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, club.ErrMatchNotFound)
	})

	t.Run("deleted match is not found", func(t *testing.T) {
		store := club.NewMock()
		m := baseMatch()
		m.Deleted = true
		store.Matches["m1"] = m
		r := newRegistry(store, remotesync.NewMockQueue(), nil)

		_, err := r.Get(context.Background(), "m1")

		assert.ErrorIs(t, err, club.ErrMatchNotFound)
	})

	t.Run("local load error is returned", func(t *testing.T) {
		store := club.NewMock()
		store.LoadMatchFunc = func(string) (*club.Match, error) { return nil, club.ErrCorruptSnapshot }
		r := newRegistry(store, remotesync.NewMockQueue(), nil)

		_, err := r.Get(context.Background(), "m1")

		assert.ErrorIs(t, err, club.ErrCorruptSnapshot)
	})
}

func TestRegistry_Create(t *testing.T) {
	t.Run("creates a scheduled match", func(t *testing.T) {
		// Setup
		store := club.NewMock()
		queue := remotesync.NewMockQueue()
		r := newRegistry(store, queue, nil)
		var observed []string
		r.OnChange(func(m club.Match) { observed = append(observed, m.ID) })

		// Execute
		c, res, err := r.Create(as(owner), NewMatch{
			HomeTeam:     club.Team{Name: "Reds"},
			AwayTeam:     club.Team{ID: "blues", Name: "Blues"},
			StartTime:    kickoff,
			OrganiserIDs: []string{"org", "owner", "org"},
		})

		// Assert
		require.NoError(t, err)
		require.True(t, res.OK())
		require.NotNil(t, c)
		m := res.Match
		assert.Equal(t, "new-1", m.ID)
		assert.Equal(t, "new-2", m.HomeTeam.ID)
		assert.Equal(t, "blues", m.AwayTeam.ID)
		assert.Equal(t, club.MatchScheduled, m.Status)
		assert.Equal(t, club.DefaultMaxPlayers, m.MaxPlayers)
		assert.Equal(t, []string{"owner", "org"}, m.OrganiserIDs)
		assert.Contains(t, store.Matches, "new-1")
		assert.Equal(t, []remotesync.Op{remotesync.OpDetails}, queue.Ops())

		got, err := r.Get(context.Background(), "new-1")
		require.NoError(t, err)
		assert.Same(t, c, got)

		_, err = c.SetRSVP(as(owner), "", club.RSVPGoing)
		require.NoError(t, err)
		assert.Equal(t, []string{"new-1"}, observed)
	})

	tests := []struct {
		name string
		ctx  context.Context
		in   NewMatch
		kind club.RejectionKind
	}{
		{"no session", context.Background(), NewMatch{StartTime: kickoff}, club.KindAuthorization},
		{"negative capacity", as(owner), NewMatch{StartTime: kickoff, MaxPlayers: -1}, club.KindValidation},
		{"missing start", as(owner), NewMatch{}, club.KindValidation},
		{"same team twice", as(owner), NewMatch{StartTime: kickoff, HomeTeam: club.Team{ID: "x"}, AwayTeam: club.Team{ID: "x"}}, club.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := club.NewMock()
			r := newRegistry(store, remotesync.NewMockQueue(), nil)

			c, res, err := r.Create(tt.ctx, tt.in)

			require.NoError(t, err)
			assert.Nil(t, c)
			require.NotNil(t, res.Rejection)
			assert.Equal(t, tt.kind, res.Rejection.Kind)
			assert.Empty(t, store.Matches)
		})
	}

	t.Run("persistence failure is an error", func(t *testing.T) {
		store := club.NewMock()
		store.SaveMatchFunc = func(club.Match) error { return errors.New("disk full") }
		r := newRegistry(store, remotesync.NewMockQueue(), nil)

		c, _, err := r.Create(as(owner), NewMatch{StartTime: kickoff})

		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestRegistry_ConcurrentFirstGetsShareOneLoad(t *testing.T) {
	// Setup
	store := club.NewMock()
	store.Matches["m1"] = baseMatch()
	remote := remotesync.NewMockRemote()
	pulling := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	remote.PullFunc = func(string) (*club.Match, error) {
		once.Do(func() { close(pulling) })
		<-release
		stale := baseMatch()
		return &stale, nil
	}
	r := newRegistry(store, remotesync.NewMockQueue(), remote)

	// Execute
	results := make(chan *Coordinator, 2)
	for i := 0; i < 2; i++ {
		go func() {
			c, err := r.Get(context.Background(), "m1")
			assert.NoError(t, err)
			results <- c
		}()
	}
	<-pulling
	close(release)
	c1, c2 := <-results, <-results

	// Assert
	require.NotNil(t, c1)
	assert.Same(t, c1, c2)
	assert.Len(t, remote.PullCalls, 1)

	res, err := c1.SetRSVP(as(player("i")), "i", club.RSVPDeclined)
	require.NoError(t, err)
	require.True(t, res.OK())

	c3, err := r.Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Same(t, c1, c3)
	assert.Len(t, remote.PullCalls, 1, "a loaded match is never reconciled again")
	stored := store.Matches["m1"]
	assert.Equal(t, club.RSVPDeclined, stored.Participants[stored.Participant("i")].Status)
}

func TestRegistry_DeletedMatchIsNotServed(t *testing.T) {
	store := club.NewMock()
	store.Matches["m1"] = baseMatch()
	r := newRegistry(store, remotesync.NewMockQueue(), nil)

	c, err := r.Get(context.Background(), "m1")
	require.NoError(t, err)
	res, err := c.Delete(as(owner))
	require.NoError(t, err)
	require.True(t, res.OK())

	_, err = r.Get(context.Background(), "m1")
	assert.ErrorIs(t, err, club.ErrMatchNotFound)
	r.Flush()
}
