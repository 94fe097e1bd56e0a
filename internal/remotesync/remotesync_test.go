package remotesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/database"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/pubsub"
	"github.com/mauv0809/matchday/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(id string) club.Match {
	return club.Match{
		ID:         id,
		OwnerID:    "owner",
		Status:     club.MatchScheduled,
		MaxPlayers: 4,
		StartTime:  time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
		Participants: []club.Participant{
			{ID: "p1", Status: club.RSVPGoing, InvitedAt: time.Unix(10, 0).UTC()},
		},
	}
}

func TestSQLRemote_PushPull(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()
	remote := NewSQLRemote(db)
	ctx := context.Background()

	got, err := remote.Pull(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, got, "absent remote copy is not an error")

	m := snapshot("m1")
	require.NoError(t, remote.Push(ctx, m))
	m.Location = "Pitch 2"
	require.NoError(t, remote.Push(ctx, m))

	got, err = remote.Pull(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pitch 2", got.Location)
	assert.Equal(t, []string{"owner"}, got.OrganiserIDs)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, club.RSVPGoing, got.Participants[0].Status)
}

func TestSQLRemote_CorruptPayload(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec("INSERT INTO remote_snapshots (match_id, payload, pushed_at) VALUES ('bad', x'c1', 0)")
	require.NoError(t, err)

	_, err = NewSQLRemote(db).Pull(context.Background(), "bad")
	assert.ErrorIs(t, err, club.ErrCorruptSnapshot)
}

func TestOutbox_PushesAndPublishes(t *testing.T) {
	remote := NewMockRemote()
	publisher := pubsub.NewMock("TEST")
	o := NewOutbox(remote, publisher, metrics.NewMock(), 8)
	o.Start(context.Background())

	require.NoError(t, o.Enqueue(Task{Op: OpRSVP, MatchID: "m1", Snapshot: snapshot("m1")}))
	o.Close()

	require.Len(t, remote.Pushed(), 1)
	sent := publisher.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, pubsub.EventMatchUpdated, sent[0].Topic)
}

func TestOutbox_CompletionRequestsRatings(t *testing.T) {
	publisher := pubsub.NewMock("TEST")
	o := NewOutbox(nil, publisher, metrics.NewMock(), 8)
	o.Start(context.Background())

	m := snapshot("m1")
	home, away := 2, 1
	m.Status = club.MatchCompleted
	m.RatingAffecting = true
	m.FinalHomeScore, m.FinalAwayScore = &home, &away
	require.NoError(t, o.Enqueue(Task{Op: OpComplete, MatchID: "m1", Snapshot: m}))

	unrated := m.Clone()
	unrated.ID = "m2"
	unrated.RatingAffecting = false
	require.NoError(t, o.Enqueue(Task{Op: OpComplete, MatchID: "m2", Snapshot: unrated}))
	o.Close()

	var requests []rating.Request
	for _, call := range publisher.Sent() {
		if call.Topic == pubsub.EventApplyRatings {
			requests = append(requests, call.Data.(rating.Request))
		}
	}
	assert.Equal(t, []rating.Request{{MatchID: "m1", HomeScore: 2, AwayScore: 1}}, requests)
}

func TestOutbox_FailuresBecomeWarnings(t *testing.T) {
	boom := errors.New("remote unavailable")
	remote := NewMockRemote()
	remote.PushFunc = func(club.Match) error { return boom }
	metr := metrics.NewMock()
	o := NewOutbox(remote, nil, metr, 8)

	var mu sync.Mutex
	var warnings []SyncWarning
	o.OnWarning(func(w SyncWarning) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	})
	o.Start(context.Background())

	require.NoError(t, o.Enqueue(Task{Op: OpCancel, MatchID: "m1", Snapshot: snapshot("m1")}))
	o.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, warnings, 1)
	assert.Equal(t, OpCancel, warnings[0].Op)
	assert.ErrorIs(t, warnings[0], boom)
	assert.Equal(t, 1, metr.SyncFailures())
}

func TestOutbox_Backpressure(t *testing.T) {
	o := NewOutbox(nil, nil, metrics.NewMock(), 1)

	require.NoError(t, o.Enqueue(Task{Op: OpRSVP, MatchID: "m1"}))
	assert.ErrorIs(t, o.Enqueue(Task{Op: OpRSVP, MatchID: "m1"}), ErrQueueFull)

	o.Close()
	assert.ErrorIs(t, o.Enqueue(Task{Op: OpRSVP, MatchID: "m1"}), ErrClosed)
	o.Close()
}
