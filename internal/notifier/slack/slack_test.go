package slack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	scheduleFunc func(channelID, postAt string) (string, string, error)
	deleteFunc   func(params *slackapi.DeleteScheduledMessageParameters) (bool, error)

	scheduled []string
	deleted   []string
}

func (m *mockSlackAPI) ScheduleMessageContext(ctx context.Context, channelID, postAt string, options ...slackapi.MsgOption) (string, string, error) {
	m.scheduled = append(m.scheduled, channelID+"@"+postAt)
	if m.scheduleFunc != nil {
		return m.scheduleFunc(channelID, postAt)
	}
	return "D123", "Q123", nil
}

func (m *mockSlackAPI) DeleteScheduledMessageContext(ctx context.Context, params *slackapi.DeleteScheduledMessageParameters) (bool, error) {
	m.deleted = append(m.deleted, params.ScheduledMessageID)
	if m.deleteFunc != nil {
		return m.deleteFunc(params)
	}
	return true, nil
}

var now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func directory() *club.MockStore {
	store := club.NewMock()
	slackID := "U1"
	store.Players["p1"] = club.Player{ID: "p1", Name: "Player One", SlackUserID: &slackID}
	store.Players["p2"] = club.Player{ID: "p2", Name: "No Slack"}
	return store
}

func newTestReminders(api slackClient) (*Reminders, *metrics.Mock) {
	m := metrics.NewMock()
	r := NewRemindersWithAPI(api, directory(), time.Hour, m)
	r.now = func() time.Time { return now }
	return r, m
}

func TestSchedule(t *testing.T) {
	api := &mockSlackAPI{}
	r, m := newTestReminders(api)
	start := now.Add(3 * time.Hour)

	err := r.Schedule(context.Background(), "m1", "p1", "Friday five-a-side", start)

	require.NoError(t, err)
	require.Len(t, api.scheduled, 1)
	assert.Equal(t, "U1@1775041200", api.scheduled[0], "posted to the player's Slack id one hour before start")
	assert.Equal(t, 1, m.RemindersScheduled())
}

func TestSchedule_Skips(t *testing.T) {
	t.Run("player without slack", func(t *testing.T) {
		api := &mockSlackAPI{}
		r, _ := newTestReminders(api)
		require.NoError(t, r.Schedule(context.Background(), "m1", "p2", "Match", now.Add(3*time.Hour)))
		assert.Empty(t, api.scheduled)
	})

	t.Run("unknown player", func(t *testing.T) {
		api := &mockSlackAPI{}
		r, _ := newTestReminders(api)
		require.NoError(t, r.Schedule(context.Background(), "m1", "nobody", "Match", now.Add(3*time.Hour)))
		assert.Empty(t, api.scheduled)
	})

	t.Run("reminder time passed", func(t *testing.T) {
		api := &mockSlackAPI{}
		r, _ := newTestReminders(api)
		require.NoError(t, r.Schedule(context.Background(), "m1", "p1", "Match", now.Add(30*time.Minute)))
		assert.Empty(t, api.scheduled)
	})
}

func TestSchedule_ReplacesExistingReminder(t *testing.T) {
	api := &mockSlackAPI{}
	r, m := newTestReminders(api)

	require.NoError(t, r.Schedule(context.Background(), "m1", "p1", "Match", now.Add(3*time.Hour)))
	require.NoError(t, r.Schedule(context.Background(), "m1", "p1", "Match", now.Add(5*time.Hour)))

	assert.Len(t, api.scheduled, 2)
	assert.Equal(t, []string{"Q123"}, api.deleted)
	assert.Equal(t, 2, m.RemindersScheduled())
	assert.Equal(t, 1, m.RemindersCancelled())
}

func TestSchedule_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{scheduleFunc: func(string, string) (string, string, error) { return "", "", expectedErr }}
	r, m := newTestReminders(api)

	err := r.Schedule(context.Background(), "m1", "p1", "Match", now.Add(3*time.Hour))

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, m.RemindersScheduled())
}

func TestCancel(t *testing.T) {
	api := &mockSlackAPI{}
	r, m := newTestReminders(api)

	require.NoError(t, r.Cancel(context.Background(), "m1", "p1"), "nothing armed is not an error")
	assert.Empty(t, api.deleted)

	require.NoError(t, r.Schedule(context.Background(), "m1", "p1", "Match", now.Add(3*time.Hour)))
	require.NoError(t, r.Cancel(context.Background(), "m1", "p1"))
	require.NoError(t, r.Cancel(context.Background(), "m1", "p1"))

	assert.Equal(t, []string{"Q123"}, api.deleted)
	assert.Equal(t, 1, m.RemindersCancelled())
}

func TestReminders_AgainstSlackAPI(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		calls[req.URL.Path]++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch req.URL.Path {
		case "/chat.scheduleMessage":
			_ = req.ParseForm()
			assert.Equal(t, "U1", req.Form.Get("channel"))
			assert.Contains(t, req.Form.Get("blocks"), "Match reminder")
			assert.Contains(t, req.Form.Get("text"), "*Match*")
			_, _ = w.Write([]byte(`{"ok":true,"channel":"D1","scheduled_message_id":"Q1","post_at":1775041200}`))
		case "/chat.deleteScheduledMessage":
			_ = req.ParseForm()
			assert.Equal(t, "Q1", req.Form.Get("scheduled_message_id"))
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	m := metrics.NewMock()
	r := NewReminders("xoxb-test", directory(), time.Hour, m, slackapi.OptionAPIURL(srv.URL+"/"))
	r.now = func() time.Time { return now }

	require.NoError(t, r.Schedule(context.Background(), "m1", "p1", "Match", now.Add(3*time.Hour)))
	require.NoError(t, r.Cancel(context.Background(), "m1", "p1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls["/chat.scheduleMessage"])
	assert.Equal(t, 1, calls["/chat.deleteScheduledMessage"])
}

func TestFormatReminder(t *testing.T) {
	start := time.Date(2026, 4, 3, 18, 30, 0, 0, time.UTC)

	blocks := FormatReminder("Reds vs Blues", start, time.Hour)

	require.Len(t, blocks, 3)
	assert.Equal(t, slackapi.MBTHeader, blocks[0].BlockType())
	section, ok := blocks[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Reds vs Blues\nKick-off: Friday 03 Apr, 18:30", section.Text.Text)
	assert.Equal(t, slackapi.MBTContext, blocks[2].BlockType())

	assert.Len(t, FormatReminder("Match", start, 0), 2, "no lead, no context line")
}
