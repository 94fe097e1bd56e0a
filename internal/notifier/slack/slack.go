package slack

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	ScheduleMessageContext(ctx context.Context, channelID, postAt string, options ...slack.MsgOption) (string, string, error)
	DeleteScheduledMessageContext(ctx context.Context, params *slack.DeleteScheduledMessageParameters) (bool, error)
}

// Directory looks up the Slack identity of a player.
type Directory interface {
	GetPlayer(playerID string) (*club.Player, error)
}

var _ notifier.Scheduler = &Reminders{}

type reminderKey struct {
	matchID string
	userID  string
}

type scheduledMessage struct {
	channelID string
	messageID string
}

// Reminders schedules match reminders as Slack direct messages posted a fixed
// lead time before kick-off.
type Reminders struct {
	api       slackClient
	directory Directory
	metrics   metrics.Metrics
	lead      time.Duration
	now       func() time.Time

	mu        sync.Mutex
	scheduled map[reminderKey]scheduledMessage
}

// NewReminders creates a Slack-backed reminder scheduler.
func NewReminders(token string, directory Directory, lead time.Duration, metrics metrics.Metrics, options ...slack.Option) *Reminders {
	return NewRemindersWithAPI(slack.New(token, options...), directory, lead, metrics)
}

// NewRemindersWithAPI creates a scheduler with a specific Slack API instance.
// Useful for tests that need to intercept API calls.
func NewRemindersWithAPI(api slackClient, directory Directory, lead time.Duration, metrics metrics.Metrics) *Reminders {
	return &Reminders{
		api:       api,
		directory: directory,
		metrics:   metrics,
		lead:      lead,
		now:       time.Now,
		scheduled: make(map[reminderKey]scheduledMessage),
	}
}

// Schedule arms a reminder for the player, replacing any reminder already
// armed for the same match. Players without a Slack account and reminders
// whose post time has passed are skipped.
func (r *Reminders) Schedule(ctx context.Context, matchID, userID, title string, start time.Time) error {
	postAt := start.Add(-r.lead)
	if !postAt.After(r.now()) {
		log.Debug("Reminder time already passed, skipping", "matchID", matchID, "userID", userID, "postAt", postAt)
		return nil
	}

	slackID, err := r.slackUser(userID)
	if err != nil {
		return err
	}
	if slackID == "" {
		log.Debug("Player has no Slack account, skipping reminder", "matchID", matchID, "userID", userID)
		return nil
	}

	if err := r.Cancel(ctx, matchID, userID); err != nil {
		log.Warn("Failed to replace existing reminder", "error", err, "matchID", matchID, "userID", userID)
	}

	channelID, messageID, err := r.api.ScheduleMessageContext(ctx, slackID, strconv.FormatInt(postAt.Unix(), 10),
		slack.MsgOptionText(reminderText(title, start), false),
		slack.MsgOptionBlocks(FormatReminder(title, start, r.lead)...),
	)
	if err != nil {
		log.Error("Failed to schedule Slack reminder", "error", err, "matchID", matchID, "userID", userID)
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}

	r.mu.Lock()
	r.scheduled[reminderKey{matchID, userID}] = scheduledMessage{channelID: channelID, messageID: messageID}
	r.mu.Unlock()

	r.metrics.IncRemindersScheduled()
	log.Info("Scheduled match reminder", "matchID", matchID, "userID", userID, "postAt", postAt, "scheduledMessageID", messageID)
	return nil
}

// Cancel removes the player's reminder for the match, if one is armed.
func (r *Reminders) Cancel(ctx context.Context, matchID, userID string) error {
	key := reminderKey{matchID, userID}
	r.mu.Lock()
	msg, ok := r.scheduled[key]
	delete(r.scheduled, key)
	r.mu.Unlock()
	if !ok {
		return nil
	}

	_, err := r.api.DeleteScheduledMessageContext(ctx, &slack.DeleteScheduledMessageParameters{
		Channel:            msg.channelID,
		ScheduledMessageID: msg.messageID,
	})
	if err != nil {
		log.Error("Failed to delete scheduled Slack reminder", "error", err, "matchID", matchID, "userID", userID)
		return fmt.Errorf("failed to cancel reminder: %w", err)
	}
	r.metrics.IncRemindersCancelled()
	log.Info("Cancelled match reminder", "matchID", matchID, "userID", userID)
	return nil
}

func (r *Reminders) slackUser(userID string) (string, error) {
	p, err := r.directory.GetPlayer(userID)
	if err != nil {
		if errors.Is(err, club.ErrPlayerNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up player %s: %w", userID, err)
	}
	if p.SlackUserID == nil {
		return "", nil
	}
	return *p.SlackUserID, nil
}
