package slack

import (
	"fmt"
	"time"

	"github.com/slack-go/slack"
)

const reminderTimeFormat = "Monday 02 Jan, 15:04"

// reminderText is the plain fallback shown in notifications.
func reminderText(title string, start time.Time) string {
	return fmt.Sprintf(":soccer: Reminder: *%s* starts at %s", title, start.Format(reminderTimeFormat))
}

// FormatReminder creates the Block Kit body of a match reminder.
func FormatReminder(title string, start time.Time, lead time.Duration) []slack.Block {
	blocks := make([]slack.Block, 0, 3)

	// Header - The Header block itself provides bolding.
	headerText := slack.NewTextBlockObject("plain_text", "⚽ Match reminder ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s\nKick-off: %s", title, start.Format(reminderTimeFormat))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if lead > 0 {
		contextText := fmt.Sprintf("Starts in %s. Can't make it? Update your RSVP so someone from the waitlist can play.", lead.Round(time.Minute))
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))
	}
	return blocks
}
