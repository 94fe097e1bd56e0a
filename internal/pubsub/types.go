package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventApplyRatings asks the rating worker to apply a completed match.
	EventApplyRatings EventType = "apply-ratings"
	// EventMatchUpdated fans out a committed match snapshot.
	EventMatchUpdated EventType = "match-updated"
)
