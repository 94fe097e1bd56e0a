package club

import (
	"errors"
	"fmt"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCorruptSnapshot    = errors.New("corrupt snapshot")
)

// RejectionKind classifies a business-rule rejection.
type RejectionKind string

const (
	// KindValidation covers unknown participants or teams and malformed input.
	KindValidation RejectionKind = "validation"
	// KindAuthorization means the actor lacks the owner/organiser relationship.
	KindAuthorization RejectionKind = "authorization"
	// KindState means the target is in a terminal state.
	KindState RejectionKind = "state"
)

// Rejection is a business-rule outcome. It is reported inside an operation
// result, never returned as the operation's error, and leaves the snapshot
// unchanged.
type Rejection struct {
	Kind    RejectionKind `json:"kind"`
	Message string        `json:"message"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// Reject builds a rejection with a formatted user-facing message.
func Reject(kind RejectionKind, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
