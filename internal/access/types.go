package access

import (
	"time"

	"github.com/mauv0809/matchday/internal/club"
)

// CoachSubscription is the state of an actor's paid coach plan.
type CoachSubscription struct {
	Status    club.CoachStatus
	ExpiresAt *time.Time
}

// Actor is the authenticated user an operation runs on behalf of. A nil
// *Actor means there is no session.
type Actor struct {
	ID        string
	Name      string
	Rating    int
	Role      club.Role
	Suspended bool
	Coach     *CoachSubscription
}

// ActorFromPlayer builds an Actor from a stored player record.
func ActorFromPlayer(p club.Player) *Actor {
	a := &Actor{
		ID:        p.ID,
		Name:      p.Name,
		Rating:    p.Rating,
		Role:      p.Role,
		Suspended: p.Suspended,
	}
	if p.CoachStatus != club.CoachNone {
		a.Coach = &CoachSubscription{Status: p.CoachStatus, ExpiresAt: p.CoachExpiresAt}
	}
	return a
}
