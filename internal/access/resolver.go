package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
)

// ActorResolver supplies the authenticated actor for the current call.
// A nil actor with a nil error means there is no session.
type ActorResolver interface {
	CurrentActor(ctx context.Context) (*Actor, error)
}

type ctxKey struct{}

// WithActor returns a context carrying the given actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor stored by WithActor, if any.
func FromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(ctxKey{}).(*Actor)
	return a
}

// ContextResolver resolves the actor placed on the context by WithActor.
type ContextResolver struct{}

func (ContextResolver) CurrentActor(ctx context.Context) (*Actor, error) {
	return FromContext(ctx), nil
}

// PlayerLookup is the part of the club store the player resolver needs.
type PlayerLookup interface {
	GetPlayer(playerID string) (*club.Player, error)
}

// PlayerResolver resolves an actor id to a stored player. Suspended and
// unknown players resolve to no session.
type PlayerResolver struct {
	Players PlayerLookup
}

// Resolve loads the player with the given id as an actor.
func (r PlayerResolver) Resolve(actorID string) (*Actor, error) {
	if actorID == "" {
		return nil, nil
	}
	p, err := r.Players.GetPlayer(actorID)
	if err != nil {
		if errors.Is(err, club.ErrPlayerNotFound) {
			log.Debug("Unknown actor", "actorID", actorID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve actor %s: %w", actorID, err)
	}
	if p.Suspended {
		log.Info("Suspended player has no session", "actorID", actorID)
		return nil, nil
	}
	return ActorFromPlayer(*p), nil
}
