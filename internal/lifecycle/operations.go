package lifecycle

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/remotesync"
	"github.com/mauv0809/matchday/internal/roster"
)

// SetRSVP records userID's attendance intent. Players may answer for
// themselves; answering for someone else needs invite permission. A first
// self-RSVP adds the actor to the bench. The subject's reminder follows the
// resulting status and a promoted participant gets one armed.
func (c *Coordinator) SetRSVP(ctx context.Context, userID string, desired club.RSVPStatus) (Result, error) {
	return c.mutate(ctx, "rsvp", remotesync.OpRSVP, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if !desired.Valid() {
			return club.Reject(club.KindValidation, "Unknown RSVP status %q.", desired)
		}
		if rej := lockedMatch(t.match); rej != nil {
			return rej
		}
		if userID == "" {
			userID = t.actor.ID
		}
		self := userID == t.actor.ID
		if !self && !access.CanInviteToMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can answer for other players.")
		}

		if t.match.Participant(userID) < 0 {
			if !self {
				return club.Reject(club.KindValidation, "Player %s is not on this match.", userID)
			}
			t.match.Participants = append(t.match.Participants, club.Participant{
				ID:            t.actor.ID,
				Name:          t.actor.Name,
				EloSnapshot:   t.actor.Rating,
				PositionGroup: club.BenchGroup,
				Status:        club.RSVPInvited,
				InvitedAt:     t.now,
			})
			log.Debug("Added self-RSVP participant to bench", "matchID", t.match.ID, "participantID", t.actor.ID)
		}

		r := roster.UpdateRSVP(t.match.Participants, userID, desired, t.match.MaxPlayers, t.now)
		t.result.Status = r.Status
		t.result.Message = r.Message
		t.result.ParticipantID = userID
		if r.Status == club.RSVPGoing {
			t.arm(userID)
		} else {
			t.disarm(userID)
		}
		if r.Promoted() {
			t.result.Promoted = []string{r.PromotedParticipantID}
			t.arm(r.PromotedParticipantID)
			c.countPromotions(1)
		}
		if c.deps.Metrics != nil {
			c.deps.Metrics.IncRSVPUpdates()
		}
		log.Info("Updated RSVP", "matchID", t.match.ID, "participantID", userID, "requested", desired, "status", r.Status, "promoted", r.PromotedParticipantID)
		return nil
	})
}

// AddEvent appends to the event log. Entry is allowed in every match state.
// The log stays ordered by minute, keeping entry order within a minute.
func (c *Coordinator) AddEvent(ctx context.Context, in EventInput) (Result, error) {
	return c.mutate(ctx, "add_event", remotesync.OpEvent, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if t.match.Deleted {
			return matchDeleted()
		}
		if !access.CanEnterMatchResult(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can record match events.")
		}
		if !in.Type.Valid() {
			return club.Reject(club.KindValidation, "Unknown event type %q.", in.Type)
		}
		if in.Minute < 0 {
			return club.Reject(club.KindValidation, "Minute cannot be negative.")
		}
		if t.match.Participant(in.PlayerID) < 0 {
			return club.Reject(club.KindValidation, "Player %s is not on this match.", in.PlayerID)
		}
		event := club.MatchEvent{
			ID:         c.deps.NewID(),
			Type:       in.Type,
			Minute:     in.Minute,
			PlayerID:   in.PlayerID,
			RecordedBy: t.actor.ID,
			CreatedAt:  t.now,
		}
		t.match.Events = append(t.match.Events, event)
		slices.SortStableFunc(t.match.Events, func(a, b club.MatchEvent) int {
			return cmp.Compare(a.Minute, b.Minute)
		})
		log.Info("Recorded match event", "matchID", t.match.ID, "type", event.Type, "minute", event.Minute, "playerID", event.PlayerID)
		return nil
	})
}

// InviteParticipant adds a named player to the bench as invited. Names are
// unique per match, ignoring case. An empty teamID leaves the player
// unassigned.
func (c *Coordinator) InviteParticipant(ctx context.Context, name string, rating int, teamID string) (Result, error) {
	return c.mutate(ctx, "invite", remotesync.OpRoster, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if rej := lockedMatch(t.match); rej != nil {
			return rej
		}
		if !access.CanInviteToMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can invite players.")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return club.Reject(club.KindValidation, "A name is required.")
		}
		if teamID != "" && !t.match.HasTeam(teamID) {
			return club.Reject(club.KindValidation, "Team %s is not playing in this match.", teamID)
		}
		for _, p := range t.match.Participants {
			if strings.EqualFold(p.Name, name) {
				return club.Reject(club.KindValidation, "%s is already on this match.", p.Name)
			}
		}
		if rating <= 0 {
			rating = club.DefaultRating
		}
		p := club.Participant{
			ID:            c.deps.NewID(),
			Name:          name,
			TeamID:        teamID,
			EloSnapshot:   rating,
			PositionGroup: club.BenchGroup,
			Status:        club.RSVPInvited,
			InvitedAt:     t.now,
		}
		t.match.Participants = append(t.match.Participants, p)
		t.result.ParticipantID = p.ID
		t.result.Status = p.Status
		log.Info("Invited participant", "matchID", t.match.ID, "participantID", p.ID, "name", p.Name)
		return nil
	})
}

// RemoveParticipant drops a participant from the roster. Removing a going
// participant frees a slot for the head of the waitlist.
func (c *Coordinator) RemoveParticipant(ctx context.Context, participantID string) (Result, error) {
	return c.mutate(ctx, "remove", remotesync.OpRoster, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if rej := lockedMatch(t.match); rej != nil {
			return rej
		}
		if !access.CanEditMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can remove players.")
		}
		idx := t.match.Participant(participantID)
		if idx < 0 {
			return club.Reject(club.KindValidation, "Player %s is not on this match.", participantID)
		}
		wasGoing := t.match.Participants[idx].Status == club.RSVPGoing
		t.match.Participants = slices.Delete(t.match.Participants, idx, idx+1)
		t.disarm(participantID)
		if wasGoing {
			if id := roster.PromoteNext(t.match.Participants, t.match.MaxPlayers); id != "" {
				t.result.Promoted = []string{id}
				t.arm(id)
				c.countPromotions(1)
			}
		}
		log.Info("Removed participant", "matchID", t.match.ID, "participantID", participantID, "promoted", t.result.Promoted)
		return nil
	})
}

// MoveToWaitlist puts a participant at the back of the waitlist. It does not
// promote anyone into a slot it frees.
func (c *Coordinator) MoveToWaitlist(ctx context.Context, participantID string) (Result, error) {
	return c.mutate(ctx, "move_to_waitlist", remotesync.OpRoster, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if rej := lockedMatch(t.match); rej != nil {
			return rej
		}
		if !access.CanEditMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can manage the waitlist.")
		}
		idx := t.match.Participant(participantID)
		if idx < 0 {
			return club.Reject(club.KindValidation, "Player %s is not on this match.", participantID)
		}
		r := roster.UpdateRSVP(t.match.Participants, participantID, club.RSVPWaitlisted, t.match.MaxPlayers, t.now)
		t.result.Status = r.Status
		t.result.ParticipantID = participantID
		t.disarm(participantID)
		log.Info("Moved participant to waitlist", "matchID", t.match.ID, "participantID", participantID)
		return nil
	})
}

// UpdateDetails edits descriptive fields and capacity. Capacity cannot drop
// below the number of going participants; raising it fills the new slots
// from the waitlist.
func (c *Coordinator) UpdateDetails(ctx context.Context, u DetailsUpdate) (Result, error) {
	return c.mutate(ctx, "update_details", remotesync.OpDetails, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if rej := lockedMatch(t.match); rej != nil {
			return rej
		}
		if !access.CanEditMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can edit this match.")
		}
		if u.MaxPlayers != nil {
			if *u.MaxPlayers <= 0 {
				return club.Reject(club.KindValidation, "Max players must be at least 1.")
			}
			if going := roster.CountGoing(t.match.Participants); *u.MaxPlayers < going {
				return club.Reject(club.KindValidation, "%d players are already going; max players cannot be lower.", going)
			}
			t.match.MaxPlayers = *u.MaxPlayers
		}
		if u.Location != nil {
			t.match.Location = *u.Location
		}
		if u.Format != nil {
			t.match.Format = *u.Format
		}
		if u.Notes != nil {
			t.match.Notes = *u.Notes
		}
		if u.RatingAffecting != nil {
			t.match.RatingAffecting = *u.RatingAffecting
		}
		promoted := roster.FillFreeSlots(t.match.Participants, t.match.MaxPlayers)
		for _, id := range promoted {
			t.arm(id)
		}
		t.result.Promoted = promoted
		c.countPromotions(len(promoted))
		log.Info("Updated match details", "matchID", t.match.ID, "maxPlayers", t.match.MaxPlayers, "promoted", len(promoted))
		return nil
	})
}

// Reschedule moves the kick-off and re-arms the reminders of every going
// participant for the new time.
func (c *Coordinator) Reschedule(ctx context.Context, start time.Time) (Result, error) {
	return c.mutate(ctx, "reschedule", remotesync.OpDetails, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if rej := lockedMatch(t.match); rej != nil {
			return rej
		}
		if !access.CanEditMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can reschedule this match.")
		}
		if start.IsZero() {
			return club.Reject(club.KindValidation, "A start time is required.")
		}
		t.match.StartTime = start
		for _, p := range t.match.Participants {
			if p.Status == club.RSVPGoing {
				t.arm(p.ID)
			}
		}
		log.Info("Rescheduled match", "matchID", t.match.ID, "start", start)
		return nil
	})
}

// Cancel ends the match and wipes its roster and event log. Reminders of the
// players who were going, and of the actor, are cancelled.
func (c *Coordinator) Cancel(ctx context.Context) (Result, error) {
	return c.mutate(ctx, "cancel", remotesync.OpCancel, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		switch {
		case t.match.Deleted:
			return matchDeleted()
		case t.match.Status == club.MatchCompleted:
			return club.Reject(club.KindState, "A completed match cannot be cancelled.")
		case t.match.Status == club.MatchCancelled:
			return club.Reject(club.KindState, "This match is already cancelled.")
		}
		if !access.CanEditMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can cancel this match.")
		}
		disarmGoing(t)
		t.match.Status = club.MatchCancelled
		t.match.Participants = []club.Participant{}
		t.match.Events = []club.MatchEvent{}
		log.Info("Cancelled match", "matchID", t.match.ID)
		return nil
	})
}

// Complete records the final score and locks the match. Negative scores are
// clamped to zero. Completing again overwrites the score.
func (c *Coordinator) Complete(ctx context.Context, home, away int) (Result, error) {
	return c.mutate(ctx, "complete", remotesync.OpComplete, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if t.match.Deleted {
			return matchDeleted()
		}
		if t.match.Status == club.MatchCancelled {
			return club.Reject(club.KindState, "A cancelled match cannot be completed.")
		}
		if !access.CanEnterMatchResult(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can enter the result.")
		}
		home, away = max(home, 0), max(away, 0)
		t.match.Status = club.MatchCompleted
		t.match.FinalHomeScore = &home
		t.match.FinalAwayScore = &away
		disarmGoing(t)
		log.Info("Completed match", "matchID", t.match.ID, "home", home, "away", away, "rated", t.match.RatingAffecting)
		return nil
	})
}

// Delete removes the match from the local store. The committed snapshot is
// a tombstone, so the remote copy is marked deleted on the next push.
func (c *Coordinator) Delete(ctx context.Context) (Result, error) {
	return c.mutate(ctx, "delete", remotesync.OpDelete, func(t *tx) *club.Rejection {
		if t.actor == nil {
			return noSession()
		}
		if t.match.Deleted {
			return matchDeleted()
		}
		if !access.CanEditMatch(t.actor, *t.match) {
			return club.Reject(club.KindAuthorization, "Only organisers can delete this match.")
		}
		if t.match.Status == club.MatchScheduled {
			disarmGoing(t)
		}
		t.match.Deleted = true
		log.Info("Deleted match", "matchID", t.match.ID)
		return nil
	})
}

// Deleted reports whether the match was deleted through this coordinator.
func (c *Coordinator) Deleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.match.Deleted
}

func disarmGoing(t *tx) {
	seen := map[string]bool{}
	for _, p := range t.match.Participants {
		if p.Status == club.RSVPGoing {
			seen[p.ID] = true
			t.disarm(p.ID)
		}
	}
	if !seen[t.actor.ID] {
		t.disarm(t.actor.ID)
	}
}

func (c *Coordinator) countPromotions(n int) {
	if c.deps.Metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		c.deps.Metrics.IncPromotions()
	}
}
