package roster

import (
	"cmp"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
)

// MessageWaitlisted is reported when a join request hits the capacity limit.
const MessageWaitlisted = "Match is full. You were added to the waitlist."

// Result is the outcome of one RSVP update.
type Result struct {
	Found                 bool            `json:"found"`
	Status                club.RSVPStatus `json:"status,omitempty"`
	Message               string          `json:"message,omitempty"`
	PromotedParticipantID string          `json:"promoted_participant_id,omitempty"`
}

// Promoted reports whether a waitlisted participant took a freed slot.
func (r Result) Promoted() bool {
	return r.PromotedParticipantID != ""
}

// UpdateRSVP applies a participant's desired status to the roster in place,
// enforcing maxPlayers on going. A transition into declined frees a slot and
// promotes the head of the waitlist. An unknown userID leaves the roster
// untouched and reports Found=false.
//
// Callers must serialise calls per match.
func UpdateRSVP(participants []club.Participant, userID string, desired club.RSVPStatus, maxPlayers int, now time.Time) Result {
	idx := slices.IndexFunc(participants, func(p club.Participant) bool { return p.ID == userID })
	if idx < 0 {
		return Result{Found: false}
	}
	p := &participants[idx]
	previous := p.Status
	res := Result{Found: true}

	if desired == club.RSVPGoing {
		others := 0
		for i, o := range participants {
			if i != idx && o.Status == club.RSVPGoing {
				others++
			}
		}
		if others >= maxPlayers {
			p.Status = club.RSVPWaitlisted
			stampWaitlisted(p, now)
			res.Message = MessageWaitlisted
			log.Debug("Match full, participant waitlisted", "participantID", userID, "going", others, "maxPlayers", maxPlayers)
		} else {
			p.Status = club.RSVPGoing
			p.WaitlistedAt = nil
		}
	} else {
		p.Status = desired
		if desired == club.RSVPWaitlisted {
			stampWaitlisted(p, now)
		} else {
			p.WaitlistedAt = nil
		}
	}
	res.Status = p.Status

	if p.Status == club.RSVPDeclined && previous != club.RSVPDeclined {
		res.PromotedParticipantID = PromoteNext(participants, maxPlayers)
	}
	return res
}

func stampWaitlisted(p *club.Participant, now time.Time) {
	if p.WaitlistedAt == nil {
		t := now
		p.WaitlistedAt = &t
	}
}

// CountGoing returns the number of participants currently going.
func CountGoing(participants []club.Participant) int {
	n := 0
	for _, p := range participants {
		if p.Status == club.RSVPGoing {
			n++
		}
	}
	return n
}

// queuedAt is the waitlist key: the waitlist stamp, or the invite time when
// the participant was never stamped.
func queuedAt(p club.Participant) time.Time {
	if p.WaitlistedAt != nil {
		return *p.WaitlistedAt
	}
	return p.InvitedAt
}

// waitlistIndexes returns the roster positions of waitlisted participants in
// queue order. Ties fall back to invite time, then roster position.
func waitlistIndexes(participants []club.Participant) []int {
	var idx []int
	for i, p := range participants {
		if p.Status == club.RSVPWaitlisted {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		pa, pb := participants[a], participants[b]
		if c := queuedAt(pa).Compare(queuedAt(pb)); c != 0 {
			return c
		}
		if c := pa.InvitedAt.Compare(pb.InvitedAt); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return idx
}

// Waitlist returns copies of the waitlisted participants in promotion order.
func Waitlist(participants []club.Participant) []club.Participant {
	idx := waitlistIndexes(participants)
	out := make([]club.Participant, 0, len(idx))
	for _, i := range idx {
		out = append(out, participants[i])
	}
	return out
}

// PromoteNext moves the head of the waitlist to going when a slot is free and
// returns its id, or "" when nothing was promoted.
func PromoteNext(participants []club.Participant, maxPlayers int) string {
	if CountGoing(participants) >= maxPlayers {
		return ""
	}
	idx := waitlistIndexes(participants)
	if len(idx) == 0 {
		return ""
	}
	next := &participants[idx[0]]
	next.Status = club.RSVPGoing
	next.WaitlistedAt = nil
	log.Info("Promoted waitlisted participant", "participantID", next.ID)
	return next.ID
}

// FillFreeSlots promotes from the waitlist until the match is full or the
// waitlist is empty and returns the promoted ids in order.
func FillFreeSlots(participants []club.Participant, maxPlayers int) []string {
	var promoted []string
	for {
		id := PromoteNext(participants, maxPlayers)
		if id == "" {
			return promoted
		}
		promoted = append(promoted, id)
	}
}
