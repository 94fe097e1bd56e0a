package roster

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/mauv0809/matchday/internal/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func ptr(t time.Time) *time.Time { return &t }

func TestUpdateRSVP_FullMatchWaitlists(t *testing.T) {
	participants := []club.Participant{
		{ID: "a", Status: club.RSVPGoing, InvitedAt: at(1)},
		{ID: "b", Status: club.RSVPInvited, InvitedAt: at(2)},
	}

	res := UpdateRSVP(participants, "b", club.RSVPGoing, 1, at(100))

	assert.True(t, res.Found)
	assert.Equal(t, club.RSVPWaitlisted, res.Status)
	assert.Equal(t, MessageWaitlisted, res.Message)
	assert.False(t, res.Promoted())
	assert.Equal(t, club.RSVPWaitlisted, participants[1].Status)
	require.NotNil(t, participants[1].WaitlistedAt)
	assert.Equal(t, at(100), *participants[1].WaitlistedAt)
	assert.Equal(t, club.RSVPGoing, participants[0].Status)
}

func TestUpdateRSVP_DeclinePromotesEarliestWaitlisted(t *testing.T) {
	participants := []club.Participant{
		{ID: "x", Status: club.RSVPGoing, InvitedAt: at(1)},
		{ID: "y", Status: club.RSVPGoing, InvitedAt: at(2)},
		{ID: "late", Status: club.RSVPWaitlisted, InvitedAt: at(3), WaitlistedAt: ptr(at(700))},
		{ID: "early", Status: club.RSVPWaitlisted, InvitedAt: at(4), WaitlistedAt: ptr(at(500))},
	}

	res := UpdateRSVP(participants, "x", club.RSVPDeclined, 2, at(900))

	assert.Equal(t, club.RSVPDeclined, res.Status)
	assert.Equal(t, "early", res.PromotedParticipantID)
	assert.Equal(t, club.RSVPDeclined, participants[0].Status)
	assert.Equal(t, club.RSVPGoing, participants[3].Status)
	assert.Nil(t, participants[3].WaitlistedAt)
	assert.Equal(t, club.RSVPWaitlisted, participants[2].Status)
	assert.Equal(t, at(700), *participants[2].WaitlistedAt)
}

func TestUpdateRSVP_UnknownUser(t *testing.T) {
	participants := []club.Participant{{ID: "a", Status: club.RSVPInvited}}
	res := UpdateRSVP(participants, "nobody", club.RSVPGoing, 5, at(1))
	assert.False(t, res.Found)
	assert.Equal(t, club.RSVPInvited, participants[0].Status)
}

func TestUpdateRSVP_Idempotent(t *testing.T) {
	t.Run("going twice", func(t *testing.T) {
		participants := []club.Participant{
			{ID: "a", Status: club.RSVPGoing},
			{ID: "w", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(5))},
		}
		res := UpdateRSVP(participants, "a", club.RSVPGoing, 1, at(10))
		assert.Equal(t, club.RSVPGoing, res.Status)
		assert.Empty(t, res.Message)
		assert.False(t, res.Promoted())
	})

	t.Run("declined twice promotes once", func(t *testing.T) {
		participants := []club.Participant{
			{ID: "a", Status: club.RSVPGoing},
			{ID: "w1", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(5))},
			{ID: "w2", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(6))},
		}
		first := UpdateRSVP(participants, "a", club.RSVPDeclined, 1, at(10))
		assert.Equal(t, "w1", first.PromotedParticipantID)

		second := UpdateRSVP(participants, "a", club.RSVPDeclined, 1, at(11))
		assert.False(t, second.Promoted())
		assert.Equal(t, club.RSVPWaitlisted, participants[2].Status)
	})

	t.Run("waitlisted keeps original stamp", func(t *testing.T) {
		participants := []club.Participant{{ID: "w", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(5))}}
		res := UpdateRSVP(participants, "w", club.RSVPWaitlisted, 1, at(99))
		assert.Equal(t, club.RSVPWaitlisted, res.Status)
		assert.Equal(t, at(5), *participants[0].WaitlistedAt)
	})

	t.Run("full join retry keeps queue position", func(t *testing.T) {
		participants := []club.Participant{
			{ID: "a", Status: club.RSVPGoing},
			{ID: "b", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(5))},
		}
		res := UpdateRSVP(participants, "b", club.RSVPGoing, 1, at(99))
		assert.Equal(t, club.RSVPWaitlisted, res.Status)
		assert.Equal(t, at(5), *participants[1].WaitlistedAt)
	})
}

func TestUpdateRSVP_LeavingWaitlistClearsStamp(t *testing.T) {
	participants := []club.Participant{{ID: "w", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(5))}}
	res := UpdateRSVP(participants, "w", club.RSVPMaybe, 3, at(6))
	assert.Equal(t, club.RSVPMaybe, res.Status)
	assert.Nil(t, participants[0].WaitlistedAt)
}

func TestUpdateRSVP_DeclineWithoutFreeSlotDoesNotPromote(t *testing.T) {
	participants := []club.Participant{
		{ID: "a", Status: club.RSVPGoing},
		{ID: "m", Status: club.RSVPMaybe},
		{ID: "w", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(1))},
	}

	res := UpdateRSVP(participants, "m", club.RSVPDeclined, 1, at(2))

	assert.False(t, res.Promoted())
	assert.Equal(t, club.RSVPWaitlisted, participants[2].Status)
}

func TestWaitlistOrder(t *testing.T) {
	participants := []club.Participant{
		{ID: "tie-second", Status: club.RSVPWaitlisted, InvitedAt: at(1), WaitlistedAt: ptr(at(50))},
		{ID: "unstamped", Status: club.RSVPWaitlisted, InvitedAt: at(10)},
		{ID: "going", Status: club.RSVPGoing, InvitedAt: at(0)},
		{ID: "tie-first", Status: club.RSVPWaitlisted, InvitedAt: at(0), WaitlistedAt: ptr(at(50))},
		{ID: "same-a", Status: club.RSVPWaitlisted, InvitedAt: at(60), WaitlistedAt: ptr(at(60))},
		{ID: "same-b", Status: club.RSVPWaitlisted, InvitedAt: at(60), WaitlistedAt: ptr(at(60))},
	}

	got := Waitlist(participants)

	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"unstamped", "tie-first", "tie-second", "same-a", "same-b"}, ids)
}

func TestFillFreeSlots(t *testing.T) {
	participants := []club.Participant{
		{ID: "a", Status: club.RSVPGoing},
		{ID: "w1", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(1))},
		{ID: "w2", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(2))},
		{ID: "w3", Status: club.RSVPWaitlisted, WaitlistedAt: ptr(at(3))},
	}
	assert.Equal(t, []string{"w1", "w2"}, FillFreeSlots(participants, 3))
	assert.Equal(t, 3, CountGoing(participants))
	assert.Empty(t, FillFreeSlots(participants, 3))
}

func TestUpdateRSVP_CapacityNeverExceeded(t *testing.T) {
	statuses := []club.RSVPStatus{club.RSVPGoing, club.RSVPGoing, club.RSVPMaybe, club.RSVPDeclined, club.RSVPInvited, club.RSVPWaitlisted}
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		maxPlayers := 1 + rng.Intn(4)
		participants := make([]club.Participant, 2+rng.Intn(8))
		for i := range participants {
			participants[i] = club.Participant{ID: fmt.Sprintf("p%d", i), Status: club.RSVPInvited, InvitedAt: at(int64(i))}
		}
		for step := 0; step < 200; step++ {
			p := participants[rng.Intn(len(participants))]
			UpdateRSVP(participants, p.ID, statuses[rng.Intn(len(statuses))], maxPlayers, at(int64(1000+step)))
			require.LessOrEqual(t, CountGoing(participants), maxPlayers, "seed %d step %d", seed, step)
			for _, q := range participants {
				if q.Status == club.RSVPWaitlisted {
					require.NotNil(t, q.WaitlistedAt, "seed %d step %d", seed, step)
				} else {
					require.Nil(t, q.WaitlistedAt, "seed %d step %d", seed, step)
				}
			}
		}
	}
}
