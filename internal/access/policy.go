package access

import (
	"slices"
	"time"

	"github.com/mauv0809/matchday/internal/club"
)

func authenticated(a *Actor) bool {
	return a != nil && a.ID != "" && (a.Role == club.RolePlayer || a.Role == club.RoleAdmin)
}

func isAdmin(a *Actor) bool {
	return a != nil && a.Role == club.RoleAdmin
}

// manages reports whether the actor is an admin, the owner, or one of the organisers.
func manages(a *Actor, ownerID string, organiserIDs []string) bool {
	if !authenticated(a) {
		return false
	}
	if isAdmin(a) {
		return true
	}
	return a.ID == ownerID || slices.Contains(organiserIDs, a.ID)
}

func CanCreateMatch(a *Actor) bool      { return authenticated(a) }
func CanCreateTournament(a *Actor) bool { return authenticated(a) }
func CanManageUsersAsAdmin(a *Actor) bool {
	return authenticated(a) && isAdmin(a)
}

func CanEditMatch(a *Actor, m club.Match) bool {
	return manages(a, m.OwnerID, m.OrganiserIDs)
}

func CanInviteToMatch(a *Actor, m club.Match) bool {
	return manages(a, m.OwnerID, m.OrganiserIDs)
}

func CanEnterMatchResult(a *Actor, m club.Match) bool {
	return manages(a, m.OwnerID, m.OrganiserIDs)
}

func CanEditTournament(a *Actor, t club.Tournament) bool {
	return manages(a, t.OwnerID, t.OrganiserIDs)
}

func CanEnterTournamentResult(a *Actor, t club.Tournament) bool {
	return manages(a, t.OwnerID, t.OrganiserIDs)
}

func CanManageTournamentTeams(a *Actor, t club.Tournament) bool {
	return manages(a, t.OwnerID, t.OrganiserIDs)
}

func CanCreateTournamentMatch(a *Actor, t club.Tournament) bool {
	return manages(a, t.OwnerID, t.OrganiserIDs)
}

// activeCoach reports whether the actor holds a coach subscription that is
// active and not past its expiry at now.
func activeCoach(a *Actor, now time.Time) bool {
	if !authenticated(a) || a.Coach == nil {
		return false
	}
	if a.Coach.Status != club.CoachActive {
		return false
	}
	return a.Coach.ExpiresAt == nil || now.Before(*a.Coach.ExpiresAt)
}

func CanCreateCoachSession(a *Actor, now time.Time) bool   { return activeCoach(a, now) }
func CanSearchPlayersAsCoach(a *Actor, now time.Time) bool { return activeCoach(a, now) }
func CanMessagePlayersAsCoach(a *Actor, now time.Time) bool {
	return activeCoach(a, now)
}
