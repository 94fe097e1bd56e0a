package club

import "slices"

// Clone returns a deep copy so a coordinator can mutate a working copy and
// discard it when persistence fails.
func (m Match) Clone() Match {
	out := m
	out.HomeTeam = m.HomeTeam.clone()
	out.AwayTeam = m.AwayTeam.clone()
	out.Participants = make([]Participant, len(m.Participants))
	for i, p := range m.Participants {
		if p.WaitlistedAt != nil {
			t := *p.WaitlistedAt
			p.WaitlistedAt = &t
		}
		out.Participants[i] = p
	}
	out.Events = slices.Clone(m.Events)
	out.OrganiserIDs = slices.Clone(m.OrganiserIDs)
	if m.FinalHomeScore != nil {
		v := *m.FinalHomeScore
		out.FinalHomeScore = &v
	}
	if m.FinalAwayScore != nil {
		v := *m.FinalAwayScore
		out.FinalAwayScore = &v
	}
	return out
}

func (t Team) clone() Team {
	t.Members = slices.Clone(t.Members)
	return t
}

// Participant returns the index of the participant with the given id, or -1.
func (m *Match) Participant(id string) int {
	return slices.IndexFunc(m.Participants, func(p Participant) bool { return p.ID == id })
}

// HasTeam reports whether teamID is one of the match's two sides.
func (m *Match) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == m.HomeTeam.ID || teamID == m.AwayTeam.ID)
}

// Clone returns a deep copy of the tournament.
func (t Tournament) Clone() Tournament {
	out := t
	out.Teams = make([]Team, len(t.Teams))
	for i, team := range t.Teams {
		out.Teams[i] = team.clone()
	}
	out.Matches = make([]TournamentMatch, len(t.Matches))
	for i, m := range t.Matches {
		if m.HomeScore != nil {
			v := *m.HomeScore
			m.HomeScore = &v
		}
		if m.AwayScore != nil {
			v := *m.AwayScore
			m.AwayScore = &v
		}
		out.Matches[i] = m
	}
	out.OrganiserIDs = slices.Clone(t.OrganiserIDs)
	return out
}

// Team returns the registered team with the given id.
func (t *Tournament) Team(id string) (Team, bool) {
	i := slices.IndexFunc(t.Teams, func(team Team) bool { return team.ID == id })
	if i < 0 {
		return Team{}, false
	}
	return t.Teams[i], true
}

// NormalizeOrganisers returns the organiser list with the owner first,
// followed by the remaining ids in first-seen order with duplicates and
// empty ids dropped.
func NormalizeOrganisers(ownerID string, ids []string) []string {
	out := make([]string, 0, len(ids)+1)
	seen := make(map[string]struct{}, len(ids)+1)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(ownerID)
	for _, id := range ids {
		add(id)
	}
	return out
}
