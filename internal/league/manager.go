package league

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/standings"
)

// NewManager creates a tournament manager. A nil resolver reads the actor
// from the context.
func NewManager(store Store, actors access.ActorResolver, metrics metrics.Metrics, options ...Option) *Manager {
	if actors == nil {
		actors = access.ContextResolver{}
	}
	m := &Manager{
		store:   store,
		actors:  actors,
		metrics: metrics,
		newID:   uuid.NewString,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *Manager) lock(tournamentID string) func() {
	m.mu.Lock()
	l, ok := m.locks[tournamentID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[tournamentID] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// mutate loads the tournament, applies fn to a copy and saves it unless fn
// rejects.
func (m *Manager) mutate(ctx context.Context, op, tournamentID string, fn func(a *access.Actor, t *club.Tournament, res *Result) *club.Rejection) (Result, error) {
	start := time.Now()
	defer func() {
		if m.metrics != nil {
			m.metrics.ObserveOperationDuration("tournament_"+op, time.Since(start).Seconds())
		}
	}()

	actor, err := m.actors.CurrentActor(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve current actor: %w", err)
	}

	unlock := m.lock(tournamentID)
	defer unlock()

	current, err := m.store.LoadTournament(tournamentID)
	if err != nil {
		return Result{}, err
	}
	working := current.Clone()
	res := Result{}

	if actor == nil {
		return m.reject(op, *current, club.Reject(club.KindAuthorization, "You need to be signed in."))
	}
	if rej := fn(actor, &working, &res); rej != nil {
		return m.reject(op, *current, rej)
	}

	if err := m.store.SaveTournament(working); err != nil {
		log.Error("Failed to persist tournament", "error", err, "op", op, "tournamentID", tournamentID)
		return Result{}, fmt.Errorf("failed to persist tournament %s: %w", tournamentID, err)
	}
	res.Tournament = working.Clone()
	return res, nil
}

func (m *Manager) reject(op string, t club.Tournament, rej *club.Rejection) (Result, error) {
	log.Info("Rejected tournament operation", "op", op, "tournamentID", t.ID, "kind", rej.Kind, "reason", rej.Message)
	if m.metrics != nil {
		m.metrics.IncRejected(string(rej.Kind))
	}
	return Result{Tournament: t, Rejection: rej}, nil
}

// Create persists an empty tournament owned by the current actor.
func (m *Manager) Create(ctx context.Context, name string, organiserIDs []string) (Result, error) {
	actor, err := m.actors.CurrentActor(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve current actor: %w", err)
	}
	if !access.CanCreateTournament(actor) {
		return Result{Rejection: club.Reject(club.KindAuthorization, "You need to be signed in.")}, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{Rejection: club.Reject(club.KindValidation, "A tournament name is required.")}, nil
	}
	t := club.Tournament{
		SchemaVersion: club.CurrentSchemaVersion,
		ID:            m.newID(),
		Name:          name,
		Teams:         []club.Team{},
		Matches:       []club.TournamentMatch{},
		OwnerID:       actor.ID,
		OrganiserIDs:  club.NormalizeOrganisers(actor.ID, organiserIDs),
		Dispute:       club.DisputeNone,
	}
	if err := m.store.SaveTournament(t); err != nil {
		return Result{}, fmt.Errorf("failed to persist new tournament: %w", err)
	}
	log.Info("Created tournament", "tournamentID", t.ID, "name", t.Name, "ownerID", actor.ID)
	return Result{Tournament: t}, nil
}

// AddTeam registers a team. Team names are unique per tournament, ignoring case.
func (m *Manager) AddTeam(ctx context.Context, tournamentID, name string) (Result, error) {
	return m.mutate(ctx, "add_team", tournamentID, func(a *access.Actor, t *club.Tournament, res *Result) *club.Rejection {
		if !access.CanManageTournamentTeams(a, *t) {
			return club.Reject(club.KindAuthorization, "Only organisers can manage teams.")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return club.Reject(club.KindValidation, "A team name is required.")
		}
		for _, team := range t.Teams {
			if strings.EqualFold(team.Name, name) {
				return club.Reject(club.KindValidation, "Team %s already exists.", team.Name)
			}
		}
		team := club.Team{ID: m.newID(), Name: name, Members: []club.Player{}}
		t.Teams = append(t.Teams, team)
		res.TeamID = team.ID
		log.Info("Added tournament team", "tournamentID", t.ID, "teamID", team.ID, "name", name)
		return nil
	})
}

// RemoveTeam unregisters a team that has no fixtures.
func (m *Manager) RemoveTeam(ctx context.Context, tournamentID, teamID string) (Result, error) {
	return m.mutate(ctx, "remove_team", tournamentID, func(a *access.Actor, t *club.Tournament, res *Result) *club.Rejection {
		if !access.CanManageTournamentTeams(a, *t) {
			return club.Reject(club.KindAuthorization, "Only organisers can manage teams.")
		}
		idx := slices.IndexFunc(t.Teams, func(team club.Team) bool { return team.ID == teamID })
		if idx < 0 {
			return club.Reject(club.KindValidation, "Team %s is not in this tournament.", teamID)
		}
		for _, f := range t.Matches {
			if f.HomeTeamID == teamID || f.AwayTeamID == teamID {
				return club.Reject(club.KindValidation, "Team %s already has fixtures.", t.Teams[idx].Name)
			}
		}
		t.Teams = slices.Delete(t.Teams, idx, idx+1)
		res.TeamID = teamID
		log.Info("Removed tournament team", "tournamentID", t.ID, "teamID", teamID)
		return nil
	})
}

// ScheduleMatch adds a fixture between two registered teams.
func (m *Manager) ScheduleMatch(ctx context.Context, tournamentID, homeTeamID, awayTeamID string, start time.Time) (Result, error) {
	return m.mutate(ctx, "schedule_match", tournamentID, func(a *access.Actor, t *club.Tournament, res *Result) *club.Rejection {
		if !access.CanCreateTournamentMatch(a, *t) {
			return club.Reject(club.KindAuthorization, "Only organisers can schedule fixtures.")
		}
		if homeTeamID == awayTeamID {
			return club.Reject(club.KindValidation, "A fixture needs two different teams.")
		}
		for _, id := range []string{homeTeamID, awayTeamID} {
			if _, ok := t.Team(id); !ok {
				return club.Reject(club.KindValidation, "Team %s is not in this tournament.", id)
			}
		}
		f := club.TournamentMatch{
			ID:         m.newID(),
			HomeTeamID: homeTeamID,
			AwayTeamID: awayTeamID,
			StartTime:  start,
			Status:     club.FixtureScheduled,
		}
		t.Matches = append(t.Matches, f)
		res.FixtureID = f.ID
		log.Info("Scheduled tournament fixture", "tournamentID", t.ID, "fixtureID", f.ID, "home", homeTeamID, "away", awayTeamID)
		return nil
	})
}

// RecordResult enters a fixture's score and marks it completed. Negative
// scores are clamped to zero; recording again overwrites the score.
func (m *Manager) RecordResult(ctx context.Context, tournamentID, fixtureID string, home, away int) (Result, error) {
	return m.mutate(ctx, "record_result", tournamentID, func(a *access.Actor, t *club.Tournament, res *Result) *club.Rejection {
		if !access.CanEnterTournamentResult(a, *t) {
			return club.Reject(club.KindAuthorization, "Only organisers can enter results.")
		}
		idx := slices.IndexFunc(t.Matches, func(f club.TournamentMatch) bool { return f.ID == fixtureID })
		if idx < 0 {
			return club.Reject(club.KindValidation, "Fixture %s is not in this tournament.", fixtureID)
		}
		home, away = max(home, 0), max(away, 0)
		f := &t.Matches[idx]
		f.HomeScore = &home
		f.AwayScore = &away
		f.Status = club.FixtureCompleted
		f.Completed = true
		res.FixtureID = fixtureID
		log.Info("Recorded tournament result", "tournamentID", t.ID, "fixtureID", fixtureID, "home", home, "away", away)
		return nil
	})
}

// OpenDispute flags the tournament's results as disputed.
func (m *Manager) OpenDispute(ctx context.Context, tournamentID string) (Result, error) {
	return m.mutate(ctx, "open_dispute", tournamentID, func(a *access.Actor, t *club.Tournament, res *Result) *club.Rejection {
		if !access.CanEditTournament(a, *t) {
			return club.Reject(club.KindAuthorization, "Only organisers can open a dispute.")
		}
		if t.Dispute == club.DisputeOpen {
			return club.Reject(club.KindState, "A dispute is already open.")
		}
		t.Dispute = club.DisputeOpen
		log.Info("Opened tournament dispute", "tournamentID", t.ID, "actorID", a.ID)
		return nil
	})
}

// ResolveDispute closes an open dispute.
func (m *Manager) ResolveDispute(ctx context.Context, tournamentID string) (Result, error) {
	return m.mutate(ctx, "resolve_dispute", tournamentID, func(a *access.Actor, t *club.Tournament, res *Result) *club.Rejection {
		if !access.CanEditTournament(a, *t) {
			return club.Reject(club.KindAuthorization, "Only organisers can resolve a dispute.")
		}
		if t.Dispute != club.DisputeOpen {
			return club.Reject(club.KindState, "There is no open dispute.")
		}
		t.Dispute = club.DisputeResolved
		log.Info("Resolved tournament dispute", "tournamentID", t.ID, "actorID", a.ID)
		return nil
	})
}

// Standings returns the current table of a tournament.
func (m *Manager) Standings(tournamentID string) ([]standings.Row, error) {
	t, err := m.store.LoadTournament(tournamentID)
	if err != nil {
		return nil, err
	}
	return standings.Calculate(*t), nil
}
