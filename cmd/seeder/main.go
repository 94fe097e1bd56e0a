package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/database"
	"github.com/mauv0809/matchday/internal/league"
	"github.com/mauv0809/matchday/internal/lifecycle"
)

// Simplified config loading for the script
func loadConfig() string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok {
		log.Fatalf("Error: Required environment variable %s is not set.", "DB_NAME")
	}
	return dbName
}

func main() {
	log.Info("Starting database seeder...")
	dbName := loadConfig()

	db, teardown, err := database.InitDB(dbName, "", "")
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	store := club.New(db)
	admin := club.Player{ID: "seed-admin", Name: "Seeder Admin", Role: club.RoleAdmin}
	players := []club.Player{admin}
	for i := 1; i <= 12; i++ {
		players = append(players, club.Player{
			ID:     fmt.Sprintf("seed-player-%d", i),
			Name:   fmt.Sprintf("Seeder Player %d", i),
			Rating: 1100 + rand.Intn(200),
		})
	}
	for _, p := range players {
		if err := store.UpsertPlayer(p); err != nil {
			log.Fatalf("Failed to insert player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured seed players exist.", "count", len(players))

	ctx := access.WithActor(context.Background(), access.ActorFromPlayer(admin))
	startTime := time.Now()

	tournamentID := seedLeague(ctx, store)
	matchID := seedMatch(ctx, store, players[1:])

	log.Info("Seeding complete", "tournamentID", tournamentID, "matchID", matchID, "duration", time.Since(startTime))
}

// seedLeague creates a four-team round robin with results for every fixture.
func seedLeague(ctx context.Context, store club.ClubStore) string {
	manager := league.NewManager(store, nil, nil)
	res, err := manager.Create(ctx, "Seeded League", nil)
	mustApply("create tournament", res.Rejection, err)
	tournamentID := res.Tournament.ID

	var teamIDs []string
	for _, name := range []string{"Lions", "Tigers", "Bears", "Wolves"} {
		res, err := manager.AddTeam(ctx, tournamentID, name)
		mustApply("add team "+name, res.Rejection, err)
		teamIDs = append(teamIDs, res.TeamID)
	}

	kickoff := time.Now().AddDate(0, 0, -28)
	for i := 0; i < len(teamIDs); i++ {
		for j := i + 1; j < len(teamIDs); j++ {
			res, err := manager.ScheduleMatch(ctx, tournamentID, teamIDs[i], teamIDs[j], kickoff)
			mustApply("schedule fixture", res.Rejection, err)
			res, err = manager.RecordResult(ctx, tournamentID, res.FixtureID, rand.Intn(5), rand.Intn(5))
			mustApply("record result", res.Rejection, err)
			kickoff = kickoff.Add(48 * time.Hour)
		}
	}

	table, err := manager.Standings(tournamentID)
	if err != nil {
		log.Fatalf("Failed to compute standings: %s", err)
	}
	for i, row := range table {
		log.Info("Standing", "position", i+1, "team", row.TeamName, "points", row.Points, "gd", row.GoalDifference)
	}
	return tournamentID
}

// seedMatch creates an upcoming match with more takers than places, so the
// waitlist has entries.
func seedMatch(ctx context.Context, store club.ClubStore, players []club.Player) string {
	registry := lifecycle.NewRegistry(lifecycle.Deps{Store: store}, nil)
	c, res, err := registry.Create(ctx, lifecycle.NewMatch{
		HomeTeam:        club.Team{Name: "Bibs"},
		AwayTeam:        club.Team{Name: "Shirts"},
		Location:        "Seeded Pitch",
		StartTime:       time.Now().AddDate(0, 0, 7),
		Format:          "5-a-side",
		MaxPlayers:      10,
		RatingAffecting: true,
	})
	mustApply("create match", res.Rejection, err)
	m := res.Match

	for i, p := range players {
		teamID := m.HomeTeam.ID
		if i%2 == 1 {
			teamID = m.AwayTeam.ID
		}
		res, err := c.InviteParticipant(ctx, p.Name, p.Rating, teamID)
		mustApply("invite "+p.Name, res.Rejection, err)
		res, err = c.SetRSVP(ctx, res.ParticipantID, club.RSVPGoing)
		mustApply("rsvp "+p.Name, res.Rejection, err)
		if res.Message != "" {
			log.Info("Seed player waitlisted", "name", p.Name)
		}
	}
	return m.ID
}

func mustApply(step string, rej *club.Rejection, err error) {
	if err != nil {
		log.Fatalf("Failed to %s: %s", step, err)
	}
	if rej != nil {
		log.Fatalf("Seeder step %s was rejected: %s", step, rej)
	}
}
