package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/config"
	"github.com/mauv0809/matchday/internal/database"
	server "github.com/mauv0809/matchday/internal/http"
	"github.com/mauv0809/matchday/internal/league"
	"github.com/mauv0809/matchday/internal/lifecycle"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/notifier"
	"github.com/mauv0809/matchday/internal/notifier/slack"
	"github.com/mauv0809/matchday/internal/pubsub"
	"github.com/mauv0809/matchday/internal/remotesync"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	// The local database is authoritative; Turso only holds the remote copy.
	db, dbTeardown, err := database.InitDB(cfg.DBName, "", "")
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	clubStore := club.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var remote remotesync.Remote
	if cfg.Turso.PrimaryURL != "" {
		remoteDB, remoteTeardown, err := database.InitDB("", cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
		if err != nil {
			log.Fatalf("Failed to initialize remote database: %s", err)
		}
		defer remoteTeardown()
		remote = remotesync.NewSQLRemote(remoteDB)
	} else {
		log.Warn("TURSO_PRIMARY_URL not set, remote sync disabled")
	}

	var publisher pubsub.PubSubClient
	if cfg.ProjectID != "" {
		publisher, err = pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer publisher.Close()
	} else {
		log.Warn("GCP_PROJECT not set, match events and rating requests disabled")
	}

	var reminders notifier.Scheduler = notifier.Noop{}
	if cfg.Slack.Token != "" {
		reminders = slack.NewReminders(cfg.Slack.Token, clubStore, cfg.Reminders.Lead, metricsSvc)
	} else {
		log.Warn("SLACK_BOT_TOKEN not set, match reminders disabled")
	}

	outbox := remotesync.NewOutbox(remote, publisher, metricsSvc, cfg.Sync.QueueSize)
	outbox.OnWarning(func(w remotesync.SyncWarning) {
		log.Warn("Match not synced", "op", w.Op, "matchID", w.MatchID, "error", w.Err)
	})
	outbox.Start(ctx)

	matches := lifecycle.NewRegistry(lifecycle.Deps{
		Store:     clubStore,
		Sync:      outbox,
		Reminders: reminders,
		Metrics:   metricsSvc,
	}, remote)
	matches.OnChange(func(m club.Match) {
		log.Debug("Match changed", "matchID", m.ID, "status", m.Status, "participants", len(m.Participants))
	})
	tournaments := league.NewManager(clubStore, nil, metricsSvc)

	s := server.NewServer(
		clubStore,
		matches,
		tournaments,
		metricsSvc,
		metricsHandler,
		cfg,
		publisher,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	// Flush pending reminders and sync tasks before the process exits.
	matches.Flush()
	outbox.Close()
	log.Info("Server process shutting down")
}
