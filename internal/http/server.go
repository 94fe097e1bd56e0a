package http

import (
	"net/http"

	"github.com/mauv0809/matchday/internal/access"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/config"
	"github.com/mauv0809/matchday/internal/league"
	"github.com/mauv0809/matchday/internal/lifecycle"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/pubsub"
)

func NewServer(store club.ClubStore, matches *lifecycle.Registry, league *league.Manager, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Matches:        matches,
		League:         league,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Routes acting on behalf of a player also get actorMiddleware.
	actor := actorMiddleware(access.PlayerResolver{Players: s.Store})

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches", Chain(s.CreateMatchHandler(), paramsMiddleware, actor))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("PATCH /matches/{id}", Chain(s.UpdateDetailsHandler(), paramsMiddleware, actor))
	s.Router.Handle("DELETE /matches/{id}", Chain(s.DeleteMatchHandler(), paramsMiddleware, actor))
	s.Router.Handle("GET /matches/{id}/scoreline", Chain(s.ScorelineHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}/stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/rsvp", Chain(s.RSVPHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /matches/{id}/events", Chain(s.AddEventHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /matches/{id}/invite", Chain(s.InviteHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /matches/{id}/complete", Chain(s.CompleteHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /matches/{id}/cancel", Chain(s.CancelHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /matches/{id}/reschedule", Chain(s.RescheduleHandler(), paramsMiddleware, actor))
	s.Router.Handle("DELETE /matches/{id}/participants/{participantID}", Chain(s.RemoveParticipantHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /matches/{id}/participants/{participantID}/waitlist", Chain(s.MoveToWaitlistHandler(), paramsMiddleware, actor))

	s.Router.Handle("GET /players", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/ratings", Chain(s.RatingHistoryHandler(), paramsMiddleware))

	s.Router.Handle("POST /tournaments", Chain(s.CreateTournamentHandler(), paramsMiddleware, actor))
	s.Router.Handle("GET /tournaments/{id}", Chain(s.GetTournamentHandler(), paramsMiddleware))
	s.Router.Handle("GET /tournaments/{id}/standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("POST /tournaments/{id}/teams", Chain(s.AddTeamHandler(), paramsMiddleware, actor))
	s.Router.Handle("DELETE /tournaments/{id}/teams/{teamID}", Chain(s.RemoveTeamHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /tournaments/{id}/matches", Chain(s.ScheduleFixtureHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /tournaments/{id}/matches/{fixtureID}/result", Chain(s.RecordResultHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /tournaments/{id}/dispute", Chain(s.OpenDisputeHandler(), paramsMiddleware, actor))
	s.Router.Handle("POST /tournaments/{id}/dispute/resolve", Chain(s.ResolveDisputeHandler(), paramsMiddleware, actor))

	s.Router.Handle("POST /pubsub/apply-ratings", Chain(s.ApplyRatingsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
