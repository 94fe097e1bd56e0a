package http

import (
	"net/http"
	"time"

	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/config"
	"github.com/mauv0809/matchday/internal/league"
	"github.com/mauv0809/matchday/internal/lifecycle"
	"github.com/mauv0809/matchday/internal/metrics"
	"github.com/mauv0809/matchday/internal/pubsub"
)

type Server struct {
	Store          club.ClubStore
	Matches        *lifecycle.Registry
	League         *league.Manager
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type rsvpRequest struct {
	UserID string          `json:"user_id"`
	Status club.RSVPStatus `json:"status"`
}

type inviteRequest struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	TeamID string `json:"team_id"`
}

type completeRequest struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
}

type tournamentRequest struct {
	Name         string   `json:"name"`
	OrganiserIDs []string `json:"organiser_ids"`
}

type teamRequest struct {
	Name string `json:"name"`
}

type fixtureRequest struct {
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	StartTime  time.Time `json:"start_time"`
}

type applyRatingsResponse struct {
	MatchID string              `json:"match_id"`
	Applied int                 `json:"applied"`
	Changes []club.RatingChange `json:"changes"`
	DryRun  bool                `json:"dry_run,omitempty"`
}
