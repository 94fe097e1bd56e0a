package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchday/internal/club"
	"github.com/mauv0809/matchday/internal/league"
	"github.com/mauv0809/matchday/internal/lifecycle"
	"github.com/mauv0809/matchday/internal/pubsub"
	"github.com/mauv0809/matchday/internal/rating"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func respondWithJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// respondWithResult writes an operation result. Rejections keep the result
// body and map to a 4xx status by kind.
func respondWithResult(w http.ResponseWriter, res lifecycle.Result) {
	respondWithJSON(w, rejectionStatus(res.Rejection), res)
}

func rejectionStatus(rej *club.Rejection) int {
	if rej == nil {
		return http.StatusOK
	}
	switch rej.Kind {
	case club.KindAuthorization:
		return http.StatusForbidden
	case club.KindState:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

// coordinator looks up the match named in the path, writing the error
// response itself when it cannot.
func (s *Server) coordinator(w http.ResponseWriter, r *http.Request) (*lifecycle.Coordinator, bool) {
	matchID := r.PathValue("id")
	c, err := s.Matches.Get(r.Context(), matchID)
	if err != nil {
		if errors.Is(err, club.ErrMatchNotFound) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return nil, false
		}
		log.Error("Failed to load match", "error", err, "matchID", matchID)
		http.Error(w, "Failed to load match", http.StatusInternalServerError)
		return nil, false
	}
	return c, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Warn("Failed to decode request body", "error", err, "path", r.URL.Path)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// mutation runs op against the coordinator of the path's match and writes
// its result.
func (s *Server) mutation(w http.ResponseWriter, r *http.Request, op func(c *lifecycle.Coordinator) (lifecycle.Result, error)) {
	c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	res, err := op(c)
	if err != nil {
		log.Error("Match operation failed", "error", err, "matchID", c.ID(), "path", r.URL.Path)
		http.Error(w, "Failed to update match", http.StatusInternalServerError)
		return
	}
	respondWithResult(w, res)
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in lifecycle.NewMatch
		if !decodeBody(w, r, &in) {
			return
		}
		_, res, err := s.Matches.Create(r.Context(), in)
		if err != nil {
			log.Error("Failed to create match", "error", err)
			http.Error(w, "Failed to create match", http.StatusInternalServerError)
			return
		}
		if res.OK() {
			respondWithJSON(w, http.StatusCreated, res)
			return
		}
		respondWithResult(w, res)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.coordinator(w, r)
		if !ok {
			return
		}
		respondWithJSON(w, http.StatusOK, c.Snapshot())
	}
}

func (s *Server) ScorelineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.coordinator(w, r)
		if !ok {
			return
		}
		respondWithJSON(w, http.StatusOK, c.Scoreline())
	}
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.coordinator(w, r)
		if !ok {
			return
		}
		respondWithJSON(w, http.StatusOK, c.SummaryRows())
	}
}

func (s *Server) RSVPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rsvpRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.SetRSVP(r.Context(), req.UserID, req.Status)
		})
	}
}

func (s *Server) AddEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in lifecycle.EventInput
		if !decodeBody(w, r, &in) {
			return
		}
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.AddEvent(r.Context(), in)
		})
	}
}

func (s *Server) InviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inviteRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.InviteParticipant(r.Context(), req.Name, req.Rating, req.TeamID)
		})
	}
}

func (s *Server) CompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.Complete(r.Context(), req.Home, req.Away)
		})
	}
}

func (s *Server) CancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.Cancel(r.Context())
		})
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.Delete(r.Context())
		})
	}
}

func (s *Server) UpdateDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u lifecycle.DetailsUpdate
		if !decodeBody(w, r, &u) {
			return
		}
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.UpdateDetails(r.Context(), u)
		})
	}
}

func (s *Server) RescheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rescheduleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.Reschedule(r.Context(), req.StartTime)
		})
	}
}

func (s *Server) RemoveParticipantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.RemoveParticipant(r.Context(), r.PathValue("participantID"))
		})
	}
}

func (s *Server) MoveToWaitlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mutation(w, r, func(c *lifecycle.Coordinator) (lifecycle.Result, error) {
			return c.MoveToWaitlist(r.Context(), r.PathValue("participantID"))
		})
	}
}

// ListMatchesHandler returns every stored match, latest kick-off first.
func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.Store.GetAllMatches()
		if err != nil {
			log.Error("Failed to list matches", "error", err)
			http.Error(w, "Failed to list matches", http.StatusInternalServerError)
			return
		}
		matches := make([]club.Match, 0, len(all))
		for _, m := range all {
			if !m.Deleted {
				matches = append(matches, m)
			}
		}
		respondWithJSON(w, http.StatusOK, matches)
	}
}

// LeaderboardHandler returns all players, highest rating first.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetPlayersSortedByRating()
		if err != nil {
			log.Error("Failed to get players sorted by rating", "error", err)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		if players == nil {
			players = []club.Player{}
		}
		respondWithJSON(w, http.StatusOK, players)
	}
}

func (s *Server) RatingHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")
		if _, err := s.Store.GetPlayer(playerID); err != nil {
			if errors.Is(err, club.ErrPlayerNotFound) {
				http.Error(w, "Player not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to get player", "error", err, "playerID", playerID)
			http.Error(w, "Failed to get player", http.StatusInternalServerError)
			return
		}
		history, err := s.Store.GetRatingHistory(playerID)
		if err != nil {
			log.Error("Failed to get rating history", "error", err, "playerID", playerID)
			http.Error(w, "Failed to get rating history", http.StatusInternalServerError)
			return
		}
		respondWithJSON(w, http.StatusOK, history)
	}
}

// tournamentMutation runs a league operation and writes its result.
func tournamentMutation(w http.ResponseWriter, r *http.Request, op func() (league.Result, error)) {
	res, err := op()
	if err != nil {
		if errors.Is(err, club.ErrTournamentNotFound) {
			http.Error(w, "Tournament not found", http.StatusNotFound)
			return
		}
		log.Error("Tournament operation failed", "error", err, "path", r.URL.Path)
		http.Error(w, "Failed to update tournament", http.StatusInternalServerError)
		return
	}
	respondWithJSON(w, rejectionStatus(res.Rejection), res)
}

func (s *Server) CreateTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tournamentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := s.League.Create(r.Context(), req.Name, req.OrganiserIDs)
		if err != nil {
			log.Error("Failed to create tournament", "error", err)
			http.Error(w, "Failed to create tournament", http.StatusInternalServerError)
			return
		}
		status := rejectionStatus(res.Rejection)
		if res.OK() {
			status = http.StatusCreated
		}
		respondWithJSON(w, status, res)
	}
}

func (s *Server) GetTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID := r.PathValue("id")
		t, err := s.Store.LoadTournament(tournamentID)
		if err != nil {
			if errors.Is(err, club.ErrTournamentNotFound) {
				http.Error(w, "Tournament not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to load tournament", "error", err, "tournamentID", tournamentID)
			http.Error(w, "Failed to load tournament", http.StatusInternalServerError)
			return
		}
		respondWithJSON(w, http.StatusOK, t)
	}
}

func (s *Server) AddTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req teamRequest
		if !decodeBody(w, r, &req) {
			return
		}
		tournamentMutation(w, r, func() (league.Result, error) {
			return s.League.AddTeam(r.Context(), r.PathValue("id"), req.Name)
		})
	}
}

func (s *Server) RemoveTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentMutation(w, r, func() (league.Result, error) {
			return s.League.RemoveTeam(r.Context(), r.PathValue("id"), r.PathValue("teamID"))
		})
	}
}

func (s *Server) ScheduleFixtureHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fixtureRequest
		if !decodeBody(w, r, &req) {
			return
		}
		tournamentMutation(w, r, func() (league.Result, error) {
			return s.League.ScheduleMatch(r.Context(), r.PathValue("id"), req.HomeTeamID, req.AwayTeamID, req.StartTime)
		})
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		tournamentMutation(w, r, func() (league.Result, error) {
			return s.League.RecordResult(r.Context(), r.PathValue("id"), r.PathValue("fixtureID"), req.Home, req.Away)
		})
	}
}

func (s *Server) OpenDisputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentMutation(w, r, func() (league.Result, error) {
			return s.League.OpenDispute(r.Context(), r.PathValue("id"))
		})
	}
}

func (s *Server) ResolveDisputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentMutation(w, r, func() (league.Result, error) {
			return s.League.ResolveDispute(r.Context(), r.PathValue("id"))
		})
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID := r.PathValue("id")
		rows, err := s.League.Standings(tournamentID)
		if err != nil {
			if errors.Is(err, club.ErrTournamentNotFound) {
				http.Error(w, "Tournament not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to compute standings", "error", err, "tournamentID", tournamentID)
			http.Error(w, "Failed to compute standings", http.StatusInternalServerError)
			return
		}
		respondWithJSON(w, http.StatusOK, rows)
	}
}

// ApplyRatingsHandler consumes apply-ratings pushes. Ratings are applied at
// most once per player and match, so redeliveries are acknowledged without
// moving ratings again. With dry_run the changes are computed and returned
// but not stored.
func (s *Server) ApplyRatingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var envelope pubsub.PushEnvelope
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		log.Debug("Received apply ratings message", "messageID", envelope.Message.ID, "subscription", envelope.Subscription)

		var req rating.Request
		decode := pubsub.Decode
		if s.pubsub != nil {
			decode = s.pubsub.ProcessMessage
		}
		if err := decode(envelope.Message.Data, &req); err != nil || req.MatchID == "" {
			log.Error("Invalid apply ratings payload", "error", err, "messageID", envelope.Message.ID)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		match, err := s.Store.LoadMatch(req.MatchID)
		if err != nil {
			if errors.Is(err, club.ErrMatchNotFound) {
				// Nothing to rate; acknowledge so the message is not redelivered.
				log.Warn("Rating request for unknown match", "matchID", req.MatchID)
				respondWithJSON(w, http.StatusOK, applyRatingsResponse{MatchID: req.MatchID, Changes: []club.RatingChange{}})
				return
			}
			log.Error("Failed to load match for ratings", "error", err, "matchID", req.MatchID)
			http.Error(w, "Failed to load match", http.StatusInternalServerError)
			return
		}

		ids := make([]string, 0, len(match.Participants))
		for _, p := range match.Participants {
			ids = append(ids, p.ID)
		}
		players, err := s.Store.GetPlayers(ids)
		if err != nil {
			log.Error("Failed to load players for ratings", "error", err, "matchID", req.MatchID)
			http.Error(w, "Failed to load players", http.StatusInternalServerError)
			return
		}
		ratings := make(map[string]int, len(players))
		for _, p := range players {
			ratings[p.ID] = p.Rating
		}

		changes := rating.Changes(*match, ratings)
		if changes == nil {
			changes = []club.RatingChange{}
		}
		resp := applyRatingsResponse{MatchID: req.MatchID, Changes: changes, DryRun: isDryRunFromContext(r)}
		if resp.DryRun {
			log.Info("Dry run: skipping rating application", "matchID", req.MatchID, "changes", len(changes))
			respondWithJSON(w, http.StatusOK, resp)
			return
		}

		applied, err := s.Store.ApplyRatingChanges(req.MatchID, changes)
		if err != nil {
			log.Error("Failed to apply rating changes", "error", err, "matchID", req.MatchID)
			http.Error(w, "Failed to apply ratings", http.StatusInternalServerError)
			return
		}
		s.Metrics.IncRatingsApplied(applied)
		if applied < len(changes) {
			log.Info("Ratings already applied for this match; a corrected score is not re-rated", "matchID", req.MatchID, "applied", applied, "requested", len(changes))
		}
		resp.Applied = applied
		respondWithJSON(w, http.StatusOK, resp)
	}
}
