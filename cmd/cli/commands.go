package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(scorelineCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(rsvpCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(rescheduleCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(waitlistCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(ratingsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <matchID>",
	Short: "Show a match snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches/"+args[0], nil)
	},
}

var scorelineCmd = &cobra.Command{
	Use:   "scoreline <matchID>",
	Short: "Show the current score of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches/"+args[0]+"/scoreline", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <matchID>",
	Short: "Show the player stats of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches/"+args[0]+"/stats", nil)
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings <tournamentID>",
	Short: "Show the standings of a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/tournaments/"+args[0]+"/standings", nil)
	},
}

var rsvpCmd = &cobra.Command{
	Use:   "rsvp <matchID> <going|maybe|declined|waitlisted|invited>",
	Short: "Answer a match invitation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("for")
		return performRequest(http.MethodPost, "/matches/"+args[0]+"/rsvp", map[string]string{
			"user_id": userID,
			"status":  args[1],
		})
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <matchID> <home> <away>",
	Short: "Enter the final score of a match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		scores, err := parseScores(args[1], args[2])
		if err != nil {
			return err
		}
		return performRequest(http.MethodPost, "/matches/"+args[0]+"/complete", scores)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <matchID>",
	Short: "Cancel a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/matches/"+args[0]+"/cancel", nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches", nil)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <matchID>",
	Short: "Delete a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/matches/"+args[0], nil)
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <matchID>",
	Short: "Edit the details of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update := map[string]any{}
		for _, name := range []string{"location", "format", "notes"} {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				update[name] = v
			}
		}
		if cmd.Flags().Changed("max-players") {
			v, _ := cmd.Flags().GetInt("max-players")
			update["max_players"] = v
		}
		if cmd.Flags().Changed("rated") {
			v, _ := cmd.Flags().GetBool("rated")
			update["rating_affecting"] = v
		}
		return performRequest(http.MethodPatch, "/matches/"+args[0], update)
	},
}

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule <matchID> <RFC3339 start>",
	Short: "Move the kick-off of a match",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(time.RFC3339, args[1])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		return performRequest(http.MethodPost, "/matches/"+args[0]+"/reschedule", map[string]time.Time{"start_time": start})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <matchID> <playerID>",
	Short: "Remove a player from a match",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/matches/"+args[0]+"/participants/"+args[1], nil)
	},
}

var waitlistCmd = &cobra.Command{
	Use:   "waitlist <matchID> <playerID>",
	Short: "Move a player to the back of the waitlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/matches/"+args[0]+"/participants/"+args[1]+"/waitlist", nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show all players by rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/players", nil)
	},
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings <playerID>",
	Short: "Show the rating history of a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/players/"+args[0]+"/ratings", nil)
	},
}

func init() {
	rsvpCmd.Flags().String("for", "", "Answer for another player (organisers only)")
	detailsCmd.Flags().String("location", "", "New location")
	detailsCmd.Flags().String("format", "", "New format, e.g. 5v5")
	detailsCmd.Flags().String("notes", "", "New notes")
	detailsCmd.Flags().Int("max-players", 0, "New capacity")
	detailsCmd.Flags().Bool("rated", false, "Whether the result affects ratings")
}

func parseScores(home, away string) (map[string]int, error) {
	h, err := strconv.Atoi(home)
	if err != nil {
		return nil, fmt.Errorf("invalid home score: %w", err)
	}
	a, err := strconv.Atoi(away)
	if err != nil {
		return nil, fmt.Errorf("invalid away score: %w", err)
	}
	return map[string]int{"home": h, "away": a}, nil
}

func performRequest(method, endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
