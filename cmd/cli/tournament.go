package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var tournamentCmd = &cobra.Command{
	Use:   "tournament",
	Short: "Manage tournaments",
}

var tournamentCreateCmd = &cobra.Command{
	Use:   "create <name> [organiserID...]",
	Short: "Create a tournament",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments", map[string]any{
			"name":          args[0],
			"organiser_ids": args[1:],
		})
	},
}

var tournamentShowCmd = &cobra.Command{
	Use:   "show <tournamentID>",
	Short: "Show a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/tournaments/"+args[0], nil)
	},
}

var addTeamCmd = &cobra.Command{
	Use:   "add-team <tournamentID> <name>",
	Short: "Register a team",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/teams", map[string]string{"name": args[1]})
	},
}

var removeTeamCmd = &cobra.Command{
	Use:   "remove-team <tournamentID> <teamID>",
	Short: "Remove a team without fixtures",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/tournaments/"+args[0]+"/teams/"+args[1], nil)
	},
}

var fixtureCmd = &cobra.Command{
	Use:   "fixture <tournamentID> <homeTeamID> <awayTeamID> <RFC3339 start>",
	Short: "Schedule a fixture",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(time.RFC3339, args[3])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/matches", map[string]any{
			"home_team_id": args[1],
			"away_team_id": args[2],
			"start_time":   start,
		})
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <tournamentID> <fixtureID> <home> <away>",
	Short: "Enter the result of a fixture",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		scores, err := parseScores(args[2], args[3])
		if err != nil {
			return err
		}
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/matches/"+args[1]+"/result", scores)
	},
}

var disputeCmd = &cobra.Command{
	Use:   "dispute <tournamentID>",
	Short: "Open a dispute, or resolve the open one with --resolve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/tournaments/" + args[0] + "/dispute"
		if resolve, _ := cmd.Flags().GetBool("resolve"); resolve {
			endpoint += "/resolve"
		}
		return performRequest(http.MethodPost, endpoint, nil)
	},
}

func init() {
	disputeCmd.Flags().Bool("resolve", false, "Resolve the open dispute")
	tournamentCmd.AddCommand(tournamentCreateCmd, tournamentShowCmd, addTeamCmd, removeTeamCmd, fixtureCmd, resultCmd, disputeCmd)
	rootCmd.AddCommand(tournamentCmd)
}
