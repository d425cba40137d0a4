package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
)

func newTournamentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Tournament commands",
	}

	cmd.AddCommand(newTournamentListCmd())
	cmd.AddCommand(newTournamentGetCmd())
	cmd.AddCommand(newTournamentCreateCmd())
	cmd.AddCommand(newTournamentStatusCmd())
	cmd.AddCommand(newTournamentDeleteCmd())
	cmd.AddCommand(newRegistrationCmd("register", "tournaments", true))
	cmd.AddCommand(newRegistrationCmd("unregister", "tournaments", false))

	return cmd
}

func newTournamentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tournaments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Tournament

			if err := client.Get("/api/tournaments", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newTournamentGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a tournament with its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tournament", args[0])
			if err != nil {
				return err
			}

			var result response.Tournament
			if err := client.Get(fmt.Sprintf("/api/tournaments/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newTournamentCreateCmd() *cobra.Command {
	var req request.TournamentRequest
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a tournament (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}

			var result response.Tournament
			if err := client.Post("/api/tournaments", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Tournament name (required)")
	cmd.Flags().StringVar(&req.Date, "date", "", "Tournament date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&req.Format, "format", "", "Format, e.g. singles (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&req.Status, "status", "", "Initial status (default upcoming)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

func newTournamentStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a tournament's status: upcoming, ongoing, completed, cancelled (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tournament", args[0])
			if err != nil {
				return err
			}

			req := request.TournamentStatusRequest{Status: args[1]}
			var result response.Tournament
			if err := client.Patch(fmt.Sprintf("/api/tournaments/%d/status", id), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newTournamentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tournament and its registrations (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tournament", args[0])
			if err != nil {
				return err
			}

			var result response.Message
			if err := client.Delete(fmt.Sprintf("/api/tournaments/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
