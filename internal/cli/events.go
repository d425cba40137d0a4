package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
)

func newEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Club event commands",
	}

	cmd.AddCommand(newEventListCmd())
	cmd.AddCommand(newEventGetCmd())
	cmd.AddCommand(newEventCreateCmd())
	cmd.AddCommand(newEventDeleteCmd())
	cmd.AddCommand(newRegistrationCmd("register", "events", true))
	cmd.AddCommand(newRegistrationCmd("unregister", "events", false))

	return cmd
}

func newEventListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Event

			if err := client.Get("/api/events", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newEventGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an event with its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("event", args[0])
			if err != nil {
				return err
			}

			var result response.Event
			if err := client.Get(fmt.Sprintf("/api/events/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newEventCreateCmd() *cobra.Command {
	var req request.EventRequest
	var description, location string
	var maxParticipants int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule an event (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("location") {
				req.Location = &location
			}
			if flags.Changed("max") {
				req.MaxParticipants = &maxParticipants
			}

			var result response.Event
			if err := client.Post("/api/events", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Event name (required)")
	cmd.Flags().StringVar(&req.Date, "date", "", "Event date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&location, "location", "", "Location")
	cmd.Flags().IntVar(&maxParticipants, "max", 0, "Maximum participants (default unlimited)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newEventDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event and its registrations (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("event", args[0])
			if err != nil {
				return err
			}

			var result response.Message
			if err := client.Delete(fmt.Sprintf("/api/events/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

// newRegistrationCmd builds the register and unregister subcommands shared by
// events and tournaments
func newRegistrationCmd(action, collection string, register bool) *cobra.Command {
	short := "Register a player"
	if !register {
		short = "Unregister a player"
	}

	return &cobra.Command{
		Use:   action + " <id> <playerId>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("target", args[0])
			if err != nil {
				return err
			}
			playerID, err := parseID("player", args[1])
			if err != nil {
				return err
			}

			path := fmt.Sprintf("/api/%s/%d/%s/%d", collection, id, action, playerID)
			var result response.Message
			if register {
				err = client.Post(path, nil, &result)
			} else {
				err = client.Delete(path, &result)
			}
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
