package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player roster commands",
	}

	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerCreateCmd())
	cmd.AddCommand(newPlayerUpdateCmd())
	cmd.AddCommand(newPlayerDeleteCmd())

	return cmd
}

// playerFlags holds the profile flags shared by create and update
type playerFlags struct {
	name, email, phone, level, avatar string
	apero, technical                  int
}

func (f *playerFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "Player name")
	flags.StringVar(&f.email, "email", "", "Contact email")
	flags.StringVar(&f.phone, "phone", "", "Phone number")
	flags.StringVar(&f.level, "level", "", "Official level")
	flags.StringVar(&f.avatar, "avatar", "", "Avatar URL")
	flags.IntVar(&f.apero, "apero", 0, "Apero level")
	flags.IntVar(&f.technical, "technical", 0, "Technical rating")
}

// apply overlays the flags the user set onto req
func (f *playerFlags) apply(flags *pflag.FlagSet, req *request.PlayerRequest) {
	if flags.Changed("name") {
		req.Name = f.name
	}
	if flags.Changed("email") {
		req.Email = f.email
	}
	if flags.Changed("phone") {
		req.Phone = &f.phone
	}
	if flags.Changed("level") {
		req.LevelOfficial = &f.level
	}
	if flags.Changed("avatar") {
		req.Avatar = &f.avatar
	}
	if flags.Changed("apero") {
		req.LevelApero = f.apero
	}
	if flags.Changed("technical") {
		req.RatingTechnical = f.technical
	}
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List players (members only see their own)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Player

			if err := client.Get("/api/players", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("player", args[0])
			if err != nil {
				return err
			}

			var result response.Player
			if err := client.Get(fmt.Sprintf("/api/players/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerCreateCmd() *cobra.Command {
	var pf playerFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a player to the roster (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.PlayerRequest
			pf.apply(cmd.Flags(), &req)

			var result response.Player
			if err := client.Post("/api/players", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	pf.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newPlayerUpdateCmd() *cobra.Command {
	var pf playerFlags
	var played, wins int

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a player's profile and totals; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("player", args[0])
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/api/players/%d", id)

			var current response.Player
			if err := client.Get(path, &current); err != nil {
				return err
			}

			req := request.UpdatePlayerRequest{
				PlayerRequest: request.PlayerRequest{
					Name:            current.Name,
					Email:           current.Email,
					Phone:           current.Phone,
					LevelOfficial:   current.LevelOfficial,
					LevelApero:      current.LevelApero,
					RatingTechnical: current.RatingTechnical,
					Avatar:          current.Avatar,
				},
				MatchesPlayed: current.MatchesPlayed,
				Wins:          current.Wins,
			}
			pf.apply(cmd.Flags(), &req.PlayerRequest)
			if cmd.Flags().Changed("played") {
				req.MatchesPlayed = played
			}
			if cmd.Flags().Changed("wins") {
				req.Wins = wins
			}

			var result response.Player
			if err := client.Put(path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().IntVar(&played, "played", 0, "Matches played")
	cmd.Flags().IntVar(&wins, "wins", 0, "Matches won")

	return cmd
}

func newPlayerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a player from the roster (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("player", args[0])
			if err != nil {
				return err
			}

			var result response.Message
			if err := client.Delete(fmt.Sprintf("/api/players/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
