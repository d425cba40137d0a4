package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Account administration commands (admin only)",
	}

	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserGetCmd())
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserUpdateCmd())
	cmd.AddCommand(newUserDeleteCmd())

	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.User

			if err := client.Get("/api/users", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}

			var result response.User
			if err := client.Get(fmt.Sprintf("/api/users/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newUserCreateCmd() *cobra.Command {
	var req request.CreateUserRequest
	var playerID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("player") {
				req.PlayerID = &playerID
			}

			var result response.User
			if err := client.Post("/api/users", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password (required)")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&req.Role, "role", "member", "Role: admin, member")
	cmd.Flags().StringVar(&req.Status, "status", "", "Status: approved, pending, disabled (default approved)")
	cmd.Flags().Int64Var(&playerID, "player", 0, "Linked player ID")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserUpdateCmd() *cobra.Command {
	var email, name, role, status, password string
	var playerID int64
	var unlink bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an account; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/api/users/%d", id)

			// The server replaces the whole profile, so start from the current one
			var current response.User
			if err := client.Get(path, &current); err != nil {
				return err
			}

			req := request.UpdateUserRequest{
				Email:    current.Email,
				Name:     current.Name,
				Role:     current.Role,
				PlayerID: current.PlayerID,
			}
			flags := cmd.Flags()
			if flags.Changed("email") {
				req.Email = email
			}
			if flags.Changed("name") {
				req.Name = name
			}
			if flags.Changed("role") {
				req.Role = role
			}
			if flags.Changed("status") {
				req.Status = &status
			}
			if flags.Changed("password") {
				req.Password = &password
			}
			if flags.Changed("player") {
				req.PlayerID = &playerID
			}
			if unlink {
				req.PlayerID = nil
			}

			var result response.User
			if err := client.Put(path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&role, "role", "", "New role: admin, member")
	cmd.Flags().StringVar(&status, "status", "", "New status: approved, pending, disabled")
	cmd.Flags().StringVar(&password, "password", "", "Reset the password")
	cmd.Flags().Int64Var(&playerID, "player", 0, "Link to player ID")
	cmd.Flags().BoolVar(&unlink, "unlink-player", false, "Remove the player link")
	cmd.MarkFlagsMutuallyExclusive("player", "unlink-player")

	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}

			var result response.Message
			if err := client.Delete(fmt.Sprintf("/api/users/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
