package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.LoginRequest{Email: email, Password: password}
			var result response.LoginResponse

			if err := client.Post("/api/auth/login", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Long: `Removes the stored token. Tokens are not revoked on the server and stay
valid until they expire.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Logged out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Me

			if err := client.Get("/api/auth/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPasswdCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your own password",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
			var result response.Message

			if err := client.Post("/api/auth/change-password", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password (required)")
	cmd.Flags().StringVar(&next, "new", "", "New password (required)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}
