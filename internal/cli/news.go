package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
)

func newNewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Club news commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List news, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.News

			if err := client.Get("/api/news", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})
	cmd.AddCommand(newNewsCreateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a news item (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("news", args[0])
			if err != nil {
				return err
			}

			var result response.Message
			if err := client.Delete(fmt.Sprintf("/api/news/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	return cmd
}

func newNewsCreateCmd() *cobra.Command {
	var req request.NewsRequest
	var image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a news item (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("image") {
				req.Image = &image
			}

			var result response.News
			if err := client.Post("/api/news", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Title (required)")
	cmd.Flags().StringVar(&req.Content, "content", "", "Body text (required)")
	cmd.Flags().StringVar(&image, "image", "", "Image URL")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}
