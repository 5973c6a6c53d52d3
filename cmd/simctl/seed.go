package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ad-tracker/video-engagement-sim/internal/service"
)

func newSeedCategoriesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Create the default video categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := e.services.Categories.SeedCategories(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range result.Categories {
				fmt.Fprintf(out, "  %-20s %s\n", c.Name, c.Slug)
			}
			fmt.Fprintf(out, "Categories: %d created, %d already present\n", result.Created, result.Existing)
			return nil
		},
	}
}

func newSeedVideosCmd(e *env) *cobra.Command {
	var opts service.SeedVideosOptions

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Generate fake videos across the active categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			report, err := e.services.Seed.SeedVideos(cmd.Context(), opts, progress(out, "Videos"))
			if err != nil {
				return err
			}

			if opts.Clear {
				fmt.Fprintf(out, "Cleared %d existing videos\n", report.Cleared)
			}
			fmt.Fprintf(out, "Videos: %d created, %d skipped as duplicates\n", report.Created, report.Skipped)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 50, "number of videos to generate")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 100, "videos per insert batch")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing videos first")

	return cmd
}

func newSeedCommentsCmd(e *env) *cobra.Command {
	var opts service.SeedCommentsOptions

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Generate fake comments and replies on published videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			report, err := e.services.Seed.SeedComments(cmd.Context(), opts, progress(out, "Comments"))
			if err != nil {
				return err
			}

			if opts.Clear {
				fmt.Fprintf(out, "Cleared %d existing comments\n", report.Cleared)
			}
			fmt.Fprintf(out, "Comments: %d created (%d replies, %d simulated)\n",
				report.Created, report.Replies, report.Simulated)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 200, "number of comments to generate")
	cmd.Flags().Int64Var(&opts.VideoID, "video-id", 0, "only comment on this video")
	cmd.Flags().Float64Var(&opts.AIRatio, "ai-ratio", 0.3, "share of top-level comments written by the simulated viewer engine")
	cmd.Flags().Float64Var(&opts.RepliesRatio, "replies-ratio", 0.2, "share of comments posted as replies")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing comments first")

	return cmd
}

func progress(out io.Writer, label string) service.Progress {
	return func(done, total int) {
		fmt.Fprintf(out, "\r%s: %d/%d", label, done, total)
		if done >= total {
			fmt.Fprintln(out)
		}
	}
}
