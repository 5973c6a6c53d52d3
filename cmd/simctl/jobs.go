package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
)

func newJobsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the registered jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range e.services.Jobs.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newRunJobCmd(e *env) *cobra.Command {
	var params jobs.Params

	cmd := &cobra.Command{
		Use:   "run-job <name>",
		Short: "Run a job now, in this process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := e.services.Jobs.Run(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			return report(cmd.OutOrStdout(), run)
		},
	}

	cmd.Flags().Int64Var(&params.VideoID, "video-id", 0, "target video for per-video jobs")
	cmd.Flags().IntVar(&params.Count, "count", 0, "number of items to generate")
	cmd.Flags().StringVar(&params.Category, "category", "", "category name for content generation")

	return cmd
}

// report prints a run's outcome. A failed run becomes the command's error so
// the process exits non-zero.
func report(out io.Writer, run *models.JobRun) error {
	fmt.Fprintf(out, "%s %s in %s (attempts %d)\n", run.Task, run.Status, run.Duration(), run.Attempts)
	fmt.Fprintf(out, "  processed=%d created=%d deleted=%d\n", run.Processed, run.Created, run.Deleted)
	if run.Error != nil {
		fmt.Fprintf(out, "  error: %s\n", *run.Error)
	}

	if run.Status == models.JobStatusFailed {
		msg := "unknown error"
		if run.Error != nil {
			msg = *run.Error
		}
		return fmt.Errorf("job %s failed after %d attempts: %s", run.Task, run.Attempts, msg)
	}
	return nil
}
