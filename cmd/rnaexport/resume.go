package cmd

import (
	"context"
	"fmt"

	"github.com/kerbaras/rnaexport/pkg/app"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/services"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:         "resume [task-id]",
	Short:       "Follow an export that was submitted earlier",
	Long:        "Re-attach to a submitted export job, poll it until it finishes and save the file",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationNetwork: "true", annotationTUI: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		job := resumeTarget(cmd, args[0])
		handle, _ := job.Handle()

		if plainOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "🔁 Resuming job %s (%s)\n", handle.JobID, handle.DataType)
			return followPlain(cmd, func(ctx context.Context, e *services.Exporter) (data.JobStatus, error) {
				return e.Resume(ctx, handle)
			})
		}

		status, err := app.NewApp(controller).RunResume(job)
		return finish(cmd, status, err, handle.JobID)
	},
}

// resumeTarget prefers what the history knows about a job; an explicit
// --data-type wins over the recorded one
func resumeTarget(cmd *cobra.Command, jobID string) *data.Job {
	job, err := controller.FindJob(jobID)
	if err != nil {
		job = &data.Job{JobID: jobID, DataType: data.DataType(dataType), State: data.StatePending}
	}
	if cmd.Flags().Changed("data-type") || job.DataType == "" {
		job.DataType = data.DataType(dataType)
	}
	dataType = string(job.DataType)
	return job
}
