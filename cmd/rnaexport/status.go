package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/rnaexport/pkg/app/components"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:         "status [task-id]",
	Short:       "Check an export job once",
	Long:        "Ask the job service for the state of an export without downloading it",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationNetwork: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		job := resumeTarget(cmd, args[0])
		handle, _ := job.Handle()

		report, err := controller.CheckStatus(cmd.Context(), handle)
		if err != nil {
			return fmt.Errorf("status check failed: %w", err)
		}

		var (
			purple = lipgloss.Color("99")

			headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
			cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		)

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				if col == 0 {
					return headerStyle.Padding(0, 1)
				}
				return cellStyle
			})

		t.Row("Job", handle.JobID)
		t.Row("Format", string(handle.DataType))
		if job.Query != "" {
			t.Row("Query", job.Query)
		}
		if report.Done {
			t.Row("Status", string(data.StateFinished))
			t.Row("Progress", components.FormatPercent(100))
			t.Row("Download", fmt.Sprintf("ready, run 'rnaexport resume %s -t %s' to save %s", handle.JobID, handle.DataType, handle.Filename()))
		} else {
			t.Row("Status", report.State)
			t.Row("Progress", components.FormatPercent(report.Progress))
		}
		if job.FilePath != "" {
			t.Row("Saved to", job.FilePath)
		}

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}
