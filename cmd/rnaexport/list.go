package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/rnaexport/pkg/app/components"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List past exports",
	Long:  "Display the export history in a formatted table",
	Run: func(cmd *cobra.Command, args []string) {
		jobs, err := controller.ListJobs()
		if err != nil {
			cobra.CheckErr(err)
		}

		if len(jobs) == 0 {
			fmt.Println("🧬 No exports yet. Use 'rnaexport export [query]' to start one.")
			return
		}

		// Create table columns
		columns := []table.Column{
			{Title: "Job", Width: 38},
			{Title: "Query", Width: 30},
			{Title: "Format", Width: 8},
			{Title: "Status", Width: 24},
			{Title: "Progress", Width: 9},
			{Title: "Created", Width: 16},
		}

		rows := []table.Row{}
		for _, job := range jobs {
			jobID := job.JobID
			if jobID == "" {
				jobID = "-"
			}

			rows = append(rows, table.Row{
				jobID,
				truncateString(job.Query, 28),
				string(job.DataType),
				truncateString(job.StatusText, 22),
				components.FormatPercent(job.Progress),
				job.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n🧬 Export history (%d jobs)\n\n", len(jobs))
		fmt.Println(t.View())
	},
}

func truncateString(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
