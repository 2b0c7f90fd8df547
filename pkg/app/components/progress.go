package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/kerbaras/rnaexport/pkg/app/styles"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/services"
)

const submittedNotice = "Your query has been submitted. The results will be automatically downloaded once the export is finished."

// ExportPanel shows whatever the last progress update observed
type ExportPanel struct {
	query    string
	dataType data.DataType
	jobID    string
	phase    services.Phase
	status   data.JobStatus
	filePath string
	err      error
	width    int
	bar      progress.Model
}

func NewExportPanel(query string, dataType data.DataType, width int) *ExportPanel {
	p := &ExportPanel{
		query:    query,
		dataType: dataType,
		status:   data.JobStatus{State: data.StatePending, Text: string(data.StatePending)},
		bar:      progress.New(progress.WithGradient(styles.ProgressStart, styles.ProgressEnd)),
	}
	p.SetWidth(width)
	return p
}

func (p *ExportPanel) SetWidth(width int) {
	p.width = width
	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}
	p.bar.Width = barWidth
}

func (p *ExportPanel) Update(update services.ExportProgress) {
	p.phase = update.Phase
	p.status = update.Status
	if update.JobID != "" {
		p.jobID = update.JobID
	}
	if update.Query != "" {
		p.query = update.Query
	}
	if update.DataType != "" {
		p.dataType = update.DataType
	}
	if update.FilePath != "" {
		p.filePath = update.FilePath
	}
	if update.Error != nil {
		p.err = update.Error
	}
}

func (p *ExportPanel) Status() data.JobStatus {
	return p.status
}

func (p *ExportPanel) Done() bool {
	return p.phase.Terminal()
}

func (p *ExportPanel) View() string {
	var b strings.Builder

	b.WriteString(p.bar.ViewAs(p.status.Progress / 100))
	b.WriteString("\n\n")

	b.WriteString(styles.TextStyle.Render(submittedNotice))
	b.WriteString("\n")
	b.WriteString(styles.TextStyle.Render(fmt.Sprintf("  • Query: %s", p.query)))
	b.WriteString("\n")
	b.WriteString(styles.TextStyle.Render(fmt.Sprintf("  • Format: %s", p.dataType)))
	b.WriteString("\n")
	if p.jobID != "" {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  • Job: %s", p.jobID)))
		b.WriteString("\n")
	}
	b.WriteString(styles.StatusStyle(p.status.State).Render(fmt.Sprintf("  • Status: %s", p.status.Text)))
	b.WriteString("\n")

	if p.filePath != "" && p.phase == services.PhaseFinished {
		b.WriteString("\n")
		b.WriteString(styles.StatusCompleted.Render(fmt.Sprintf("Saved to %s", p.filePath)))
		b.WriteString("\n")
	}

	if p.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", p.err)))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatPercent renders progress the way the bar labels it
func FormatPercent(progress float64) string {
	return fmt.Sprintf("%.0f%%", progress)
}
