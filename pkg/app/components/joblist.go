package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/rnaexport/pkg/app/styles"
	"github.com/kerbaras/rnaexport/pkg/data"
)

type JobList struct {
	Items         []*data.Job
	SelectedIndex int
	Width         int
	Height        int
}

func NewJobList() *JobList {
	return &JobList{
		Items:         []*data.Job{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
	}
}

func (l *JobList) SetItems(items []*data.Job) {
	l.Items = items
	if l.SelectedIndex >= len(items) && len(items) > 0 {
		l.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		l.SelectedIndex = 0
	}
}

func (l *JobList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex++
	if l.SelectedIndex >= len(l.Items) {
		l.SelectedIndex = 0
	}
}

func (l *JobList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *JobList) Selected() *data.Job {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return l.Items[l.SelectedIndex]
}

func (l *JobList) View() string {
	if len(l.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render("No exports yet")
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder

	for i, job := range l.Items {
		cardStyle := styles.CardStyle
		if i == l.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		query := job.Query
		if query == "" {
			query = "(resumed job)"
		}
		if len(query) > 60 {
			query = query[:57] + "..."
		}
		title := styles.TitleStyle.Render(query)

		statusText := fmt.Sprintf("Status: %s", job.StatusText)
		if job.StatusText == "" {
			statusText = fmt.Sprintf("Status: %s", job.State)
		}
		if job.State == data.StateRunning {
			statusText += " " + FormatPercent(job.Progress)
		}
		status := styles.StatusStyle(job.State).Render(statusText)

		jobID := job.JobID
		if jobID == "" {
			jobID = "not submitted"
		}
		details := styles.MutedStyle.Render(fmt.Sprintf("Format: %s • Job: %s • %s",
			job.DataType, jobID, job.CreatedAt.Local().Format("2006-01-02 15:04")))

		lines := []string{title, details, status}
		if job.FilePath != "" {
			lines = append(lines, styles.MutedStyle.Render(job.FilePath))
		}

		card := cardStyle.Width(l.Width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
		b.WriteString(card)
		b.WriteString("\n")
	}

	return b.String()
}
