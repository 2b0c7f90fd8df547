package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/rnaexport/pkg/app/components"
	"github.com/kerbaras/rnaexport/pkg/app/styles"
	"github.com/kerbaras/rnaexport/pkg/data"
)

type HistoryScreen struct {
	backend Backend
	jobList *components.JobList
	width   int
	height  int
	err     error
}

func NewHistoryScreen(backend Backend) *HistoryScreen {
	return &HistoryScreen{
		backend: backend,
		jobList: components.NewJobList(),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.loadHistory
}

func (s *HistoryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.jobList.Width = msg.Width - 4
		s.jobList.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.jobList.Prev()
		case "down", "j":
			s.jobList.Next()
		case "r":
			return s, s.loadHistory
		case "d":
			if selected := s.jobList.Selected(); selected != nil {
				return s, s.deleteJob(selected.ID)
			}
		case "enter":
			selected := s.jobList.Selected()
			if selected == nil {
				break
			}
			if _, ok := selected.Handle(); !ok || selected.State == data.StateFinished {
				s.err = fmt.Errorf("nothing to resume for this export")
				break
			}
			s.err = nil
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "resume", Data: selected}
			}
		}

	case historyLoadedMsg:
		s.jobList.SetItems(msg.jobs)
		s.err = msg.err

	case jobDeletedMsg:
		if msg.err != nil {
			s.err = msg.err
		}
		return s, s.loadHistory
	}

	return s, nil
}

func (s *HistoryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("🧬 Export History")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	listView := s.jobList.View()

	help := styles.HelpStyle.Render(
		"↑/k: up • ↓/j: down • enter: resume • d: delete • r: refresh • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, errorMsg, listView, help)
}

// Messages
type historyLoadedMsg struct {
	jobs []*data.Job
	err  error
}

type jobDeletedMsg struct {
	err error
}

// Commands
func (s *HistoryScreen) loadHistory() tea.Msg {
	jobs, err := s.backend.ListJobs()
	return historyLoadedMsg{jobs: jobs, err: err}
}

func (s *HistoryScreen) deleteJob(id string) tea.Cmd {
	return func() tea.Msg {
		err := s.backend.DeleteJob(id)
		return jobDeletedMsg{err: err}
	}
}
