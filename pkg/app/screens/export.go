package screens

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/rnaexport/pkg/app/components"
	"github.com/kerbaras/rnaexport/pkg/app/styles"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/services"
)

// ExportScreen follows a single export until it finishes, fails or is
// cancelled
type ExportScreen struct {
	exporter *services.Exporter
	panel    *components.ExportPanel
	start    func(ctx context.Context) (data.JobStatus, error)
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{} // closed once run has returned
	done     bool
	status   data.JobStatus
	err      error
	width    int
	height   int
}

func NewExportScreen(backend Backend, req data.ExportRequest) *ExportScreen {
	exporter := backend.NewExporter()
	return newExportScreen(exporter, components.NewExportPanel(req.Query, req.DataType, 80),
		func(ctx context.Context) (data.JobStatus, error) {
			return exporter.Run(ctx, req)
		})
}

// NewResumeScreen re-attaches to a job that was submitted earlier
func NewResumeScreen(backend Backend, job *data.Job) *ExportScreen {
	exporter := backend.NewExporter()
	handle, _ := job.Handle()
	return newExportScreen(exporter, components.NewExportPanel(job.Query, job.DataType, 80),
		func(ctx context.Context) (data.JobStatus, error) {
			return exporter.Resume(ctx, handle)
		})
}

func newExportScreen(exporter *services.Exporter, panel *components.ExportPanel, start func(context.Context) (data.JobStatus, error)) *ExportScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &ExportScreen{
		exporter: exporter,
		panel:    panel,
		start:    start,
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
	}
}

func (s *ExportScreen) Init() tea.Cmd {
	return tea.Batch(
		s.run,
		s.listenForProgress,
	)
}

func (s *ExportScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.panel.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "x":
			s.Stop()
		case "esc", "backspace":
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "history", Data: nil}
			}
		}

	case exportProgressMsg:
		if msg.screen != s {
			return s, nil
		}
		s.panel.Update(msg.progress)
		return s, s.listenForProgress

	case exportDoneMsg:
		if msg.screen != s {
			return s, nil
		}
		s.done = true
		s.status = msg.status
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			s.err = msg.err
		}
		return s, func() tea.Msg { return historyChangedMsg{} }
	}

	return s, nil
}

func (s *ExportScreen) View() string {
	header := styles.TitleStyle.Render("📦 RNAcentral Export")

	var footer string
	switch {
	case !s.done:
		footer = styles.MutedStyle.Render("Polling the export service...")
	case errors.Is(s.ctx.Err(), context.Canceled) && s.err == nil && !s.status.State.Terminal():
		footer = styles.StatusPending.Render("Export stopped. Resume it from the history.")
	}

	help := styles.HelpStyle.Render("x: stop polling • esc: history • tab: switch view • q: quit")

	return fmt.Sprintf("%s\n\n%s\n%s\n%s", header, s.panel.View(), footer, help)
}

// Stop cancels outstanding polls
func (s *ExportScreen) Stop() {
	s.cancel()
}

// Wait blocks until the export has unwound after Stop, so a save in
// progress can clean up its temporary file. It reports false on timeout.
func (s *ExportScreen) Wait(timeout time.Duration) bool {
	select {
	case <-s.stopped:
		return true
	default:
	}
	select {
	case <-s.stopped:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *ExportScreen) Done() bool {
	return s.done
}

// Status is the last status the panel shows
func (s *ExportScreen) Status() data.JobStatus {
	if s.done {
		return s.status
	}
	return s.panel.Status()
}

// Err is the failure that ended the export, if any
func (s *ExportScreen) Err() error {
	return s.err
}

// Messages carry the screen that produced them; a replaced export keeps
// sending until its run returns.
type exportProgressMsg struct {
	screen   *ExportScreen
	progress services.ExportProgress
}

type exportDoneMsg struct {
	screen *ExportScreen
	status data.JobStatus
	err    error
}

type historyChangedMsg struct{}

// Commands
func (s *ExportScreen) run() tea.Msg {
	defer close(s.stopped)
	status, err := s.start(s.ctx)
	// Run has returned, so nothing sends on the channel any more
	s.exporter.Close()
	return exportDoneMsg{screen: s, status: status, err: err}
}

func (s *ExportScreen) listenForProgress() tea.Msg {
	progress, ok := <-s.exporter.Updates()
	if !ok {
		return nil
	}
	return exportProgressMsg{screen: s, progress: progress}
}
