package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/rnaexport/pkg/app/screens"
	"github.com/kerbaras/rnaexport/pkg/data"
)

// shutdownTimeout bounds how long quitting waits for a cancelled export
const shutdownTimeout = 3 * time.Second

type App struct {
	backend screens.Backend
}

func NewApp(backend screens.Backend) *App {
	return &App{backend: backend}
}

// Run opens the history view
func (a *App) Run() error {
	_, err := a.run(screens.NewRootScreen(a.backend))
	return err
}

// RunExport starts an export and follows it until the user quits. The
// returned status is the last one the screen showed.
func (a *App) RunExport(req data.ExportRequest) (data.JobStatus, error) {
	return a.run(screens.NewExportRootScreen(a.backend, req))
}

// RunResume follows a previously submitted job
func (a *App) RunResume(job *data.Job) (data.JobStatus, error) {
	return a.run(screens.NewResumeRootScreen(a.backend, job))
}

func (a *App) run(model *screens.RootScreen) (data.JobStatus, error) {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()

	// leaving the UI stops outstanding polls
	model.Stop()

	// let an interrupted save remove its temporary file before exit
	model.Wait(shutdownTimeout)

	export := model.Export()
	if export == nil {
		return data.JobStatus{}, err
	}
	if err == nil {
		err = export.Err()
	}
	return export.Status(), err
}
