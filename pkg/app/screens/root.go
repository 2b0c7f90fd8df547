package screens

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/rnaexport/pkg/app/styles"
	"github.com/kerbaras/rnaexport/pkg/data"
)

type screenType int

const (
	historyView screenType = iota
	formView
	exportView
)

type RootScreen struct {
	backend Backend

	currentView screenType
	history     *HistoryScreen
	form        *FormScreen
	export      *ExportScreen
	replaced    []*ExportScreen

	width  int
	height int
}

func NewRootScreen(backend Backend) *RootScreen {
	return &RootScreen{
		backend:     backend,
		currentView: historyView,
		history:     NewHistoryScreen(backend),
		form:        NewFormScreen(),
	}
}

// NewExportRootScreen opens straight into a running export
func NewExportRootScreen(backend Backend, req data.ExportRequest) *RootScreen {
	r := NewRootScreen(backend)
	r.export = NewExportScreen(backend, req)
	r.currentView = exportView
	return r
}

// NewResumeRootScreen opens straight into a resumed export
func NewResumeRootScreen(backend Backend, job *data.Job) *RootScreen {
	r := NewRootScreen(backend)
	r.export = NewResumeScreen(backend, job)
	r.currentView = exportView
	return r
}

func (r *RootScreen) Init() tea.Cmd {
	if r.export != nil {
		return tea.Batch(r.export.Init(), r.history.Init())
	}
	return r.history.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		// every screen keeps its own layout
		r.history.Update(msg)
		r.form.Update(msg)
		if r.export != nil {
			r.export.Update(msg)
		}
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			r.Stop()
			return r, tea.Quit
		case "q":
			if r.currentView != formView || !r.form.Typing() {
				r.Stop()
				return r, tea.Quit
			}
		case "tab":
			r.currentView = r.nextView()
			switch r.currentView {
			case formView:
				cmd = r.form.Init()
			case historyView:
				cmd = r.history.Init()
			}
			return r, cmd
		}

	// export messages go to the export screen whatever is on display,
	// unless they come from an export that was since replaced
	case exportProgressMsg:
		if r.export == nil || msg.screen != r.export {
			return r, nil
		}
		_, cmd = r.export.Update(msg)
		return r, cmd

	case exportDoneMsg:
		if r.export == nil || msg.screen != r.export {
			return r, nil
		}
		_, cmd = r.export.Update(msg)
		return r, cmd

	case historyChangedMsg:
		return r, r.history.Init()

	case startExport:
		r.replaceExport(NewExportScreen(r.backend, r.backend.NewRequest(msg.query, msg.dataType)))
		return r, r.export.Init()

	case SwitchScreenMsg:
		// Handle screen switching from sub-screens
		switch msg.Screen {
		case "history":
			r.currentView = historyView
			cmd = r.history.Init()
		case "form":
			r.currentView = formView
			cmd = r.form.Init()
		case "resume":
			if job, ok := msg.Data.(*data.Job); ok {
				r.replaceExport(NewResumeScreen(r.backend, job))
				cmd = r.export.Init()
			}
		}
		return r, cmd
	}

	// Forward message to active screen
	switch r.currentView {
	case historyView:
		newModel, newCmd := r.history.Update(msg)
		r.history = newModel.(*HistoryScreen)
		return r, newCmd
	case formView:
		newModel, newCmd := r.form.Update(msg)
		r.form = newModel.(*FormScreen)
		return r, newCmd
	case exportView:
		if r.export != nil {
			newModel, newCmd := r.export.Update(msg)
			r.export = newModel.(*ExportScreen)
			return r, newCmd
		}
	}

	return r, cmd
}

func (r *RootScreen) replaceExport(next *ExportScreen) {
	if r.export != nil {
		r.export.Stop()
		r.replaced = append(r.replaced, r.export)
	}
	r.export = next
	r.currentView = exportView
	if r.width > 0 {
		r.export.Update(tea.WindowSizeMsg{Width: r.width, Height: r.height})
	}
}

func (r *RootScreen) nextView() screenType {
	next := (r.currentView + 1) % 3
	if next == exportView && r.export == nil {
		next = historyView
	}
	return next
}

func (r *RootScreen) View() string {
	tabs := r.renderTabs()

	var content string
	switch r.currentView {
	case historyView:
		content = r.history.View()
	case formView:
		content = r.form.View()
	case exportView:
		if r.export != nil {
			content = r.export.View()
		}
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

// Stop cancels any export still polling
func (r *RootScreen) Stop() {
	if r.export != nil {
		r.export.Stop()
	}
}

// Wait gives every export started from this screen, replaced ones included,
// until timeout to return after Stop
func (r *RootScreen) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	all := append([]*ExportScreen{}, r.replaced...)
	if r.export != nil {
		all = append(all, r.export)
	}
	for _, s := range all {
		if !s.Wait(time.Until(deadline)) {
			return false
		}
	}
	return true
}

// Export is the current or last export screen, nil if none was started
func (r *RootScreen) Export() *ExportScreen {
	return r.export
}

func (r *RootScreen) renderTabs() string {
	names := []string{"History", "New Export"}
	if r.export != nil {
		names = append(names, "Export")
	}

	tabs := make([]string, len(names))
	for i, name := range names {
		if screenType(i) == r.currentView {
			tabs[i] = styles.ActiveTabStyle.Render(name)
		} else {
			tabs[i] = styles.InactiveTabStyle.Render(name)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
