package screens

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/integrations"
	"github.com/kerbaras/rnaexport/pkg/services"
	"github.com/kerbaras/rnaexport/pkg/sources"
)

type fakeService struct {
	mu        sync.Mutex
	checks    int
	submitErr error
}

func (f *fakeService) Submit(ctx context.Context, req data.ExportRequest) (data.JobHandle, error) {
	if err := ctx.Err(); err != nil {
		return data.JobHandle{}, err
	}
	if f.submitErr != nil {
		return data.JobHandle{}, f.submitErr
	}
	return data.JobHandle{JobID: "task-1", DataType: req.DataType}, nil
}

func (f *fakeService) CheckStatus(ctx context.Context, _ data.JobHandle) (*sources.StatusReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	if f.checks == 1 {
		return &sources.StatusReport{State: "RUNNING", Progress: 50}, nil
	}
	return &sources.StatusReport{Done: true, State: "finished", Progress: 100, Payload: io.NopCloser(strings.NewReader("x"))}, nil
}

type fakeBackend struct {
	service sources.JobService
	saver   integrations.Saver
	jobs    []*data.Job
	deleted []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{service: &fakeService{}, saver: integrations.NewFileSaver(t.TempDir())}
}

func (f *fakeBackend) NewExporter() *services.Exporter {
	return services.NewExporter(f.service, nil, f.saver, services.Options{PollInterval: time.Millisecond})
}

func (f *fakeBackend) NewRequest(query string, dataType data.DataType) data.ExportRequest {
	return data.NewExportRequest(query, dataType, "https://search.example.org")
}

func (f *fakeBackend) ListJobs() ([]*data.Job, error) {
	return f.jobs, nil
}

func (f *fakeBackend) DeleteJob(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runExport drives an export screen synchronously the way the program would
func runExport(s *ExportScreen) {
	done := s.run()
	for {
		msg := s.listenForProgress()
		if msg == nil {
			break
		}
		s.Update(msg)
	}
	s.Update(done)
}

func TestExportScreen_RunToCompletion(t *testing.T) {
	backend := newFakeBackend(t)
	s := NewExportScreen(backend, backend.NewRequest("HOTAIR", data.DataTypeFasta))
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	runExport(s)

	if !s.Done() {
		t.Fatal("Expected export to be done")
	}

	if s.Status().State != data.StateFinished {
		t.Errorf("Expected finished, got %s", s.Status().State)
	}

	if s.Err() != nil {
		t.Errorf("Expected no error, got %v", s.Err())
	}

	view := s.View()
	for _, want := range []string{"Query: HOTAIR", "Format: fasta", "Status: finished", "task-1.fasta.gz"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view:\n%s", want, view)
		}
	}
}

func TestExportScreen_SubmitFailure(t *testing.T) {
	backend := newFakeBackend(t)
	backend.service = &fakeService{submitErr: errors.New("connection refused")}
	s := NewExportScreen(backend, backend.NewRequest("HOTAIR", data.DataTypeJSON))

	runExport(s)

	if !errors.Is(s.Err(), services.ErrSubmit) {
		t.Errorf("Expected ErrSubmit, got %v", s.Err())
	}

	if !strings.Contains(s.View(), "Status: Error starting job") {
		t.Error("Expected submission error in view")
	}
}

func TestExportScreen_StopBeforeStart(t *testing.T) {
	backend := newFakeBackend(t)
	s := NewExportScreen(backend, backend.NewRequest("HOTAIR", data.DataTypeJSON))

	s.Update(key("x"))
	runExport(s)

	if s.Err() != nil {
		t.Errorf("Cancellation is not an error, got %v", s.Err())
	}

	if !strings.Contains(s.View(), "Export stopped") {
		t.Error("Expected stopped notice in view")
	}
}

func TestNewResumeScreen(t *testing.T) {
	backend := newFakeBackend(t)
	job := &data.Job{ID: "local", Query: "XIST", DataType: data.DataTypeJSON, JobID: "task-7", State: data.StateRunning}

	s := NewResumeScreen(backend, job)
	runExport(s)

	if s.Status().State != data.StateFinished {
		t.Errorf("Expected finished, got %s", s.Status().State)
	}
	if !strings.Contains(s.View(), "task-7.json.gz") {
		t.Error("Expected resumed job's file in view")
	}
}

func TestRootScreen_TabCycle(t *testing.T) {
	root := NewRootScreen(newFakeBackend(t))

	if root.currentView != historyView {
		t.Fatalf("Expected history view first, got %d", root.currentView)
	}

	root.Update(key("tab"))
	if root.currentView != formView {
		t.Errorf("Expected form view, got %d", root.currentView)
	}

	root.Update(key("tab"))
	if root.currentView != historyView {
		t.Errorf("Expected tab to skip the missing export view, got %d", root.currentView)
	}
}

func TestRootScreen_StartExport(t *testing.T) {
	root := NewRootScreen(newFakeBackend(t))
	defer root.Stop()

	_, cmd := root.Update(startExport{query: "HOTAIR", dataType: data.DataTypeJSON})

	if cmd == nil {
		t.Error("Expected the export to be started")
	}
	if root.Export() == nil {
		t.Fatal("Expected an export screen")
	}
	if root.currentView != exportView {
		t.Errorf("Expected export view, got %d", root.currentView)
	}
	if !strings.Contains(root.View(), "Export") {
		t.Error("Expected export tab")
	}
}

func TestRootScreen_QuitStopsExport(t *testing.T) {
	backend := newFakeBackend(t)
	root := NewExportRootScreen(backend, backend.NewRequest("HOTAIR", data.DataTypeJSON))

	_, cmd := root.Update(key("ctrl+c"))

	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if root.Export().ctx.Err() == nil {
		t.Error("Expected export context to be cancelled on quit")
	}
}

func TestRootScreen_QWhileTypingDoesNotQuit(t *testing.T) {
	root := NewRootScreen(newFakeBackend(t))
	root.Update(key("tab"))

	root.Update(key("q"))

	if root.form.input.Value() != "q" {
		t.Errorf("Expected 'q' to be typed into the form, got %q", root.form.input.Value())
	}
}

func TestFormScreen(t *testing.T) {
	form := NewFormScreen()

	if form.DataType() != data.DataTypeFasta {
		t.Errorf("Expected fasta by default, got %s", form.DataType())
	}

	form.Update(key("ctrl+f"))
	if form.DataType() != data.DataTypeJSON {
		t.Errorf("Expected json after ctrl+f, got %s", form.DataType())
	}

	_, cmd := form.Update(key("enter"))
	if cmd != nil {
		t.Error("Expected empty query to be rejected")
	}
	if !strings.Contains(form.View(), "query cannot be empty") {
		t.Error("Expected validation error in view")
	}

	form.input.SetValue("HOTAIR")
	_, cmd = form.Update(key("enter"))
	if cmd == nil {
		t.Fatal("Expected export to start")
	}

	msg, ok := cmd().(startExport)
	if !ok {
		t.Fatal("Expected startExport message")
	}
	if msg.query != "HOTAIR" || msg.dataType != data.DataTypeJSON {
		t.Errorf("Unexpected start message %+v", msg)
	}
}

func TestHistoryScreen(t *testing.T) {
	backend := newFakeBackend(t)
	backend.jobs = []*data.Job{
		{ID: "a", Query: "HOTAIR", DataType: data.DataTypeFasta, JobID: "task-a", State: data.StateRunning, StatusText: "running"},
		{ID: "b", Query: "XIST", DataType: data.DataTypeJSON, JobID: "task-b", State: data.StateFinished, StatusText: "finished"},
	}
	s := NewHistoryScreen(backend)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	s.Update(s.loadHistory())

	if !strings.Contains(s.View(), "HOTAIR") || !strings.Contains(s.View(), "XIST") {
		t.Error("Expected both jobs in view")
	}

	_, cmd := s.Update(key("enter"))
	if cmd == nil {
		t.Fatal("Expected resume for a running job")
	}
	switchMsg, ok := cmd().(SwitchScreenMsg)
	if !ok || switchMsg.Screen != "resume" || switchMsg.Data.(*data.Job).ID != "a" {
		t.Errorf("Unexpected message %+v", switchMsg)
	}

	s.Update(key("j"))
	_, cmd = s.Update(key("enter"))
	if cmd != nil {
		t.Error("Finished jobs cannot be resumed")
	}

	_, cmd = s.Update(key("d"))
	if cmd == nil {
		t.Fatal("Expected delete command")
	}
	cmd()
	if len(backend.deleted) != 1 || backend.deleted[0] != "b" {
		t.Errorf("Expected job b to be deleted, got %v", backend.deleted)
	}
}

func TestRootScreen_ReplacedExportCannotTouchNewOne(t *testing.T) {
	backend := newFakeBackend(t)
	root := NewExportRootScreen(backend, backend.NewRequest("HOTAIR", data.DataTypeJSON))
	defer root.Stop()

	old := root.Export()
	root.Update(startExport{query: "XIST", dataType: data.DataTypeFasta})
	fresh := root.Export()

	if fresh == old {
		t.Fatal("Expected a new export screen")
	}
	if old.ctx.Err() == nil {
		t.Error("Expected the replaced export to be stopped")
	}

	// the replaced export unwinds and reports back
	root.Update(old.run())
	if fresh.Done() {
		t.Errorf("Expected the new export to keep running, got status %+v", fresh.Status())
	}

	stale := old.listenForProgress()
	if stale == nil {
		t.Fatal("Expected a buffered update from the replaced export")
	}
	_, cmd := root.Update(stale)
	if cmd != nil {
		t.Error("Expected no new listener for a replaced export")
	}
	if !strings.Contains(fresh.View(), "Query: XIST") {
		t.Errorf("Expected the new export's query in view:\n%s", fresh.View())
	}
}

func TestRootScreen_WaitCoversReplacedExports(t *testing.T) {
	backend := newFakeBackend(t)
	root := NewExportRootScreen(backend, backend.NewRequest("HOTAIR", data.DataTypeJSON))
	old := root.Export()
	root.Update(startExport{query: "XIST", dataType: data.DataTypeFasta})
	fresh := root.Export()

	if root.Wait(10 * time.Millisecond) {
		t.Fatal("Expected Wait to time out before the exports ran")
	}

	go old.run()
	go fresh.run()
	root.Stop()

	if !root.Wait(time.Second) {
		t.Error("Expected every export to return after Stop")
	}
	if !old.Wait(0) || !fresh.Wait(0) {
		t.Error("Expected both exports to be finished")
	}
}
