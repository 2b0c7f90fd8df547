package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/integrations"
	"github.com/kerbaras/rnaexport/pkg/sources"
	"github.com/kerbaras/rnaexport/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrSubmit = errors.New("error starting job")
	ErrPoll   = errors.New("error checking status")
	ErrSave   = errors.New("error saving export")
)

// Status lines shown to the user
const (
	statusRunning    = "running"
	statusFinished   = "finished"
	statusStartError = "Error starting job"
	statusPollError  = "Error checking status"
	statusSaveError  = "Error saving export"
)

// Phase is where an export is in its lifecycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhasePolling
	PhaseDownloading
	PhaseFinished
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhasePolling:
		return "polling"
	case PhaseDownloading:
		return "downloading"
	case PhaseFinished:
		return "finished"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the export has stopped for good
func (p Phase) Terminal() bool {
	return p == PhaseFinished || p == PhaseError
}

// ExportProgress represents the progress of an export
type ExportProgress struct {
	RequestID string
	JobID     string
	Query     string
	DataType  data.DataType
	Phase     Phase
	Status    data.JobStatus
	FilePath  string
	Error     error
}

// Repository interface needed by the exporter
type Repository interface {
	SaveJob(job *data.Job) error
	UpdateJobStatus(id string, status data.JobStatus) error
	SetJobID(id, jobID string) error
	SetFilePath(id, path string) error
	GetJobByJobID(jobID string) (*data.Job, error)
}

type Options struct {
	InitialDelay time.Duration
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Exporter drives one export through submit, poll and download
type Exporter struct {
	service      sources.JobService
	repo         Repository
	saver        integrations.Saver
	initialDelay time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
	progressChan chan ExportProgress
	closeOnce    sync.Once
}

// NewExporter creates a new Exporter. repo may be nil, in which case no
// history is kept.
func NewExporter(service sources.JobService, repo Repository, saver integrations.Saver, opts Options) *Exporter {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		service:      service,
		repo:         repo,
		saver:        saver,
		initialDelay: opts.InitialDelay,
		pollInterval: opts.PollInterval,
		logger:       logger,
		progressChan: make(chan ExportProgress, 100),
	}
}

// Updates returns the channel for receiving progress updates
func (e *Exporter) Updates() <-chan ExportProgress {
	return e.progressChan
}

// tracker carries the state of a single run
type tracker struct {
	job    *data.Job
	status data.JobStatus
}

func (t *tracker) progress(phase Phase) ExportProgress {
	return ExportProgress{
		RequestID: t.job.ID,
		JobID:     t.job.JobID,
		Query:     t.job.Query,
		DataType:  t.job.DataType,
		Phase:     phase,
		Status:    t.status,
		FilePath:  t.job.FilePath,
	}
}

// Run submits the request and polls until the export is saved, fails or ctx
// is cancelled. Failures are reported through the returned status and also
// as an error wrapping ErrSubmit, ErrPoll or ErrSave.
func (e *Exporter) Run(ctx context.Context, req data.ExportRequest) (data.JobStatus, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	t := &tracker{
		job: &data.Job{
			ID:         req.ID,
			Query:      req.Query,
			DataType:   req.DataType,
			State:      data.StatePending,
			StatusText: string(data.StatePending),
		},
		status: data.JobStatus{State: data.StatePending, Text: string(data.StatePending)},
	}
	logger := e.logger.With(zap.String("request_id", req.ID), zap.String("data_type", string(req.DataType)))

	if e.repo != nil {
		if err := e.repo.SaveJob(t.job); err != nil {
			logger.Warn("failed to record job", zap.Error(err))
		}
	}

	e.sendProgress(t.progress(PhaseSubmitting))
	logger.Info("submitting export", zap.String("query", req.Query))

	handle, err := e.service.Submit(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return t.status, ctxErr
		}
		text := statusStartError
		var httpErr *utils.HTTPError
		if errors.As(err, &httpErr) {
			text = statusStartError + ": " + httpErr.StatusText
		}
		logger.Error("error starting job", zap.Error(err))
		return e.fail(t, text, fmt.Errorf("%w: %w", ErrSubmit, err))
	}

	t.job.JobID = handle.JobID
	if e.repo != nil {
		if err := e.repo.SetJobID(t.job.ID, handle.JobID); err != nil {
			logger.Warn("failed to record job id", zap.Error(err))
		}
	}
	logger.Info("job submitted", zap.String("job_id", handle.JobID))

	return e.poll(ctx, t, handle, e.initialDelay)
}

// Resume polls a job that was submitted earlier, e.g. by a previous run
func (e *Exporter) Resume(ctx context.Context, handle data.JobHandle) (data.JobStatus, error) {
	var job *data.Job
	if e.repo != nil {
		found, err := e.repo.GetJobByJobID(handle.JobID)
		if err != nil {
			e.logger.Warn("failed to look up job", zap.String("job_id", handle.JobID), zap.Error(err))
		}
		job = found
	}
	if job == nil {
		job = &data.Job{ID: uuid.NewString(), JobID: handle.JobID, DataType: handle.DataType}
		if e.repo != nil {
			if err := e.repo.SaveJob(job); err != nil {
				e.logger.Warn("failed to record job", zap.String("job_id", handle.JobID), zap.Error(err))
			}
		}
	}
	job.DataType = handle.DataType

	// resumed jobs start from what the history last saw, minus terminal states
	status := data.JobStatus{State: data.StatePending, Text: string(data.StatePending), Progress: job.Progress}
	if job.State == data.StateRunning {
		status.State, status.Text = data.StateRunning, statusRunning
	}

	t := &tracker{job: job, status: status}
	return e.poll(ctx, t, handle, 0)
}

func (e *Exporter) poll(ctx context.Context, t *tracker, handle data.JobHandle, delay time.Duration) (data.JobStatus, error) {
	logger := e.logger.With(zap.String("job_id", handle.JobID), zap.String("data_type", string(handle.DataType)))

	e.sendProgress(t.progress(PhasePolling))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling cancelled")
			return t.status, ctx.Err()
		case <-timer.C:
		}

		report, err := e.service.CheckStatus(ctx, handle)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				logger.Info("polling cancelled")
				return t.status, ctxErr
			}
			logger.Error("error checking status", zap.Error(err))
			return e.fail(t, statusPollError, fmt.Errorf("%w: %w", ErrPoll, err))
		}

		if report.Done {
			return e.download(t, handle, report, logger)
		}

		if strings.EqualFold(report.State, "RUNNING") {
			t.status = data.JobStatus{State: data.StateRunning, Text: statusRunning, Progress: report.Progress}
		} else {
			// Only a running job moves the progress bar. Every other
			// non-terminal state keeps the last value and polls again.
			t.status = data.JobStatus{State: data.StatePending, Text: report.State, Progress: t.status.Progress}
		}
		logger.Debug("job status",
			zap.String("state", report.State),
			zap.Float64("progress", t.status.Progress),
		)
		e.record(t, logger)
		e.sendProgress(t.progress(PhasePolling))

		timer.Reset(e.pollInterval)
	}
}

func (e *Exporter) download(t *tracker, handle data.JobHandle, report *sources.StatusReport, logger *zap.Logger) (data.JobStatus, error) {
	if report.Payload == nil {
		return e.fail(t, statusSaveError, fmt.Errorf("%w: no payload", ErrSave))
	}
	defer report.Payload.Close()

	t.status = data.JobStatus{State: data.StateFinished, Text: statusFinished, Progress: 100}
	e.record(t, logger)
	e.sendProgress(t.progress(PhaseDownloading))

	path, err := e.saver.Save(handle, report.Payload)
	if err != nil {
		logger.Error("error saving export", zap.Error(err))
		return e.fail(t, statusSaveError, fmt.Errorf("%w: %w", ErrSave, err))
	}

	t.job.FilePath = path
	if e.repo != nil {
		if err := e.repo.SetFilePath(t.job.ID, path); err != nil {
			logger.Warn("failed to record file path", zap.Error(err))
		}
	}
	logger.Info("export saved", zap.String("path", path))

	e.sendFinal(t.progress(PhaseFinished))
	return t.status, nil
}

func (e *Exporter) fail(t *tracker, text string, err error) (data.JobStatus, error) {
	t.status = data.JobStatus{State: data.StateError, Text: text, Progress: t.status.Progress}
	e.record(t, e.logger)

	p := t.progress(PhaseError)
	p.Error = err
	e.sendFinal(p)
	return t.status, err
}

func (e *Exporter) record(t *tracker, logger *zap.Logger) {
	t.job.State = t.status.State
	t.job.StatusText = t.status.Text
	t.job.Progress = t.status.Progress
	if e.repo == nil {
		return
	}
	if err := e.repo.UpdateJobStatus(t.job.ID, t.status); err != nil {
		logger.Warn("failed to record job status", zap.Error(err))
	}
}

// sendProgress sends a progress update (non-blocking)
func (e *Exporter) sendProgress(progress ExportProgress) {
	select {
	case e.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// sendFinal makes room for the terminal update so listeners always see it
func (e *Exporter) sendFinal(progress ExportProgress) {
	for {
		select {
		case e.progressChan <- progress:
			return
		default:
			select {
			case <-e.progressChan:
			default:
			}
		}
	}
}

// Close releases the progress channel. Run and Resume must not be called
// afterwards.
func (e *Exporter) Close() {
	e.closeOnce.Do(func() {
		close(e.progressChan)
	})
}
