package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kerbaras/rnaexport/pkg/config"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/integrations"
	"github.com/kerbaras/rnaexport/pkg/sources"
	"go.uber.org/zap"
)

// ExportController wires the job service, history and download directory
// together from a Config
type ExportController struct {
	cfg     *config.Config
	service sources.JobService
	repo    *data.Repository
	saver   integrations.Saver
	logger  *zap.Logger
}

func NewExportController(cfg *config.Config, logger *zap.Logger) (*ExportController, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	repo, err := data.NewDuckDBRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open job history: %w", err)
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}

	return &ExportController{
		cfg:     cfg,
		service: sources.NewExportAPI(client, cfg.APIDomain),
		repo:    repo,
		saver:   integrations.NewFileSaver(cfg.DownloadDir),
		logger:  logger,
	}, nil
}

// NewExporter returns a fresh exporter; each export gets its own progress
// channel
func (c *ExportController) NewExporter() *Exporter {
	return NewExporter(c.service, c.repo, c.saver, Options{
		InitialDelay: c.cfg.InitialDelay,
		PollInterval: c.cfg.PollInterval,
		Logger:       c.logger,
	})
}

// NewRequest builds an export request against the configured search API
func (c *ExportController) NewRequest(query string, dataType data.DataType) data.ExportRequest {
	return data.NewExportRequest(query, dataType, c.cfg.SearchAPIURL)
}

// CheckStatus performs a single status check without downloading anything
func (c *ExportController) CheckStatus(ctx context.Context, handle data.JobHandle) (*sources.StatusReport, error) {
	report, err := c.service.CheckStatus(ctx, handle)
	if err != nil {
		return nil, err
	}
	if report.Payload != nil {
		report.Payload.Close()
		report.Payload = nil
	}
	return report, nil
}

func (c *ExportController) ListJobs() ([]*data.Job, error) {
	return c.repo.ListJobs()
}

func (c *ExportController) FindJob(jobID string) (*data.Job, error) {
	job, err := c.repo.GetJobByJobID(jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s not found in history", jobID)
	}
	return job, nil
}

func (c *ExportController) DeleteJob(id string) error {
	return c.repo.DeleteJob(id)
}

func (c *ExportController) Repository() *data.Repository {
	return c.repo
}

func (c *ExportController) Close() error {
	return c.repo.Close()
}
