package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kerbaras/rnaexport/pkg/config"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, apiDomain string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		APIDomain:    apiDomain,
		SearchAPIURL: config.DefaultSearchAPIURL,
		InitialDelay: time.Millisecond,
		PollInterval: time.Millisecond,
		HTTPTimeout:  time.Second,
		DownloadDir:  filepath.Join(dir, "downloads"),
		DBPath:       filepath.Join(dir, "jobs.db"),
	}
}

func TestNewExportController(t *testing.T) {
	controller, err := NewExportController(testConfig(t, "https://export.example.org"), nil)
	require.NoError(t, err)
	defer controller.Close()

	assert.NotNil(t, controller.service)
	assert.NotNil(t, controller.repo)
	assert.NotNil(t, controller.saver)
	assert.NotNil(t, controller.logger)
	assert.Same(t, controller.repo, controller.Repository())
}

func TestExportController_NewExporterUsesConfig(t *testing.T) {
	cfg := testConfig(t, "https://export.example.org")
	cfg.InitialDelay = 2 * time.Second
	cfg.PollInterval = 7 * time.Second

	controller, err := NewExportController(cfg, nil)
	require.NoError(t, err)
	defer controller.Close()

	e := controller.NewExporter()
	defer e.Close()
	assert.Equal(t, 2*time.Second, e.initialDelay)
	assert.Equal(t, 7*time.Second, e.pollInterval)

	other := controller.NewExporter()
	defer other.Close()
	assert.NotEqual(t, e.Updates(), other.Updates(), "each exporter owns its progress channel")
}

func TestExportController_NewRequest(t *testing.T) {
	controller, err := NewExportController(testConfig(t, "https://export.example.org"), nil)
	require.NoError(t, err)
	defer controller.Close()

	req := controller.NewRequest("XIST", data.DataTypeJSON)
	assert.Equal(t, config.DefaultSearchAPIURL, req.SearchAPIURL)
	assert.Equal(t, data.DataTypeJSON, req.DataType)
	assert.NotEmpty(t, req.ID)
}

func TestExportController_CheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/download/done/json" {
			w.Header().Set("Content-Type", "application/gzip")
			fmt.Fprint(w, "file")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"state":"RUNNING","progress_ids":10,"progress_db_data":30}`)
	}))
	defer server.Close()

	controller, err := NewExportController(testConfig(t, server.URL), nil)
	require.NoError(t, err)
	defer controller.Close()

	report, err := controller.CheckStatus(context.Background(), data.JobHandle{JobID: "busy", DataType: data.DataTypeJSON})
	require.NoError(t, err)
	assert.False(t, report.Done)
	assert.Equal(t, float64(20), report.Progress)

	report, err = controller.CheckStatus(context.Background(), data.JobHandle{JobID: "done", DataType: data.DataTypeJSON})
	require.NoError(t, err)
	assert.True(t, report.Done)
	assert.Nil(t, report.Payload, "single checks never download")
}

func TestExportController_FindAndDeleteJob(t *testing.T) {
	controller, err := NewExportController(testConfig(t, "https://export.example.org"), nil)
	require.NoError(t, err)
	defer controller.Close()

	_, err = controller.FindJob("missing")
	assert.Error(t, err)

	job := &data.Job{ID: "local", Query: "q", DataType: data.DataTypeFasta, JobID: "task", State: data.StatePending}
	require.NoError(t, controller.Repository().SaveJob(job))

	found, err := controller.FindJob("task")
	require.NoError(t, err)
	assert.Equal(t, "local", found.ID)

	require.NoError(t, controller.DeleteJob("local"))
	jobs, err := controller.ListJobs()
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
