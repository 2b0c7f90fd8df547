package data

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          VARCHAR PRIMARY KEY,
	query       VARCHAR NOT NULL,
	data_type   VARCHAR NOT NULL,
	job_id      VARCHAR NOT NULL DEFAULT '',
	state       VARCHAR NOT NULL,
	status_text VARCHAR NOT NULL DEFAULT '',
	progress    DOUBLE NOT NULL DEFAULT 0,
	file_path   VARCHAR NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`

// InitDuckDB opens the database at path and makes sure the schema exists
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

type Repository struct {
	db *sql.DB
}

func NewDuckDBRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveJob inserts or replaces the job record
func (r *Repository) SaveJob(job *Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO jobs
			(id, query, data_type, job_id, state, status_text, progress, file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Query, string(job.DataType), job.JobID, string(job.State),
		job.StatusText, job.Progress, job.FilePath, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

// UpdateJobStatus records the last observed status of a job
func (r *Repository) UpdateJobStatus(id string, status JobStatus) error {
	res, err := r.db.Exec(`
		UPDATE jobs SET state = ?, status_text = ?, progress = ?, updated_at = ?
		WHERE id = ?`,
		string(status.State), status.Text, status.Progress, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	return requireRow(res, id)
}

// SetJobID stores the id the job service assigned
func (r *Repository) SetJobID(id, jobID string) error {
	res, err := r.db.Exec(`UPDATE jobs SET job_id = ?, updated_at = ? WHERE id = ?`, jobID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set job id for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// SetFilePath stores where the finished export was saved
func (r *Repository) SetFilePath(id, path string) error {
	res, err := r.db.Exec(`UPDATE jobs SET file_path = ?, updated_at = ? WHERE id = ?`, path, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set file path for %s: %w", id, err)
	}
	return requireRow(res, id)
}

const jobColumns = `id, query, data_type, job_id, state, status_text, progress, file_path, created_at, updated_at`

// GetJob returns nil, nil when no job has that id
func (r *Repository) GetJob(id string) (*Job, error) {
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanOptional(row)
}

// GetJobByJobID looks a job up by the id the job service assigned
func (r *Repository) GetJobByJobID(jobID string) (*Job, error) {
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE job_id = ? ORDER BY created_at DESC LIMIT 1`, jobID)
	return scanOptional(row)
}

// ListJobs returns all jobs, newest first
func (r *Repository) ListJobs() ([]*Job, error) {
	rows, err := r.db.Query(`SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *Repository) DeleteJob(id string) error {
	if _, err := r.db.Exec(`DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*Job, error) {
	var (
		job             Job
		dataType, state string
	)
	err := s.Scan(&job.ID, &job.Query, &dataType, &job.JobID, &state,
		&job.StatusText, &job.Progress, &job.FilePath, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	job.DataType = DataType(dataType)
	job.State = State(state)
	return &job, nil
}

func scanOptional(row *sql.Row) (*Job, error) {
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job: %w", err)
	}
	return job, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}
