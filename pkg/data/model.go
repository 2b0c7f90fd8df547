package data

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DataType is the export format requested from the job service.
// Any string is accepted; only fasta and json get special treatment.
type DataType string

const (
	DataTypeFasta DataType = "fasta"
	DataTypeJSON  DataType = "json"
)

// Extension returns the file extension of the compressed export
func (d DataType) Extension() string {
	switch d {
	case DataTypeJSON:
		return "json.gz"
	case DataTypeFasta:
		return "fasta.gz"
	default:
		return "txt.gz"
	}
}

// DefaultSearchParams are appended to every composed search URL
const DefaultSearchParams = "&size=1000&sort=id&format=json"

type ExportRequest struct {
	ID           string
	Query        string
	DataType     DataType
	SearchAPIURL string
}

// NewExportRequest creates a request with a fresh local ID
func NewExportRequest(query string, dataType DataType, searchAPIURL string) ExportRequest {
	return ExportRequest{
		ID:           uuid.NewString(),
		Query:        query,
		DataType:     dataType,
		SearchAPIURL: searchAPIURL,
	}
}

// SearchURL composes the search API URL handed opaquely to the job service.
// The query is inserted verbatim; the job service does the escaping.
func (r ExportRequest) SearchURL() string {
	return fmt.Sprintf("%s?query=(%s)%s", r.SearchAPIURL, r.Query, DefaultSearchParams)
}

type JobHandle struct {
	JobID    string
	DataType DataType
}

// Filename is the name the finished export is saved under
func (h JobHandle) Filename() string {
	return fmt.Sprintf("%s.%s", h.JobID, h.DataType.Extension())
}

type State string

const (
	StatePending  State = "pending"
	StateRunning  State = "running"
	StateFinished State = "finished"
	StateError    State = "error"
)

// Terminal reports whether no further polls follow this state
func (s State) Terminal() bool {
	return s == StateFinished || s == StateError
}

type JobStatus struct {
	State    State
	Text     string  // what the user sees after "Status: "
	Progress float64 // 0-100
}

// Job is a persisted export in the local history
type Job struct {
	ID         string
	Query      string
	DataType   DataType
	JobID      string // empty until the service accepted the request
	State      State
	StatusText string
	Progress   float64
	FilePath   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Handle returns the job handle, ok is false if the job was never accepted
func (j *Job) Handle() (JobHandle, bool) {
	if j.JobID == "" {
		return JobHandle{}, false
	}
	return JobHandle{JobID: j.JobID, DataType: j.DataType}, true
}
