package sources

import (
	"context"
	"io"

	"github.com/kerbaras/rnaexport/pkg/data"
)

// JobService is the remote export job API
type JobService interface {
	Submit(ctx context.Context, req data.ExportRequest) (data.JobHandle, error)
	CheckStatus(ctx context.Context, handle data.JobHandle) (*StatusReport, error)
}

// StatusReport is what one status check observed. When Done is set the
// export is complete and Payload holds the file; the caller must close it.
type StatusReport struct {
	Done     bool
	State    string // server state verbatim, "pending" when not reported
	Progress float64
	Payload  io.ReadCloser
}
