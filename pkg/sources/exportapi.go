package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/utils"
)

// ErrNoContentType means a status answer could not be classified as either
// progress or the finished file
var ErrNoContentType = errors.New("status response has no Content-Type")

// ExportAPI talks to the RNAcentral export job service
type ExportAPI struct {
	api *utils.API
}

func NewExportAPI(client *http.Client, baseURL string) *ExportAPI {
	return &ExportAPI{api: utils.NewAPI(client, baseURL)}
}

type submitRequest struct {
	APIURL   string `json:"api_url"`
	DataType string `json:"data_type"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

// Submit starts an export job. A non-200 answer is a *utils.HTTPError.
func (e *ExportAPI) Submit(ctx context.Context, req data.ExportRequest) (data.JobHandle, error) {
	body := submitRequest{
		APIURL:   req.SearchURL(),
		DataType: string(req.DataType),
	}

	var resp submitResponse
	if err := e.api.PostJSON(ctx, "/submit/", body, &resp); err != nil {
		return data.JobHandle{}, err
	}
	if resp.TaskID == "" {
		return data.JobHandle{}, errors.New("job service returned no task_id")
	}

	return data.JobHandle{JobID: resp.TaskID, DataType: req.DataType}, nil
}

// CheckStatus asks for the export. A JSON answer means the job is still
// running; anything else is the finished file.
func (e *ExportAPI) CheckStatus(ctx context.Context, handle data.JobHandle) (*StatusReport, error) {
	resp, err := e.api.Stream(ctx, e.api.URL("download", handle.JobID, string(handle.DataType)))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, utils.NewHTTPError(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, ErrNoContentType
	}

	if !isJSON(contentType) {
		return &StatusReport{
			Done:     true,
			State:    string(data.StateFinished),
			Progress: 100,
			Payload:  resp.Body,
		}, nil
	}
	defer resp.Body.Close()

	var counters ProgressCounters
	if err := json.NewDecoder(resp.Body).Decode(&counters); err != nil {
		return nil, fmt.Errorf("failed to decode job status: %w", err)
	}

	state := counters.State
	if state == "" {
		state = string(data.StatePending)
	}

	return &StatusReport{
		State:    state,
		Progress: ComputeProgress(handle.DataType, counters),
	}, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}
