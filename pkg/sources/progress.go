package sources

import "github.com/kerbaras/rnaexport/pkg/data"

// ProgressCounters are the per-stage counters the job service reports while
// an export is still being built. Absent fields stay nil.
type ProgressCounters struct {
	State          string   `json:"state"`
	ProgressIDs    *float64 `json:"progress_ids"`
	ProgressFasta  *float64 `json:"progress_fasta"`
	ProgressDBData *float64 `json:"progress_db_data"`
}

// ComputeProgress averages the stages relevant to the requested format.
// A missing counter makes the whole estimate 0.
func ComputeProgress(dataType data.DataType, c ProgressCounters) float64 {
	var progress float64
	switch dataType {
	case data.DataTypeFasta:
		if c.ProgressIDs == nil || c.ProgressFasta == nil {
			return 0
		}
		progress = (*c.ProgressIDs + *c.ProgressFasta) / 2
	case data.DataTypeJSON:
		if c.ProgressIDs == nil || c.ProgressDBData == nil {
			return 0
		}
		progress = (*c.ProgressIDs + *c.ProgressDBData) / 2
	default:
		if c.ProgressIDs == nil {
			return 0
		}
		progress = *c.ProgressIDs
	}
	return clamp(progress)
}

func clamp(p float64) float64 {
	switch {
	case p != p: // NaN
		return 0
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
