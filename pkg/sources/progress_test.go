package sources

import (
	"testing"

	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name     string
		dataType data.DataType
		counters ProgressCounters
		want     float64
	}{
		{"fasta averages ids and fasta", data.DataTypeFasta, ProgressCounters{ProgressIDs: ptr(60), ProgressFasta: ptr(20)}, 40},
		{"fasta ignores db data", data.DataTypeFasta, ProgressCounters{ProgressIDs: ptr(60), ProgressFasta: ptr(20), ProgressDBData: ptr(100)}, 40},
		{"json averages ids and db data", data.DataTypeJSON, ProgressCounters{ProgressIDs: ptr(50), ProgressDBData: ptr(25)}, 37.5},
		{"other uses ids alone", data.DataType("txt"), ProgressCounters{ProgressIDs: ptr(70), ProgressFasta: ptr(10)}, 70},
		{"fasta missing counter", data.DataTypeFasta, ProgressCounters{ProgressIDs: ptr(60)}, 0},
		{"json missing counter", data.DataTypeJSON, ProgressCounters{ProgressDBData: ptr(60)}, 0},
		{"other missing counter", data.DataType("txt"), ProgressCounters{}, 0},
		{"clamped high", data.DataType("txt"), ProgressCounters{ProgressIDs: ptr(140)}, 100},
		{"clamped low", data.DataType("txt"), ProgressCounters{ProgressIDs: ptr(-3)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeProgress(tt.dataType, tt.counters), 0.0001)
		})
	}
}

func TestComputeProgressIsStable(t *testing.T) {
	counters := ProgressCounters{ProgressIDs: ptr(33), ProgressFasta: ptr(12)}
	first := ComputeProgress(data.DataTypeFasta, counters)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeProgress(data.DataTypeFasta, counters))
	}
}
