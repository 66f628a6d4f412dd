package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		flagged       []int
		truth         []int
		wantTP        int
		wantFP        int
		wantFN        int
		wantPrecision float64
		wantRecall    float64
		wantF1        float64
	}{
		{
			name: "perfect", flagged: []int{1, 5}, truth: []int{1, 5},
			wantTP: 2, wantPrecision: 1, wantRecall: 1, wantF1: 1,
		},
		{
			name: "half_precision", flagged: []int{1, 2, 5, 6}, truth: []int{1, 5},
			wantTP: 2, wantFP: 2, wantPrecision: 0.5, wantRecall: 1, wantF1: 2.0 / 3.0,
		},
		{
			name: "missed_one", flagged: []int{1}, truth: []int{1, 5},
			wantTP: 1, wantFN: 1, wantPrecision: 1, wantRecall: 0.5, wantF1: 2.0 / 3.0,
		},
		{
			name: "nothing_flagged", flagged: nil, truth: []int{3},
			wantFN: 1, wantPrecision: 1, wantRecall: 0, wantF1: 0,
		},
		{
			name: "nothing_to_find", flagged: nil, truth: nil,
			wantPrecision: 1, wantRecall: 1, wantF1: 1,
		},
		{
			name: "duplicates_counted_once", flagged: []int{4, 4}, truth: []int{4, 4},
			wantTP: 1, wantPrecision: 1, wantRecall: 1, wantF1: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Evaluate(tt.flagged, tt.truth)

			assert.Equal(t, tt.wantTP, got.TruePositives)
			assert.Equal(t, tt.wantFP, got.FalsePositives)
			assert.Equal(t, tt.wantFN, got.FalseNegatives)
			assert.InDelta(t, tt.wantPrecision, got.Precision, 1e-9)
			assert.InDelta(t, tt.wantRecall, got.Recall, 1e-9)
			assert.InDelta(t, tt.wantF1, got.F1, 1e-9)
		})
	}
}
