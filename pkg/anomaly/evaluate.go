package anomaly

// Evaluation compares flagged indices with known anomalies.
type Evaluation struct {
	TruePositives  int     `json:"true_positives"  yaml:"true_positives"`
	FalsePositives int     `json:"false_positives" yaml:"false_positives"`
	FalseNegatives int     `json:"false_negatives" yaml:"false_negatives"`
	Precision      float64 `json:"precision"       yaml:"precision"`
	Recall         float64 `json:"recall"          yaml:"recall"`
	F1             float64 `json:"f1"              yaml:"f1"`
}

// Evaluate scores flagged against truth. Duplicates are counted once.
// Precision is 1 when nothing was flagged; recall is 1 when truth is empty.
func Evaluate(flagged, truth []int) Evaluation {
	truthSet := make(map[int]struct{}, len(truth))
	for _, idx := range truth {
		truthSet[idx] = struct{}{}
	}

	flaggedSet := make(map[int]struct{}, len(flagged))
	for _, idx := range flagged {
		flaggedSet[idx] = struct{}{}
	}

	var eval Evaluation

	for idx := range flaggedSet {
		if _, ok := truthSet[idx]; ok {
			eval.TruePositives++
		} else {
			eval.FalsePositives++
		}
	}

	eval.FalseNegatives = len(truthSet) - eval.TruePositives

	eval.Precision = ratio(eval.TruePositives, eval.TruePositives+eval.FalsePositives)
	eval.Recall = ratio(eval.TruePositives, eval.TruePositives+eval.FalseNegatives)

	if eval.Precision+eval.Recall > 0 {
		eval.F1 = 2 * eval.Precision * eval.Recall / (eval.Precision + eval.Recall)
	}

	return eval
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 1
	}

	return float64(num) / float64(den)
}
