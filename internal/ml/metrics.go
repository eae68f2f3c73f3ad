package ml

import (
	"fmt"
	"sort"
	"strings"
)

// ClassMetrics holds precision, recall and F1 for one label or an average row.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes predictions against ground truth.
type Report struct {
	Accuracy    float64
	Classes     []ClassMetrics
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Total       int
}

// Evaluate compares yPred to yTrue. Labels appearing in either slice are reported;
// undefined ratios are reported as zero.
func Evaluate(yTrue, yPred []string) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d true, %d predicted", ErrLabelMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	labelSet := make(map[string]struct{})
	for i := range yTrue {
		labelSet[yTrue[i]] = struct{}{}
		labelSet[yPred[i]] = struct{}{}
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	tp := make(map[string]int)
	predicted := make(map[string]int)
	support := make(map[string]int)
	correct := 0
	for i := range yTrue {
		support[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
			correct++
		}
	}

	r := &Report{
		Accuracy: float64(correct) / float64(len(yTrue)),
		Total:    len(yTrue),
		MacroAvg: ClassMetrics{Label: "macro avg", Support: len(yTrue)},
		WeightedAvg: ClassMetrics{
			Label:   "weighted avg",
			Support: len(yTrue),
		},
	}
	for _, l := range labels {
		m := ClassMetrics{
			Label:     l,
			Precision: ratio(tp[l], predicted[l]),
			Recall:    ratio(tp[l], support[l]),
			Support:   support[l],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)

		n := float64(len(labels))
		w := float64(m.Support) / float64(len(yTrue))
		r.MacroAvg.Precision += m.Precision / n
		r.MacroAvg.Recall += m.Recall / n
		r.MacroAvg.F1 += m.F1 / n
		r.WeightedAvg.Precision += m.Precision * w
		r.WeightedAvg.Recall += m.Recall * w
		r.WeightedAvg.F1 += m.F1 * w
	}
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a fixed-width classification table.
func (r *Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total)
	for _, c := range []ClassMetrics{r.MacroAvg, r.WeightedAvg} {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	return b.String()
}
