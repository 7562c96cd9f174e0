package classifier

import (
	"fmt"
	"strings"
)

// ClassMetrics holds precision, recall and F1 for one class or one average row.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report summarizes held-out performance.
type Report struct {
	Accuracy    float64        `json:"accuracy"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
}

// Accuracy returns the fraction of matching predictions.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// Evaluate builds a report over the classes that appear in either yTrue or yPred.
// Undefined ratios are reported as zero.
func Evaluate(labels []string, yTrue, yPred []int) Report {
	n := len(labels)
	tp := make([]int, n)
	predicted := make([]int, n)
	support := make([]int, n)
	for i := range yTrue {
		support[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
		}
	}

	r := Report{Accuracy: Accuracy(yTrue, yPred)}
	total := 0
	for k := range n {
		if support[k] == 0 && predicted[k] == 0 {
			continue
		}
		m := ClassMetrics{
			Label:     labels[k],
			Precision: ratio(tp[k], predicted[k]),
			Recall:    ratio(tp[k], support[k]),
			Support:   support[k],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)
		total += m.Support
	}

	r.MacroAvg = ClassMetrics{Label: "macro avg", Support: total}
	r.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: total}
	if len(r.Classes) == 0 {
		return r
	}
	for _, m := range r.Classes {
		r.MacroAvg.Precision += m.Precision
		r.MacroAvg.Recall += m.Recall
		r.MacroAvg.F1 += m.F1
		if total > 0 {
			w := float64(m.Support) / float64(total)
			r.WeightedAvg.Precision += w * m.Precision
			r.WeightedAvg.Recall += w * m.Recall
			r.WeightedAvg.F1 += w * m.F1
		}
	}
	k := float64(len(r.Classes))
	r.MacroAvg.Precision /= k
	r.MacroAvg.Recall /= k
	r.MacroAvg.F1 /= k
	return r
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a fixed-width table.
func (r Report) String() string {
	width := len("weighted avg")
	for _, m := range r.Classes {
		width = max(width, len(m.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(m ClassMetrics) {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	for _, m := range r.Classes {
		row(m)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.MacroAvg.Support)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}
