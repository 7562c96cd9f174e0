// Package artifacttest provides small hand-built bundles for tests.
package artifacttest

import (
	"time"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/classifier"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/features"
)

// Labels used by Bundle.
var Labels = []string{"Doctor", "Lawyer", "Artist"}

// Bundle returns a valid two-tree bundle over the default schema with an
// identity scaler. Math score <= 50 and physics score > 90 (the default
// profile) scores Doctor 0.40, Lawyer 0.25, Artist 0.35.
func Bundle() *artifact.Bundle {
	width := len(features.DefaultSchema)
	mean := make([]float64, width)
	scale := make([]float64, width)
	for i := range scale {
		scale[i] = 1
	}

	forest := &classifier.Forest{
		NClasses: len(Labels),
		Trees: []classifier.Tree{
			{Nodes: []classifier.Node{
				{Feature: features.DefaultSchema.Index("math_score"), Threshold: 50, Left: 1, Right: 2},
				{Feature: -1, Value: []float64{0.6, 0.3, 0.1}},
				{Feature: -1, Value: []float64{0.1, 0.2, 0.7}},
			}},
			{Nodes: []classifier.Node{
				{Feature: features.DefaultSchema.Index("physics_score"), Threshold: 90, Left: 1, Right: 2},
				{Feature: -1, Value: []float64{0.4, 0.4, 0.2}},
				{Feature: -1, Value: []float64{0.2, 0.2, 0.6}},
			}},
		},
	}

	return &artifact.Bundle{
		Format:    artifact.Format,
		Version:   artifact.Version,
		ID:        "00000000-0000-0000-0000-000000000001",
		TrainedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Schema:    append(features.Schema(nil), features.DefaultSchema...),
		Labels:    append([]string(nil), Labels...),
		Scaler:    &classifier.StandardScaler{Mean: mean, Scale: scale},
		Forest:    forest,
		Metrics: &classifier.Report{
			Accuracy: 0.5,
			Classes: []classifier.ClassMetrics{
				{Label: "Doctor", Precision: 0.5, Recall: 0.5, F1: 0.5, Support: 2},
			},
		},
		Params:    classifier.DefaultForestParams(),
		TrainRows: 8,
		TestRows:  2,
	}
}
