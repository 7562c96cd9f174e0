package classifier

import (
	"context"
	"fmt"
)

// Pipeline standardizes a raw feature row and scores it with a forest.
type Pipeline struct {
	Scaler *StandardScaler `json:"scaler"`
	Forest *Forest         `json:"forest"`
}

// FitPipeline fits the scaler on X, then the forest on the scaled rows.
func FitPipeline(ctx context.Context, X [][]float64, y []int, nClasses int, params ForestParams) (*Pipeline, error) {
	scaler, err := FitScaler(X)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	forest, err := FitForest(ctx, scaler.TransformAll(X), y, nClasses, params)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	return &Pipeline{Scaler: scaler, Forest: forest}, nil
}

// Classes is the length of every probability vector the pipeline returns.
func (p *Pipeline) Classes() int {
	return p.Forest.NClasses
}

// PredictProba returns one probability per class for a raw row.
func (p *Pipeline) PredictProba(row []float64) ([]float64, error) {
	if len(row) != p.Scaler.Width() {
		return nil, fmt.Errorf("row has %d features, pipeline expects %d", len(row), p.Scaler.Width())
	}
	return p.Forest.PredictProba(p.Scaler.Transform(row)), nil
}

// PredictAll returns the most probable class for every row.
func (p *Pipeline) PredictAll(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, row := range X {
		probs, err := p.PredictProba(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = Argmax(probs)
	}
	return out, nil
}

// Validate checks that the scaler and forest agree with each other and with width.
func (p *Pipeline) Validate(width int) error {
	if p.Scaler == nil || p.Forest == nil {
		return fmt.Errorf("pipeline is incomplete")
	}
	if len(p.Scaler.Mean) != width || len(p.Scaler.Scale) != width {
		return fmt.Errorf("scaler covers %d/%d features, expected %d", len(p.Scaler.Mean), len(p.Scaler.Scale), width)
	}
	for j, s := range p.Scaler.Scale {
		if s == 0 {
			return fmt.Errorf("scaler has zero scale for feature %d", j)
		}
	}
	return p.Forest.Validate(width)
}
