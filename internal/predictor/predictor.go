// Package predictor loads a trained artifact and turns feature vectors into
// ranked career probabilities.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/classifier"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/features"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

// probabilityTolerance bounds how far the probabilities may sum away from 1.
const probabilityTolerance = 1e-6

// Input is anything that can be laid out as a named feature row.
type Input interface {
	Schema() features.Schema
	Values() []float64
}

// Prediction is the probability assigned to one career.
type Prediction struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Result holds one prediction per label, in the model's label order.
type Result struct {
	ModelID       string       `json:"model_id"`
	Probabilities []Prediction `json:"probabilities"`
}

// Ranked returns the predictions sorted by descending probability. Equal
// probabilities keep label order.
func (r Result) Ranked() []Prediction {
	out := slices.Clone(r.Probabilities)
	slices.SortStableFunc(out, func(a, b Prediction) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		}
		return a.Index - b.Index
	})
	return out
}

// Top returns the n most probable careers. n larger than the label count returns all of them.
func (r Result) Top(n int) []Prediction {
	ranked := r.Ranked()
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Best returns the most probable career.
func (r Result) Best() Prediction {
	top := r.Top(1)
	if len(top) == 0 {
		return Prediction{}
	}
	return top[0]
}

// Info describes the loaded model.
type Info struct {
	ID        string             `json:"id"`
	Location  string             `json:"location"`
	TrainedAt time.Time          `json:"trained_at"`
	Schema    features.Schema    `json:"schema"`
	Labels    []string           `json:"labels"`
	Trees     int                `json:"trees"`
	Metrics   *classifier.Report `json:"metrics,omitempty"`
	TrainRows int                `json:"train_rows"`
	TestRows  int                `json:"test_rows"`
}

// Predictor scores inputs with a loaded pipeline. It is immutable after
// construction and safe for concurrent use.
type Predictor struct {
	location string
	bundle   *artifact.Bundle
	pipeline *classifier.Pipeline
}

// Load reads the artifact at location. Any failure is reported as ModelUnavailable.
func Load(ctx context.Context, store artifact.Store, location string) (*Predictor, error) {
	b, err := artifact.Load(ctx, store, location)
	if err != nil {
		return nil, apperrors.NewModelUnavailable(location, err)
	}
	return New(b, location)
}

// New wraps an already decoded bundle. The bundle schema must match the
// feature builder, otherwise every prediction would be rejected.
func New(b *artifact.Bundle, location string) (*Predictor, error) {
	if b == nil {
		return nil, apperrors.NewModelUnavailable(location, errors.New("no bundle"))
	}
	if err := b.Validate(); err != nil {
		return nil, apperrors.NewModelUnavailable(location, err)
	}
	if diff := features.DefaultSchema.Diff(b.Schema); diff != "" {
		return nil, apperrors.NewModelUnavailable(location, apperrors.NewSchemaMismatch(diff))
	}
	return &Predictor{location: location, bundle: b, pipeline: b.Pipeline()}, nil
}

// Labels returns a copy of the label list in model order.
func (p *Predictor) Labels() []string {
	return slices.Clone(p.bundle.Labels)
}

// ID returns the artifact identifier.
func (p *Predictor) ID() string {
	return p.bundle.ID
}

// Info returns a description of the loaded model.
func (p *Predictor) Info() Info {
	return Info{
		ID:        p.bundle.ID,
		Location:  p.location,
		TrainedAt: p.bundle.TrainedAt,
		Schema:    slices.Clone(p.bundle.Schema),
		Labels:    p.Labels(),
		Trees:     len(p.bundle.Forest.Trees),
		Metrics:   p.bundle.Metrics,
		TrainRows: p.bundle.TrainRows,
		TestRows:  p.bundle.TestRows,
	}
}

// Predict scores in. The input schema must equal the schema stored with the model.
func (p *Predictor) Predict(in Input) (Result, error) {
	if diff := p.bundle.Schema.Diff(in.Schema()); diff != "" {
		return Result{}, apperrors.NewSchemaMismatch(diff)
	}
	values := in.Values()
	if len(values) != len(p.bundle.Schema) {
		return Result{}, apperrors.NewSchemaMismatch(
			fmt.Sprintf("expected %d values, got %d", len(p.bundle.Schema), len(values)))
	}

	probs, err := p.pipeline.PredictProba(values)
	if err != nil {
		return Result{}, err
	}
	if len(probs) != len(p.bundle.Labels) {
		return Result{}, fmt.Errorf("model returned %d probabilities for %d labels", len(probs), len(p.bundle.Labels))
	}

	sum := 0.0
	res := Result{ModelID: p.bundle.ID, Probabilities: make([]Prediction, len(probs))}
	for i, v := range probs {
		if v < 0 || math.IsNaN(v) {
			return Result{}, fmt.Errorf("model returned invalid probability %v for %s", v, p.bundle.Labels[i])
		}
		sum += v
		res.Probabilities[i] = Prediction{Index: i, Label: p.bundle.Labels[i], Probability: v}
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return Result{}, fmt.Errorf("model probabilities sum to %v", sum)
	}
	return res, nil
}

// PredictProfile validates a profile, builds its features and scores it.
func (p *Predictor) PredictProfile(sp profile.StudentProfile) (Result, features.Vector, error) {
	if err := sp.Validate(); err != nil {
		return Result{}, features.Vector{}, err
	}
	v := features.Build(sp)
	res, err := p.Predict(v)
	return res, v, err
}

// Holder keeps the current predictor, or the reason none is loaded.
type Holder struct {
	mu        sync.RWMutex
	predictor *Predictor
	err       error
}

// NewHolder starts with no model loaded.
func NewHolder() *Holder {
	return &Holder{err: apperrors.NewModelUnavailable("", errors.New("model has not been loaded"))}
}

// Get returns the loaded predictor or a ModelUnavailable error.
func (h *Holder) Get() (*Predictor, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.predictor == nil {
		return nil, h.err
	}
	return h.predictor, nil
}

// Ready reports whether a predictor is loaded.
func (h *Holder) Ready() bool {
	p, _ := h.Get()
	return p != nil
}

// Load replaces the held predictor with the artifact at location. On failure
// the holder is left without a model and remembers the error.
func (h *Holder) Load(ctx context.Context, store artifact.Store, location string) error {
	p, err := Load(ctx, store, location)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.predictor, h.err = p, err
	return err
}

// Set stores p directly.
func (h *Holder) Set(p *Predictor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.predictor, h.err = p, nil
}
