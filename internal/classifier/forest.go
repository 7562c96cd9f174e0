// Package classifier implements the standardizing scaler and the class-balanced
// random forest used to predict career aspirations.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ForestParams control how a forest is grown.
type ForestParams struct {
	Trees           int    `json:"n_estimators" mapstructure:"trees"`
	Seed            uint64 `json:"random_state" mapstructure:"seed"`
	MaxFeatures     string `json:"max_features" mapstructure:"max_features"`
	ClassWeight     string `json:"class_weight" mapstructure:"class_weight"`
	MinSamplesSplit int    `json:"min_samples_split" mapstructure:"min_samples_split"`
	MinSamplesLeaf  int    `json:"min_samples_leaf" mapstructure:"min_samples_leaf"`
	MaxDepth        int    `json:"max_depth" mapstructure:"max_depth"`
	Bootstrap       bool   `json:"bootstrap" mapstructure:"bootstrap"`
	Workers         int    `json:"-" mapstructure:"workers"`
}

// Class weighting modes.
const (
	ClassWeightBalanced = "balanced"
	ClassWeightNone     = "none"
)

// DefaultForestParams mirrors the hyperparameters the shipped model is trained with.
func DefaultForestParams() ForestParams {
	return ForestParams{
		Trees:           200,
		Seed:            42,
		MaxFeatures:     "sqrt",
		ClassWeight:     ClassWeightBalanced,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
}

// Forest is an ensemble of classification trees whose leaf distributions are averaged.
type Forest struct {
	NClasses int    `json:"n_classes"`
	Trees    []Tree `json:"trees"`
}

// ResolveMaxFeatures turns the max_features setting into a column count.
func ResolveMaxFeatures(setting string, nFeatures int) (int, error) {
	var n int
	switch s := strings.ToLower(strings.TrimSpace(setting)); s {
	case "", "sqrt":
		n = int(math.Sqrt(float64(nFeatures)))
	case "log2":
		n = int(math.Log2(float64(nFeatures)))
	case "all":
		n = nFeatures
	default:
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid max_features %q", setting)
		}
		n = v
	}
	if n < 1 {
		n = 1
	}
	if n > nFeatures {
		n = nFeatures
	}
	return n, nil
}

// BalancedWeights returns n / (k * count) per class, where k counts the classes present in y.
func BalancedWeights(y []int, nClasses int) []float64 {
	counts := make([]int, nClasses)
	for _, c := range y {
		counts[c]++
	}
	present := 0
	for _, c := range counts {
		if c > 0 {
			present++
		}
	}
	weights := make([]float64, nClasses)
	for k, c := range counts {
		if c > 0 {
			weights[k] = float64(len(y)) / float64(present*c)
		}
	}
	return weights
}

// FitForest grows params.Trees trees concurrently. Each tree draws from its own
// generator seeded by (params.Seed, tree index), so the result does not depend on scheduling.
func FitForest(ctx context.Context, X [][]float64, y []int, nClasses int, params ForestParams) (*Forest, error) {
	if len(X) == 0 {
		return nil, errors.New("cannot fit forest on empty data")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("features have %d rows but labels have %d", len(X), len(y))
	}
	if params.Trees < 1 {
		return nil, fmt.Errorf("forest needs at least one tree, got %d", params.Trees)
	}
	for i, c := range y {
		if c < 0 || c >= nClasses {
			return nil, fmt.Errorf("label %d at row %d is outside [0, %d)", c, i, nClasses)
		}
	}

	maxFeatures, err := ResolveMaxFeatures(params.MaxFeatures, len(X[0]))
	if err != nil {
		return nil, err
	}
	tp := treeParams{
		maxFeatures:     maxFeatures,
		minSamplesSplit: max(params.MinSamplesSplit, 2),
		minSamplesLeaf:  max(params.MinSamplesLeaf, 1),
		maxDepth:        params.MaxDepth,
	}

	classWeights := make([]float64, nClasses)
	switch params.ClassWeight {
	case ClassWeightBalanced:
		classWeights = BalancedWeights(y, nClasses)
	case "", ClassWeightNone:
		for k := range classWeights {
			classWeights[k] = 1
		}
	default:
		return nil, fmt.Errorf("unknown class_weight %q", params.ClassWeight)
	}

	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	forest := &Forest{NClasses: nClasses, Trees: make([]Tree, params.Trees)}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range params.Trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(params.Seed, uint64(i)))
			indices, weights := sampleRows(rng, y, classWeights, params.Bootstrap)
			forest.Trees[i] = growTree(X, y, weights, indices, nClasses, tp, rng)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return forest, nil
}

// sampleRows draws a bootstrap sample and folds the draw counts into the row weights.
func sampleRows(rng *rand.Rand, y []int, classWeights []float64, bootstrap bool) ([]int, []float64) {
	n := len(y)
	weights := make([]float64, n)

	if !bootstrap {
		indices := make([]int, n)
		for i := range n {
			indices[i] = i
			weights[i] = classWeights[y[i]]
		}
		return indices, weights
	}

	drawn := make([]int, n)
	for range n {
		drawn[rng.IntN(n)]++
	}
	indices := make([]int, 0, n)
	for i, c := range drawn {
		if c == 0 {
			continue
		}
		indices = append(indices, i)
		weights[i] = float64(c) * classWeights[y[i]]
	}
	return indices, weights
}

// PredictProba averages the leaf distributions of every tree.
func (f *Forest) PredictProba(row []float64) []float64 {
	out := make([]float64, f.NClasses)
	for i := range f.Trees {
		for k, p := range f.Trees[i].PredictProba(row) {
			out[k] += p
		}
	}
	n := float64(len(f.Trees))
	for k := range out {
		out[k] /= n
	}
	return out
}

// Predict returns the index of the most probable class. Ties go to the lower index.
func (f *Forest) Predict(row []float64) int {
	return Argmax(f.PredictProba(row))
}

// Argmax returns the first index holding the largest value.
func Argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// Validate checks the structural integrity of a forest loaded from storage.
func (f *Forest) Validate(nFeatures int) error {
	if f.NClasses < 1 {
		return fmt.Errorf("forest has %d classes", f.NClasses)
	}
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.IsLeaf() {
				if len(n.Value) != f.NClasses {
					return fmt.Errorf("tree %d node %d: leaf has %d values, expected %d", ti, ni, len(n.Value), f.NClasses)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= nFeatures {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: invalid children", ti, ni)
			}
		}
	}
	return nil
}
