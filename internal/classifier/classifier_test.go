package classifier

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
)

// clusters returns rows where columns 0 and 4 separate three classes,
// column 1 is constant and columns 2 and 3 are noise.
func clusters(n int, seed uint64) ([][]float64, []int) {
	rng := rand.New(rand.NewPCG(seed, 7))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range n {
		c := i % 3
		row := make([]float64, 5)
		row[0] = float64(c*10) + rng.Float64()
		row[1] = 42
		row[2] = rng.Float64() * 100
		row[3] = rng.Float64() * 100
		row[4] = float64(c*5) + rng.Float64()
		X[i] = row
		y[i] = c
	}
	return X, y
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFitScaler(t *testing.T) {
	t.Parallel()

	s, err := FitScaler([][]float64{{1, 5}, {3, 5}, {5, 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(s.Mean[0], 3) || !almostEqual(s.Scale[0], math.Sqrt(8.0/3.0)) {
		t.Fatalf("unexpected first column stats: mean=%v scale=%v", s.Mean[0], s.Scale[0])
	}
	if s.Scale[1] != 1 {
		t.Fatalf("expected constant column scale of 1, got %v", s.Scale[1])
	}
	if got := s.Transform([]float64{3, 5}); got[0] != 0 || got[1] != 0 {
		t.Fatalf("expected mean row to transform to zeros, got %v", got)
	}

	if _, err := FitScaler(nil); err == nil {
		t.Fatalf("expected error on empty data")
	}
	if _, err := FitScaler([][]float64{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error on ragged data")
	}
}

func TestResolveMaxFeatures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		setting string
		n       int
		expect  int
	}{
		{setting: "sqrt", n: 14, expect: 3},
		{setting: "", n: 14, expect: 3},
		{setting: "log2", n: 14, expect: 3},
		{setting: "all", n: 14, expect: 14},
		{setting: "5", n: 14, expect: 5},
		{setting: "99", n: 14, expect: 14},
		{setting: "sqrt", n: 1, expect: 1},
	}

	for _, tt := range tests {
		got, err := ResolveMaxFeatures(tt.setting, tt.n)
		if err != nil {
			t.Fatalf("ResolveMaxFeatures(%q, %d): %v", tt.setting, tt.n, err)
		}
		if got != tt.expect {
			t.Fatalf("ResolveMaxFeatures(%q, %d): expected %d, got %d", tt.setting, tt.n, tt.expect, got)
		}
	}

	if _, err := ResolveMaxFeatures("half", 14); err == nil {
		t.Fatalf("expected error for unknown setting")
	}
}

func TestBalancedWeights(t *testing.T) {
	t.Parallel()

	w := BalancedWeights([]int{0, 0, 0, 1}, 3)
	if !almostEqual(w[0], 4.0/6.0) || !almostEqual(w[1], 2) || w[2] != 0 {
		t.Fatalf("unexpected weights: %v", w)
	}
}

func TestFitForestSeparatesClusters(t *testing.T) {
	t.Parallel()

	X, y := clusters(90, 1)
	params := DefaultForestParams()
	params.Trees = 25

	p, err := FitPipeline(context.Background(), X, y, 3, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Validate(5); err != nil {
		t.Fatalf("fitted pipeline is invalid: %v", err)
	}

	testX, testY := clusters(30, 2)
	pred, err := p.PredictAll(testX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc := Accuracy(testY, pred); acc < 0.9 {
		t.Fatalf("expected separable clusters to be learned, accuracy %v", acc)
	}

	probs, err := p.PredictProba(testX[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := 0.0
	for _, v := range probs {
		if v < 0 || v > 1 {
			t.Fatalf("probability out of range: %v", probs)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("probabilities sum to %v", sum)
	}

	if _, err := p.PredictProba([]float64{1, 2}); err == nil {
		t.Fatalf("expected width mismatch error")
	}
}

func TestFitForestIsDeterministicAcrossWorkers(t *testing.T) {
	t.Parallel()

	X, y := clusters(60, 3)
	params := DefaultForestParams()
	params.Trees = 8

	params.Workers = 1
	a, err := FitForest(context.Background(), X, y, 3, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params.Workers = 4
	b, err := FitForest(context.Background(), X, y, 3, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical forests for the same seed")
	}

	params.Seed = 7
	c, err := FitForest(context.Background(), X, y, 3, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Fatalf("expected a different seed to change the forest")
	}
}

func TestFitForestRejectsBadInput(t *testing.T) {
	t.Parallel()

	X, y := clusters(10, 4)
	params := DefaultForestParams()

	if _, err := FitForest(context.Background(), X, y[:5], 3, params); err == nil {
		t.Fatalf("expected row count mismatch error")
	}
	if _, err := FitForest(context.Background(), X, y, 2, params); err == nil {
		t.Fatalf("expected out of range label error")
	}
	bad := params
	bad.ClassWeight = "inverse"
	if _, err := FitForest(context.Background(), X, y, 3, bad); err == nil {
		t.Fatalf("expected unknown class weight error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FitForest(ctx, X, y, 3, params); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestForestValidateCatchesCorruption(t *testing.T) {
	t.Parallel()

	f := &Forest{NClasses: 2, Trees: []Tree{{Nodes: []Node{
		{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
		{Feature: leafFeature, Value: []float64{1, 0}},
		{Feature: leafFeature, Value: []float64{0, 1}},
	}}}}
	if err := f.Validate(1); err != nil {
		t.Fatalf("expected valid forest: %v", err)
	}
	if got := f.Predict([]float64{0.5}); got != 0 {
		t.Fatalf("expected threshold value to go left, got class %d", got)
	}
	if got := f.Predict([]float64{0.6}); got != 1 {
		t.Fatalf("expected class 1, got %d", got)
	}

	f.Trees[0].Nodes[2].Value = []float64{1}
	if err := f.Validate(1); err == nil {
		t.Fatalf("expected short leaf to be rejected")
	}

	f.Trees[0].Nodes[2].Value = []float64{0, 1}
	f.Trees[0].Nodes[0].Right = 0
	if err := f.Validate(1); err == nil {
		t.Fatalf("expected cyclic child to be rejected")
	}
}

func TestArgmaxPrefersLowerIndexOnTie(t *testing.T) {
	t.Parallel()

	if got := Argmax([]float64{0.2, 0.4, 0.4}); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
}

func TestTrainTestSplit(t *testing.T) {
	t.Parallel()

	train, test, err := TrainTestSplit(10, 0.2, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(train) != 8 || len(test) != 2 {
		t.Fatalf("expected 8/2 split, got %d/%d", len(train), len(test))
	}

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("index %d appears twice", i)
		}
		seen[i] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected every row to be assigned")
	}

	train2, test2, _ := TrainTestSplit(10, 0.2, 42)
	if !reflect.DeepEqual(train, train2) || !reflect.DeepEqual(test, test2) {
		t.Fatalf("expected split to be reproducible")
	}

	if _, _, err := TrainTestSplit(11, 0.2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := TrainTestSplit(1, 0.2, 1); err == nil {
		t.Fatalf("expected error for a single row")
	}
	if _, _, err := TrainTestSplit(10, 1.5, 1); err == nil {
		t.Fatalf("expected error for invalid test size")
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	labels := []string{"Doctor", "Lawyer", "Artist"}
	r := Evaluate(labels, []int{0, 0, 1, 1}, []int{0, 1, 1, 1})

	if r.Accuracy != 0.75 {
		t.Fatalf("expected accuracy 0.75, got %v", r.Accuracy)
	}
	if len(r.Classes) != 2 {
		t.Fatalf("expected absent class to be skipped, got %d rows", len(r.Classes))
	}

	doctor, lawyer := r.Classes[0], r.Classes[1]
	if doctor.Precision != 1 || doctor.Recall != 0.5 || !almostEqual(doctor.F1, 2.0/3.0) {
		t.Fatalf("unexpected doctor metrics: %+v", doctor)
	}
	if !almostEqual(lawyer.Precision, 2.0/3.0) || lawyer.Recall != 1 || !almostEqual(lawyer.F1, 0.8) {
		t.Fatalf("unexpected lawyer metrics: %+v", lawyer)
	}
	if !almostEqual(r.MacroAvg.F1, (2.0/3.0+0.8)/2) || r.WeightedAvg.Support != 4 {
		t.Fatalf("unexpected averages: %+v %+v", r.MacroAvg, r.WeightedAvg)
	}

	text := r.String()
	for _, want := range []string{"precision", "Doctor", "Lawyer", "accuracy", "macro avg", "weighted avg"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected report to contain %q:\n%s", want, text)
		}
	}
}

func TestEvaluateZeroDivision(t *testing.T) {
	t.Parallel()

	r := Evaluate([]string{"a", "b"}, []int{0, 0}, []int{1, 1})
	if r.Accuracy != 0 {
		t.Fatalf("expected zero accuracy")
	}
	for _, m := range r.Classes {
		if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
			t.Fatalf("expected undefined metrics to be zero: %+v", m)
		}
	}
}
