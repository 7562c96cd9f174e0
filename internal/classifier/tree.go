package classifier

import (
	"math/rand/v2"
	"sort"
)

const leafFeature = -1

// featureThreshold is the smallest gap between two values that still allows a split.
const featureThreshold = 1e-7

// Node is a single decision tree node. Leaves carry class probabilities.
type Node struct {
	Feature   int       `json:"f"`
	Threshold float64   `json:"t,omitempty"`
	Left      int       `json:"l,omitempty"`
	Right     int       `json:"r,omitempty"`
	Value     []float64 `json:"v,omitempty"`
}

// IsLeaf reports whether the node is terminal.
func (n Node) IsLeaf() bool { return n.Feature == leafFeature }

// Tree is a binary classification tree stored as a flat node slice; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// PredictProba returns the class distribution of the leaf row falls into.
func (t *Tree) PredictProba(row []float64) []float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.IsLeaf() {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(idx int) int
	walk = func(idx int) int {
		n := t.Nodes[idx]
		if n.IsLeaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

type treeParams struct {
	maxFeatures     int
	minSamplesSplit int
	minSamplesLeaf  int
	maxDepth        int
}

type treeBuilder struct {
	X        [][]float64
	y        []int
	w        []float64
	nClasses int
	params   treeParams
	rng      *rand.Rand
	nodes    []Node
}

// growTree fits a gini tree on the rows in indices, weighted by w.
func growTree(X [][]float64, y []int, w []float64, indices []int, nClasses int, params treeParams, rng *rand.Rand) Tree {
	b := &treeBuilder{X: X, y: y, w: w, nClasses: nClasses, params: params, rng: rng}
	b.build(indices, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(indices []int, depth int) int {
	counts := make([]float64, b.nClasses)
	total := 0.0
	for _, i := range indices {
		counts[b.y[i]] += b.w[i]
		total += b.w[i]
	}

	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leafFeature})

	if len(indices) < b.params.minSamplesSplit ||
		len(indices) < 2*b.params.minSamplesLeaf ||
		(b.params.maxDepth > 0 && depth >= b.params.maxDepth) ||
		gini(counts, total) <= 1e-12 {
		b.nodes[id].Value = normalize(counts, total)
		return id
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		b.nodes[id].Value = normalize(counts, total)
		return id
	}

	var left, right []int
	for _, i := range indices {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[id] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return id
}

// bestSplit draws features in random order and evaluates them until
// maxFeatures non-constant ones have been visited.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	nFeatures := len(b.X[indices[0]])
	order := b.rng.Perm(nFeatures)

	sorted := make([]int, len(indices))
	left := make([]float64, b.nClasses)
	right := make([]float64, b.nClasses)

	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := 0.0
	visited := 0

	for _, f := range order {
		if visited >= b.params.maxFeatures {
			break
		}

		copy(sorted, indices)
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		lo, hi := b.X[sorted[0]][f], b.X[sorted[len(sorted)-1]][f]
		if hi <= lo+featureThreshold {
			continue
		}
		visited++

		for k := range left {
			left[k], right[k] = 0, 0
		}
		wLeft, wRight := 0.0, 0.0
		for _, i := range sorted {
			right[b.y[i]] += b.w[i]
			wRight += b.w[i]
		}

		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			left[b.y[i]] += b.w[i]
			right[b.y[i]] -= b.w[i]
			wLeft += b.w[i]
			wRight -= b.w[i]

			cur, next := b.X[i][f], b.X[sorted[pos+1]][f]
			if next <= cur+featureThreshold {
				continue
			}
			if pos+1 < b.params.minSamplesLeaf || len(sorted)-pos-1 < b.params.minSamplesLeaf {
				continue
			}

			impurity := wLeft*gini(left, wLeft) + wRight*gini(right, wRight)
			if bestFeature == -1 || impurity < bestImpurity {
				threshold := cur/2 + next/2
				if threshold >= next {
					threshold = cur
				}
				bestFeature, bestThreshold, bestImpurity = f, threshold, impurity
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature != -1
}

func gini(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := c / total
		sum += p * p
	}
	return 1 - sum
}

func normalize(counts []float64, total float64) []float64 {
	out := make([]float64, len(counts))
	if total <= 0 {
		return out
	}
	for k, c := range counts {
		out[k] = c / total
	}
	return out
}
