package classifier

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// TrainTestSplit shuffles row indices with seed and holds out ceil(testSize*n) of them.
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("cannot split %d rows with test size %v", n, testSize)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Take selects rows of X and y by index.
func Take(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	xs := make([][]float64, len(indices))
	ys := make([]int, len(indices))
	for i, idx := range indices {
		xs[i] = X[idx]
		ys[i] = y[idx]
	}
	return xs, ys
}
