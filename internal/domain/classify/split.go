package classify

import (
	"fmt"
	"math"
	"math/rand"
)

// TrainTestSplit shuffles row indexes 0..n-1 with the given seed and
// returns ceil(n*testFraction) of them as the test set. Both sets are
// non-empty.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 || math.IsNaN(testFraction) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFraction, testFraction)
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrEmptyDataset, n)
	}
	testSize := int(math.Ceil(float64(n) * testFraction))
	testSize = min(max(testSize, 1), n-1)

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split
	return perm[testSize:], perm[:testSize], nil
}
