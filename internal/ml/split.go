package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

var ErrInvalidSplit = errors.New("invalid train/test split")

// StratifiedSplit partitions sample indices so every label keeps roughly the same
// share in both sides. Each label contributes round(count*testSize) samples to the
// test side, chosen with a seeded shuffle. Returned indices are sorted.
func StratifiedSplit(labels []string, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, ErrInvalidSplit
	}

	byLabel := make(map[string][]int)
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}
	keys := make([]string, 0, len(byLabel))
	for l := range byLabel {
		keys = append(keys, l)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(seed))
	for _, l := range keys {
		idx := byLabel[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		n := int(math.Round(float64(len(idx)) * testSize))
		if n >= len(idx) {
			n = len(idx) - 1
		}
		test = append(test, idx[:n]...)
		train = append(train, idx[n:]...)
	}
	if len(train) == 0 || len(test) == 0 {
		return nil, nil, ErrInvalidSplit
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// SplitDataset applies index sets to a matrix and its labels.
func SplitDataset(X Matrix, y []string, train, test []int) (Matrix, []string, Matrix, []string) {
	return X.Subset(train), subsetLabels(y, train), X.Subset(test), subsetLabels(y, test)
}
