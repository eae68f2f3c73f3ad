package ml

import (
	"fmt"
	"sort"
)

// KNN votes among the K training rows with the highest cosine similarity.
// Vote ties go to the label of the closest neighbour.
type KNN struct {
	K      int
	Labels []string
	Rows   []SparseVector
	Norms  []float64
	Target []int
}

func NewKNN() *KNN {
	return &KNN{K: 5}
}

func (k *KNN) Kind() string { return KindKNN }

func (k *KNN) Classes() []string { return k.Labels }

func (k *KNN) Fit(X Matrix, y []string) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	if k.K <= 0 {
		k.K = 5
	}
	classes, encoded := encodeLabels(y)
	k.Labels = classes
	k.Target = encoded
	k.Rows = make([]SparseVector, X.Len())
	k.Norms = make([]float64, X.Len())
	for i, row := range X.Rows {
		k.Rows[i] = row
		k.Norms[i] = row.Norm()
	}
	return nil
}

type neighbour struct {
	index      int
	similarity float64
}

func (k *KNN) neighbours(row SparseVector) []neighbour {
	norm := row.Norm()
	all := make([]neighbour, len(k.Rows))
	for i, train := range k.Rows {
		sim := 0.0
		if norm > 0 && k.Norms[i] > 0 {
			sim = row.DotSparse(train) / (norm * k.Norms[i])
		}
		all[i] = neighbour{index: i, similarity: sim}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].similarity > all[b].similarity })
	if len(all) > k.K {
		all = all[:k.K]
	}
	return all
}

func (k *KNN) votes(row SparseVector) ([]float64, int) {
	nb := k.neighbours(row)
	votes := make([]float64, len(k.Labels))
	for _, n := range nb {
		votes[k.Target[n.index]]++
	}
	best := -1
	for _, n := range nb {
		c := k.Target[n.index]
		if best < 0 || votes[c] > votes[best] {
			best = c
		}
	}
	for c := range votes {
		votes[c] /= float64(len(nb))
	}
	return votes, best
}

func (k *KNN) Predict(X Matrix) ([]string, error) {
	if len(k.Rows) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]string, X.Len())
	for i, row := range X.Rows {
		_, best := k.votes(row)
		out[i] = k.Labels[best]
	}
	return out, nil
}

func (k *KNN) PredictProba(X Matrix) ([][]float64, error) {
	if len(k.Rows) == 0 {
		return nil, ErrNotFitted
	}
	out := make([][]float64, X.Len())
	for i, row := range X.Rows {
		out[i], _ = k.votes(row)
	}
	return out, nil
}

func (k *KNN) validate() error {
	if len(k.Rows) == 0 || len(k.Labels) == 0 {
		return ErrNotFitted
	}
	if len(k.Rows) != len(k.Target) || len(k.Rows) != len(k.Norms) {
		return fmt.Errorf("knn: %d rows, %d targets, %d norms", len(k.Rows), len(k.Target), len(k.Norms))
	}
	for i, t := range k.Target {
		if t < 0 || t >= len(k.Labels) {
			return fmt.Errorf("knn: row %d has label index %d", i, t)
		}
	}
	return nil
}
