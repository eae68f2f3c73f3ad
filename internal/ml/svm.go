package ml

import (
	"fmt"
	"math/rand"
)

// LinearSVM is a one-vs-rest linear support vector machine trained with the
// Pegasos stochastic sub-gradient method. The bias is learned as the weight of a
// constant feature appended to every row.
type LinearSVM struct {
	C       float64
	Epochs  int
	Seed    int64
	Labels  []string
	Weights [][]float64
	Bias    []float64
}

func NewLinearSVM() *LinearSVM {
	return &LinearSVM{C: 1.0, Epochs: 30, Seed: 42}
}

func (s *LinearSVM) Kind() string { return KindSVM }

func (s *LinearSVM) Classes() []string { return s.Labels }

func (s *LinearSVM) Fit(X Matrix, y []string) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	classes, encoded := encodeLabels(y)
	if len(classes) < 2 {
		return ErrTooFewClasses
	}
	if s.C <= 0 {
		s.C = 1.0
	}
	if s.Epochs <= 0 {
		s.Epochs = 30
	}

	lambda := 1.0 / (s.C * float64(X.Len()))
	s.Labels = classes
	s.Weights = make([][]float64, len(classes))
	s.Bias = make([]float64, len(classes))
	for c := range classes {
		w, b := s.fitBinary(X, encoded, c, lambda)
		s.Weights[c] = w
		s.Bias[c] = b
	}
	return nil
}

func (s *LinearSVM) fitBinary(X Matrix, encoded []int, positive int, lambda float64) ([]float64, float64) {
	rng := rand.New(rand.NewSource(s.Seed + int64(positive)))
	w := make([]float64, X.Cols)
	var b float64
	order := make([]int, X.Len())
	for i := range order {
		order[i] = i
	}

	t := 0
	for epoch := 0; epoch < s.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order {
			t++
			eta := 1.0 / (lambda * float64(t))
			target := -1.0
			if encoded[i] == positive {
				target = 1.0
			}
			row := X.Rows[i]
			margin := target * (row.Dot(w) + b)

			shrink := 1.0 - eta*lambda
			for j := range w {
				w[j] *= shrink
			}
			b *= shrink
			if margin < 1 {
				for k, idx := range row.Indices {
					if idx < len(w) {
						w[idx] += eta * target * row.Values[k]
					}
				}
				b += eta * target
			}
		}
	}
	return w, b
}

func (s *LinearSVM) decision(row SparseVector) []float64 {
	scores := make([]float64, len(s.Labels))
	for c := range s.Labels {
		scores[c] = row.Dot(s.Weights[c]) + s.Bias[c]
	}
	return scores
}

func (s *LinearSVM) Predict(X Matrix) ([]string, error) {
	if len(s.Labels) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]string, X.Len())
	for i, row := range X.Rows {
		out[i] = s.Labels[argmax(s.decision(row))]
	}
	return out, nil
}

// PredictProba is a softmax over decision values. It ranks classes like Predict but
// is not calibrated.
func (s *LinearSVM) PredictProba(X Matrix) ([][]float64, error) {
	if len(s.Labels) == 0 {
		return nil, ErrNotFitted
	}
	out := make([][]float64, X.Len())
	for i, row := range X.Rows {
		out[i] = softmax(s.decision(row))
	}
	return out, nil
}

func (s *LinearSVM) validate() error {
	if len(s.Labels) < 2 {
		return ErrNotFitted
	}
	if len(s.Weights) != len(s.Labels) || len(s.Bias) != len(s.Labels) {
		return fmt.Errorf("svm: %d labels, %d weight rows, %d biases", len(s.Labels), len(s.Weights), len(s.Bias))
	}
	return nil
}
