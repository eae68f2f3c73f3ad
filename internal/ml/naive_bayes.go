package ml

import (
	"fmt"
	"math"
)

// NaiveBayes is a multinomial Naive Bayes classifier with additive smoothing.
type NaiveBayes struct {
	Alpha          float64
	Labels         []string
	ClassLogPrior  []float64
	FeatureLogProb [][]float64
}

func NewNaiveBayes() *NaiveBayes {
	return &NaiveBayes{Alpha: 1.0}
}

func (nb *NaiveBayes) Kind() string { return KindNaiveBayes }

func (nb *NaiveBayes) Classes() []string { return nb.Labels }

func (nb *NaiveBayes) Fit(X Matrix, y []string) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	if nb.Alpha <= 0 {
		nb.Alpha = 1.0
	}

	classes, encoded := encodeLabels(y)
	featureCount := make([][]float64, len(classes))
	for c := range featureCount {
		featureCount[c] = make([]float64, X.Cols)
	}
	classCount := make([]float64, len(classes))

	for i, row := range X.Rows {
		c := encoded[i]
		classCount[c]++
		for k, idx := range row.Indices {
			if idx < X.Cols {
				featureCount[c][idx] += row.Values[k]
			}
		}
	}

	nb.Labels = classes
	nb.ClassLogPrior = make([]float64, len(classes))
	nb.FeatureLogProb = make([][]float64, len(classes))
	n := float64(X.Len())
	for c := range classes {
		nb.ClassLogPrior[c] = math.Log(classCount[c] / n)

		var total float64
		for _, v := range featureCount[c] {
			total += v
		}
		denom := math.Log(total + nb.Alpha*float64(X.Cols))
		probs := make([]float64, X.Cols)
		for j, v := range featureCount[c] {
			probs[j] = math.Log(v+nb.Alpha) - denom
		}
		nb.FeatureLogProb[c] = probs
	}
	return nil
}

func (nb *NaiveBayes) jointLogLikelihood(row SparseVector) []float64 {
	jll := make([]float64, len(nb.Labels))
	for c := range nb.Labels {
		jll[c] = nb.ClassLogPrior[c] + row.Dot(nb.FeatureLogProb[c])
	}
	return jll
}

func (nb *NaiveBayes) Predict(X Matrix) ([]string, error) {
	if len(nb.Labels) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]string, X.Len())
	for i, row := range X.Rows {
		out[i] = nb.Labels[argmax(nb.jointLogLikelihood(row))]
	}
	return out, nil
}

func (nb *NaiveBayes) PredictProba(X Matrix) ([][]float64, error) {
	if len(nb.Labels) == 0 {
		return nil, ErrNotFitted
	}
	out := make([][]float64, X.Len())
	for i, row := range X.Rows {
		out[i] = softmax(nb.jointLogLikelihood(row))
	}
	return out, nil
}

func (nb *NaiveBayes) validate() error {
	if len(nb.Labels) == 0 {
		return ErrNotFitted
	}
	if len(nb.ClassLogPrior) != len(nb.Labels) || len(nb.FeatureLogProb) != len(nb.Labels) {
		return fmt.Errorf("naive bayes: %d labels, %d priors, %d feature rows",
			len(nb.Labels), len(nb.ClassLogPrior), len(nb.FeatureLogProb))
	}
	return nil
}
