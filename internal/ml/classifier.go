package ml

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	KindNaiveBayes   = "naive-bayes"
	KindSVM          = "svm"
	KindDecisionTree = "decision-tree"
	KindKNN          = "knn"
)

var (
	ErrUnknownKind      = errors.New("unknown classifier kind")
	ErrEmptyTrainingSet = errors.New("training set is empty")
	ErrLabelMismatch    = errors.New("number of rows and labels differ")
	ErrTooFewClasses    = errors.New("at least two classes are required")
)

// Classifier predicts one label per row of a TF-IDF matrix.
type Classifier interface {
	Kind() string
	Fit(X Matrix, y []string) error
	Predict(X Matrix) ([]string, error)
	Classes() []string
}

// ProbabilisticClassifier also reports a per-class score for each row,
// ordered like Classes(). Scores of a row sum to one.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(X Matrix) ([][]float64, error)
}

type validator interface {
	validate() error
}

// Kinds lists the supported classifier kinds.
func Kinds() []string {
	return []string{KindDecisionTree, KindKNN, KindNaiveBayes, KindSVM}
}

// NormalizeKind accepts underscore spellings such as "naive_bayes".
func NormalizeKind(kind string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(kind)), "_", "-")
}

// NewClassifier returns an unfitted classifier of the given kind with default parameters.
func NewClassifier(kind string) (Classifier, error) {
	switch NormalizeKind(kind) {
	case KindNaiveBayes:
		return NewNaiveBayes(), nil
	case KindSVM:
		return NewLinearSVM(), nil
	case KindDecisionTree:
		return NewDecisionTree(), nil
	case KindKNN:
		return NewKNN(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Confidence returns the top class score for a single row, or zero when the
// classifier does not report scores.
func Confidence(c Classifier, row SparseVector, cols int) (float64, error) {
	pc, ok := c.(ProbabilisticClassifier)
	if !ok {
		return 0, nil
	}
	proba, err := pc.PredictProba(Matrix{Rows: []SparseVector{row}, Cols: cols})
	if err != nil {
		return 0, err
	}
	best := 0.0
	for _, p := range proba[0] {
		best = math.Max(best, p)
	}
	return best, nil
}

func checkTrainingSet(X Matrix, y []string) error {
	if X.Len() == 0 {
		return ErrEmptyTrainingSet
	}
	if X.Len() != len(y) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrLabelMismatch, X.Len(), len(y))
	}
	return nil
}

// encodeLabels returns the sorted distinct labels and the index of each sample's label.
func encodeLabels(y []string) ([]string, []int) {
	set := make(map[string]struct{})
	for _, label := range y {
		set[label] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for label := range set {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, label := range classes {
		index[label] = i
	}
	encoded := make([]int, len(y))
	for i, label := range y {
		encoded[i] = index[label]
	}
	return classes, encoded
}

func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

func softmax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	top := xs[argmax(xs)]
	var sum float64
	for i, x := range xs {
		out[i] = math.Exp(x - top)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
