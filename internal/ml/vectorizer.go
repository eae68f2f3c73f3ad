package ml

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const DefaultMaxFeatures = 5000

var (
	ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no terms")
	ErrNotFitted       = errors.New("estimator is not fitted")
)

// TfidfVectorizer maps documents to L2-normalized TF-IDF rows.
//
// The vocabulary keeps the MaxFeatures most frequent terms across the training corpus
// (all terms when MaxFeatures <= 0). Column indices follow the lexical order of terms.
// IDF uses the smoothed form ln((1+n)/(1+df)) + 1.
type TfidfVectorizer struct {
	MaxFeatures int
	Tokenizer   TokenizerOptions
	Vocabulary  map[string]int
	IDF         []float64

	tokenizer *Tokenizer
}

func NewTfidfVectorizer(maxFeatures int, opts TokenizerOptions) (*TfidfVectorizer, error) {
	v := &TfidfVectorizer{MaxFeatures: maxFeatures, Tokenizer: opts}
	if err := v.init(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *TfidfVectorizer) init() error {
	t, err := NewTokenizer(v.Tokenizer)
	if err != nil {
		return err
	}
	v.tokenizer = t
	return nil
}

// NumFeatures returns the width of transformed rows.
func (v *TfidfVectorizer) NumFeatures() int {
	return len(v.IDF)
}

// Fit learns the vocabulary and document frequencies from docs.
func (v *TfidfVectorizer) Fit(docs []string) error {
	if v.tokenizer == nil {
		if err := v.init(); err != nil {
			return err
		}
	}

	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range v.tokenizer.Tokenize(doc) {
			termCount[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}
	if len(termCount) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(termCount))
	for term := range termCount {
		terms = append(terms, term)
	}
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			ci, cj := termCount[terms[i]], termCount[terms[j]]
			if ci != cj {
				return ci > cj
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// Transform vectorizes docs with the fitted vocabulary. Unknown terms are ignored.
func (v *TfidfVectorizer) Transform(docs []string) (Matrix, error) {
	if v.tokenizer == nil || len(v.IDF) == 0 {
		return Matrix{}, ErrNotFitted
	}

	rows := make([]SparseVector, len(docs))
	for d, doc := range docs {
		counts := make(map[int]int)
		for _, tok := range v.tokenizer.Tokenize(doc) {
			if idx, ok := v.Vocabulary[tok]; ok {
				counts[idx]++
			}
		}

		row := SparseVector{
			Indices: make([]int, 0, len(counts)),
			Values:  make([]float64, 0, len(counts)),
		}
		for idx := range counts {
			row.Indices = append(row.Indices, idx)
		}
		sort.Ints(row.Indices)
		for _, idx := range row.Indices {
			row.Values = append(row.Values, float64(counts[idx])*v.IDF[idx])
		}
		if norm := row.Norm(); norm > 0 {
			for k := range row.Values {
				row.Values[k] /= norm
			}
		}
		rows[d] = row
	}
	return Matrix{Rows: rows, Cols: len(v.IDF)}, nil
}

// FitTransform is Fit followed by Transform on the same documents.
func (v *TfidfVectorizer) FitTransform(docs []string) (Matrix, error) {
	if err := v.Fit(docs); err != nil {
		return Matrix{}, err
	}
	return v.Transform(docs)
}

func (v *TfidfVectorizer) validate() error {
	if len(v.IDF) == 0 || len(v.Vocabulary) != len(v.IDF) {
		return fmt.Errorf("vectorizer vocabulary size %d does not match idf size %d", len(v.Vocabulary), len(v.IDF))
	}
	for term, idx := range v.Vocabulary {
		if term == "" || idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("invalid vocabulary entry %q -> %d", term, idx)
		}
	}
	return nil
}
