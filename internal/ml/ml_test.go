package ml

import (
	"bytes"
	"encoding/gob"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	trainingTexts = []string{
		"great movie, loved it",
		"great acting and a wonderful story",
		"loved the film, simply great",
		"great fun, wonderful cast",
		"terrible movie, hated it",
		"terrible acting and a boring story",
		"hated the film, simply terrible",
		"terrible plot, awful cast",
	}
	trainingLabels = []string{
		"positive", "positive", "positive", "positive",
		"negative", "negative", "negative", "negative",
	}
)

func fitVectorizer(t *testing.T) (*TfidfVectorizer, Matrix) {
	t.Helper()
	v, err := NewTfidfVectorizer(DefaultMaxFeatures, DefaultTokenizerOptions())
	require.NoError(t, err)
	X, err := v.FitTransform(trainingTexts)
	require.NoError(t, err)
	return v, X
}

// ============================================================================
// Tokenizer
// ============================================================================

func TestTokenizer_Default(t *testing.T) {
	tok, err := NewTokenizer(DefaultTokenizerOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"this", "movie", "was", "great"}, tok.Tokenize("This Movie, was GREAT!! a"))
	assert.Equal(t, []string{"full", "width"}, tok.Tokenize("ｆｕｌｌ ｗｉｄｔｈ"))
	assert.Empty(t, tok.Tokenize("a b c !"))
}

func TestTokenizer_Stemming(t *testing.T) {
	tok, err := NewTokenizer(TokenizerOptions{Lowercase: true, StemLanguage: "english"})
	require.NoError(t, err)

	assert.Equal(t, []string{"run", "movi"}, tok.Tokenize("running movies"))
}

func TestTokenizer_StopWords(t *testing.T) {
	tok, err := NewTokenizer(TokenizerOptions{Lowercase: true, StopWordsLanguage: "en"})
	require.NoError(t, err)

	tokens := tok.Tokenize("this movie was great")
	assert.Contains(t, tokens, "movie")
	assert.Contains(t, tokens, "great")
	assert.NotContains(t, tokens, "this")
}

func TestTokenizer_StopWordsKeepTermShape(t *testing.T) {
	text := "The rating 10 snake_case the movie"

	plain, err := NewTokenizer(DefaultTokenizerOptions())
	require.NoError(t, err)
	filtered, err := NewTokenizer(TokenizerOptions{Lowercase: true, StopWordsLanguage: "en"})
	require.NoError(t, err)

	assert.Equal(t, []string{"the", "rating", "10", "snake_case", "the", "movie"}, plain.Tokenize(text))
	assert.Equal(t, []string{"rating", "10", "snake_case", "movie"}, filtered.Tokenize(text))
}

func TestTokenizer_StopWordsIndonesian(t *testing.T) {
	tok, err := NewTokenizer(TokenizerOptions{Lowercase: true, StopWordsLanguage: "id"})
	require.NoError(t, err)

	assert.Equal(t, []string{"film", "bagus", "10"}, tok.Tokenize("film ini sangat bagus 10"))
}

func TestTokenizer_StopWordsRegionTag(t *testing.T) {
	tok, err := NewTokenizer(TokenizerOptions{Lowercase: true, StopWordsLanguage: "en-US"})
	require.NoError(t, err)

	assert.Equal(t, []string{"movie"}, tok.Tokenize("the movie"))
}

func TestTokenizer_UnknownStopWordsLanguage(t *testing.T) {
	for _, code := range []string{"xx", "zu", "not a tag"} {
		t.Run(code, func(t *testing.T) {
			_, err := NewTokenizer(TokenizerOptions{StopWordsLanguage: code})
			assert.Error(t, err)
		})
	}
}

func TestTokenizer_UnknownStemLanguage(t *testing.T) {
	_, err := NewTokenizer(TokenizerOptions{StemLanguage: "klingon"})
	assert.Error(t, err)
}

// ============================================================================
// Vectorizer
// ============================================================================

func TestTfidfVectorizer_IDFAndNormalization(t *testing.T) {
	v, err := NewTfidfVectorizer(0, DefaultTokenizerOptions())
	require.NoError(t, err)

	X, err := v.FitTransform([]string{"aa bb", "aa cc"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"aa": 0, "bb": 1, "cc": 2}, v.Vocabulary)
	assert.InDelta(t, 1.0, v.IDF[0], 1e-9)
	assert.InDelta(t, math.Log(1.5)+1, v.IDF[1], 1e-9)
	assert.Equal(t, 3, X.Cols)
	for _, row := range X.Rows {
		assert.InDelta(t, 1.0, row.Norm(), 1e-9)
	}
	assert.Equal(t, []int{0, 1}, X.Rows[0].Indices)
}

func TestTfidfVectorizer_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	v, err := NewTfidfVectorizer(2, DefaultTokenizerOptions())
	require.NoError(t, err)

	require.NoError(t, v.Fit([]string{"zz zz yy", "zz yy xx", "ww"}))
	assert.Equal(t, map[string]int{"yy": 0, "zz": 1}, v.Vocabulary)
	assert.Equal(t, 2, v.NumFeatures())
}

func TestTfidfVectorizer_UnknownTermsGiveEmptyRow(t *testing.T) {
	v, _ := fitVectorizer(t)

	X, err := v.Transform([]string{"zzz qqq"})
	require.NoError(t, err)
	require.Equal(t, 1, X.Len())
	assert.Empty(t, X.Rows[0].Indices)
}

func TestTfidfVectorizer_Errors(t *testing.T) {
	v, err := NewTfidfVectorizer(10, DefaultTokenizerOptions())
	require.NoError(t, err)

	_, err = v.Transform([]string{"hello"})
	assert.ErrorIs(t, err, ErrNotFitted)

	err = v.Fit([]string{"a", "!"})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

// ============================================================================
// Classifiers
// ============================================================================

func TestClassifiers_SeparateSentiment(t *testing.T) {
	v, X := fitVectorizer(t)
	query, err := v.Transform([]string{"great and wonderful", "terrible and awful"})
	require.NoError(t, err)

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			c, err := NewClassifier(kind)
			require.NoError(t, err)
			require.NoError(t, c.Fit(X, trainingLabels))

			assert.Equal(t, []string{"negative", "positive"}, c.Classes())

			got, err := c.Predict(query)
			require.NoError(t, err)
			assert.Equal(t, []string{"positive", "negative"}, got)

			pc, ok := c.(ProbabilisticClassifier)
			require.True(t, ok)
			proba, err := pc.PredictProba(query)
			require.NoError(t, err)
			for _, row := range proba {
				var sum float64
				for _, p := range row {
					sum += p
				}
				assert.InDelta(t, 1.0, sum, 1e-9)
			}
			assert.Greater(t, proba[0][1], proba[0][0])
		})
	}
}

func TestClassifiers_Deterministic(t *testing.T) {
	v, X := fitVectorizer(t)
	query, err := v.Transform([]string{"great movie"})
	require.NoError(t, err)

	for _, kind := range Kinds() {
		a, _ := NewClassifier(kind)
		b, _ := NewClassifier(kind)
		require.NoError(t, a.Fit(X, trainingLabels))
		require.NoError(t, b.Fit(X, trainingLabels))

		pa, err := a.Predict(query)
		require.NoError(t, err)
		pb, err := b.Predict(query)
		require.NoError(t, err)
		assert.Equal(t, pa, pb, kind)
	}
}

func TestClassifiers_FitErrors(t *testing.T) {
	for _, kind := range Kinds() {
		c, _ := NewClassifier(kind)
		assert.ErrorIs(t, c.Fit(Matrix{}, nil), ErrEmptyTrainingSet, kind)
		_, X := fitVectorizer(t)
		assert.ErrorIs(t, c.Fit(X, []string{"positive"}), ErrLabelMismatch, kind)
	}

	_, X := fitVectorizer(t)
	same := make([]string, X.Len())
	for i := range same {
		same[i] = "positive"
	}
	assert.ErrorIs(t, NewLinearSVM().Fit(X, same), ErrTooFewClasses)
}

func TestClassifiers_PredictBeforeFit(t *testing.T) {
	for _, kind := range Kinds() {
		c, _ := NewClassifier(kind)
		_, err := c.Predict(Matrix{Rows: []SparseVector{{}}})
		assert.ErrorIs(t, err, ErrNotFitted, kind)
	}
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier("naive_bayes")
	require.NoError(t, err)
	assert.Equal(t, KindNaiveBayes, c.Kind())

	_, err = NewClassifier("random-forest")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKNN_TieGoesToClosestNeighbour(t *testing.T) {
	X := Matrix{Cols: 2, Rows: []SparseVector{
		{Indices: []int{0}, Values: []float64{1}},
		{Indices: []int{0, 1}, Values: []float64{0.6, 0.8}},
	}}
	k := &KNN{K: 2}
	require.NoError(t, k.Fit(X, []string{"b", "a"}))

	got, err := k.Predict(Matrix{Cols: 2, Rows: []SparseVector{{Indices: []int{0}, Values: []float64{1}}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)
}

func TestDecisionTree_MaxDepth(t *testing.T) {
	_, X := fitVectorizer(t)
	dt := &DecisionTree{MaxDepth: 1}
	require.NoError(t, dt.Fit(X, trainingLabels))
	assert.LessOrEqual(t, len(dt.Nodes), 3)
}

func TestConfidence(t *testing.T) {
	v, X := fitVectorizer(t)
	nb := NewNaiveBayes()
	require.NoError(t, nb.Fit(X, trainingLabels))

	q, err := v.Transform([]string{"great"})
	require.NoError(t, err)
	conf, err := Confidence(nb, q.Rows[0], q.Cols)
	require.NoError(t, err)
	assert.Greater(t, conf, 0.5)
	assert.LessOrEqual(t, conf, 1.0)
}

// ============================================================================
// Codec
// ============================================================================

func TestCodec_ClassifierRoundTrip(t *testing.T) {
	v, X := fitVectorizer(t)
	query, err := v.Transform([]string{"great", "terrible", "movie"})
	require.NoError(t, err)

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			c, _ := NewClassifier(kind)
			require.NoError(t, c.Fit(X, trainingLabels))
			want, err := c.Predict(query)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, SaveClassifier(&buf, c))
			loaded, err := LoadClassifier(&buf)
			require.NoError(t, err)

			assert.Equal(t, kind, loaded.Kind())
			got, err := loaded.Predict(query)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCodec_VectorizerFileRoundTrip(t *testing.T) {
	v, X := fitVectorizer(t)
	path := filepath.Join(t.TempDir(), "tfidf_vectorizer.pkl")

	require.NoError(t, SaveVectorizerFile(path, v))
	loaded, err := LoadVectorizerFile(path)
	require.NoError(t, err)

	again, err := loaded.Transform(trainingTexts)
	require.NoError(t, err)
	assert.Equal(t, X, again)
}

func TestCodec_RejectsBadInput(t *testing.T) {
	_, err := LoadClassifier(bytes.NewReader([]byte("not a gob stream")))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(envelope{Version: 99, Kind: KindSVM}))
	_, err = LoadClassifier(&buf)
	assert.ErrorIs(t, err, errUnsupportedVersion)

	buf.Reset()
	require.NoError(t, gob.NewEncoder(&buf).Encode(envelope{Version: persistedVersion, Kind: "forest"}))
	_, err = LoadClassifier(&buf)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, X := fitVectorizer(t)
	nb := NewNaiveBayes()
	require.NoError(t, nb.Fit(X, trainingLabels))
	buf.Reset()
	require.NoError(t, SaveClassifier(&buf, nb))
	_, err = LoadVectorizer(&buf)
	assert.ErrorIs(t, err, errKindMismatch)

	_, err = LoadClassifierFile(filepath.Join(t.TempDir(), "missing.pkl"))
	assert.Error(t, err)
}

// ============================================================================
// Metrics and split
// ============================================================================

func TestEvaluate(t *testing.T) {
	r, err := Evaluate(
		[]string{"pos", "pos", "neg", "neg"},
		[]string{"pos", "neg", "neg", "neg"},
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, r.Accuracy, 1e-9)
	require.Len(t, r.Classes, 2)
	neg, pos := r.Classes[0], r.Classes[1]
	assert.InDelta(t, 2.0/3.0, neg.Precision, 1e-9)
	assert.InDelta(t, 1.0, neg.Recall, 1e-9)
	assert.InDelta(t, 1.0, pos.Precision, 1e-9)
	assert.InDelta(t, 0.5, pos.Recall, 1e-9)
	assert.Equal(t, 2, pos.Support)
	assert.Contains(t, r.String(), "accuracy")
	assert.Contains(t, r.String(), "weighted avg")

	_, err = Evaluate([]string{"a"}, nil)
	assert.ErrorIs(t, err, ErrLabelMismatch)
}

func TestStratifiedSplit(t *testing.T) {
	labels := make([]string, 0, 20)
	for i := 0; i < 10; i++ {
		labels = append(labels, "pos", "neg")
	}

	train, test, err := StratifiedSplit(labels, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 4)
	assert.Len(t, train, 16)

	counts := map[string]int{}
	for _, i := range test {
		counts[labels[i]]++
	}
	assert.Equal(t, map[string]int{"pos": 2, "neg": 2}, counts)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i])
		seen[i] = true
	}

	train2, test2, err := StratifiedSplit(labels, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, _, err = StratifiedSplit(labels, 1.5, 42)
	assert.ErrorIs(t, err, ErrInvalidSplit)
}
