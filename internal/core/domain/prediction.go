package domain

import "strings"

// InferenceRequest is one comment to classify with a named artifact bundle.
type InferenceRequest struct {
	Comment   string
	ModelName string
}

func (r InferenceRequest) Validate() error {
	if r.Comment == "" || r.ModelName == "" {
		return ErrMissingPredictionFields
	}
	return nil
}

// ArtifactBundle locates the classifier and vectorizer trained together under one name.
type ArtifactBundle struct {
	ModelName      string `json:"model_name"`
	ModelPath      string `json:"model_path"`
	VectorizerPath string `json:"vectorizer_path"`
}

// Prediction is the classifier output for one request. Sentiment is passed through
// exactly as the trained artifact produced it.
type Prediction struct {
	ModelName string
	Sentiment string
}

const (
	ModelFileSuffix    = "_model.pkl"
	VectorizerFileName = "tfidf_vectorizer.pkl"
)

// ModelFilePrefix derives the classifier file prefix from a model name: dashes become underscores.
func ModelFilePrefix(modelName string) string {
	return strings.ReplaceAll(modelName, "-", "_")
}

// IsSafeModelName reports whether modelName can be used as a single path segment.
func IsSafeModelName(modelName string) bool {
	if modelName == "" || modelName == "." || modelName == ".." {
		return false
	}
	return !strings.ContainsAny(modelName, `/\`+"\x00")
}
