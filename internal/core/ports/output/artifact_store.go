package ports

import (
	"context"

	"sentiment-service/internal/core/domain"
	"sentiment-service/internal/ml"
)

// TextVectorizer maps raw comments to the feature space of a classifier.
type TextVectorizer interface {
	Transform(docs []string) (ml.Matrix, error)
}

// LabelPredictor returns one label per feature row.
type LabelPredictor interface {
	Predict(X ml.Matrix) ([]string, error)
}

// LoadedBundle is an artifact bundle deserialized and ready for inference.
type LoadedBundle struct {
	Bundle     domain.ArtifactBundle
	Vectorizer TextVectorizer
	Classifier LabelPredictor
}

// ArtifactStore resolves and loads artifact bundles by model name.
type ArtifactStore interface {
	// Resolve derives bundle file locations without touching storage.
	Resolve(modelName string) domain.ArtifactBundle
	// Load returns *domain.ArtifactNotFoundError when either file is absent and
	// wraps domain.ErrArtifactLoad when a file cannot be decoded.
	Load(ctx context.Context, modelName string) (*LoadedBundle, error)
	// List returns the names of complete bundles.
	List(ctx context.Context) ([]string, error)
}

// BundleWriter persists a freshly trained vectorizer and classifier under a model name.
type BundleWriter interface {
	Save(ctx context.Context, modelName string, vectorizer *ml.TfidfVectorizer, classifier ml.Classifier) (domain.ArtifactBundle, error)
}
