package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sentiment-service/internal/core/domain"
	output "sentiment-service/internal/core/ports/output"
	"sentiment-service/internal/ml"
)

// ModelDir is the directory under the artifact root that holds one folder per bundle.
const ModelDir = "model"

// ArtifactStore reads and writes bundles laid out as
// <root>/model/<name>/<name_underscored>_model.pkl and <root>/model/<name>/tfidf_vectorizer.pkl.
// It keeps no state between calls, so every Load reads from disk.
type ArtifactStore struct {
	root string
}

func NewArtifactStore(root string) *ArtifactStore {
	return &ArtifactStore{root: root}
}

var (
	_ output.ArtifactStore = (*ArtifactStore)(nil)
	_ output.BundleWriter  = (*ArtifactStore)(nil)
)

func (s *ArtifactStore) Resolve(modelName string) domain.ArtifactBundle {
	dir := filepath.Join(s.root, ModelDir, modelName)
	return domain.ArtifactBundle{
		ModelName:      modelName,
		ModelPath:      filepath.Join(dir, domain.ModelFilePrefix(modelName)+domain.ModelFileSuffix),
		VectorizerPath: filepath.Join(dir, domain.VectorizerFileName),
	}
}

func (s *ArtifactStore) Load(ctx context.Context, modelName string) (*output.LoadedBundle, error) {
	bundle := s.Resolve(modelName)
	if !domain.IsSafeModelName(modelName) {
		return nil, &domain.ArtifactNotFoundError{
			Bundle:  bundle,
			Missing: []string{bundle.ModelPath, bundle.VectorizerPath},
		}
	}

	missing, err := missingFiles(bundle.ModelPath, bundle.VectorizerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtifactLoad, err)
	}
	if len(missing) > 0 {
		return nil, &domain.ArtifactNotFoundError{Bundle: bundle, Missing: missing}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectorizer, err := ml.LoadVectorizerFile(bundle.VectorizerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArtifactLoad, bundle.VectorizerPath, err)
	}
	classifier, err := ml.LoadClassifierFile(bundle.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArtifactLoad, bundle.ModelPath, err)
	}

	return &output.LoadedBundle{
		Bundle:     bundle,
		Vectorizer: vectorizer,
		Classifier: classifier,
	}, nil
}

// List returns the sorted names of bundle directories that contain both files.
func (s *ArtifactStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, ModelDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list bundles: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bundle := s.Resolve(entry.Name())
		missing, err := missingFiles(bundle.ModelPath, bundle.VectorizerPath)
		if err != nil || len(missing) > 0 {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Save writes both files of a bundle, creating its directory when needed.
func (s *ArtifactStore) Save(ctx context.Context, modelName string, vectorizer *ml.TfidfVectorizer, classifier ml.Classifier) (domain.ArtifactBundle, error) {
	if !domain.IsSafeModelName(modelName) {
		return domain.ArtifactBundle{}, fmt.Errorf("%w: %q", domain.ErrInvalidModelName, modelName)
	}
	if err := ctx.Err(); err != nil {
		return domain.ArtifactBundle{}, err
	}

	bundle := s.Resolve(modelName)
	if err := os.MkdirAll(filepath.Dir(bundle.ModelPath), 0o755); err != nil {
		return domain.ArtifactBundle{}, fmt.Errorf("create bundle directory: %w", err)
	}
	if err := ml.SaveClassifierFile(bundle.ModelPath, classifier); err != nil {
		return domain.ArtifactBundle{}, fmt.Errorf("save classifier: %w", err)
	}
	if err := ml.SaveVectorizerFile(bundle.VectorizerPath, vectorizer); err != nil {
		return domain.ArtifactBundle{}, fmt.Errorf("save vectorizer: %w", err)
	}
	return bundle, nil
}

func missingFiles(paths ...string) ([]string, error) {
	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, p)
				continue
			}
			return nil, err
		}
	}
	return missing, nil
}
