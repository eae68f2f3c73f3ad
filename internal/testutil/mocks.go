package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sentiment-service/internal/core/domain"
	"sentiment-service/internal/core/ports/output"
	"sentiment-service/internal/ml"
)

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Resolve(modelName string) domain.ArtifactBundle {
	args := m.Called(modelName)
	return args.Get(0).(domain.ArtifactBundle)
}

func (m *MockArtifactStore) Load(ctx context.Context, modelName string) (*ports.LoadedBundle, error) {
	args := m.Called(ctx, modelName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.LoadedBundle), args.Error(1)
}

func (m *MockArtifactStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockBundleWriter is a mock of BundleWriter.
type MockBundleWriter struct {
	mock.Mock
}

func (m *MockBundleWriter) Save(ctx context.Context, modelName string, vectorizer *ml.TfidfVectorizer, classifier ml.Classifier) (domain.ArtifactBundle, error) {
	args := m.Called(ctx, modelName, vectorizer, classifier)
	return args.Get(0).(domain.ArtifactBundle), args.Error(1)
}

// MockDatasetReader is a mock of DatasetReader.
type MockDatasetReader struct {
	mock.Mock
}

func (m *MockDatasetReader) Read(ctx context.Context, path, textColumn, labelColumn string) (*domain.Dataset, error) {
	args := m.Called(ctx, path, textColumn, labelColumn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

// MockPredictionWriter is a mock of PredictionWriter.
type MockPredictionWriter struct {
	mock.Mock
}

func (m *MockPredictionWriter) Write(ctx context.Context, path string, dataset *domain.Dataset, columns []domain.PredictionColumn) error {
	args := m.Called(ctx, path, dataset, columns)
	return args.Error(0)
}

// MockComparisonRepo is a mock of ComparisonRepository.
type MockComparisonRepo struct {
	mock.Mock
}

func (m *MockComparisonRepo) Create(ctx context.Context, run *domain.ComparisonRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockComparisonRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComparisonRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonRun), args.Error(1)
}

func (m *MockComparisonRepo) List(ctx context.Context, filter ports.ComparisonListFilter) ([]*domain.ComparisonRun, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ComparisonRun), args.Int(1), args.Error(2)
}

// MockVectorizer is a mock of TextVectorizer.
type MockVectorizer struct {
	mock.Mock
}

func (m *MockVectorizer) Transform(docs []string) (ml.Matrix, error) {
	args := m.Called(docs)
	return args.Get(0).(ml.Matrix), args.Error(1)
}

// MockPredictor is a mock of LabelPredictor.
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(X ml.Matrix) ([]string, error) {
	args := m.Called(X)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// StubBundle wires a mock vectorizer and predictor into a LoadedBundle.
func StubBundle(modelName string, vectorizer *MockVectorizer, predictor *MockPredictor) *ports.LoadedBundle {
	return &ports.LoadedBundle{
		Bundle:     domain.ArtifactBundle{ModelName: modelName},
		Vectorizer: vectorizer,
		Classifier: predictor,
	}
}
