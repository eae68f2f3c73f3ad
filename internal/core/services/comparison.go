package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sentiment-service/internal/core/domain"
	"sentiment-service/internal/core/ports/output"
	"sentiment-service/internal/ml"
)

const PredictionColumnPrefix = "Prediksi_"

// CompareRequest names the bundles to evaluate. When OutputPath is set the dataset
// is written there with one prediction column per evaluated model.
type CompareRequest struct {
	DatasetPath string
	Models      []string
	TextColumn  string
	LabelColumn string
	OutputPath  string
	Record      bool
}

type ComparisonService struct {
	store  ports.ArtifactStore
	reader ports.DatasetReader
	writer ports.PredictionWriter
	repo   ports.ComparisonRepository
	now    func() time.Time
}

// NewComparisonService builds the service. repo may be nil when runs are not recorded.
func NewComparisonService(store ports.ArtifactStore, reader ports.DatasetReader, writer ports.PredictionWriter, repo ports.ComparisonRepository) *ComparisonService {
	return &ComparisonService{store: store, reader: reader, writer: writer, repo: repo, now: time.Now}
}

// Compare evaluates each named bundle against a labeled dataset. A missing bundle
// is skipped and any other failure is recorded on its result; neither stops the run.
// ErrNoComparableModels is returned alongside the run when nothing could be evaluated.
func (s *ComparisonService) Compare(ctx context.Context, req CompareRequest) (*domain.ComparisonRun, error) {
	if req.Record && s.repo == nil {
		return nil, domain.ErrComparisonsDisabled
	}

	dataset, err := s.reader.Read(ctx, req.DatasetPath, req.TextColumn, req.LabelColumn)
	if err != nil {
		return nil, err
	}

	run := &domain.ComparisonRun{
		ID:        uuid.New(),
		CreatedAt: s.now().UTC(),
		Dataset:   req.DatasetPath,
		Samples:   dataset.Len(),
	}

	var columns []domain.PredictionColumn
	for _, name := range req.Models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, predictions := s.evaluate(ctx, name, dataset)
		run.Results = append(run.Results, result)
		if predictions != nil {
			columns = append(columns, domain.PredictionColumn{
				Header: PredictionColumnPrefix + domain.ModelFilePrefix(name),
				Values: predictions,
			})
		}
	}

	sortResults(run.Results)

	if run.Best() == nil {
		return run, domain.ErrNoComparableModels
	}

	if req.OutputPath != "" {
		if err := s.writer.Write(ctx, req.OutputPath, dataset, columns); err != nil {
			return run, fmt.Errorf("write predictions: %w", err)
		}
	}

	if req.Record {
		if err := s.repo.Create(ctx, run); err != nil {
			return run, fmt.Errorf("record comparison: %w", err)
		}
	}

	return run, nil
}

func (s *ComparisonService) evaluate(ctx context.Context, name string, dataset *domain.Dataset) (domain.ComparisonResult, []string) {
	result := domain.ComparisonResult{ModelName: name}
	logger := log.WithField("model", name)

	bundle, err := s.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			logger.WithError(err).Warn("Model files not found, skipping")
			result.Status = domain.ResultStatusSkipped
		} else {
			logger.WithError(err).Error("Failed to load model")
			result.Status = domain.ResultStatusFailed
		}
		result.Error = err.Error()
		return result, nil
	}

	predictions, err := predictAll(bundle, dataset.Texts)
	if err == nil {
		var report *ml.Report
		report, err = ml.Evaluate(dataset.Labels, predictions)
		if err == nil {
			result.Status = domain.ResultStatusOK
			result.Accuracy = report.Accuracy
			result.Report = report.String()
			logger.WithField("accuracy", report.Accuracy).Info("Model evaluated")
			return result, predictions
		}
	}

	logger.WithError(err).Error("Failed to evaluate model")
	result.Status = domain.ResultStatusFailed
	result.Error = err.Error()
	return result, nil
}

func predictAll(bundle *ports.LoadedBundle, texts []string) ([]string, error) {
	X, err := bundle.Vectorizer.Transform(texts)
	if err != nil {
		return nil, fmt.Errorf("%w: transform: %v", domain.ErrInference, err)
	}
	labels, err := bundle.Classifier.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("%w: predict: %v", domain.ErrInference, err)
	}
	return labels, nil
}

// sortResults puts evaluated models first by descending accuracy and keeps the
// requested order among ties and among skipped or failed models.
func sortResults(results []domain.ComparisonResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		aOK, bOK := a.Status == domain.ResultStatusOK, b.Status == domain.ResultStatusOK
		if aOK != bOK {
			return aOK
		}
		return aOK && a.Accuracy > b.Accuracy
	})
}

// ============================================================================
// Comparison History
// ============================================================================

type ComparisonHistoryService struct {
	repo ports.ComparisonRepository
}

func NewComparisonHistoryService(repo ports.ComparisonRepository) *ComparisonHistoryService {
	return &ComparisonHistoryService{repo: repo}
}

func (s *ComparisonHistoryService) Get(ctx context.Context, id uuid.UUID) (*domain.ComparisonRun, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ComparisonHistoryService) List(ctx context.Context, filter ports.ComparisonListFilter) ([]*domain.ComparisonRun, int, error) {
	return s.repo.List(ctx, filter.Normalized())
}
