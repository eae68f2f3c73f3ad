package services

import (
	"context"
	"fmt"

	"sentiment-service/internal/core/domain"
	"sentiment-service/internal/core/ports/output"
)

type PredictionService struct {
	store ports.ArtifactStore
}

func NewPredictionService(store ports.ArtifactStore) *PredictionService {
	return &PredictionService{store: store}
}

// Predict loads the bundle named by the request and classifies its comment.
// The label is returned exactly as the classifier produced it.
func (s *PredictionService) Predict(ctx context.Context, req domain.InferenceRequest) (*domain.Prediction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bundle, err := s.store.Load(ctx, req.ModelName)
	if err != nil {
		return nil, err
	}

	features, err := bundle.Vectorizer.Transform([]string{req.Comment})
	if err != nil {
		return nil, fmt.Errorf("%w: transform: %v", domain.ErrInference, err)
	}
	labels, err := bundle.Classifier.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("%w: predict: %v", domain.ErrInference, err)
	}
	if len(labels) != 1 {
		return nil, fmt.Errorf("%w: expected 1 label, got %d", domain.ErrInference, len(labels))
	}

	return &domain.Prediction{ModelName: req.ModelName, Sentiment: labels[0]}, nil
}

func (s *PredictionService) ListModels(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}
