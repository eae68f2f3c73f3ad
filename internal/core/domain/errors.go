package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Prediction Errors
// ============================================================================

var (
	ErrMissingPredictionFields = errors.New("Missing 'comment' or 'model_name'")
	ErrArtifactNotFound        = errors.New("model files not found")
	ErrArtifactLoad            = errors.New("failed to load model artifacts")
	ErrInference               = errors.New("inference failed")
)

// ArtifactNotFoundError reports which files of a bundle were looked up and are absent.
type ArtifactNotFoundError struct {
	Bundle  ArtifactBundle
	Missing []string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("Model files not found for %s (searched %s, %s)",
		e.Bundle.ModelName, e.Bundle.ModelPath, e.Bundle.VectorizerPath)
}

func (e *ArtifactNotFoundError) Unwrap() error {
	return ErrArtifactNotFound
}

// ============================================================================
// Dataset / Training Errors
// ============================================================================

var (
	ErrDatasetColumns      = errors.New("dataset is missing required columns")
	ErrUnsupportedDataset  = errors.New("unsupported dataset format")
	ErrInvalidModelName    = errors.New("model name is required")
	ErrNoComparableModels  = errors.New("no model could be evaluated")
	ErrComparisonNotFound  = errors.New("comparison run not found")
	ErrInvalidComparisonID = errors.New("invalid comparison id")
	ErrComparisonsDisabled = errors.New("comparison history is not configured")
)
