package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"sentiment-service/internal/core/domain"
	"sentiment-service/internal/core/ports/output"
	"sentiment-service/internal/ml"
)

const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// TrainRequest configures one training run. ModelName defaults to the normalized
// algorithm name.
type TrainRequest struct {
	DatasetPath string
	Algorithm   string
	ModelName   string
	MaxFeatures int
	TestSize    float64
	Seed        int64
	TextColumn  string
	LabelColumn string
	Tokenizer   ml.TokenizerOptions
}

type TrainResult struct {
	Bundle       domain.ArtifactBundle
	Algorithm    string
	TrainSamples int
	TestSamples  int
	Features     int
	Report       *ml.Report

	vectorizer *ml.TfidfVectorizer
	classifier ml.Classifier
}

// Try classifies a single comment with the freshly trained pair and returns the
// label with its score. The score is zero for classifiers that do not report one.
func (r *TrainResult) Try(comment string) (string, float64, error) {
	X, err := r.vectorizer.Transform([]string{comment})
	if err != nil {
		return "", 0, err
	}
	labels, err := r.classifier.Predict(X)
	if err != nil {
		return "", 0, err
	}
	conf, err := ml.Confidence(r.classifier, X.Rows[0], X.Cols)
	if err != nil {
		return "", 0, err
	}
	return labels[0], conf, nil
}

type TrainingService struct {
	reader ports.DatasetReader
	writer ports.BundleWriter
}

func NewTrainingService(reader ports.DatasetReader, writer ports.BundleWriter) *TrainingService {
	return &TrainingService{reader: reader, writer: writer}
}

// Train fits the vectorizer on the whole dataset, holds out a stratified test
// split, fits the classifier on the rest, evaluates it and persists the bundle.
func (s *TrainingService) Train(ctx context.Context, req TrainRequest) (*TrainResult, error) {
	algorithm := ml.NormalizeKind(req.Algorithm)
	classifier, err := ml.NewClassifier(algorithm)
	if err != nil {
		return nil, err
	}

	modelName := req.ModelName
	if modelName == "" {
		modelName = algorithm
	}
	if !domain.IsSafeModelName(modelName) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidModelName, modelName)
	}

	testSize := req.TestSize
	if testSize == 0 {
		testSize = DefaultTestSize
	}
	maxFeatures := req.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = ml.DefaultMaxFeatures
	}

	dataset, err := s.reader.Read(ctx, req.DatasetPath, req.TextColumn, req.LabelColumn)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"dataset": req.DatasetPath,
		"samples": dataset.Len(),
		"skipped": dataset.Skipped,
	}).Info("Dataset loaded")

	vectorizer, err := ml.NewTfidfVectorizer(maxFeatures, req.Tokenizer)
	if err != nil {
		return nil, err
	}
	X, err := vectorizer.FitTransform(dataset.Texts)
	if err != nil {
		return nil, fmt.Errorf("vectorize dataset: %w", err)
	}

	trainIdx, testIdx, err := ml.StratifiedSplit(dataset.Labels, testSize, req.Seed)
	if err != nil {
		return nil, err
	}
	XTrain, yTrain, XTest, yTest := ml.SplitDataset(X, dataset.Labels, trainIdx, testIdx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := classifier.Fit(XTrain, yTrain); err != nil {
		return nil, fmt.Errorf("fit %s: %w", algorithm, err)
	}

	yPred, err := classifier.Predict(XTest)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", algorithm, err)
	}
	report, err := ml.Evaluate(yTest, yPred)
	if err != nil {
		return nil, err
	}

	bundle, err := s.writer.Save(ctx, modelName, vectorizer, classifier)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"model":    modelName,
		"accuracy": report.Accuracy,
		"path":     bundle.ModelPath,
	}).Info("Model trained")

	return &TrainResult{
		Bundle:       bundle,
		Algorithm:    algorithm,
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
		Features:     vectorizer.NumFeatures(),
		Report:       report,
		vectorizer:   vectorizer,
		classifier:   classifier,
	}, nil
}
