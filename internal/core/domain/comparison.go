package domain

import (
	"time"

	"github.com/google/uuid"
)

type ResultStatus string

const (
	ResultStatusOK      ResultStatus = "OK"
	ResultStatusSkipped ResultStatus = "SKIPPED"
	ResultStatusFailed  ResultStatus = "FAILED"
)

// ComparisonResult is the evaluation of one bundle against a labeled dataset.
type ComparisonResult struct {
	ModelName string       `json:"model_name"`
	Status    ResultStatus `json:"status"`
	Accuracy  float64      `json:"accuracy"`
	Report    string       `json:"report,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// ComparisonRun groups the results of evaluating several bundles on one dataset.
// Results are ordered by accuracy, best first; skipped and failed models come last.
type ComparisonRun struct {
	ID        uuid.UUID          `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Dataset   string             `json:"dataset"`
	Samples   int                `json:"samples"`
	Results   []ComparisonResult `json:"results"`
}

// Best returns the highest-accuracy evaluated model, or nil when none succeeded.
func (r *ComparisonRun) Best() *ComparisonResult {
	for i := range r.Results {
		if r.Results[i].Status == ResultStatusOK {
			return &r.Results[i]
		}
	}
	return nil
}

// Dataset is a labeled table. Texts and Labels are aligned with Rows; Columns is the header.
type Dataset struct {
	Path    string
	Columns []string
	Rows    [][]string
	Texts   []string
	Labels  []string
	Skipped int
}

func (d *Dataset) Len() int {
	return len(d.Texts)
}

// PredictionColumn is an extra output column appended to a dataset.
type PredictionColumn struct {
	Header string
	Values []string
}
