package dto

import (
	"time"

	"github.com/google/uuid"

	"sentiment-service/internal/core/domain"
)

type ComparisonResultResponse struct {
	ModelName string  `json:"model_name"`
	Status    string  `json:"status"`
	Accuracy  float64 `json:"accuracy"`
	Report    string  `json:"report,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type ComparisonRunResponse struct {
	ID        uuid.UUID                  `json:"id"`
	CreatedAt string                     `json:"created_at"`
	Dataset   string                     `json:"dataset"`
	Samples   int                        `json:"samples"`
	BestModel string                     `json:"best_model,omitempty"`
	Results   []ComparisonResultResponse `json:"results"`
}

type ListComparisonsResponse struct {
	Items      []ComparisonRunResponse `json:"items"`
	Total      int                     `json:"total"`
	PageSize   int                     `json:"page_size"`
	NextOffset int                     `json:"next_offset"`
}

func ToComparisonRunResponse(run *domain.ComparisonRun) ComparisonRunResponse {
	resp := ComparisonRunResponse{
		ID:        run.ID,
		CreatedAt: run.CreatedAt.Format(time.RFC3339),
		Dataset:   run.Dataset,
		Samples:   run.Samples,
		Results:   make([]ComparisonResultResponse, 0, len(run.Results)),
	}
	if best := run.Best(); best != nil {
		resp.BestModel = best.ModelName
	}
	for _, r := range run.Results {
		resp.Results = append(resp.Results, ComparisonResultResponse{
			ModelName: r.ModelName,
			Status:    string(r.Status),
			Accuracy:  r.Accuracy,
			Report:    r.Report,
			Error:     r.Error,
		})
	}
	return resp
}
