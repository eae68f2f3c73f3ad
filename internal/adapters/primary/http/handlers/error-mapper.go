package handlers

import (
	"errors"
	"net/http"

	"sentiment-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

const unexpectedErrorPrefix = "An unexpected error occurred: "

func mapDomainError(c *gin.Context, err error) {
	var notFound *domain.ArtifactNotFoundError

	switch {
	// Missing artifact files
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":           notFound.Error(),
			"model_path":      notFound.Bundle.ModelPath,
			"vectorizer_path": notFound.Bundle.VectorizerPath,
		})

	// Not found errors
	case errors.Is(err, domain.ErrComparisonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrMissingPredictionFields),
		errors.Is(err, domain.ErrInvalidComparisonID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Load, inference and anything unanticipated
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": unexpectedErrorPrefix + err.Error()})
	}
}
