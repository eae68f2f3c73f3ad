package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"sentiment-service/internal/adapters/primary/http/dto"
	"sentiment-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// receivedPreviewBytes bounds how much of an unparseable body is echoed back.
const receivedPreviewBytes = 1024

var (
	predictPaths    = []string{"/predict", "/api/predict/"}
	rejectedMethods = []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
)

func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.Header("Allow", http.MethodPost)
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Only POST method is allowed"})
}

// NoMethod answers requests whose path exists under another method only.
func (h *Handler) NoMethod(c *gin.Context) {
	if isPredictPath(c.Request.URL.Path) {
		h.MethodNotAllowed(c)
		return
	}
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

func isPredictPath(path string) bool {
	for _, p := range predictPaths {
		if p == path {
			return true
		}
	}
	return false
}

func (h *Handler) Predict(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	var received map[string]interface{}
	if err := json.Unmarshal(body, &received); err != nil {
		invalidJSON(c, body, err)
		return
	}
	var req dto.PredictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		invalidJSON(c, body, err)
		return
	}

	prediction, err := h.predictionSvc.Predict(c.Request.Context(), domain.InferenceRequest{
		Comment:   req.Comment,
		ModelName: req.ModelName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMissingPredictionFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "received": received})
			return
		}
		entry := log.WithError(err).WithField("model", req.ModelName)
		if errors.Is(err, domain.ErrArtifactNotFound) {
			entry.Warn("predict: model files not found")
		} else {
			entry.Error("predict failed")
		}
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PredictResponse{Sentiment: prediction.Sentiment})
}

func invalidJSON(c *gin.Context, body []byte, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":    "Invalid JSON body",
		"details":  err.Error(),
		"received": preview(body),
	})
}

func preview(body []byte) string {
	if len(body) <= receivedPreviewBytes {
		return string(body)
	}
	cut := receivedPreviewBytes
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
