package handlers

import (
	"net/http"

	"sentiment-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListModels(c *gin.Context) {
	names, err := h.predictionSvc.ListModels(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list models failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListModelsResponse{
		Items: names,
		Total: len(names),
	})
}
