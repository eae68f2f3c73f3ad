package handlers

import (
	"net/http"
	"strconv"

	"sentiment-service/internal/adapters/primary/http/dto"
	"sentiment-service/internal/core/domain"
	"sentiment-service/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListComparisons(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.ComparisonListFilter{Limit: limit, Offset: offset}.Normalized()

	runs, total, err := h.historySvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list comparisons failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ComparisonRunResponse, 0, len(runs))
	for _, run := range runs {
		items = append(items, dto.ToComparisonRunResponse(run))
	}

	c.JSON(http.StatusOK, dto.ListComparisonsResponse{
		Items:      items,
		Total:      total,
		PageSize:   filter.Limit,
		NextOffset: filter.Offset + len(items),
	})
}

func (h *Handler) GetComparison(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		mapDomainError(c, domain.ErrInvalidComparisonID)
		return
	}

	run, err := h.historySvc.Get(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).WithField("id", id).Warn("get comparison failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToComparisonRunResponse(run))
}
