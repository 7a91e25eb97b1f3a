package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skoolhq/sms-portal-api/internal/service"
	"github.com/skoolhq/sms-portal-api/pkg/response"
)

// StatsHandler exposes the dashboard statistics endpoint.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overview returns aggregate counters over the student collection.
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.stats.Compute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
