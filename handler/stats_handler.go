package handler

import (
	"net/http"

	"github.com/Aashish23092/gst-invoice-ocr/service"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Stats handles GET /stats?from=&to=&group_by=
func (h *StatsHandler) Stats(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err)
		return
	}

	groupBy := c.DefaultQuery("group_by", service.GroupByMonth)
	if !service.ValidGroupBy(groupBy) {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "group_by must be one of day, week, month, quarter", nil)
		return
	}

	stats, err := h.statsService.Stats(c.Request.Context(), service.StatsQuery{From: from, To: to, GroupBy: groupBy})
	if err != nil {
		sendError(c, http.StatusInternalServerError, "STATS_FAILED", "Failed to compute statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
