package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spark-command-backend/internal/service"
)

type MetricsHandler struct {
	metrics *service.Metrics
}

func NewMetricsHandler(metrics *service.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Each endpoint returns the parsed record, or a null body with
// available=false when the metric could not be collected. Only an unknown
// node id is an HTTP error.

func (h *MetricsHandler) GPU(c *gin.Context) {
	id := c.Param("id")
	record, err := h.metrics.GPU(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	respondMetric(c, record == nil, record)
}

func (h *MetricsHandler) CPU(c *gin.Context) {
	id := c.Param("id")
	record, err := h.metrics.CPU(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	respondMetric(c, record == nil, record)
}

func (h *MetricsHandler) Memory(c *gin.Context) {
	id := c.Param("id")
	record, err := h.metrics.Memory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	respondMetric(c, record == nil, record)
}

func (h *MetricsHandler) Storage(c *gin.Context) {
	id := c.Param("id")
	record, err := h.metrics.Storage(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	respondMetric(c, record == nil, record)
}

func (h *MetricsHandler) System(c *gin.Context) {
	id := c.Param("id")
	record, err := h.metrics.System(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	respondMetric(c, record == nil, record)
}

func (h *MetricsHandler) Overview(c *gin.Context) {
	id := c.Param("id")
	ov, err := h.metrics.Overview(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *MetricsHandler) ClusterHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.ClusterHealth(c.Request.Context()))
}

func respondMetric(c *gin.Context, unavailable bool, record any) {
	if unavailable {
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "metric": record})
}
