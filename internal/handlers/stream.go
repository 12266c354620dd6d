package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"spark-command-backend/internal/hub"
	"spark-command-backend/internal/models"
	"spark-command-backend/pkg/utils"
)

type StreamHandler struct {
	hub *hub.Hub
}

func NewStreamHandler(h *hub.Hub) *StreamHandler {
	return &StreamHandler{hub: h}
}

// Subscribe upgrades the connection and hands it to the broadcast hub.
func (h *StreamHandler) Subscribe(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}

// NotifyJob accepts a job-status update from an external caller and pushes
// it to all subscribers outside the broadcast timer.
func (h *StreamHandler) NotifyJob(c *gin.Context) {
	var update models.JobUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		zap.L().Error("invalid job update", zap.Error(err))
		c.JSON(http.StatusBadRequest, utils.NewValidationError("body", err.Error()))
		return
	}
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.StartTime.IsZero() {
		update.StartTime = time.Now()
	}

	h.hub.PushJobUpdate(update)
	c.JSON(http.StatusAccepted, gin.H{"success": true, "id": update.ID})
}
