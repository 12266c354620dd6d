package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spark-command-backend/internal/models"
	"spark-command-backend/internal/service"
	"spark-command-backend/pkg/utils"
)

type ExecHandler struct {
	executor *service.Executor
}

func NewExecHandler(executor *service.Executor) *ExecHandler {
	return &ExecHandler{executor: executor}
}

// RunOnNode executes one command on one node. Connection and execution
// failures come back inside the CommandResult, not as HTTP errors.
func (h *ExecHandler) RunOnNode(c *gin.Context) {
	id := c.Param("id")

	req, ok := bindExecRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if req.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	result, err := h.executor.Run(ctx, id, req.Command)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunOnNodes fans one command out to the named nodes, or to every
// registered node when none are named. The response always carries exactly
// one entry per requested node.
func (h *ExecHandler) RunOnNodes(c *gin.Context) {
	req, ok := bindExecRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if req.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	var results map[string]models.CommandResult
	if len(req.NodeIDs) == 0 {
		results = h.executor.RunOnAll(ctx, req.Command)
	} else {
		results = h.executor.RunOnNodes(ctx, req.NodeIDs, req.Command)
	}
	c.JSON(http.StatusOK, models.ExecResponse{Results: results})
}

func bindExecRequest(c *gin.Context) (models.ExecRequest, bool) {
	var req models.ExecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Error("invalid exec request", zap.Error(err))
		c.JSON(http.StatusBadRequest, utils.NewValidationError("body", err.Error()))
		return req, false
	}
	if strings.TrimSpace(req.Command) == "" {
		c.JSON(http.StatusBadRequest, utils.NewValidationError("command", req.Command))
		return req, false
	}
	return req, true
}
