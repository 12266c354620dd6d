package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spark-command-backend/internal/models"
	"spark-command-backend/internal/service"
	"spark-command-backend/pkg/utils"
)

type NodeHandler struct {
	registry  *service.Registry
	transport *service.Transport
	metrics   *service.Metrics
}

func NewNodeHandler(registry *service.Registry, transport *service.Transport, metrics *service.Metrics) *NodeHandler {
	return &NodeHandler{registry: registry, transport: transport, metrics: metrics}
}

func (h *NodeHandler) Register(c *gin.Context) {
	var req models.RegisterNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Error("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, utils.NewValidationError("body", err.Error()))
		return
	}

	key := req.PrivateKey
	if key == "" && req.KeyPath != "" {
		material, err := os.ReadFile(req.KeyPath)
		if err != nil {
			zap.L().Error("failed to read key file", zap.String("path", req.KeyPath), zap.Error(err))
			c.JSON(http.StatusBadRequest, utils.NewValidationError("keyPath", req.KeyPath))
			return
		}
		key = string(material)
	}
	if err := utils.ValidatePrivateKey(key); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewValidationError("privateKey", err.Error()))
		return
	}

	cfg := models.NodeConfig{
		ID:         req.ID,
		Name:       req.Name,
		Host:       req.Host,
		Port:       req.Port,
		Username:   req.Username,
		PrivateKey: key,
		Passphrase: req.Passphrase,
		Timeout:    time.Duration(req.TimeoutSeconds) * time.Second,
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}

	if err := h.transport.Register(cfg); err != nil {
		respondServiceError(c, req.ID, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *NodeHandler) Deregister(c *gin.Context) {
	id := c.Param("id")
	if err := h.transport.Deregister(id); err != nil {
		respondServiceError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NodeHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nodes": h.registry.List()})
}

func (h *NodeHandler) State(c *gin.Context) {
	id := c.Param("id")
	state, err := h.registry.State(id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *NodeHandler) Ping(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.metrics.Ping(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respondServiceError maps service errors onto HTTP responses. Unknown node
// ids are the configuration-error case and come back as 404; everything
// else a service returns is a rejected request.
func respondServiceError(c *gin.Context, id string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownNode):
		c.JSON(http.StatusNotFound, utils.NewConfigurationError(id))
	case errors.Is(err, service.ErrLocalNode):
		c.JSON(http.StatusBadRequest, utils.NewValidationError("id", id))
	default:
		var apiErr *utils.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadRequest, apiErr)
			return
		}
		zap.L().Error("unexpected service error", zap.String("node", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
