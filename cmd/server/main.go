package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"spark-command-backend/internal/config"
	"spark-command-backend/internal/handlers"
	"spark-command-backend/internal/hub"
	"spark-command-backend/internal/models"
	"spark-command-backend/internal/router"
	"spark-command-backend/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := godotenv.Load(); err != nil {
		logger.Warn("Failed to load .env file, using default config")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	registry := service.NewRegistry(logger)
	transport := service.NewTransport(registry, logger)
	transport.SetConnectTimeout(cfg.SSH.ConnectTimeout)
	transport.SetRetryPolicy(cfg.SSH.MaxDialFailures, cfg.SSH.DialCooldown)

	executor := service.NewExecutor(registry, transport, logger)
	executor.SetTimeout(cfg.SSH.CommandTimeout)
	metrics := service.NewMetrics(executor, logger)

	for _, node := range cfg.Nodes {
		if err := transport.Register(node); err != nil {
			logger.Error("Failed to register configured node", zap.String("node", node.ID), zap.Error(err))
		}
	}

	broadcastHub := hub.NewHub(func(ctx context.Context) (*models.NodeOverview, error) {
		return metrics.Overview(ctx, models.LocalNodeID)
	}, logger)
	broadcastHub.SetInterval(cfg.Broadcast.Interval)
	broadcastHub.SetTempWarning(cfg.Broadcast.GPUTempWarning)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go broadcastHub.Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsConfig))

	router.RegisterRoutes(r,
		handlers.NewNodeHandler(registry, transport, metrics),
		handlers.NewExecHandler(executor),
		handlers.NewMetricsHandler(metrics),
		handlers.NewStreamHandler(broadcastHub),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	transport.CloseAll()
}
