package router

import (
	"github.com/gin-gonic/gin"

	"spark-command-backend/internal/handlers"
)

func RegisterRoutes(r *gin.Engine, nodes *handlers.NodeHandler, exec *handlers.ExecHandler, metrics *handlers.MetricsHandler, stream *handlers.StreamHandler) {
	api := r.Group("/api")
	{
		n := api.Group("/nodes")
		{
			n.POST("", nodes.Register)
			n.GET("", nodes.List)
			n.DELETE("/:id", nodes.Deregister)
			n.GET("/:id/state", nodes.State)
			n.POST("/:id/ping", nodes.Ping)
		}

		e := api.Group("/exec")
		{
			e.POST("", exec.RunOnNodes)
			e.POST("/:id", exec.RunOnNode)
		}

		m := api.Group("/metrics")
		{
			m.GET("/:id/gpu", metrics.GPU)
			m.GET("/:id/cpu", metrics.CPU)
			m.GET("/:id/memory", metrics.Memory)
			m.GET("/:id/storage", metrics.Storage)
			m.GET("/:id/system", metrics.System)
			m.GET("/:id/overview", metrics.Overview)
		}

		api.GET("/cluster/health", metrics.ClusterHealth)
		api.POST("/jobs/notify", stream.NotifyJob)
	}

	r.GET("/ws", stream.Subscribe)
}
