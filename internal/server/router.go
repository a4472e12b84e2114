package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/distcluster/coordinator/internal/logger"
	"github.com/distcluster/coordinator/internal/server/middleware"
)

// NewRouter builds the gin engine serving every endpoint in spec §6.
func NewRouter(f *Frontend, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization", "X-Requested-With"},
	}))

	router.GET("/health", f.Health)
	router.GET("/ws", f.WS)

	api := router.Group("/api")
	{
		api.POST("/register", f.Register)
		api.POST("/heartbeat", f.Heartbeat)
		api.POST("/submit", f.Submit)
		api.GET("/status", f.Status)
	}

	return router
}
