package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/DRadulovich/perazzi-site-sub003/internal/middleware"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

func wireRouter(cfg Config, log *logger.Logger, handlerset Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", handlerset.Health.Check)

	api := router.Group("/api/assistant")
	{
		api.POST("/retrieve", handlerset.Assistant.Retrieve)
	}

	return router
}
