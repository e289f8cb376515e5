package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/dthai91/edx-platform/internal/http/handlers"
	httpMW "github.com/dthai91/edx-platform/internal/http/middleware"
	"github.com/dthai91/edx-platform/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	BlocksHandler  *httpH.BlocksHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.ResolveUser())
		}
		if cfg.BlocksHandler != nil {
			api.GET("/courses/v1/blocks/:usage_key", cfg.BlocksHandler.GetBlocks)
		}
	}

	return r
}
