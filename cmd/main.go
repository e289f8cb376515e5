package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dthai91/edx-platform/internal/clients/redis"
	"github.com/dthai91/edx-platform/internal/db"
	httpsrv "github.com/dthai91/edx-platform/internal/http"
	"github.com/dthai91/edx-platform/internal/http/handlers"
	"github.com/dthai91/edx-platform/internal/http/middleware"
	"github.com/dthai91/edx-platform/internal/platform/envutil"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/platform/neo4jdb"
	"github.com/dthai91/edx-platform/internal/repos"
	"github.com/dthai91/edx-platform/internal/services"
)

func main() {
	// Logger
	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	jwtSecretKey := envutil.Str("JWT_SECRET_KEY", "defaultsecret")
	lmsBase := envutil.Str("LMS_BASE_URL", "http://localhost:8000")
	pipelineTimeout := envutil.Duration("BLOCKS_PIPELINE_TIMEOUT", 30*time.Second)
	listenAddr := envutil.Str("LISTEN_ADDR", ":8080")

	// Content store
	store, err := db.NewStore(log)
	if err != nil {
		log.Fatal("content store init failed", "error", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		log.Warn("content store migration failed", "error", err)
	}

	// Repos
	var content repos.ContentSource
	switch envutil.Str("CONTENT_BACKEND", "sql") {
	case "neo4j":
		neoClient, err := neo4jdb.NewFromEnv(log)
		if err != nil {
			log.Fatal("neo4j init failed", "error", err)
		}
		if neoClient == nil {
			log.Fatal("CONTENT_BACKEND=neo4j requires NEO4J_URI")
		}
		content = repos.NewNeo4jContentRepo(neoClient, log)
	default:
		content = repos.NewContentRepo(store.DB(), log)
	}
	userRepo := repos.NewUserRepo(store.DB(), log)
	enrollmentRepo := repos.NewEnrollmentRepo(store.DB(), log)
	staffRepo := repos.NewStaffRepo(store.DB(), log)
	gatingRepo := repos.NewGatingRepo(store.DB(), log)

	// Graph cache (optional tier)
	graphCache, err := redis.NewGraphCache(log)
	if err != nil {
		log.Warn("graph cache init failed, serving uncached", "error", err)
	}
	if graphCache != nil {
		content = repos.NewCachedContentSource(content, graphCache, log)
		defer graphCache.Close()
	}

	// Services
	accessService := services.NewAccessService(log, enrollmentRepo, staffRepo, gatingRepo)
	renderService := services.NewRenderService(log, lmsBase)
	blocksService := services.NewBlocksService(log, content, accessService, renderService, userRepo, staffRepo, pipelineTimeout)
	authService := services.NewAuthService(log, jwtSecretKey)

	// HTTP
	server := httpsrv.NewServer(httpsrv.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.NewAuthMiddleware(log, authService),
		BlocksHandler:  handlers.NewBlocksHandler(log, blocksService),
		HealthHandler:  handlers.NewHealthHandler(),
	})

	log.Info("starting course blocks API", "addr", listenAddr)
	if err := server.Run(listenAddr); err != nil {
		log.Fatal("server exited", "error", err)
	}
}
