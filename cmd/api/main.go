// @title OnTheBell API
// @version 1.0
// @description Moderation, verification and notification API for the OnTheBell community platform
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer <token>"
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	docs "github.com/onthebell/onthebell-api/docs"
	"github.com/onthebell/onthebell-api/internal/config"
	"github.com/onthebell/onthebell-api/internal/database"
	"github.com/onthebell/onthebell-api/internal/features/auth"
	"github.com/onthebell/onthebell-api/internal/features/reports"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/middleware"
	"github.com/onthebell/onthebell-api/internal/migrations"
	"github.com/onthebell/onthebell-api/internal/pkg/logger"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
	"github.com/onthebell/onthebell-api/internal/pkg/storage"
	"github.com/onthebell/onthebell-api/internal/pkg/validator"
	"github.com/onthebell/onthebell-api/internal/routes"
)

func main() {
	// Load config
	cfg := config.Load()

	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.AppEnv})

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			AttachStacktrace: true,
		}); err != nil {
			log.Error().Err(err).Msg("Failed to initialize Sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Configure Swagger metadata at runtime
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Connect to MongoDB
	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer db.Disconnect(context.Background())

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Apply pending migrations before serving
	ledger, err := migrations.NewMongoLedger(ctx, db.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open migration ledger")
	}
	if err := migrations.Run(ctx, ledger, migrations.Defaults(
		users.NewRepository(db.Database),
		reports.NewRepository(db.Database),
	)); err != nil {
		log.Fatal().Err(err).Msg("Migrations failed")
	}

	deps := routes.Dependencies{DB: db.Database, Redis: rdb}

	if verifier, err := auth.InitFirebase(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("Firebase unavailable, sign in disabled")
	} else {
		deps.Verifier = verifier
	}

	if proofs, err := storage.New(ctx, cfg); err != nil {
		log.Warn().Err(err).Str("driver", cfg.StorageDriver).Msg("Proof storage unavailable, document uploads disabled")
	} else {
		deps.Proofs = proofs
	}

	// Setup Gin
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Init()

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Sentry())
	router.Use(middleware.SentryTags())
	router.Use(middleware.CORS(cfg.FrontendURL))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		hctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Unix(),
			"mongo":  "ok",
		}
		if err := db.HealthCheck(hctx); err != nil {
			status["status"] = "degraded"
			status["mongo"] = "unreachable"
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(hctx).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
			}
		}

		if status["status"] != "ok" {
			c.JSON(http.StatusServiceUnavailable, response.APIResponse{
				Success:    false,
				StatusCode: http.StatusServiceUnavailable,
				Data:       status,
			})
			return
		}
		response.Success(c, status)
	})

	// Swagger documentation
	router.GET(
		"/swagger/*any",
		ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL("/swagger/doc.json"),
			ginSwagger.DeepLinking(true),
			ginSwagger.DefaultModelsExpandDepth(-1),
			ginSwagger.DocExpansion("none"),
			ginSwagger.PersistAuthorization(true),
		),
	)

	// Register all routes
	routes.SetupRoutes(ctx, router, cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("Server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
