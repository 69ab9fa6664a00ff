package routes

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/onthebell/onthebell-api/internal/config"
	"github.com/onthebell/onthebell-api/internal/features/admin"
	"github.com/onthebell/onthebell-api/internal/features/audit"
	"github.com/onthebell/onthebell-api/internal/features/auth"
	"github.com/onthebell/onthebell-api/internal/features/content"
	"github.com/onthebell/onthebell-api/internal/features/notifications"
	"github.com/onthebell/onthebell-api/internal/features/reports"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/features/verification"
	"github.com/onthebell/onthebell-api/internal/pkg/jwt"
	"github.com/onthebell/onthebell-api/internal/pkg/ratelimit"
	"github.com/onthebell/onthebell-api/internal/pkg/storage"
)

// Dependencies are the external clients main opens before wiring routes
type Dependencies struct {
	DB       *mongo.Database
	Redis    *redis.Client // optional
	Verifier auth.TokenVerifier
	Proofs   storage.Store // optional, proof uploads fail without it
}

// SetupRoutes wires every feature under /api/v1. Background work started here
// stops when ctx is done.
func SetupRoutes(ctx context.Context, router *gin.Engine, cfg *config.Config, deps Dependencies) {
	api := router.Group("/api/v1")

	// Shared repositories
	usersRepo := users.NewRepository(deps.DB)
	auditRepo := audit.NewRepository(deps.DB)
	contentRepo := content.NewRepository(deps.DB)
	notificationsRepo := notifications.NewRepository(deps.DB)

	// Realtime fan-out goes through Redis when several instances may run
	var broker notifications.Broker = notifications.NewLocalBroker()
	if deps.Redis != nil {
		broker = notifications.NewRedisBroker(deps.Redis)
	}
	notifier := notifications.NewService(notificationsRepo, broker)

	// Auth
	jwtCfg := jwt.NewConfig(cfg.JWTSecret, cfg.JWTExpireHours, cfg.JWTRefreshHours)
	authService := auth.NewService(usersRepo, deps.Verifier, jwtCfg)
	authMiddleware := auth.NewAuthMiddleware(authService)
	activeOnly := auth.RequireActive()

	// Rate limiters
	reportLimiter := ratelimit.New(cfg.ReportRateLimit, time.Hour)
	verificationLimiter := ratelimit.New(cfg.VerificationRateLimit, 24*time.Hour)
	reportLimiter.StartCleanup(10*time.Minute, ctx.Done())
	verificationLimiter.StartCleanup(time.Hour, ctx.Done())

	// Register feature routes
	auth.RegisterRoutes(api, authService, authMiddleware)
	users.RegisterRoutes(api, usersRepo, authMiddleware, activeOnly)

	notifications.RegisterRoutes(api,
		notifications.NewHandler(notificationsRepo, notifier, usersRepo,
			notifications.NewStreamer(notifier, usersRepo, splitOrigins(cfg.FrontendURL))),
		authMiddleware,
	)

	reports.RegisterRoutes(api,
		reports.NewHandler(reports.NewService(reports.NewRepository(deps.DB), contentRepo, usersRepo, auditRepo)),
		authMiddleware, activeOnly, reportLimiter,
	)

	verification.RegisterRoutes(api,
		verification.NewHandler(verification.NewService(verification.NewRepository(deps.DB), usersRepo, notifier, deps.Proofs, auditRepo)),
		authMiddleware, activeOnly, verificationLimiter,
	)

	admin.RegisterRoutes(api,
		admin.NewHandler(admin.NewService(usersRepo, notifier, auditRepo)),
		authMiddleware,
	)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
