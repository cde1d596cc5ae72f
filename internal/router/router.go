package router

import (
	"context"
	"fmt"

	"github.com/anonto42/vortex/backend/internal/handlers"
	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/ratelimit"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/anonto42/vortex/backend/internal/session"
	"github.com/anonto42/vortex/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the connections and clients the routes are built from.
type Deps struct {
	Config  *config.Config
	SQL     *gorm.DB
	Mongo   *mongo.Database // posts live here when set
	Codec   *session.Codec
	Limiter ratelimit.Limiter
	// Firebase enables ID-token sign-in when non-nil.
	Firebase services.IDTokenVerifier
	Logger   *zap.Logger
	// AuthOptions are appended after the ones derived from Config.
	AuthOptions []services.AuthOption
}

// SetupRoutes configures all application routes and injects dependencies.
// It also creates the bootstrap admin when one is configured.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Deps) error {
	cfg, logger := deps.Config, deps.Logger

	ipExtractor, err := cfg.IPExtractor()
	if err != nil {
		return err
	}
	e.IPExtractor = ipExtractor
	config.SetupMiddleware(e, cfg, logger)
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(logger)

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewSQLUserRepository(deps.SQL)
	relationRepo := repositories.NewSQLRelationRepository(deps.SQL)
	engagementRepo := repositories.NewSQLEngagementRepository(deps.SQL)
	commentRepo := repositories.NewSQLCommentRepository(deps.SQL)
	followRepo := repositories.NewSQLFollowRepository(deps.SQL)
	savedPostRepo := repositories.NewSQLSavedPostRepository(deps.SQL)
	notificationRepo := repositories.NewSQLNotificationRepository(deps.SQL)

	var postRepo repositories.PostRepository = repositories.NewSQLPostRepository(deps.SQL)
	if deps.Mongo != nil {
		mongoPosts := repositories.NewMongoPostRepository(deps.Mongo)
		if err := mongoPosts.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("creating post indexes: %w", err)
		}
		postRepo = mongoPosts
		logger.Info("posts stored in mongo", zap.String("database", deps.Mongo.Name()))
	}

	// --- Services ---
	sanitizer := services.NewSanitizer()
	notifier := services.NewNotificationDispatcher(notificationRepo, logger)
	toggles := services.NewToggleService(relationRepo, postRepo, userRepo, notifier, logger)
	posts := services.NewPostService(postRepo, userRepo, relationRepo, engagementRepo, savedPostRepo, sanitizer, logger)
	users := services.NewUserService(userRepo, postRepo, relationRepo, followRepo, sanitizer, logger)
	comments := services.NewCommentService(commentRepo, postRepo, userRepo, notifier, sanitizer, logger)
	admin := services.NewAdminService(userRepo, postRepo, commentRepo, engagementRepo, logger)

	authOpts := []services.AuthOption{
		services.WithAdminEmail(cfg.AdminEmail),
		services.WithSessionTTL(cfg.SessionTTL),
	}
	if deps.Firebase != nil {
		authOpts = append(authOpts, services.WithFirebase(deps.Firebase))
	}
	auth := services.NewAuthService(userRepo, deps.Codec, logger, append(authOpts, deps.AuthOptions...)...)

	if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}

	// --- Routes ---
	guard := middleware.NewAccessGuard(deps.Codec, deps.Limiter, logger)
	api := e.Group(middleware.APIPrefix, guard.Middleware())

	handlers.NewAuthHandler(auth, users, cfg.CookieSecure).RegisterAuthRoutes(api.Group("/auth"))
	handlers.NewUserHandler(users).RegisterUserRoutes(api)
	handlers.NewPostHandler(posts).RegisterPostRoutes(api)
	handlers.NewFeedHandler(posts, users).RegisterFeedRoutes(api)
	handlers.NewFollowHandler(toggles, users).RegisterFollowRoutes(api)
	handlers.NewCommentHandler(comments).RegisterCommentRoutes(api)
	handlers.NewLikeHandler(toggles).RegisterLikeRoutes(api)
	handlers.NewSavedPostHandler(toggles).RegisterSavedPostRoutes(api)
	handlers.NewNotificationHandler(notifier, users).RegisterNotificationRoutes(api)
	handlers.NewAdminHandler(admin).RegisterAdminRoutes(api.Group("/admin", middleware.RequireAdmin))

	logger.Info("routes configured", zap.Int("count", len(e.Routes())))
	return nil
}
