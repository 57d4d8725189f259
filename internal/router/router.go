package router

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/ustagram/backend/internal/handlers"
	"github.com/anonto42/ustagram/backend/internal/middleware"
	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/anonto42/ustagram/backend/internal/realtime"
	"github.com/anonto42/ustagram/backend/internal/repositories"
	"github.com/anonto42/ustagram/backend/internal/services"
	"github.com/anonto42/ustagram/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the routes are built from.
type Deps struct {
	Config   *config.Config
	Postgres *gorm.DB
	Mongo    *mongo.Database
	Registry *realtime.Registry
	// Firebase is nil when Firebase login is not configured.
	Firebase middleware.IDTokenVerifier
	Log      *slog.Logger
}

// Models lists the relational models to auto-migrate.
func Models() []any {
	return []any{
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	cfg, log := deps.Config, deps.Log

	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Ustagram API"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	postRepo := repositories.NewMongoPostRepository(deps.Mongo)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)

	// --- Services ---
	dispatcher := services.NewDispatcher(notificationRepo, postRepo, userRepo, deps.Registry, log,
		services.WithStrictReferences(cfg.StrictReferences))
	notificationService := services.NewNotificationService(notificationRepo, deps.Registry, log)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, deps.Registry, dispatcher, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.JWTExpiration, log).
		RegisterAuthRoutes(authGroup, middleware.FirebaseAuthMiddleware(deps.Firebase))

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	handlers.NewUserHandler(userRepo, log).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postRepo, log).RegisterPostRoutes(api)
	handlers.NewCommentHandler(commentService, log).RegisterCommentRoutes(api)
	handlers.NewLikeHandler(likeRepo, postRepo, dispatcher, log).RegisterLikeRoutes(api)
	handlers.NewFollowHandler(followRepo, userRepo, dispatcher, log).RegisterFollowRoutes(api)
	handlers.NewNotificationHandler(notificationService, log).RegisterNotificationRoutes(api)

	// --- Realtime ---
	ws := e.Group("/ws")
	ws.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	handlers.NewRealtimeHandler(deps.Registry, cfg.WSSendBuffer, log).RegisterRealtimeRoutes(ws)

	log.Info("routes configured")
}
