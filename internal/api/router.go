package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/project-registry/docs"
	"github.com/99minutos/project-registry/internal/api/handler"
	"github.com/99minutos/project-registry/internal/api/middleware"
	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
	"github.com/99minutos/project-registry/internal/infrastructure/http/handlers"
)

// Deps are the collaborators NewRouter wires into handlers.
type Deps struct {
	AuthService    ports.AuthService
	ProjectService ports.ProjectService
	Store          ports.Store
	StoreName      string
	// Redis is optional; when set readiness also pings it.
	Redis  *redis.Client
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// HTTP metrics go to a per-router registry so building several routers
	// in one process never registers the same collector twice.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "project_registry",
		Registerer: reg,
	}))

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.StoreName, deps.Store, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	authMW := middleware.Auth(deps.AuthService)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Users ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	users := e.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/token", authHandler.Token)
	users.GET("/me", authHandler.Me, authMW)

	// --- Projects ---
	// RemoveTrailingSlash folds "/projects/" into "/projects".
	projectHandler := handler.NewProjectHandler(deps.ProjectService)
	projects := e.Group("/projects", authMW)
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("", projectHandler.Create, adminOnly)
	projects.PUT("/:id", projectHandler.Update, adminOnly)
	projects.DELETE("/:id", projectHandler.Delete, adminOnly)

	return e
}
