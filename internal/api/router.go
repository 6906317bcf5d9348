package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pawacademy/training-platform/internal/api/handler"
	"github.com/pawacademy/training-platform/internal/api/middleware"
	"github.com/pawacademy/training-platform/internal/core/ports"
	"github.com/pawacademy/training-platform/internal/core/service"
	"github.com/pawacademy/training-platform/internal/infrastructure/config"
	mongodb "github.com/pawacademy/training-platform/internal/infrastructure/db/mongo"
	"github.com/pawacademy/training-platform/internal/infrastructure/http/handlers"
)

// Deps bundles the externally constructed collaborators the router wires
// into services: connected stores, the notifier, and the login throttle.
type Deps struct {
	DB       *mongo.Database
	Notifier ports.Notifier
	Throttle service.LoginThrottle
	Ready    []handlers.DependencyChecker
}

// NewRouter builds the Echo instance with all routes and gates registered.
func NewRouter(cfg *config.Config, deps Deps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pawacademy"))

	// --- Repositories and services ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	inviteRepo := mongodb.NewInviteRepository(deps.DB)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokenService, deps.Throttle, deps.Notifier, cfg.TokenTTL, log)
	inviteService := service.NewInviteService(inviteRepo, userRepo, deps.Notifier, cfg.InviteExpiryDays, cfg.AdminEmail, cfg.PublicBaseURL, log)

	authHandler := handler.NewAuthHandler(authService)
	inviteHandler := handler.NewInviteHandler(inviteService)
	trainerHandler := handler.NewTrainerHandler(userRepo)

	// --- Gate chain ---
	authn := middleware.NewAuthenticator(tokenService, userRepo)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authn.Authenticate)

	// --- Invite routes ---
	// Admin management requires the admin role plus an access tier:
	// readonly admins may list, limited and above may create and cancel.
	e.POST("/v1/invites", inviteHandler.Create,
		authn.Authenticate,
		authn.RequireRole("admin"),
		authn.RequireAccessLevel("limited"),
	)
	e.GET("/v1/invites", inviteHandler.List,
		authn.Authenticate,
		authn.RequireRole("admin"),
		authn.RequireAccessLevel("readonly"),
	)
	e.DELETE("/v1/invites/:id", inviteHandler.Cancel,
		authn.Authenticate,
		authn.RequireRole("admin"),
		authn.RequireAccessLevel("limited"),
	)
	// Redemption surface is public: the token itself is the credential.
	e.GET("/v1/invites/:token", inviteHandler.Validate)
	e.POST("/v1/invites/:token/accept", inviteHandler.Accept)

	// --- Public trainer directory ---
	e.GET("/v1/trainers", trainerHandler.List, authn.OptionalAuthenticate)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Ready)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
