package api

import (
	"crypto/subtle"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/screengrabber/account-api/internal/api/handler"
	"github.com/screengrabber/account-api/internal/api/middleware"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth         ports.AuthService
	Entitlements ports.EntitlementService
	Statuses     ports.StatusService
	Health       map[string]handler.Pinger

	Log         zerolog.Logger
	CORSOrigins []string
	// AdminAPIKey enables the /api/admin routes when non-empty.
	AdminAPIKey string
	// ResetURL is echoed back with a diagnostic reset token.
	ResetURL string
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "screengrabber",
		Registerer: registerer,
	}))

	// --- Ops (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/", healthHandler.Banner)

	requireAuth := middleware.RequireAuth(d.Auth)
	optionalAuth := middleware.OptionalAuth(d.Auth)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth, d.ResetURL)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/google", authHandler.GoogleLogin)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/me", authHandler.Me, requireAuth)
	auth.POST("/logout", authHandler.Logout, requireAuth)

	// --- License / entitlement routes ---
	licenseHandler := handler.NewLicenseHandler(d.Entitlements)
	api.POST("/license/validate", licenseHandler.Validate, optionalAuth)
	api.GET("/pro/features", licenseHandler.ProFeatures, requireAuth, middleware.RequirePro())

	if d.AdminAPIKey != "" {
		admin := api.Group("/admin", echomiddleware.KeyAuthWithConfig(echomiddleware.KeyAuthConfig{
			KeyLookup: "header:X-Admin-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(d.AdminAPIKey)) == 1, nil
			},
		}))
		admin.POST("/licenses", licenseHandler.Issue)
		admin.DELETE("/licenses/:key", licenseHandler.Deactivate)
	}

	// --- Status checks ---
	statusHandler := handler.NewStatusHandler(d.Statuses)
	api.POST("/status", statusHandler.Create)
	api.GET("/status", statusHandler.List)

	return e
}
