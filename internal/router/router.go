package router

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"acquisitions/internal/auth"
	"acquisitions/internal/handler"
	"acquisitions/internal/ratelimit"
	"acquisitions/internal/validation"
)

// Deps bundles everything Register wires into the echo instance.
type Deps struct {
	Logger     *zap.Logger
	Validator  *validation.Validator
	JWTService *auth.JWTService
	TokenStore auth.TokenStoreInterface
	Gate       *ratelimit.Gate
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.HideBanner = true
	e.Validator = d.Validator
	e.HTTPErrorHandler = ErrorHandler(d.Logger)

	e.Use(middleware.RequestID())
	e.Use(RequestLogger(d.Logger))
	e.Use(middleware.Recover())
	e.Use(Metrics())
	e.Use(OptionalAuth(d.JWTService, d.TokenStore))
	e.Use(securityGate(d))

	e.GET("/health", d.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("", d.Health.API)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/sign-up", d.Auth.SignUp)
	authRoutes.POST("/sign-in", d.Auth.SignIn)
	authRoutes.POST("/sign-out", d.Auth.SignOut)

	// Short aliases.
	e.POST("/signup", d.Auth.SignUp)
	e.POST("/signin", d.Auth.SignIn)
	e.POST("/signout", d.Auth.SignOut)

	users := api.Group("/users", RequireAuth(d.Logger))
	users.GET("", d.Users.ListUsers)
	users.GET("/:id", d.Users.GetUser)
	users.PUT("/:id", d.Users.UpdateUser)
	users.DELETE("/:id", d.Users.DeleteUser)
}

// securityGate skips infrastructure endpoints so probes and scrapers are
// never throttled.
func securityGate(d Deps) echo.MiddlewareFunc {
	gate := SecurityGate(d.Gate, d.Logger)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		gated := gate(next)
		return func(c echo.Context) error {
			p := c.Request().URL.Path
			if p == "/health" || p == "/metrics" || strings.HasPrefix(p, "/swagger/") {
				return next(c)
			}
			return gated(c)
		}
	}
}
