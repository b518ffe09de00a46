package router

import (
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"acquisitions/internal/auth"
	apperrors "acquisitions/internal/errors"
)

const authErrorKey = "auth_error"

// OptionalAuth verifies a token from the token cookie or a Bearer header when
// one is present and stores its claims under auth.ContextKey. It never rejects:
// a missing or bad token leaves the request anonymous and records why, so
// RequireAuth can report it on protected routes.
func OptionalAuth(jwtService *auth.JWTService, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             auth.ContextKey,
		TokenLookup:            "cookie:token,header:Authorization:Bearer ",
		ContinueOnIgnoredError: true,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.Verify(token)
			if err != nil {
				return nil, err
			}
			if tokens != nil {
				revoked, _ := tokens.IsRevoked(c.Request().Context(), claims.RegisteredClaims.ID)
				if revoked {
					return nil, apperrors.ErrInvalidToken
				}
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			c.Set(authErrorKey, err)
			return nil
		},
	})
}

// RequireAuth rejects requests OptionalAuth could not authenticate.
func RequireAuth(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, ok := c.Get(auth.ContextKey).(*auth.Claims); ok && claims != nil {
				return next(c)
			}
			err, _ := c.Get(authErrorKey).(error)
			if errors.Is(err, apperrors.ErrInvalidToken) {
				logger.Warn("authentication failed: invalid token",
					zap.String("ip", c.RealIP()),
					zap.String("user_agent", c.Request().UserAgent()),
					zap.String("path", c.Path()))
				return apperrors.ErrInvalidToken
			}
			logger.Warn("authentication failed: no token provided",
				zap.String("ip", c.RealIP()),
				zap.String("path", c.Path()))
			return apperrors.ErrMissingToken
		}
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if claims, ok := c.Get(auth.ContextKey).(*auth.Claims); ok && claims != nil {
				fields = append(fields, zap.Uint("actor_id", claims.ID))
			}
			if v.Status >= http.StatusInternalServerError {
				logger.Error("request", append(fields, zap.Error(v.Error))...)
			} else {
				logger.Info("request", fields...)
			}
			return nil
		},
	})
}

// ErrorHandler renders every error as {error, code, details?}. Internal
// failures are logged with their cause and shown to clients generically.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var status int
		var body apperrors.ErrorResponse

		var echoErr *echo.HTTPError
		if !isAppError(err) && errors.As(err, &echoErr) {
			status = echoErr.Code
			body = echoErrorBody(echoErr)
		} else {
			httpErr := apperrors.MapErrorToHTTP(err)
			status = httpErr.StatusCode
			body = httpErr.ToErrorResponse()
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("path", c.Request().URL.Path),
			zap.String("method", c.Request().Method),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		}
		if claims, ok := c.Get(auth.ContextKey).(*auth.Claims); ok && claims != nil {
			fields = append(fields, zap.Uint("actor_id", claims.ID), zap.String("role", string(claims.Role)))
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Warn("request rejected", append(fields, zap.String("code", body.Code))...)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

func isAppError(err error) bool {
	var appErr *apperrors.Error
	return errors.As(err, &appErr)
}

func echoErrorBody(e *echo.HTTPError) apperrors.ErrorResponse {
	switch e.Code {
	case http.StatusNotFound:
		return apperrors.ErrorResponse{Error: "Route not found.", Code: "ROUTE_NOT_FOUND"}
	case http.StatusMethodNotAllowed:
		return apperrors.ErrorResponse{Error: "Method not allowed.", Code: "METHOD_NOT_ALLOWED"}
	}
	if e.Code >= http.StatusInternalServerError {
		return apperrors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}
	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(e.Code), " ", "_"))
	return apperrors.ErrorResponse{Error: strings.ToLower(http.StatusText(e.Code)), Code: code}
}
