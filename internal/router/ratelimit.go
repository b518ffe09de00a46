package router

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"acquisitions/internal/auth"
	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/ratelimit"
)

// SecurityGate applies the bot, shield and per-role quota rules. It must run
// after OptionalAuth so the actor's role is known. Limiter failures fail closed.
func SecurityGate(gate *ratelimit.Gate, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, actor := ratelimit.RoleGuest, "ip:"+c.RealIP()
			if claims, ok := c.Get(auth.ContextKey).(*auth.Claims); ok && claims != nil {
				role = string(claims.Role)
				actor = "user:" + strconv.FormatUint(uint64(claims.ID), 10)
			}

			req := c.Request()
			decision, err := gate.Check(req.Context(), req, role, actor)
			if err != nil {
				logger.Error("security gate failed", zap.Error(err), zap.String("path", req.URL.Path))
				rateLimitDecisions.WithLabelValues(role, "error").Inc()
				return apperrors.Internal(err)
			}
			rateLimitDecisions.WithLabelValues(decision.Role, decision.Reason.String()).Inc()

			logFields := []zap.Field{
				zap.String("ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("role", decision.Role),
			}
			switch decision.Reason {
			case ratelimit.ReasonBot:
				logger.Warn("bot request blocked", logFields...)
				return apperrors.Forbidden("Automated request is not allowed.")
			case ratelimit.ReasonShield:
				logger.Warn("shield request blocked", logFields...)
				return apperrors.Forbidden("Request blocked by security policy.")
			}

			res := decision.Result
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if decision.Reason == ratelimit.ReasonRateLimit {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				logger.Warn("rate limit exceeded", logFields...)
				return apperrors.RateLimited("Too many requests.")
			}
			return next(c)
		}
	}
}
