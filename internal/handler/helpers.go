package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"acquisitions/internal/auth"
	apperrors "acquisitions/internal/errors"
)

// actor returns the identity verified by the auth middleware.
func actor(c echo.Context) (auth.Identity, error) {
	claims, ok := c.Get(auth.ContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return auth.Identity{}, apperrors.ErrMissingToken
	}
	return claims.Identity(), nil
}

// requestToken returns the raw token from the cookie, or from a Bearer header.
func requestToken(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func invalidBody(err error) error {
	return &apperrors.Error{
		Kind:    apperrors.KindValidation,
		Code:    "INVALID_REQUEST",
		Message: "invalid request body",
		Details: []apperrors.FieldError{{Field: "body", Message: "request body must be valid JSON"}},
		Err:     err,
	}
}
