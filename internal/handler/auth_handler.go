package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
	"acquisitions/internal/service"
	"acquisitions/internal/validation"
)

// TokenCookieName is the cookie carrying the session token.
const TokenCookieName = "token"

const tokenCookieMaxAge = 15 * time.Minute

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  service.AuthService
	validator    *validation.Validator
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler. secureCookie marks the token
// cookie Secure, which production deployments behind TLS need.
func NewAuthHandler(authService service.AuthService, validator *validation.Validator, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, validator: validator, secureCookie: secureCookie, logger: logger}
}

// UserEnvelope is the {message, user} response body.
type UserEnvelope struct {
	Message string              `json:"message"`
	User    *model.UserResponse `json:"user"`
}

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignUp godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.SignUpInput true "Registration data"
// @Success 201 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req validation.SignUpInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validator.SignUp(&req); err != nil {
		return err
	}

	user, err := h.authService.CreateUser(c.Request().Context(), req.Name, req.Email, req.Password, req.RoleOrDefault())
	if err != nil {
		return err
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		return apperrors.Internal(err)
	}
	h.setTokenCookie(c, token)

	h.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, UserEnvelope{Message: "User registered", User: user})
}

// SignIn godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.SignInInput true "Credentials"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req validation.SignInInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validator.SignIn(&req); err != nil {
		return err
	}

	user, err := h.authService.AuthenticateUser(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		return apperrors.Internal(err)
	}
	h.setTokenCookie(c, token)

	h.logger.Info("user signed in", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, UserEnvelope{Message: "User signed in successfully", User: user})
}

// SignOut godoc
// @Summary Sign out
// @Description Clears the token cookie and revokes the presented token.
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.authService.RevokeToken(c.Request().Context(), requestToken(c)); err != nil {
		return err
	}
	h.clearTokenCookie(c)

	h.logger.Info("user signed out")
	return c.JSON(http.StatusOK, MessageResponse{Message: "User signed out successfully"})
}

func (h *AuthHandler) setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(tokenCookieMaxAge.Seconds()),
	})
}

func (h *AuthHandler) clearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
