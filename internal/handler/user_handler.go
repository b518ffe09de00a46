package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"acquisitions/internal/auth"
	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
	"acquisitions/internal/service"
	"acquisitions/internal/validation"
)

// UserHandler bundles the user CRUD endpoints. Every route behind it requires
// an authenticated actor.
type UserHandler struct {
	svc       service.UserService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, validator *validation.Validator, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, validator: validator, logger: logger}
}

// UserListResponse is the body of the user listing.
type UserListResponse struct {
	Message string               `json:"message"`
	Users   []model.UserResponse `json:"users"`
	Count   int                  `json:"count"`
}

// ListUsers godoc
// @Summary List users
// @Description Admin only. Not paginated.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return err
	}
	if !auth.CanListUsers(act) {
		h.logger.Warn("user listing denied", zap.Uint("actor_id", act.ID), zap.String("role", string(act.Role)), zap.String("path", c.Path()))
		return apperrors.Forbidden("Insufficient permissions to access this resource")
	}

	users, err := h.svc.GetAllUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserListResponse{
		Message: "Successfully retrieved all users.",
		Users:   users,
		Count:   len(users),
	})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := h.validator.UserID(c.Param("id"))
	if err != nil {
		return err
	}
	act, err := actor(c)
	if err != nil {
		return err
	}

	h.logger.Info("getting user", zap.Uint("target_id", id), zap.Uint("actor_id", act.ID))
	user, err := h.svc.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{Message: "Successfully retrieved user.", User: user})
}

// UpdateUser godoc
// @Summary Update user
// @Description Owner or admin. Only admins may change roles.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body validation.UpdateUserInput true "Fields to update"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := h.validator.UserID(c.Param("id"))
	if err != nil {
		return err
	}
	var req validation.UpdateUserInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validator.UpdateUser(&req); err != nil {
		return err
	}

	act, err := actor(c)
	if err != nil {
		return err
	}
	if !auth.CanAccess(act, id) {
		h.logger.Warn("unauthorized update attempt", zap.Uint("actor_id", act.ID), zap.Uint("target_id", id), zap.String("path", c.Path()))
		return apperrors.Forbidden("You can only update your own profile.")
	}
	if req.Role != nil && !auth.CanChangeRole(act) {
		h.logger.Warn("unauthorized role change attempt", zap.Uint("actor_id", act.ID), zap.Uint("target_id", id), zap.String("role", string(act.Role)))
		return apperrors.Forbidden("Only administrators can change user roles.")
	}

	upd := req.ToUpdate()
	h.logger.Info("updating user", zap.Uint("target_id", id), zap.Uint("actor_id", act.ID), zap.Strings("fields", upd.Fields()))
	user, err := h.svc.UpdateUser(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{Message: "User updated successfully.", User: user})
}

// DeleteUser godoc
// @Summary Delete user
// @Description Owner or admin.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := h.validator.UserID(c.Param("id"))
	if err != nil {
		return err
	}
	act, err := actor(c)
	if err != nil {
		return err
	}
	if !auth.CanAccess(act, id) {
		h.logger.Warn("unauthorized delete attempt", zap.Uint("actor_id", act.ID), zap.Uint("target_id", id), zap.String("path", c.Path()))
		return apperrors.Forbidden("You can only delete your own account.")
	}

	h.logger.Info("deleting user", zap.Uint("target_id", id), zap.Uint("actor_id", act.ID), zap.Bool("is_admin", auth.IsAdmin(act)))
	user, err := h.svc.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{Message: "User deleted successfully.", User: user})
}
