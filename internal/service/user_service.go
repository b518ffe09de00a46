package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"acquisitions/internal/auth"
	"acquisitions/internal/cache"
	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
	"acquisitions/internal/repository"
)

const userCacheTTL = 5 * time.Minute

var timeNow = time.Now

// UserService exposes CRUD operations on users.
type UserService interface {
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uint) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, id uint, upd model.UserUpdate) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, id uint) (*model.UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	cache  *cache.Client
	logger *zap.Logger
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, logger *zap.Logger) UserService {
	return &userService{repo: repo, cache: cache, logger: logger}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// GetAllUsers returns every user. The listing is not paginated.
func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]model.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *users[i].ToResponse())
	}
	return out, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.UserResponse, error) {
	var cached model.UserResponse
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	s.cache.SetJSON(ctx, s.cacheKey(id), resp, userCacheTTL)
	return resp, nil
}

// UpdateUser persists only the provided fields, re-hashing a new password and
// always refreshing updated_at.
func (s *userService) UpdateUser(ctx context.Context, id uint, upd model.UserUpdate) (*model.UserResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": timeNow()}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}
	if upd.Role != nil {
		fields["role"] = *upd.Role
	}
	if upd.Password != nil {
		hashed, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hashed
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	s.cache.Delete(ctx, s.cacheKey(id))

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user updated", zap.Uint("user_id", id), zap.Strings("fields", upd.Fields()))
	return user.ToResponse(), nil
}

// DeleteUser removes the row and returns what was deleted.
func (s *userService) DeleteUser(ctx context.Context, id uint) (*model.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}
	s.cache.Delete(ctx, s.cacheKey(id))

	s.logger.Info("user deleted", zap.Uint("user_id", id))
	return user.ToResponse(), nil
}

func (s *userService) find(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}
