package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"acquisitions/internal/auth"
	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
	"acquisitions/internal/repository"
)

// AuthService handles sign-up, sign-in and session tokens.
type AuthService interface {
	CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.UserResponse, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.UserResponse, error)
	IssueToken(user *model.UserResponse) (string, error)
	RevokeToken(ctx context.Context, token string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger,
	}
}

// CreateUser registers a user with a hashed password. The email pre-check
// only avoids hashing for obvious duplicates; the unique index decides races.
func (s *authService) CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.UserResponse, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	if role == "" {
		role = model.RoleUser
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return user.ToResponse(), nil
}

// AuthenticateUser checks credentials and returns the public projection.
func (s *authService) AuthenticateUser(ctx context.Context, email, password string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := auth.ComparePassword(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	s.logger.Info("user authenticated", zap.Uint("user_id", user.ID))
	return user.ToResponse(), nil
}

// IssueToken signs a session token carrying the user's identity.
func (s *authService) IssueToken(user *model.UserResponse) (string, error) {
	return s.jwtService.Sign(auth.IdentityOf(user))
}

// RevokeToken puts a still-valid token on the revocation list until it
// expires. Invalid or expired tokens need no revocation.
func (s *authService) RevokeToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.jwtService.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.tokenStore.Revoke(ctx, claims.RegisteredClaims.ID, claims.TTL(timeNow())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("token revoked", zap.Uint("user_id", claims.ID))
	return nil
}
