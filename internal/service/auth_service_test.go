package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"acquisitions/internal/auth"
	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newTestAuthService(repo *MockUserRepository, tokens *MockTokenStore) AuthService {
	return NewAuthService(repo, auth.NewJWTService("test-secret"), tokens, zap.NewNop())
}

func TestAuthService_CreateUser(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		role          model.Role
		setupMock     func(*MockUserRepository)
		expectedRole  model.Role
		expectedError error
	}{
		{
			name:  "successful registration",
			email: "test@example.com",
			role:  model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleUser,
		},
		{
			name:  "empty role defaults to user",
			email: "norole@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "norole@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleUser,
		},
		{
			name:  "admin role is kept",
			email: "boss@example.com",
			role:  model.RoleAdmin,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "boss@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleAdmin,
		},
		{
			name:  "user already exists",
			email: "existing@example.com",
			role:  model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 3, Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:  "unique index wins a race",
			email: "race@example.com",
			role:  model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newTestAuthService(mockRepo, new(MockTokenStore))
			user, err := svc.CreateUser(context.Background(), "Test User", tt.email, "password123", tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(1), user.ID)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.expectedRole, user.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_CreateUser_HashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "hash@example.com").Return(nil, gorm.ErrRecordNotFound)
	var stored *model.User
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*model.User) }).
		Return(nil)

	svc := newTestAuthService(mockRepo, new(MockTokenStore))
	_, err := svc.CreateUser(context.Background(), "Hash", "hash@example.com", "password123", model.RoleUser)
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.Password)
	cost, err := bcrypt.Cost([]byte(stored.Password))
	require.NoError(t, err)
	assert.Equal(t, auth.BcryptCost, cost)
}

func TestAuthService_AuthenticateUser(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), auth.BcryptCost)
	require.NoError(t, err)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful sign in",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:       7,
					Email:    "test@example.com",
					Password: string(hashed),
					Role:     model.RoleUser,
				}, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:       7,
					Email:    "test@example.com",
					Password: string(hashed),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newTestAuthService(mockRepo, new(MockTokenStore))
			user, err := svc.AuthenticateUser(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(7), user.ID)
				assert.Equal(t, tt.email, user.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_AuthenticateUser_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection refused"))

	svc := newTestAuthService(mockRepo, new(MockTokenStore))
	_, err := svc.AuthenticateUser(context.Background(), "test@example.com", "password123")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestAuthService_IssueAndRevokeToken(t *testing.T) {
	mockTokens := new(MockTokenStore)
	svc := newTestAuthService(new(MockUserRepository), mockTokens)

	token, err := svc.IssueToken(&model.UserResponse{ID: 9, Name: "Nine", Email: "nine@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	mockTokens.On("Revoke", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= auth.TokenExpiry
	})).Return(nil).Once()

	require.NoError(t, svc.RevokeToken(context.Background(), token))
	mockTokens.AssertExpectations(t)
}

func TestAuthService_RevokeToken_IgnoresInvalidTokens(t *testing.T) {
	mockTokens := new(MockTokenStore)
	svc := newTestAuthService(new(MockUserRepository), mockTokens)

	assert.NoError(t, svc.RevokeToken(context.Background(), ""))
	assert.NoError(t, svc.RevokeToken(context.Background(), "not-a-jwt"))
	mockTokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_RevokeToken_StoreFailure(t *testing.T) {
	mockTokens := new(MockTokenStore)
	svc := newTestAuthService(new(MockUserRepository), mockTokens)

	token, err := svc.IssueToken(&model.UserResponse{ID: 9, Role: model.RoleUser})
	require.NoError(t, err)

	mockTokens.On("Revoke", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(errors.New("redis: connection refused")).Once()

	err = svc.RevokeToken(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	mockTokens.AssertExpectations(t)
}
