package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
)

// TokenExpiry is the lifetime of a session token. There is no refresh; callers
// sign in again after expiry.
const TokenExpiry = 24 * time.Hour

// Identity is the authenticated actor carried through a request.
type Identity struct {
	ID    uint
	Name  string
	Email string
	Role  model.Role
}

// IdentityOf builds the identity embedded in tokens issued for u.
func IdentityOf(u *model.UserResponse) Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Claims represents JWT claims.
type Claims struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the actor described by the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.ID, Name: c.Name, Email: c.Email, Role: c.Role}
}

// TTL returns how long the token remains valid from now.
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Sign issues an HS256 token for the identity, valid for TokenExpiry.
func (s *JWTService) Sign(id Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		ID:    id.ID,
		Name:  id.Name,
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", id.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature, algorithm and expiry and returns the claims.
// Every failure is reported as ErrInvalidToken.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.VerifyExpiresAt(s.now(), true) {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// ContextKey is the request context key holding the verified *Claims.
const ContextKey = "user"
