package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
)

func TestJWTService_SignAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")
	id := Identity{ID: 42, Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin}

	token, err := svc.Sign(id)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_TokensHaveUniqueIDs(t *testing.T) {
	svc := NewJWTService("test-secret")
	id := Identity{ID: 1, Role: model.RoleUser}

	first, err := svc.Sign(id)
	require.NoError(t, err)
	second, err := svc.Sign(id)
	require.NoError(t, err)

	a, err := svc.Verify(first)
	require.NoError(t, err)
	b, err := svc.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.RegisteredClaims.ID, b.RegisteredClaims.ID)
}

func TestJWTService_Verify_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret")
	valid, err := svc.Sign(Identity{ID: 1, Role: model.RoleUser})
	require.NoError(t, err)

	otherKey, err := NewJWTService("other-secret").Sign(Identity{ID: 1, Role: model.RoleUser})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ID: 1, Role: model.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "tampered payload", token: valid[:len(valid)-4] + "abcd"},
		{name: "wrong secret", token: otherKey},
		{name: "alg none", token: none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}

func TestJWTService_Verify_Expired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewJWTService("test-secret")
	svc.now = func() time.Time { return issued }

	token, err := svc.Sign(Identity{ID: 1, Role: model.RoleUser})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(TokenExpiry - time.Minute) }
	_, err = svc.Verify(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(TokenExpiry + time.Second) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestClaims_TTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}

	assert.Equal(t, time.Hour, c.TTL(now))
	assert.Equal(t, time.Duration(0), (&Claims{}).TTL(now))
}
