package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	keys   []string
	limits []int
	result Result
	err    error
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (Result, error) {
	f.keys = append(f.keys, key)
	f.limits = append(f.limits, limit)
	return f.result, f.err
}

var testLimits = Limits{RoleAdmin: 20, RoleUser: 10, RoleGuest: 5}

func TestLimits_For(t *testing.T) {
	assert.Equal(t, 20, testLimits.For(RoleAdmin))
	assert.Equal(t, 10, testLimits.For(RoleUser))
	assert.Equal(t, 5, testLimits.For(RoleGuest))
	assert.Equal(t, 5, testLimits.For("superuser"))
}

func TestGate_Check(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		actor      string
		userAgent  string
		result     Result
		wantReason Reason
		wantKey    string
		wantLimit  int
	}{
		{
			name: "admin within quota", role: RoleAdmin, actor: "1",
			result: Result{Allowed: true, Limit: 20, Remaining: 19}, wantReason: ReasonNone,
			wantKey: "admin:1", wantLimit: 20,
		},
		{
			name: "user over quota", role: RoleUser, actor: "2",
			result: Result{Allowed: false, Limit: 10}, wantReason: ReasonRateLimit,
			wantKey: "user:2", wantLimit: 10,
		},
		{
			name: "empty role is guest", role: "", actor: "ip:10.0.0.1",
			result: Result{Allowed: true, Limit: 5, Remaining: 4}, wantReason: ReasonNone,
			wantKey: "guest:ip:10.0.0.1", wantLimit: 5,
		},
		{
			name: "bot short-circuits", role: RoleUser, actor: "2", userAgent: "python-scrapy/2.0",
			wantReason: ReasonBot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &fakeLimiter{result: tt.result}
			gate := NewGate(limiter, NewShield([]string{"scrapy"}), testLimits)

			req := httptest.NewRequest("GET", "/api/users", nil)
			if tt.userAgent != "" {
				req.Header.Set("User-Agent", tt.userAgent)
			}

			d, err := gate.Check(context.Background(), req, tt.role, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantReason != ReasonNone, d.Denied())

			if tt.wantKey == "" {
				assert.Empty(t, limiter.keys, "denied requests must not spend quota")
				return
			}
			assert.Equal(t, []string{tt.wantKey}, limiter.keys)
			assert.Equal(t, []int{tt.wantLimit}, limiter.limits)
		})
	}
}

func TestGate_Check_LimiterError(t *testing.T) {
	gate := NewGate(&fakeLimiter{err: errors.New("redis down")}, nil, testLimits)

	_, err := gate.Check(context.Background(), httptest.NewRequest("GET", "/api", nil), RoleGuest, "ip:1.2.3.4")
	assert.Error(t, err)
}
