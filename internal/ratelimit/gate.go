// Package ratelimit implements the per-role request gate: bot and shield
// rules first, then a sliding-window quota per actor.
package ratelimit

import (
	"context"
	"net/http"
	"time"
)

// Window is the rolling interval every quota is measured over.
const Window = time.Minute

// Role names used for quotas. Guest covers unauthenticated callers.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// Limits maps a role to its request quota per Window.
type Limits map[string]int

// For returns the quota for role, falling back to the guest quota.
func (l Limits) For(role string) int {
	if n, ok := l[role]; ok {
		return n
	}
	return l[RoleGuest]
}

// Decision is the outcome of Gate.Check.
type Decision struct {
	Role   string
	Reason Reason
	Result Result
}

// Denied reports whether the request must be rejected.
func (d Decision) Denied() bool {
	return d.Reason != ReasonNone
}

// Gate combines the shield and the limiter.
type Gate struct {
	limiter Limiter
	shield  *Shield
	limits  Limits
	window  time.Duration
}

// NewGate builds a gate. A nil shield disables bot and attack rules.
func NewGate(limiter Limiter, shield *Shield, limits Limits) *Gate {
	return &Gate{limiter: limiter, shield: shield, limits: limits, window: Window}
}

// Check evaluates r for the given role and actor key (user id or client IP).
// A limiter error is returned as is so the caller can fail closed.
func (g *Gate) Check(ctx context.Context, r *http.Request, role, actor string) (Decision, error) {
	if role == "" {
		role = RoleGuest
	}
	d := Decision{Role: role}
	if g.shield != nil {
		if reason := g.shield.Inspect(r); reason != ReasonNone {
			d.Reason = reason
			return d, nil
		}
	}

	res, err := g.limiter.Allow(ctx, role+":"+actor, g.limits.For(role), g.window)
	if err != nil {
		return d, err
	}
	d.Result = res
	if !res.Allowed {
		d.Reason = ReasonRateLimit
	}
	return d, nil
}
