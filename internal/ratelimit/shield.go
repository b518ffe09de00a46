package ratelimit

import (
	"net/http"
	"net/url"
	"strings"
)

// Reason explains why a request was denied.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonBot
	ReasonShield
	ReasonRateLimit
)

func (r Reason) String() string {
	switch r {
	case ReasonBot:
		return "bot"
	case ReasonShield:
		return "shield"
	case ReasonRateLimit:
		return "rate_limit"
	default:
		return "allowed"
	}
}

// attackSignatures are lower-case fragments of common injection and traversal probes.
var attackSignatures = []string{
	"../",
	"..\\",
	"<script",
	"javascript:",
	"union select",
	"' or '1'='1",
	"\" or \"1\"=\"1",
	"/etc/passwd",
	"; drop table",
}

// Shield classifies requests as automated or hostile before quota is spent.
type Shield struct {
	botAgents []string
}

// NewShield builds a shield that treats any User-Agent containing one of
// botAgents (case-insensitive) as automated.
func NewShield(botAgents []string) *Shield {
	agents := make([]string, 0, len(botAgents))
	for _, a := range botAgents {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			agents = append(agents, a)
		}
	}
	return &Shield{botAgents: agents}
}

// Inspect returns ReasonBot, ReasonShield or ReasonNone.
func (s *Shield) Inspect(r *http.Request) Reason {
	ua := strings.ToLower(r.UserAgent())
	for _, agent := range s.botAgents {
		if strings.Contains(ua, agent) {
			return ReasonBot
		}
	}

	target := r.URL.Path + "?" + r.URL.RawQuery
	if decoded, err := url.QueryUnescape(target); err == nil {
		target = decoded
	}
	target = strings.ToLower(target)
	for _, sig := range attackSignatures {
		if strings.Contains(target, sig) {
			return ReasonShield
		}
	}
	return ReasonNone
}
