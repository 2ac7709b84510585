// Package protect evaluates requests against the protection policies guarding
// the API: a per-client token-bucket rate limit and a bot/attack-shield check.
// The policies are exposed behind the Evaluator interface so the gate pipeline
// never depends on a concrete provider.
package protect

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Reason classifies why a request was denied.
type Reason int

const (
	ReasonOther Reason = iota
	ReasonRateLimited
	ReasonBot
	ReasonShield
)

func (r Reason) String() string {
	switch r {
	case ReasonRateLimited:
		return "rate_limited"
	case ReasonBot:
		return "bot"
	case ReasonShield:
		return "shield"
	}
	return "other"
}

// Decision is the outcome of evaluating a single request against one policy.
// Decisions are never persisted; they only steer the gate for one request.
type Decision struct {
	Denied bool
	Status int
	Reason Reason
}

// Allowed is the zero decision.
var Allowed = Decision{}

// Evaluator is the protection capability the gate pipeline depends on.
// Either call may fail (network or service fault); callers are expected to
// fail open on error.
type Evaluator interface {
	EvaluateRate(ctx context.Context, r *http.Request) (Decision, error)
	EvaluateBotShield(ctx context.Context, r *http.Request) (Decision, error)
}

// RateLimiter decides whether the client behind key may proceed right now.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Gateway composes a rate limiter and the bot/shield detector behind the
// Evaluator interface.
type Gateway struct {
	limiter RateLimiter
	bots    *BotShield
}

func NewGateway(limiter RateLimiter, bots *BotShield) *Gateway {
	return &Gateway{limiter: limiter, bots: bots}
}

func (g *Gateway) EvaluateRate(ctx context.Context, r *http.Request) (Decision, error) {
	ok, err := g.limiter.Allow(ctx, ClientIP(r))
	if err != nil {
		return Allowed, err
	}
	if !ok {
		return Decision{Denied: true, Status: http.StatusTooManyRequests, Reason: ReasonRateLimited}, nil
	}
	return Allowed, nil
}

func (g *Gateway) EvaluateBotShield(_ context.Context, r *http.Request) (Decision, error) {
	return g.bots.Check(r), nil
}

// ClientIP extracts the client network address: first hop of X-Forwarded-For
// when present, RemoteAddr otherwise.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
