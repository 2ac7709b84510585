// Package gate implements the request-gating pipeline that runs ahead of
// routing: exemptions, bypass, rate limiting, bot/shield screening on writes,
// and the temporary shared-token write guard, in that order.
package gate

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/rogerio-castellano/products-api/internal/protect"
	"go.uber.org/zap"
)

// Header names for the two gate credentials.
const (
	WriteTokenHeader = "X-Test-Token"
	BypassHeader     = "X-Bypass-RateLimit"
)

// Interactive API tools used during development skip bot screening, not rate
// limiting.
var interactiveTools = regexp.MustCompile(`(?i)postman|curl|insomnia`)

type Options struct {
	Evaluator protect.Evaluator

	// WriteToken guards mutating methods. When empty every write is denied.
	WriteToken string

	// BypassToken and TrustedAddrs skip the rate/bot/auth stages entirely.
	BypassToken  string
	TrustedAddrs []string

	// BotCheckReads extends the bot/shield stage to read traffic.
	BotCheckReads bool

	// Audit, when set, records every denial.
	Audit *AuditLog

	Log *zap.SugaredLogger
}

type Gate struct {
	opts    Options
	trusted map[string]struct{}
	log     *zap.SugaredLogger
}

func New(opts Options) *Gate {
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	trusted := make(map[string]struct{}, len(opts.TrustedAddrs))
	for _, addr := range opts.TrustedAddrs {
		trusted[addr] = struct{}{}
	}
	return &Gate{opts: opts, trusted: trusted, log: opts.Log}
}

// Middleware evaluates the pipeline stages in fixed order. Cheap checks run
// before external calls, and the write guard runs last so unauthenticated
// writes are still rate limited and screened for abuse.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health/root and preflight requests always pass.
		if exemptPath(r.URL.Path) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if g.bypassed(r) {
			next.ServeHTTP(w, r)
			return
		}

		// Rate limit applies to every remaining request. Fail open on
		// evaluator errors: availability over strictness.
		dec, err := g.opts.Evaluator.EvaluateRate(r.Context(), r)
		if err != nil {
			g.log.Warnw("rate limiter error, failing open", "error", err)
		} else if dec.Denied {
			g.deny(w, r, dec, "Too Many Requests")
			return
		}

		if isWrite(r.Method) || g.opts.BotCheckReads {
			if !interactiveTools.MatchString(r.UserAgent()) {
				dec, err := g.opts.Evaluator.EvaluateBotShield(r.Context(), r)
				if err != nil {
					g.log.Warnw("bot/shield error, failing open", "error", err)
				} else if dec.Denied {
					g.deny(w, r, dec, denialMessage(dec))
					return
				}
			}
		}

		if isWrite(r.Method) {
			// Temporary shared-secret write guard until real auth lands.
			if g.opts.WriteToken == "" || r.Header.Get(WriteTokenHeader) != g.opts.WriteToken {
				g.deny(w, r, protect.Decision{Denied: true, Status: http.StatusUnauthorized}, "Authentication required")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gate) bypassed(r *http.Request) bool {
	if g.opts.BypassToken != "" && r.Header.Get(BypassHeader) == g.opts.BypassToken {
		return true
	}
	_, ok := g.trusted[protect.ClientIP(r)]
	return ok
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, dec protect.Decision, msg string) {
	status := denialStatus(dec)
	g.opts.Audit.Record(r.Context(), DenialEntry{
		Target: protect.ClientIP(r),
		Route:  r.URL.Path,
		Status: status,
		Reason: dec.Reason.String(),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

func denialStatus(dec protect.Decision) int {
	if dec.Status != 0 {
		return dec.Status
	}
	if dec.Reason == protect.ReasonRateLimited {
		return http.StatusTooManyRequests
	}
	return http.StatusForbidden
}

func denialMessage(dec protect.Decision) string {
	switch dec.Reason {
	case protect.ReasonRateLimited:
		return "Too Many Requests"
	case protect.ReasonBot:
		return "Bot access denied"
	}
	return "Forbidden"
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func exemptPath(path string) bool {
	return path == "/" || path == "/health"
}
