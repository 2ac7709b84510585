package protect

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Search-engine crawlers are the one allowlisted bot category.
	searchEngines = regexp.MustCompile(`(?i)googlebot|bingbot|duckduckbot|slurp|baiduspider|yandexbot`)

	botSignature = regexp.MustCompile(`(?i)bot|crawler|spider|scraper|wget|python-requests|go-http-client|java/|libwww`)

	// Injection/XSS signatures checked against the request target.
	shieldSignatures = []*regexp.Regexp{
		regexp.MustCompile(`(?i)union\s+(all\s+)?select`),
		regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`),
		regexp.MustCompile(`(?i);\s*drop\s+table`),
		regexp.MustCompile(`(?i)<\s*script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on(error|load|click)\s*=`),
		regexp.MustCompile(`\.\./`),
	}
)

// BotShield screens requests for non-human traffic and for common attack
// signatures. It is the in-process substitute for a hosted detection service.
type BotShield struct{}

func NewBotShield() *BotShield {
	return &BotShield{}
}

func (BotShield) Check(r *http.Request) Decision {
	target := r.URL.Path
	if q := r.URL.RawQuery; q != "" {
		if unescaped, err := url.QueryUnescape(q); err == nil {
			q = unescaped
		}
		target += "?" + q
	}
	for _, sig := range shieldSignatures {
		if sig.MatchString(target) {
			return Decision{Denied: true, Status: http.StatusForbidden, Reason: ReasonShield}
		}
	}

	ua := strings.TrimSpace(r.UserAgent())
	if ua == "" {
		return Decision{Denied: true, Status: http.StatusForbidden, Reason: ReasonBot}
	}
	if searchEngines.MatchString(ua) {
		return Allowed
	}
	if botSignature.MatchString(ua) {
		return Decision{Denied: true, Status: http.StatusForbidden, Reason: ReasonBot}
	}
	return Allowed
}
