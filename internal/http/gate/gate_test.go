package gate_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rogerio-castellano/products-api/internal/http/gate"
	"github.com/rogerio-castellano/products-api/internal/protect"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

// stubEvaluator scripts both policy outcomes and counts invocations.
type stubEvaluator struct {
	rate      protect.Decision
	rateErr   error
	bot       protect.Decision
	botErr    error
	rateCalls int
	botCalls  int
}

func (s *stubEvaluator) EvaluateRate(context.Context, *http.Request) (protect.Decision, error) {
	s.rateCalls++
	return s.rate, s.rateErr
}

func (s *stubEvaluator) EvaluateBotShield(context.Context, *http.Request) (protect.Decision, error) {
	s.botCalls++
	return s.bot, s.botErr
}

func rateLimited() protect.Decision {
	return protect.Decision{Denied: true, Status: http.StatusTooManyRequests, Reason: protect.ReasonRateLimited}
}

func botDenied() protect.Decision {
	return protect.Decision{Denied: true, Status: http.StatusForbidden, Reason: protect.ReasonBot}
}

func newGate(ev protect.Evaluator, mutate ...func(*gate.Options)) (http.Handler, *bool) {
	opts := gate.Options{Evaluator: ev, WriteToken: "secret"}
	for _, m := range mutate {
		m(&opts)
	}
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return gate.New(opts).Middleware(next), &reached
}

func doGateRequest(h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("User-Agent", browserUA)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("error decoding denial body: %v", err)
	}
	if body.Success {
		t.Error("denial body reported success=true")
	}
	return body.Message
}

func TestExemptPathsSkipAllStages(t *testing.T) {
	ev := &stubEvaluator{rate: rateLimited(), bot: botDenied()}
	h, reached := newGate(ev)

	for _, target := range []string{"/", "/health"} {
		*reached = false
		w := doGateRequest(h, http.MethodGet, target, nil)
		if !*reached || w.Code != http.StatusOK {
			t.Errorf("GET %s: expected to bypass the gate, got %d", target, w.Code)
		}
	}

	*reached = false
	w := doGateRequest(h, http.MethodOptions, "/api/products", nil)
	if !*reached || w.Code != http.StatusOK {
		t.Errorf("preflight: expected to bypass the gate, got %d", w.Code)
	}

	if ev.rateCalls != 0 || ev.botCalls != 0 {
		t.Errorf("exempt requests reached the evaluators: rate=%d bot=%d", ev.rateCalls, ev.botCalls)
	}
}

func TestRateLimitDenies(t *testing.T) {
	ev := &stubEvaluator{rate: rateLimited()}
	h, reached := newGate(ev)

	w := doGateRequest(h, http.MethodGet, "/api/products", nil)
	if *reached {
		t.Fatal("denied request reached the next handler")
	}
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if msg := decodeMessage(t, w); msg != "Too Many Requests" {
		t.Errorf("expected message %q, got %q", "Too Many Requests", msg)
	}
	if ev.botCalls != 0 {
		t.Error("bot/shield stage ran after a rate-limit denial")
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	ev := &stubEvaluator{rateErr: errors.New("service unavailable")}
	h, reached := newGate(ev)

	w := doGateRequest(h, http.MethodGet, "/api/products", nil)
	if !*reached || w.Code != http.StatusOK {
		t.Fatalf("expected fail-open on limiter error, got %d", w.Code)
	}
}

func TestBotShieldAppliesToWritesOnly(t *testing.T) {
	ev := &stubEvaluator{bot: botDenied()}
	h, reached := newGate(ev)

	w := doGateRequest(h, http.MethodGet, "/api/products", nil)
	if !*reached || w.Code != http.StatusOK {
		t.Fatalf("read request hit the bot stage, got %d", w.Code)
	}
	if ev.botCalls != 0 {
		t.Fatal("bot/shield evaluated for a read")
	}

	*reached = false
	w = doGateRequest(h, http.MethodPost, "/api/products", map[string]string{gate.WriteTokenHeader: "secret"})
	if *reached {
		t.Fatal("bot-denied write reached the next handler")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if msg := decodeMessage(t, w); msg != "Bot access denied" {
		t.Errorf("expected message %q, got %q", "Bot access denied", msg)
	}
}

func TestBotShieldAppliesToReadsWhenConfigured(t *testing.T) {
	ev := &stubEvaluator{bot: botDenied()}
	h, _ := newGate(ev, func(o *gate.Options) { o.BotCheckReads = true })

	w := doGateRequest(h, http.MethodGet, "/api/products", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with BotCheckReads enabled, got %d", w.Code)
	}
}

func TestShieldDenialMessage(t *testing.T) {
	ev := &stubEvaluator{bot: protect.Decision{Denied: true, Status: http.StatusForbidden, Reason: protect.ReasonShield}}
	h, _ := newGate(ev)

	w := doGateRequest(h, http.MethodPost, "/api/products", map[string]string{gate.WriteTokenHeader: "secret"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if msg := decodeMessage(t, w); msg != "Forbidden" {
		t.Errorf("expected message %q, got %q", "Forbidden", msg)
	}
}

func TestRateLimitedReasonInBotStage(t *testing.T) {
	// When the decision service reports a rate-limited reason during the
	// bot/shield stage the denial keeps the 429 semantics.
	ev := &stubEvaluator{bot: protect.Decision{Denied: true, Reason: protect.ReasonRateLimited}}
	h, _ := newGate(ev)

	w := doGateRequest(h, http.MethodPost, "/api/products", map[string]string{gate.WriteTokenHeader: "secret"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if msg := decodeMessage(t, w); msg != "Too Many Requests" {
		t.Errorf("expected message %q, got %q", "Too Many Requests", msg)
	}
}

func TestInteractiveToolsSkipBotStageNotRateStage(t *testing.T) {
	ev := &stubEvaluator{bot: botDenied()}
	h, reached := newGate(ev)

	w := doGateRequest(h, http.MethodPost, "/api/products", map[string]string{
		"User-Agent":          "PostmanRuntime/7.36.0",
		gate.WriteTokenHeader: "secret",
	})
	if !*reached || w.Code != http.StatusOK {
		t.Fatalf("expected interactive tool to pass the bot stage, got %d", w.Code)
	}
	if ev.botCalls != 0 {
		t.Error("bot/shield evaluated for an exempted interactive tool")
	}
	if ev.rateCalls != 1 {
		t.Errorf("rate stage must still run for interactive tools, calls=%d", ev.rateCalls)
	}
}

func TestBotShieldFailsOpen(t *testing.T) {
	ev := &stubEvaluator{botErr: errors.New("decision service down")}
	h, reached := newGate(ev)

	w := doGateRequest(h, http.MethodPost, "/api/products", map[string]string{gate.WriteTokenHeader: "secret"})
	if !*reached || w.Code != http.StatusOK {
		t.Fatalf("expected fail-open on bot/shield error, got %d", w.Code)
	}
}

func TestWriteAuthorization(t *testing.T) {
	ev := &stubEvaluator{}
	h, reached := newGate(ev)

	tests := []struct {
		name    string
		headers map[string]string
		code    int
	}{
		{"missing token", nil, http.StatusUnauthorized},
		{"wrong token", map[string]string{gate.WriteTokenHeader: "nope"}, http.StatusUnauthorized},
		{"valid token", map[string]string{gate.WriteTokenHeader: "secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*reached = false
			w := doGateRequest(h, http.MethodDelete, "/api/products/1", tt.headers)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, w.Code)
			}
			if tt.code == http.StatusUnauthorized {
				if *reached {
					t.Error("unauthorized write reached the next handler")
				}
				if msg := decodeMessage(t, w); msg != "Authentication required" {
					t.Errorf("expected message %q, got %q", "Authentication required", msg)
				}
			}
		})
	}
}

func TestUnauthenticatedWritesStillConsumeRateTokens(t *testing.T) {
	// Authorization runs last: token-less writes must drain the bucket and
	// eventually flip from 401 to 429.
	gw := protect.NewGateway(protect.NewLocalLimiter(2, 1, time.Hour), protect.NewBotShield())
	h, _ := newGate(gw)

	for i := 0; i < 2; i++ {
		w := doGateRequest(h, http.MethodPost, "/api/products", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w := doGateRequest(h, http.MethodPost, "/api/products", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the bucket drained, got %d", w.Code)
	}
}

func TestBypassTokenSkipsProtectionStages(t *testing.T) {
	ev := &stubEvaluator{rate: rateLimited(), bot: botDenied()}
	h, reached := newGate(ev, func(o *gate.Options) { o.BypassToken = "bypass-secret" })

	w := doGateRequest(h, http.MethodPost, "/api/products", map[string]string{gate.BypassHeader: "bypass-secret"})
	if !*reached || w.Code != http.StatusOK {
		t.Fatalf("expected bypass to skip every stage, got %d", w.Code)
	}
	if ev.rateCalls != 0 || ev.botCalls != 0 {
		t.Errorf("bypassed request reached the evaluators: rate=%d bot=%d", ev.rateCalls, ev.botCalls)
	}
}

func TestTrustedAddressSkipsProtectionStages(t *testing.T) {
	ev := &stubEvaluator{rate: rateLimited()}
	h, reached := newGate(ev, func(o *gate.Options) { o.TrustedAddrs = []string{"10.9.9.9"} })

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("User-Agent", browserUA)
	req.RemoteAddr = "10.9.9.9:4321"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if !*reached || w.Code != http.StatusOK {
		t.Fatalf("expected trusted address to skip the gate, got %d", w.Code)
	}
	if ev.rateCalls != 0 {
		t.Error("trusted request reached the rate evaluator")
	}
}
