package protect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestGatewayEvaluateRate(t *testing.T) {
	gw := NewGateway(NewLocalLimiter(1, 1, time.Second), NewBotShield())

	r := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	r.RemoteAddr = "10.0.0.9:1000"

	dec, err := gw.EvaluateRate(context.Background(), r)
	if err != nil || dec.Denied {
		t.Fatalf("expected first request allowed, got dec=%+v err=%v", dec, err)
	}

	dec, err = gw.EvaluateRate(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Denied || dec.Reason != ReasonRateLimited || dec.Status != http.StatusTooManyRequests {
		t.Fatalf("expected rate-limited denial, got %+v", dec)
	}
}

func TestGatewayRateErrorPropagates(t *testing.T) {
	// Limiter faults surface as errors so the gate can fail open; they are
	// never converted into denials.
	gw := NewGateway(failingLimiter{}, NewBotShield())

	r := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	dec, err := gw.EvaluateRate(context.Background(), r)
	if err == nil {
		t.Fatal("expected an error from the failing limiter")
	}
	if dec.Denied {
		t.Fatalf("expected the zero decision alongside the error, got %+v", dec)
	}
}
