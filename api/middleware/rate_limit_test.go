package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingLimiter struct {
	counts map[string]int64
	err    error
}

func (c *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if c.err != nil {
		return false, 0, c.err
	}
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[scope]++
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := &countingLimiter{}
	mw := RateLimit(NewRateLimitPolicy("events", time.Minute, 2), limiter, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
		req.Header.Set("X-Forwarded-For", "41.210.1.1, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusAccepted || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
	if limiter.counts["events:ip:41.210.1.1"] != 3 {
		t.Fatalf("expected ip scoped counter, got %v", limiter.counts)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	mw := RateLimit(NewRateLimitPolicy("events", time.Minute, 1), &countingLimiter{err: errors.New("redis down")}, nil)
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected request through on limiter failure, got %d", rec.Code)
	}
}

func TestRateLimitDisabledPolicy(t *testing.T) {
	limiter := &countingLimiter{}
	mw := RateLimit(NewRateLimitPolicy("events", 0, 0), limiter, nil)
	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	if len(limiter.counts) != 0 {
		t.Fatal("disabled policy should not touch the limiter")
	}
}
