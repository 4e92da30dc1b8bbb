package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Bookverse-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	cases := []struct {
		name string
		deps map[string]Pinger
		want int
	}{
		{name: "all healthy", deps: map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}, want: http.StatusOK},
		{name: "redis down", deps: map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp")}}, want: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			HealthReady(cfg, nil, tc.deps).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}
