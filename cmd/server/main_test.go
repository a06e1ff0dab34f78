package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/infrastructure/config"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_URL", "")
	t.Setenv("GENERATOR_URL", "")
	t.Setenv("AUTH_ENABLED", "false")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListenAddr(t *testing.T) {
	if got := listenAddr(""); got != ":8080" {
		t.Fatalf("expected default :8080, got %s", got)
	}
	if got := listenAddr("9090"); got != ":9090" {
		t.Fatalf("expected :9090, got %s", got)
	}
}

func TestBuildStorageUnknownDriver(t *testing.T) {
	cfg := &config.Config{StoreDriver: "sqlite"}
	if _, err := buildStorage(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestBuildCacheLayerWithoutRedis(t *testing.T) {
	layer, err := buildCacheLayer(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if layer.cache != nil || layer.idempotency != nil || layer.payments != nil || layer.check != nil {
		t.Fatalf("expected empty layer, got %+v", layer)
	}
}

func TestBuildCacheLayerUnreachableRedis(t *testing.T) {
	_, err := buildCacheLayer(context.Background(), &config.Config{RedisURL: "redis://127.0.0.1:1"})
	if err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestAppServesMemoryStore(t *testing.T) {
	a := newTestApp(t, memoryConfig(t))

	if rec := do(t, a.handler, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := do(t, a.handler, http.MethodGet, "/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}

	rec := do(t, a.handler, http.MethodPost, "/api/v1/accounts", `{"id":7,"name":"ops","role":"admin","initial_balance":500}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, a.handler, http.MethodGet, "/api/v1/accounts/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get account: expected 200, got %d", rec.Code)
	}
	var account dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if account.Balance != 500 || account.Role != "admin" {
		t.Fatalf("unexpected account %+v", account)
	}

	rec = do(t, a.handler, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") && !strings.Contains(rec.Body.String(), "creditledger_") {
		t.Fatalf("metrics body missing collectors")
	}
}

func TestAppWithoutGeneratorHasNoGenerateRoute(t *testing.T) {
	a := newTestApp(t, memoryConfig(t))

	rec := do(t, a.handler, http.MethodPost, "/api/v1/proposals/p-1/generate", `{"prompt":"hi","account_id":1}`)
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected generate route to be absent, got %d", rec.Code)
	}
}

func TestAppWithRedisReadiness(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := memoryConfig(t)
	cfg.RedisURL = "redis://" + s.Addr()

	a := newTestApp(t, cfg)

	rec := do(t, a.handler, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
	var status map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode readiness: %v", err)
	}
	if status["redis"] != "ok" {
		t.Fatalf("expected redis check in readiness, got %v", status)
	}

	s.Close()
	if rec := do(t, a.handler, http.MethodGet, "/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready after redis loss: expected 503, got %d", rec.Code)
	}
}

func TestCleanupLimitersStopsOnCancel(t *testing.T) {
	a := newTestApp(t, memoryConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanupLimiters(ctx, a.limiter, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("cleanup loop did not stop")
	}
}
