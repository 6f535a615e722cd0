package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/svcscaffold/auth"
	"github.com/jonwraymond/svcscaffold/config"
	"github.com/jonwraymond/svcscaffold/health"
)

// loadConfig loads a configuration backed by an on-disk SQLite database.
func loadConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	t.Setenv("PROJECT_NAME", "orders")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("POSTGRES_DRIVER", "sqlite")
	t.Setenv("POSTGRES_DB", filepath.Join(t.TempDir(), "app.db"))
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load(context.Background())
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func newApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: decode %q: %v", path, rec.Body.String(), err)
	}
	return rec.Code, body
}

func entryNames(body map[string]any) []string {
	entries, _ := body["entries"].(map[string]any)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	return names
}

func TestNew_ProbesPerView(t *testing.T) {
	billing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer billing.Close()

	cfg := loadConfig(t, map[string]string{
		"HEALTHCHECK_HTTP_TARGETS": "billing:" + billing.URL,
	})
	a := newApp(t, cfg)

	tests := []struct {
		view health.View
		want []string
	}{
		{health.ViewLiveness, []string{ServiceMemory}},
		{health.ViewReadiness, []string{ServiceMemory, ServicePostgres}},
		{health.ViewMonitor, []string{ServiceMemory, ServicePostgres, "billing"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			result, err := a.Commander.Run(context.Background(), tt.view)
			if err != nil {
				t.Fatal(err)
			}
			if len(result.Entries) != len(tt.want) {
				t.Fatalf("entries = %+v, want %v", result.Entries, tt.want)
			}
			for i, name := range tt.want {
				if result.Entries[i].Name != name {
					t.Errorf("entry %d = %q, want %q", i, result.Entries[i].Name, name)
				}
			}
			if result.Status != health.StatusHealthy {
				t.Errorf("status = %s, want Healthy: %+v", result.Status, result.Entries)
			}
		})
	}
}

func TestNew_MonitorFailsOnDownstream(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	cfg := loadConfig(t, map[string]string{
		"HEALTHCHECK_HTTP_TARGETS": "billing:" + down.URL,
		"HEALTHCHECK_PARALLEL":     "true",
	})
	a := newApp(t, cfg)

	code, body := get(t, a.Handler, "/health/readiness")
	if code != http.StatusOK || body["status"] != "Healthy" {
		t.Errorf("readiness = %d %v", code, body)
	}

	code, body = get(t, a.Handler, "/health/monitor")
	if code != http.StatusBadRequest || body["status"] != "Unhealthy" {
		t.Errorf("monitor = %d %v", code, body)
	}
	billing := body["entries"].(map[string]any)["billing"].(map[string]any)
	if billing["exception"] != "*probes.StatusError" {
		t.Errorf("billing exception = %v", billing["exception"])
	}
	if len(entryNames(body)) != 3 {
		t.Errorf("entries = %v", entryNames(body))
	}
}

func TestNew_ReadinessFailsAfterDatabaseCloses(t *testing.T) {
	a := newApp(t, loadConfig(t, nil))
	if err := a.DB.Close(); err != nil {
		t.Fatal(err)
	}

	code, body := get(t, a.Handler, "/health/readiness")
	if code != http.StatusBadRequest {
		t.Errorf("readiness code = %d, want 400", code)
	}
	pg := body["entries"].(map[string]any)[ServicePostgres].(map[string]any)
	if pg["status"] != "Unhealthy" {
		t.Errorf("postgres = %v", pg)
	}
}

func TestNew_WithoutStorage(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"POSTGRES_ENABLED": "false"})
	a := newApp(t, cfg)

	if a.DB != nil {
		t.Error("DB should be nil when postgres is disabled")
	}
	result := a.Commander.RunReadiness(context.Background())
	if len(result.Entries) != 1 || result.Entries[0].Name != ServiceMemory {
		t.Errorf("readiness entries = %+v", result.Entries)
	}
}

func TestNew_InvalidKeycloakKey(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"KEYCLOAK_PUBLIC_KEY": "not-a-key"})

	a, err := New(context.Background(), cfg)
	if !errors.Is(err, auth.ErrInvalidKey) {
		t.Fatalf("New() error = %v, want ErrInvalidKey", err)
	}
	if a != nil {
		t.Error("New() should return a nil App on failure")
	}
}

func TestNew_StorageUnavailable(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"POSTGRES_DRIVER":           "pgx",
		"POSTGRES_HOST":             "127.0.0.1",
		"POSTGRES_PORT":             "1",
		"POSTGRES_CONNECT_ATTEMPTS": "1",
	})

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New() error = nil, want storage failure")
	}
}

func TestRun_StopsWithContext(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"SERVER_ADDR": "127.0.0.1:0"})
	a := newApp(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := a.DB.PingContext(context.Background()); err == nil {
		t.Error("database should be closed after Run")
	}
}

func TestRun_ListenFailureClosesApp(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"SERVER_ADDR": "127.0.0.1:bad"})
	a := newApp(t, cfg)

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want listen failure")
	}
	if err := a.DB.PingContext(context.Background()); err == nil {
		t.Error("database should be closed after a failed Run")
	}
}

func TestNew_SentryReporter(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"SENTRY_DSN": "https://public@127.0.0.1:1/1"})
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Reporter == nil {
		t.Fatal("Reporter should be set when SENTRY_DSN is set")
	}
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNew_WithoutSentry(t *testing.T) {
	a := newApp(t, loadConfig(t, nil))
	if a.Reporter != nil {
		t.Error("Reporter should be nil without SENTRY_DSN")
	}
}

func TestConsume_KafkaDisabled(t *testing.T) {
	a := newApp(t, loadConfig(t, nil))

	if err := a.Consume(context.Background()); !errors.Is(err, ErrKafkaDisabled) {
		t.Fatalf("Consume() error = %v, want ErrKafkaDisabled", err)
	}
	if err := a.DB.PingContext(context.Background()); err == nil {
		t.Error("database should be closed after Consume")
	}
}

func TestConsume_StopsWithContext(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"KAFKA_ENABLED":           "true",
		"KAFKA_BOOTSTRAP_SERVERS": "127.0.0.1:1",
	})
	a := newApp(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := a.Consume(ctx); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if err := a.DB.PingContext(context.Background()); err == nil {
		t.Error("database should be closed after Consume")
	}
}
