package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonwraymond/svcscaffold/auth"
	"github.com/jonwraymond/svcscaffold/health"
	"github.com/jonwraymond/svcscaffold/observe"
)

func testCommander() *health.Commander {
	liveness := health.NewCommandHandler()
	liveness.Register("self", health.CheckFunc(func(ctx context.Context) error { return nil }))

	readiness := health.NewCommandHandler()
	readiness.Register("postgres", health.CheckFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	}))

	monitor := health.NewCommandHandler()
	monitor.Register("broken", health.CommandFunc(func(ctx context.Context) health.CommandResult {
		panic("handler defect")
	}))

	return health.NewCommander(liveness, readiness, monitor, health.DefaultConfig())
}

func TestRouter(t *testing.T) {
	router := NewRouter(RouterConfig{
		Commander:   testCommander(),
		MetricsPath: "/metrics",
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
		Authenticator: fakeAuthenticator(&auth.Identity{Subject: "u1", PreferredUsername: "jdoe", Roles: []string{"user"}}, nil),
		CORS:          CORSConfig{Origins: []string{"*"}, Methods: []string{"*"}, Headers: []string{"*"}},
	})

	tests := []struct {
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{"/health/liveness", "", http.StatusOK, `"status":"Healthy"`},
		{"/health/readiness", "", http.StatusBadRequest, `"description":"connection refused"`},
		{"/health/monitor", "", http.StatusInternalServerError, `"category":"UnexpectedException"`},
		{"/metrics", "", http.StatusOK, "# metrics"},
		{"/api/v1/whoami", "Bearer t", http.StatusOK, `"preferredUsername":"jdoe"`},
		{"/api/v1/whoami", "", http.StatusForbidden, `"detail":"Not authenticated"`},
		{"/nope", "", http.StatusNotFound, `"status":"404"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
			if rec.Header().Get(CorrelationIDHeader) == "" {
				t.Error("missing correlation id header")
			}
		})
	}
}

func TestRouter_PanicLogCarriesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	router := NewRouter(RouterConfig{
		Commander: testCommander(),
		Logger:    observe.NewLoggerWithWriter("ERROR", observe.FormatJSON, &buf),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/monitor", nil))

	id := rec.Header().Get(CorrelationIDHeader)
	if id == "" {
		t.Fatal("missing correlation id header")
	}
	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["message"] == "unhandled panic" {
			found = true
			if entry["x_correlation_id"] != id {
				t.Errorf("x_correlation_id = %v, want %s", entry["x_correlation_id"], id)
			}
		}
	}
	if !found {
		t.Errorf("no panic log line in %s", buf.String())
	}
}

type correlationReporter struct{ id string }

func (r *correlationReporter) CapturePanic(ctx context.Context, _ *http.Request, _ any) {
	r.id = observe.CorrelationID(ctx)
}

func TestRouter_ReporterSeesCorrelationID(t *testing.T) {
	reporter := &correlationReporter{}
	router := NewRouter(RouterConfig{Commander: testCommander(), Reporter: reporter})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/monitor", nil))

	if id := rec.Header().Get(CorrelationIDHeader); id == "" || reporter.id != id {
		t.Errorf("reported id = %q, header = %q", reporter.id, id)
	}
}

func TestRouter_WithoutOptionalRoutes(t *testing.T) {
	router := NewRouter(RouterConfig{Commander: testCommander()})

	for _, path := range []string{"/metrics", "/api/v1/whoami"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s code = %d, want 404", path, rec.Code)
		}
	}
}

func TestWhoami_EmptyRoles(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{Subject: "u1"}))
	rec := httptest.NewRecorder()
	whoami(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if roles, ok := body["roles"].([]any); !ok || len(roles) != 0 {
		t.Errorf("roles = %v, want []", body["roles"])
	}
}
