package web

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/svcscaffold/auth"
	"github.com/jonwraymond/svcscaffold/health"
	"github.com/jonwraymond/svcscaffold/observe"
)

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	Commander *health.Commander

	// MetricsPath mounts MetricsHandler when both are set.
	MetricsPath    string
	MetricsHandler http.Handler

	// Authenticator enables the /api routes when set.
	Authenticator auth.Authenticator

	// Reporter receives recovered panics. Optional.
	Reporter PanicReporter

	Tracer trace.Tracer
	Logger observe.Logger
	CORS   CORSConfig
}

// NewRouter builds the root handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNoopLogger()
	}

	mux := http.NewServeMux()
	if cfg.Commander != nil {
		health.RegisterRoutes(mux, cfg.Commander)
	}
	if cfg.MetricsPath != "" && cfg.MetricsHandler != nil {
		mux.Handle("GET "+cfg.MetricsPath, cfg.MetricsHandler)
	}
	if cfg.Authenticator != nil {
		mux.Handle("GET /api/v1/whoami",
			RequireRoles(cfg.Authenticator, cfg.Tracer, cfg.Logger)(http.HandlerFunc(whoami)))
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, NewBusinessError(CategoryBusiness, http.StatusNotFound, "Not Found"))
	})

	return Chain(mux,
		CorrelationID(),
		Recovery(cfg.Logger, cfg.Reporter),
		observe.NewHTTPMiddleware(cfg.Tracer, cfg.Logger).Wrap,
		CORS(cfg.CORS),
	)
}

type whoamiResponse struct {
	Subject           string   `json:"sub"`
	EmailVerified     bool     `json:"emailVerified"`
	PreferredUsername string   `json:"preferredUsername,omitempty"`
	GivenName         string   `json:"givenName,omitempty"`
	FamilyName        string   `json:"familyName,omitempty"`
	Email             string   `json:"email,omitempty"`
	Roles             []string `json:"roles"`
}

func whoami(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	roles := id.Roles
	if roles == nil {
		roles = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(whoamiResponse{
		Subject:           id.Subject,
		EmailVerified:     id.EmailVerified,
		PreferredUsername: id.PreferredUsername,
		GivenName:         id.GivenName,
		FamilyName:        id.FamilyName,
		Email:             id.Email,
		Roles:             roles,
	})
}
