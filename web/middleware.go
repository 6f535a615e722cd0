package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/jonwraymond/svcscaffold/observe"
)

// CorrelationIDHeader carries the request correlation id.
const CorrelationIDHeader = "X-Correlation-ID"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CorrelationID attaches a fresh correlation id to each request context
// and echoes it in the response header.
func CorrelationID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set(CorrelationIDHeader, id)
			next.ServeHTTP(w, r.WithContext(observe.WithCorrelationID(r.Context(), id)))
		})
	}
}

// PanicReporter forwards recovered panics to an error tracker.
type PanicReporter interface {
	CapturePanic(ctx context.Context, r *http.Request, value any)
}

// Recovery turns a panic into a 500 UnexpectedException response and
// hands it to reporter when one is set.
func Recovery(logger observe.Logger, reporter PanicReporter) Middleware {
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.Error(r.Context(), "unhandled panic",
					observe.Field{Key: "method", Value: r.Method},
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "panic", Value: p},
				)
				if reporter != nil {
					reporter.CapturePanic(r.Context(), r, p)
				}
				WriteError(w, http.StatusInternalServerError, UnexpectedError(p))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORSConfig lists the allowed origins, methods and headers.
type CORSConfig struct {
	Origins []string
	Methods []string
	Headers []string
}

// CORS applies cross-origin rules with credentials allowed.
func CORS(cfg CORSConfig) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Origins,
		AllowedMethods:   cfg.Methods,
		AllowedHeaders:   cfg.Headers,
		AllowCredentials: true,
	})
	return c.Handler
}
