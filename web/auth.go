package web

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/svcscaffold/auth"
	"github.com/jonwraymond/svcscaffold/observe"
)

// RequireRoles admits requests whose bearer token verifies and carries
// every role in roles. Missing or non-bearer credentials and missing
// roles answer 403; invalid or expired tokens answer 401.
func RequireRoles(authn auth.Authenticator, tracer trace.Tracer, logger observe.Logger, roles ...string) Middleware {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "RequireRoles")
			defer span.End()

			id, err := authn.Authenticate(ctx, r.Header.Get("Authorization"))
			if err == nil {
				err = auth.Authorize(id, roles...)
			}
			if err != nil {
				code, detail := securityStatus(err)
				span.RecordError(err)
				logger.Info(ctx, "request rejected",
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "status", Value: code},
					observe.Field{Key: "reason", Value: err.Error()},
				)
				WriteError(w, code, NewBusinessError(CategorySecurity, code, detail))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, id)))
		})
	}
}

func securityStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusForbidden, "Not authenticated"
	case errors.Is(err, auth.ErrInvalidScheme):
		return http.StatusForbidden, "Invalid authentication credentials"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "Not enough permissions"
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "Signature has expired."
	default:
		return http.StatusUnauthorized, err.Error()
	}
}
