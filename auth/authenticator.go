package auth

import (
	"context"
	"strings"
)

// Authenticator turns an Authorization header value into an Identity.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: failures wrap one of ErrMissingCredentials, ErrInvalidScheme,
//     ErrInvalidCredentials or ErrTokenExpired.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (*Identity, error)
}

// AuthenticatorFunc adapts a function to an Authenticator.
type AuthenticatorFunc func(ctx context.Context, authorization string) (*Identity, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, authorization string) (*Identity, error) {
	return f(ctx, authorization)
}

// BearerToken splits an Authorization header into its credentials. The
// scheme is matched case-insensitively.
func BearerToken(authorization string) (string, error) {
	scheme, credentials, _ := strings.Cut(strings.TrimSpace(authorization), " ")
	credentials = strings.TrimSpace(credentials)
	if scheme == "" || credentials == "" {
		return "", ErrMissingCredentials
	}
	if !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidScheme
	}
	return credentials, nil
}
