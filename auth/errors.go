package auth

import "errors"

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: not authenticated")
	ErrInvalidScheme      = errors.New("auth: invalid authentication credentials")
	ErrInvalidCredentials = errors.New("auth: invalid token")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrInvalidKey         = errors.New("auth: invalid public key")

	// Authorization errors
	ErrForbidden = errors.New("auth: not enough permissions")
)
