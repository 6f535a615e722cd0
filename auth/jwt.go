package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// KeycloakConfig configures token verification.
type KeycloakConfig struct {
	// PublicKey is the realm RSA public key, PEM encoded or as the bare
	// base64 body Keycloak shows in the realm settings.
	PublicKey string

	// ClientID selects resource_access.<ClientID>.roles.
	ClientID string

	// Algorithms lists the accepted signing methods.
	// Default: RS256
	Algorithms []string
}

// JWTAuthenticator verifies Keycloak access tokens. Audience is not
// verified.
type JWTAuthenticator struct {
	config KeycloakConfig
	key    *rsa.PublicKey
	parser *jwt.Parser
}

// NewJWTAuthenticator parses the configured public key.
func NewJWTAuthenticator(config KeycloakConfig) (*JWTAuthenticator, error) {
	if len(config.Algorithms) == 0 {
		config.Algorithms = []string{"RS256"}
	}

	key, err := parsePublicKey(config.PublicKey)
	if err != nil {
		return nil, err
	}

	return &JWTAuthenticator{
		config: config,
		key:    key,
		parser: jwt.NewParser(jwt.WithValidMethods(config.Algorithms)),
	}, nil
}

func parsePublicKey(s string) (*rsa.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if !strings.HasPrefix(s, "-----BEGIN") {
		s = "-----BEGIN PUBLIC KEY-----\n" + s + "\n-----END PUBLIC KEY-----"
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return key, nil
}

// Authenticate verifies the bearer token in authorization.
func (a *JWTAuthenticator) Authenticate(_ context.Context, authorization string) (*Identity, error) {
	raw, err := BearerToken(authorization)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	_, err = a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	return a.identity(claims), nil
}

func (a *JWTAuthenticator) identity(claims jwt.MapClaims) *Identity {
	id := &Identity{
		Claims: map[string]any(claims),
	}
	id.Subject, _ = claims["sub"].(string)
	id.EmailVerified, _ = claims["email_verified"].(bool)
	id.PreferredUsername, _ = claims["preferred_username"].(string)
	id.GivenName, _ = claims["given_name"].(string)
	id.FamilyName, _ = claims["family_name"].(string)
	id.Email, _ = claims["email"].(string)

	if resourceAccess, ok := claims["resource_access"].(map[string]any); ok {
		id.Roles = append(id.Roles, rolesOf(resourceAccess[a.config.ClientID])...)
	}
	id.Roles = append(id.Roles, rolesOf(claims["realm_access"])...)

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	return id
}

// rolesOf reads the "roles" array of a realm_access or
// resource_access.<client> object.
func rolesOf(access any) []string {
	m, ok := access.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := m["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(list))
	for _, r := range list {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

var _ Authenticator = (*JWTAuthenticator)(nil)
