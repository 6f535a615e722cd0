package auth

import (
	"slices"
	"time"
)

// Identity is the user described by a verified token.
type Identity struct {
	Subject           string
	EmailVerified     bool
	PreferredUsername string
	GivenName         string
	FamilyName        string
	Email             string

	// Roles holds client roles followed by realm roles.
	Roles []string

	// Claims contains the raw token claims.
	Claims map[string]any

	ExpiresAt time.Time
	IssuedAt  time.Time
}

// HasRole reports whether the identity carries role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// HasAllRoles reports whether every role in roles is carried.
func (id *Identity) HasAllRoles(roles ...string) bool {
	for _, r := range roles {
		if !id.HasRole(r) {
			return false
		}
	}
	return true
}
