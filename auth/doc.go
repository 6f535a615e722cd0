// Package auth validates Keycloak-issued bearer tokens and checks roles.
//
// A JWTAuthenticator verifies the token signature against the realm
// public key and builds an Identity whose roles are the union of the
// client roles (resource_access.<client>.roles) and the realm roles
// (realm_access.roles). Authorize then requires every listed role.
package auth
