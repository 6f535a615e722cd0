// Package config loads service settings from environment variables.
//
// Each section is read with its own prefix (SERVER_, LOG_, CORS_,
// TRACING_, METRICS_, HEALTHCHECK_, POSTGRES_, KAFKA_, KEYCLOAK_); the
// root section has none. Credentials may reference other variables with
// ${VAR} or secrets with secretref:<env|file>:<ref>.
//
// Load is called once at startup. The returned Config is passed by value
// to the components that need it; there is no package-level instance.
package config
