// Package secret resolves credentials referenced from configuration.
//
// A configuration value may contain:
//   - `${VAR}` references, expanded from the environment; a missing
//     variable is an error (see ExpandEnvStrict)
//   - `secretref:<provider>:<ref>` references, resolved by a registered
//     Provider either as the whole value or inline
//
// Two providers are built in: EnvProvider ("env") reads a variable and
// FileProvider ("file") reads a mounted secret file such as a Kubernetes
// secret volume or a Docker secret.
//
//	r := secret.NewResolver(true, secret.NewEnvProvider(), secret.NewFileProvider("/run/secrets"))
//	password, err := r.ResolveValue(ctx, "secretref:file:postgres-password")
package secret
