package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

// Resolver resolves `${VAR}` and secretref references in configuration
// values. Strict resolvers reject empty secrets.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver over providers.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider, len(providers)),
		strict:    strict,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds provider, replacing any provider with the same name.
func (r *Resolver) Register(provider Provider) {
	if provider == nil {
		return
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue expands environment references in value, then resolves
// secretref references either as the whole value or inline.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if !strings.Contains(expanded, refPrefix) {
		return expanded, nil
	}
	if providerName, ref, ok := ParseSecretRef(expanded); ok && !strings.ContainsAny(ref, " \t") {
		return r.resolve(ctx, providerName, ref)
	}
	return r.resolveInline(ctx, expanded)
}

// ResolveMap resolves every value of input.
func (r *Resolver) ResolveMap(ctx context.Context, input map[string]string) (map[string]string, error) {
	if input == nil {
		return nil, nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// ParseSecretRef splits a whole-value reference of the form
// secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolve(ctx context.Context, providerName, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}
	v, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptyValue, providerName, ref)
	}
	return v, nil
}

var inlineRefPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

func (r *Resolver) resolveInline(ctx context.Context, value string) (string, error) {
	matches := inlineRefPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, value)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		resolved, err := r.resolve(ctx, value[m[2]:m[3]], value[m[4]:m[5]])
		if err != nil {
			return "", err
		}
		b.WriteString(value[last:m[0]])
		b.WriteString(resolved)
		last = m[1]
	}
	b.WriteString(value[last:])
	return b.String(), nil
}
