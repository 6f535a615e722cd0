package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct{}

// NewEnvProvider returns the "env" provider.
func NewEnvProvider() *EnvProvider { return &EnvProvider{} }

// Name returns "env".
func (*EnvProvider) Name() string { return "env" }

// Resolve returns the value of the variable named ref.
func (*EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, ref)
	}
	return v, nil
}

// FileProvider resolves a reference as a file below a base directory.
// Trailing newlines are trimmed.
type FileProvider struct {
	dir string
}

// NewFileProvider returns the "file" provider rooted at dir. An empty
// dir accepts absolute paths only.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Name returns "file".
func (*FileProvider) Name() string { return "file" }

// Resolve reads the secret file named by ref.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := p.path(ref)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, ref)
		}
		return "", fmt.Errorf("secret: read %s: %w", ref, err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func (p *FileProvider) path(ref string) (string, error) {
	if p.dir == "" {
		if !filepath.IsAbs(ref) {
			return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidRef, ref)
		}
		return filepath.Clean(ref), nil
	}
	if filepath.IsAbs(ref) || !filepath.IsLocal(ref) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidRef, ref, p.dir)
	}
	return filepath.Join(p.dir, ref), nil
}
