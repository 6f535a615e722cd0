package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("SECRET_TEST_HOST", "db.internal")

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"postgres://${SECRET_TEST_HOST}:5432", "postgres://db.internal:5432", nil},
		{"$SECRET_TEST_HOST", "db.internal", nil},
		{"price $$5", "price $5", nil},
		{"${SECRET_TEST_MISSING_B}${SECRET_TEST_MISSING_A}", "", ErrMissingEnv},
		{"plain", "plain", nil},
	}
	for _, tt := range tests {
		got, err := ExpandEnvStrict(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExpandEnvStrict(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ExpandEnvStrict(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestExpandEnvStrict_ListsMissingSorted(t *testing.T) {
	_, err := ExpandEnvStrict("${SECRET_TEST_ZZ}${SECRET_TEST_AA}${SECRET_TEST_ZZ}")
	want := "secret: missing required environment variables: SECRET_TEST_AA, SECRET_TEST_ZZ"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in            string
		provider, ref string
		ok            bool
	}{
		{"secretref:env:PG_PASSWORD", "env", "PG_PASSWORD", true},
		{"secretref:file:a:b", "file", "a:b", true},
		{"secretref:env:", "", "", false},
		{"secretref::x", "", "", false},
		{"env:PG_PASSWORD", "", "", false},
	}
	for _, tt := range tests {
		p, r, ok := ParseSecretRef(tt.in)
		if p != tt.provider || r != tt.ref || ok != tt.ok {
			t.Errorf("ParseSecretRef(%q) = %q, %q, %v", tt.in, p, r, ok)
		}
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pg-password"), []byte("s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SECRET_TEST_TOKEN", "tok")
	t.Setenv("SECRET_TEST_FILE", "pg-password")

	r := NewResolver(true, NewEnvProvider(), NewFileProvider(dir))
	ctx := context.Background()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"plain value", "postgres", "postgres", nil},
		{"env provider", "secretref:env:SECRET_TEST_TOKEN", "tok", nil},
		{"file provider", "secretref:file:pg-password", "s3cret", nil},
		{"expanded ref", "secretref:file:${SECRET_TEST_FILE}", "s3cret", nil},
		{"inline", "Bearer secretref:env:SECRET_TEST_TOKEN", "Bearer tok", nil},
		{"two inline refs", "secretref:env:SECRET_TEST_TOKEN and secretref:file:pg-password", "tok and s3cret", nil},
		{"unknown provider", "secretref:vault:x", "", ErrUnknownProvider},
		{"missing env", "secretref:env:SECRET_TEST_NOPE", "", ErrNotFound},
		{"missing file", "secretref:file:nope", "", ErrNotFound},
		{"escaping file", "secretref:file:../etc/passwd", "", ErrInvalidRef},
		{"strict empty", "secretref:file:empty", "", ErrEmptyValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveValue(ctx, tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveValue(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveValue(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ResolveValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolver_ResolveMap(t *testing.T) {
	t.Setenv("SECRET_TEST_URL", "http://billing:8080/health")
	r := NewResolver(false, NewEnvProvider())

	got, err := r.ResolveMap(context.Background(), map[string]string{
		"billing": "secretref:env:SECRET_TEST_URL",
		"static":  "http://static/health",
	})
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	if got["billing"] != "http://billing:8080/health" || got["static"] != "http://static/health" {
		t.Errorf("ResolveMap() = %v", got)
	}

	if out, err := r.ResolveMap(context.Background(), nil); out != nil || err != nil {
		t.Errorf("ResolveMap(nil) = %v, %v", out, err)
	}
}

func TestFileProvider_AbsoluteOnlyWithoutDir(t *testing.T) {
	p := NewFileProvider("")
	if _, err := p.Resolve(context.Background(), "relative"); !errors.Is(err, ErrInvalidRef) {
		t.Errorf("error = %v, want ErrInvalidRef", err)
	}

	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("v"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got, err := p.Resolve(context.Background(), path); err != nil || got != "v" {
		t.Errorf("Resolve(abs) = %q, %v", got, err)
	}
}
