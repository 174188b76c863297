package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "dsn")
	if err := os.WriteFile(keyFile, []byte("  postgres://from-file \n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	t.Setenv("TEST_SECRET_DSN", " postgres://from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file wins", src: Source{Name: "dsn", File: keyFile, Env: "TEST_SECRET_DSN", Value: "inline"}, want: "postgres://from-file"},
		{name: "env before value", src: Source{Name: "dsn", Env: "TEST_SECRET_DSN", Value: "inline"}, want: "postgres://from-env"},
		{name: "unset env falls back to value", src: Source{Name: "dsn", Env: "TEST_SECRET_UNSET", Value: " inline "}, want: "inline"},
		{name: "empty file", src: Source{Name: "dsn", File: emptyFile, Value: "inline"}, wantErr: "is empty"},
		{name: "missing file", src: Source{Name: "dsn", File: filepath.Join(dir, "nope")}, wantErr: "reading dsn from file"},
		{name: "nothing configured", src: Source{}, wantErr: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Load() = %q, want %q", got, tt.want)
			}
		})
	}
}
