package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tokenFile := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}

	blankFile := filepath.Join(dir, "blank")
	if err := os.WriteFile(blankFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("writing blank file: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr bool
	}{
		{name: "file wins over value", src: Source{File: tokenFile, Value: "inline"}, want: "from-file"},
		{name: "inline value", src: Source{Value: " inline "}, want: "inline"},
		{name: "optional and missing", src: Source{Optional: true}, want: ""},
		{name: "required and missing", src: Source{Name: "backend token"}, wantErr: true},
		{name: "blank file", src: Source{File: blankFile, Optional: true}, wantErr: true},
		{name: "missing file", src: Source{File: filepath.Join(dir, "nope"), Optional: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "backend token"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err.Error() != "backend token is not configured" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
