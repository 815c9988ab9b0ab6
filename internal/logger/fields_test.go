package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStrings(t *testing.T) {
	t.Parallel()

	fields := Strings(
		"  backend  ", "  http://localhost:5000  ",
		"blank", "   ",
		"   ", "no key",
		"dangling",
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "backend" || fields[0].String != "http://localhost:5000" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if got := Strings(); len(got) != 0 {
		t.Fatalf("expected no fields, got %d", len(got))
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	lg := WithFields(nil, zap.String("channel", "resume"))
	if lg == nil {
		t.Fatalf("expected a no-op logger")
	}

	lg.Info("does not panic")
}

func TestWithSessionFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		want    map[string]any
	}{
		{
			name:    "released build",
			version: " v1.2.0 ",
			want:    map[string]any{FieldBackend: "http://matcher.local", FieldVersion: "v1.2.0"},
		},
		{
			name:    "development build",
			version: "unknown",
			want:    map[string]any{FieldBackend: "http://matcher.local"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, observed := observer.New(zapcore.InfoLevel)
			WithSessionFields(zap.New(core), "http://matcher.local", tt.version).Info("session started")

			entries := observed.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}

			got := entries[0].ContextMap()
			if len(got) != len(tt.want) {
				t.Fatalf("expected fields %v, got %v", tt.want, got)
			}
			for key, value := range tt.want {
				if got[key] != value {
					t.Fatalf("field %s: expected %v, got %v", key, value, got[key])
				}
			}
		})
	}
}
