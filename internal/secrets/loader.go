package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned by Load when a required secret has no source.
var ErrNotConfigured = errors.New("not configured")

// Source describes where a secret comes from.
type Source struct {
	// Name is used in error messages.
	Name string
	// Value is an inline secret, usually from the environment.
	Value string
	// File holds the secret. It takes precedence over Value.
	File string
	// Optional makes Load return an empty secret instead of ErrNotConfigured
	// when neither File nor Value is set.
	Optional bool
}

// Load resolves the secret described by src. The result is trimmed. A file
// that is set but blank is always an error, even for optional secrets.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" && !src.Optional {
		return "", fmt.Errorf("%s is %w", name, ErrNotConfigured)
	}

	return secret, nil
}
