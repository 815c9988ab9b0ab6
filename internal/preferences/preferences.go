package preferences

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Theme is the persisted color scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	themeKey = "theme"
	fileName = "preferences.yaml"
	appDir   = "resume-matcher"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	default:
		return "", fmt.Errorf("unknown theme %q (expected %s or %s)", s, Light, Dark)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// DefaultPath is the preferences file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Store keeps the theme preference. The file is read once when the store is
// opened and written on every change.
type Store struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	v     *viper.Viper
	theme Theme
}

// Open loads the preference file at path. A missing or unreadable file yields
// the light theme.
func Open(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(themeKey, string(Light))

	s := &Store{path: path, logger: logger, v: v, theme: Light}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("reading preferences, using defaults", zap.String("path", path), zap.Error(err))
		}
		return s
	}

	theme, err := ParseTheme(v.GetString(themeKey))
	if err != nil {
		logger.Warn("ignoring stored theme", zap.String("path", path), zap.Error(err))
		return s
	}
	s.theme = theme

	return s
}

func (s *Store) Path() string { return s.path }

func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme stores theme and writes the file.
func (s *Store) SetTheme(theme Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	s.v.Set(themeKey, string(theme))
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}

	s.theme = theme
	s.logger.Debug("theme saved", zap.String("theme", string(theme)), zap.String("path", s.path))

	return nil
}

// Toggle switches between light and dark and writes the result.
func (s *Store) Toggle() (Theme, error) {
	next := s.Theme().Toggle()
	if err := s.SetTheme(next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}
