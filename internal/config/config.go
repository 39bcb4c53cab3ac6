// Package config loads and validates the crouton configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that unmarshals from human-readable strings
// like "5s" or "1m30s", or from integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m30s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the crouton configuration, loaded from
// ~/.config/crouton/crouton.toml.
type Config struct {
	Display   DisplayConfig   `toml:"display"`
	Durations DurationsConfig `toml:"durations"`
	Audio     AudioConfig     `toml:"audio"`
	Theme     ThemeConfig     `toml:"theme"`
}

// DisplayConfig contains stacking and sizing settings.
type DisplayConfig struct {
	Anchor   string `toml:"anchor"`   // "top-right", "top-left", "bottom-right", "bottom-left"
	Capacity int    `toml:"capacity"` // Maximum simultaneously visible notifications per user
	Gap      int    `toml:"gap"`      // Spacing between stacked notifications
	Width    int    `toml:"width"`    // Card width in render units
}

// DurationsConfig contains auto-dismiss timing settings. A default of "0"
// means notifications stay until dismissed.
type DurationsConfig struct {
	Default Duration `toml:"default"` // Applied when the caller gives no duration
	Min     Duration `toml:"min"`     // Lower clamp bound for nonzero durations
	Max     Duration `toml:"max"`     // Upper clamp bound
	Exit    Duration `toml:"exit"`    // Exit animation length
}

// AudioConfig contains sound playback settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-kind sound file paths.
type SoundConfig struct {
	Success string `toml:"success"`
	Info    string `toml:"info"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name string `toml:"name"` // Theme name without .yaml extension
}

var validAnchors = map[string]bool{
	"top-right":    true,
	"top-left":     true,
	"bottom-right": true,
	"bottom-left":  true,
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Anchor:   "top-right",
			Capacity: 3,
			Gap:      8,
			Width:    48,
		},
		Durations: DurationsConfig{
			Default: Duration(5 * time.Second),
			Min:     Duration(3 * time.Second),
			Max:     Duration(20 * time.Second),
			Exit:    Duration(150 * time.Millisecond),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
			Sounds:  SoundConfig{},
		},
		Theme: ThemeConfig{
			Name: "default",
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "crouton", "crouton.toml"), nil
}

// Load reads the configuration from the given path. An empty path uses the
// default location; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents.
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration atomically via a temp file.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !validAnchors[c.Display.Anchor] {
		return fmt.Errorf("invalid anchor %q", c.Display.Anchor)
	}
	if c.Display.Capacity < 1 || c.Display.Capacity > 20 {
		return fmt.Errorf("capacity must be between 1 and 20, got %d", c.Display.Capacity)
	}
	if c.Display.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %d", c.Display.Gap)
	}
	if c.Display.Width < 20 || c.Display.Width > 200 {
		return fmt.Errorf("width must be between 20 and 200, got %d", c.Display.Width)
	}
	if c.Durations.Min.Duration() <= 0 {
		return fmt.Errorf("minimum duration must be positive, got %s", c.Durations.Min.Duration())
	}
	if c.Durations.Max.Duration() < c.Durations.Min.Duration() {
		return fmt.Errorf("maximum duration %s is below minimum %s",
			c.Durations.Max.Duration(), c.Durations.Min.Duration())
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}
	return nil
}

// SoundForKind returns the configured sound file path for a kind name.
func (c *Config) SoundForKind(kind string) string {
	switch kind {
	case "success":
		return c.Audio.Sounds.Success
	case "warning":
		return c.Audio.Sounds.Warning
	case "error":
		return c.Audio.Sounds.Error
	default:
		return c.Audio.Sounds.Info
	}
}
