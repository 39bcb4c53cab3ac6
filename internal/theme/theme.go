// Package theme maps notification kinds to presentation styles for the
// terminal renderer. Themes are YAML files; users can override the bundled
// themes by dropping a file with the same name into
// ~/.config/crouton/themes/.
package theme

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultThemeName is the bundled fallback theme.
const DefaultThemeName = "default"

// Style is the presentation for one notification kind.
type Style struct {
	Color  string `yaml:"color"`  // Accent/border color, hex or ANSI
	Icon   string `yaml:"icon"`   // Glyph shown before the title
	Urgent bool   `yaml:"urgent"` // Render with emphasis
}

// Theme is a named set of per-kind styles.
type Theme struct {
	Name   string           `yaml:"name"`
	Border string           `yaml:"border"` // lipgloss border style name: "rounded", "normal", "thick"
	Kinds  map[string]Style `yaml:"kinds"`
}

// StyleFor returns the style for a kind name, falling back to the info
// style and then to a bare default.
func (t *Theme) StyleFor(kind string) Style {
	if s, ok := t.Kinds[kind]; ok {
		return s
	}
	if s, ok := t.Kinds["info"]; ok {
		return s
	}
	return Style{Color: "7", Icon: "•"}
}

// Dir returns the path to the user's themes directory.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "crouton", "themes"), nil
}

// Load resolves a theme by name: the user themes directory first, then the
// bundled themes, then the bundled default. A malformed user theme falls
// through to the bundled one with a warning rather than failing.
func Load(name string, logger *slog.Logger) *Theme {
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = DefaultThemeName
	}

	if dir, err := Dir(); err == nil {
		path := filepath.Join(dir, name+".yaml")
		if data, err := os.ReadFile(path); err == nil {
			t, err := Parse(data)
			if err != nil {
				logger.Warn("failed to parse user theme, trying bundled", "theme", name, "error", err)
			} else {
				logger.Debug("loaded user theme", "name", name, "path", path)
				return t
			}
		}
	}

	if data, ok := embeddedTheme(name); ok {
		t, err := Parse(data)
		if err == nil {
			logger.Debug("loaded bundled theme", "name", name)
			return t
		}
		logger.Warn("bundled theme is malformed", "theme", name, "error", err)
	} else if name != DefaultThemeName {
		logger.Warn("theme not found, using default", "theme", name)
	}

	data, _ := embeddedTheme(DefaultThemeName)
	t, err := Parse(data)
	if err != nil {
		// The embedded default is compiled in; failing to parse it is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded default theme is malformed: %v", err))
	}
	return t
}

// Parse decodes a theme from YAML.
func Parse(data []byte) (*Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("theme has no name")
	}
	return &t, nil
}

// List returns available theme names, bundled and user, deduplicated.
func List() []string {
	seen := make(map[string]bool)
	var themes []string

	for _, name := range embeddedThemeNames() {
		if !seen[name] {
			seen[name] = true
			themes = append(themes, name)
		}
	}

	if dir, err := Dir(); err == nil {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				name := entry.Name()
				if strings.HasSuffix(name, ".yaml") {
					themeName := strings.TrimSuffix(name, ".yaml")
					if !seen[themeName] {
						seen[themeName] = true
						themes = append(themes, themeName)
					}
				}
			}
		}
	}

	return themes
}
