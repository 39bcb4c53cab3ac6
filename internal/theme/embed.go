package theme

import (
	"embed"
	"path"
	"strings"
)

//go:embed themes/*.yaml
var bundled embed.FS

// embeddedTheme returns the raw YAML for a bundled theme name.
func embeddedTheme(name string) ([]byte, bool) {
	data, err := bundled.ReadFile(path.Join("themes", name+".yaml"))
	if err != nil {
		return nil, false
	}
	return data, true
}

// embeddedThemeNames lists the bundled theme names.
func embeddedThemeNames() []string {
	entries, err := bundled.ReadDir("themes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	return names
}
