package gallery

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type themesFile struct {
	Themes []Theme `yaml:"themes"`
}

// LoadThemes reads a theme table from a yaml file. Callers fall back to
// DefaultThemes when the file is absent.
func LoadThemes(path string) ([]Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes file: %w", err)
	}

	var file themesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse themes file: %w", err)
	}
	if len(file.Themes) == 0 {
		return nil, fmt.Errorf("themes file %s lists no themes", path)
	}

	for _, theme := range file.Themes {
		if theme.Dir == "" {
			return nil, fmt.Errorf("theme %q has no directory", theme.Name)
		}
		if theme.Port <= 0 || theme.Port > 65535 {
			return nil, fmt.Errorf("theme %q has invalid port %d", theme.Name, theme.Port)
		}
	}
	return file.Themes, nil
}
