package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader handles loading themes from various sources.
type Loader struct {
	ConfigDir string
	SystemDir string
	// Extra holds themes defined inline in the config file.
	Extra map[string]*Theme
}

// NewLoader creates a new Loader with standard paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "shineypad", "themes"),
		SystemDir: "/usr/share/shineypad/themes",
	}
}

// Load attempts to load a theme by name or path.
// Order:
// 1. Themes defined in the config file.
// 2. If it's a file path that exists, load it.
// 3. Built-in themes.
// 4. Check ConfigDir.
// 5. Check SystemDir.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}

	// 1. Config file
	if t, ok := l.Extra[name]; ok {
		return t, nil
	}

	// 2. File path
	if _, err := os.Stat(name); err == nil {
		return loadFile(name)
	}

	// 3. Built-in
	if t, ok := Builtin(name); ok {
		return t, nil
	}

	// Normalize name (ensure .theme extension for lookup if missing)
	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}

	// 4. Config Dir, 5. System Dir
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, filename)
		if _, err := os.Stat(p); err == nil {
			return loadFile(p)
		}
	}

	return nil, fmt.Errorf("theme '%s' not found", name)
}

func loadFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
