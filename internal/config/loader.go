package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	devFileName = ".shineypadrc"
	appDir      = "shineypad"
	fileName    = "config.rc"
)

// Loader finds and reads the config file. Lookup order: the -config path,
// then ./.shineypadrc in dev builds, then DefaultPath.
type Loader struct {
	Version      string // "dev" enables the working-directory file
	OverridePath string // the -config flag
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the first config file found, or returns defaults when there is
// none. A -config path that cannot be read is an error, not a fallback.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigPath returns the file Load reads and `config save` overwrites. The
// -config path is returned even if it does not exist yet; otherwise the first
// existing candidate wins and "" means none was found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		return l.OverridePath
	}
	for _, p := range l.candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (l *Loader) candidates() []string {
	var out []string
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			out = append(out, filepath.Join(wd, devFileName))
		}
	}
	return append(out, DefaultPath())
}

// DefaultPath is the per-user config file, under $XDG_CONFIG_HOME when set.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDir, fileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDir, fileName)
}
