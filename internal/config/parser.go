package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/theme"
	"github.com/example/shineypad/internal/tools"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	// Context for parsing
	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				themeName := strings.TrimPrefix(currentSection, "theme.")
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Parse Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove quotes if present
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = theme.SetField(currentTheme, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "style":
			err = setStyleField(&cfg.Style, key, value)
		case currentSection == "history":
			err = setHistoryField(&cfg.History, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func parseInt(key, value string, min int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n < min {
		return 0, fmt.Errorf("key %s must be at least %d, got %d", key, min, n)
	}
	return n, nil
}

func setRootField(cfg *Config, key, value string) (err error) {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "width":
		cfg.Width, err = parseInt(key, value, 1)
	case "height":
		cfg.Height, err = parseInt(key, value, 1)
	case "background":
		if _, err = settings.ParseColor(value); err == nil {
			cfg.Background = value
		}
	}
	return err
}

func setStyleField(s *Style, key, value string) (err error) {
	switch strings.ToLower(key) {
	case "color", "colour":
		if _, err = settings.ParseColor(value); err == nil {
			s.Color = value
		}
	case "line_width", "width":
		s.LineWidth, err = parseInt(key, value, settings.MinLineWidth)
	case "dashed":
		s.Dashed, err = strconv.ParseBool(value)
	case "text_size":
		s.TextSize, err = strconv.ParseFloat(value, 64)
		if err == nil && s.TextSize <= 0 {
			err = fmt.Errorf("key %s must be positive", key)
		}
	}
	return err
}

func setHistoryField(h *History, key, value string) (err error) {
	switch strings.ToLower(key) {
	case "limit":
		h.Limit, err = parseInt(key, value, 0)
	case "granularity":
		var g tools.Granularity
		if g, err = tools.ParseGranularity(value); err == nil {
			h.Granularity = g.String()
		}
	}
	return err
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "alert":
		n.Alert = b
	}
	return nil
}
