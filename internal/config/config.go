package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/surface"
	"github.com/example/shineypad/internal/theme"
	"github.com/example/shineypad/internal/tools"
)

// Style holds the initial stroke style.
type Style struct {
	Color     string
	LineWidth int
	Dashed    bool
	TextSize  float64
}

// History holds undo settings.
type History struct {
	Limit       int
	Granularity string
}

// Notify holds notification settings.
type Notify struct {
	Save  bool
	Copy  bool
	Alert bool
}

// Config holds the application configuration.
type Config struct {
	Width      int
	Height     int
	Background string
	Theme      string
	SaveDir    string
	Style      Style
	History    History
	Notify     Notify
	Themes     map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // Default to empty to allow fallback to Env/Default
		Width:  surface.DefaultWidth,
		Height: surface.DefaultHeight,
		Style: Style{
			Color:     settings.HexString(settings.DefaultColor),
			LineWidth: settings.DefaultLineWidth,
			TextSize:  surface.DefaultTextSize,
		},
		History: History{Granularity: tools.GranularityTick.String()},
		Themes:  make(map[string]*theme.Theme),
	}
}

// Settings builds the stroke settings described by the [style] section.
func (c *Config) Settings() (*settings.Settings, error) {
	col := settings.DefaultColor
	if c.Style.Color != "" {
		var err error
		if col, err = settings.ParseColor(c.Style.Color); err != nil {
			return nil, err
		}
	}
	return settings.New(
		settings.WithColor(col),
		settings.WithLineWidth(c.Style.LineWidth),
		settings.WithDashed(c.Style.Dashed),
	), nil
}

// BackgroundColor returns the export background; nil means white.
func (c *Config) BackgroundColor() (color.Color, error) {
	if c.Background == "" {
		return nil, nil
	}
	return settings.ParseColor(c.Background)
}

// Granularity returns the parsed checkpoint granularity.
func (c *Config) Granularity() (tools.Granularity, error) {
	return tools.ParseGranularity(c.History.Granularity)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	fmt.Fprintf(&sb, "width = %d\n", c.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Height)
	if c.Background != "" {
		fmt.Fprintf(&sb, "background = %s\n", c.Background)
	}
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[style]\n")
	fmt.Fprintf(&sb, "color = %s\n", c.Style.Color)
	fmt.Fprintf(&sb, "line_width = %d\n", c.Style.LineWidth)
	fmt.Fprintf(&sb, "dashed = %v\n", c.Style.Dashed)
	fmt.Fprintf(&sb, "text_size = %g\n", c.Style.TextSize)
	sb.WriteString("\n")

	sb.WriteString("[history]\n")
	fmt.Fprintf(&sb, "limit = %d\n", c.History.Limit)
	fmt.Fprintf(&sb, "granularity = %s\n", c.History.Granularity)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "alert = %v\n", c.Notify.Alert)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, settings.HexString(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
