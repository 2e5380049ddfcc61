package theme

import (
	"image/color"
	"sort"
	"strings"
)

// Theme defines the colours of the window shell around the canvas.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the canvas
	Foreground color.RGBA // Status line text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA // Also marks the selected tool
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA
	SwatchBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		SwatchBorder:          color.RGBA{64, 64, 64, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
	}
}

// Dark is the built-in dark theme.
func Dark() *Theme {
	return &Theme{
		Name:                  "Dark",
		Background:            color.RGBA{40, 40, 44, 255},
		Foreground:            color.RGBA{230, 230, 230, 255},
		ToolbarBackground:     color.RGBA{32, 32, 36, 255},
		ButtonBackground:      color.RGBA{60, 60, 66, 255},
		ButtonBackgroundHover: color.RGBA{80, 80, 88, 255},
		ButtonBackgroundPress: color.RGBA{100, 100, 120, 255},
		ButtonText:            color.RGBA{230, 230, 230, 255},
		ButtonBorder:          color.RGBA{120, 120, 130, 255},
		SwatchBorder:          color.RGBA{200, 200, 200, 255},
		CheckerLight:          color.RGBA{90, 90, 90, 255},
		CheckerDark:           color.RGBA{70, 70, 70, 255},
	}
}

var builtin = map[string]func() *Theme{
	"default": Default,
	"light":   Default,
	"dark":    Dark,
}

// Builtin returns the named built-in theme.
func Builtin(name string) (*Theme, bool) {
	fn, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// BuiltinNames lists the built-in theme names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
