package settings

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var (
	paletteMu sync.RWMutex
	palette   = []PaletteColor{
		{"Black", color.RGBA{0, 0, 0, 255}},
		{"White", color.RGBA{255, 255, 255, 255}},
		{"Red", color.RGBA{255, 0, 0, 255}},
		{"Lime", color.RGBA{0, 255, 0, 255}},
		{"Blue", color.RGBA{0, 0, 255, 255}},
		{"Yellow", color.RGBA{255, 255, 0, 255}},
		{"Cyan", color.RGBA{0, 255, 255, 255}},
		{"Magenta", color.RGBA{255, 0, 255, 255}},
		{"Maroon", color.RGBA{128, 0, 0, 255}},
		{"Green", color.RGBA{0, 128, 0, 255}},
		{"Navy", color.RGBA{0, 0, 128, 255}},
		{"Olive", color.RGBA{128, 128, 0, 255}},
		{"Teal", color.RGBA{0, 128, 128, 255}},
		{"Purple", color.RGBA{128, 0, 128, 255}},
		{"Silver", color.RGBA{192, 192, 192, 255}},
		{"Gray", color.RGBA{128, 128, 128, 255}},
	}

	widthsMu sync.RWMutex
	widths   = []int{1, 2, 4, 6, 8, 12, 20}
)

// Palette returns the named swatches offered by the shells.
func Palette() []PaletteColor {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// EnsurePaletteColor makes sure col is present in the palette and returns its index.
func EnsurePaletteColor(col color.RGBA, name string) int {
	paletteMu.Lock()
	defer paletteMu.Unlock()
	for idx, existing := range palette {
		if existing.Color == col {
			if name != "" && existing.Name == "" {
				palette[idx].Name = name
			}
			return idx
		}
	}
	palette = append(palette, PaletteColor{Name: name, Color: col})
	return len(palette) - 1
}

// WidthOptions returns a copy of the preset stroke widths.
func WidthOptions() []int {
	widthsMu.RLock()
	defer widthsMu.RUnlock()
	out := make([]int, len(widths))
	copy(out, widths)
	return out
}

// EnsureWidth adds width, clamped, to the presets and returns its index.
func EnsureWidth(width int) int {
	width = ClampWidth(width)
	widthsMu.Lock()
	defer widthsMu.Unlock()
	idx := sort.SearchInts(widths, width)
	if idx < len(widths) && widths[idx] == width {
		return idx
	}
	widths = append(widths, 0)
	copy(widths[idx+1:], widths[idx:])
	widths[idx] = width
	return idx
}

// ParseColor accepts a CSS colour name, a palette name or #RRGGBB[AA].
func ParseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	for _, entry := range Palette() {
		if strings.EqualFold(entry.Name, spec) {
			return entry.Color, nil
		}
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		var ch [4]uint8
		ch[3] = 255
		for i := 0; i < (len(spec)-1)/2; i++ {
			v, err := strconv.ParseUint(spec[1+2*i:3+2*i], 16, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid color %q", s)
			}
			ch[i] = uint8(v)
		}
		return color.RGBA{ch[0], ch[1], ch[2], ch[3]}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

// HexString formats c as #RRGGBB, appending alpha when it is not opaque.
func HexString(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
