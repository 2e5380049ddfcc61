// Package settings holds the user-adjustable stroke style the tools read when
// they paint.
package settings

import (
	"image/color"

	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/surface"
)

const (
	MinLineWidth     = 1
	MaxLineWidth     = 20
	DefaultLineWidth = 2
)

// DefaultColor is the stroke colour of a fresh session.
var DefaultColor = color.RGBA{0, 0, 0, 255}

// Provider supplies the style in effect at the moment a tool paints.
type Provider interface {
	Style() surface.Style
}

// Settings is the mutable Provider used by the shells.
type Settings struct {
	color  color.RGBA
	width  int
	dashed bool
}

// Option configures Settings.
type Option func(*Settings)

func WithColor(c color.RGBA) Option { return func(s *Settings) { s.color = c } }
func WithLineWidth(w int) Option    { return func(s *Settings) { s.width = ClampWidth(w) } }
func WithDashed(d bool) Option      { return func(s *Settings) { s.dashed = d } }

// New returns settings at the defaults: black, width 2, solid.
func New(opts ...Option) *Settings {
	s := &Settings{color: DefaultColor, width: DefaultLineWidth}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Style implements Provider.
func (s *Settings) Style() surface.Style {
	return surface.Style{Color: s.color, Width: s.width, Dashed: s.dashed}
}

func (s *Settings) Color() color.RGBA { return s.color }
func (s *Settings) LineWidth() int    { return s.width }
func (s *Settings) Dashed() bool      { return s.dashed }

func (s *Settings) SetColor(c color.RGBA) {
	s.color = c
	logx.L().Debug("style color", "color", HexString(c))
}

// SetLineWidth stores w clamped to the supported range and returns the value
// actually stored.
func (s *Settings) SetLineWidth(w int) int {
	s.width = ClampWidth(w)
	logx.L().Debug("style width", "width", s.width)
	return s.width
}

func (s *Settings) SetDashed(d bool) {
	s.dashed = d
	logx.L().Debug("style dashed", "dashed", d)
}

// ClampWidth limits w to MinLineWidth..MaxLineWidth.
func ClampWidth(w int) int {
	if w < MinLineWidth {
		return MinLineWidth
	}
	if w > MaxLineWidth {
		return MaxLineWidth
	}
	return w
}
