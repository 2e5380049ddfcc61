package surface

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/example/shineypad/internal/geometry"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultTextSize is the point size DrawText uses unless configured.
const DefaultTextSize = 16

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font
	faces    sync.Map // map[float64]font.Face
)

func faceForSize(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	if f, ok := faces.Load(size); ok {
		return f.(font.Face), nil
	}
	face, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// TextSize returns the point size used by DrawText.
func (s *Surface) TextSize() float64 { return s.textSize }

// MeasureText returns the advance width and the ascent/descent of text at the
// surface's text size.
func (s *Surface) MeasureText(text string) (width, ascent, descent int, err error) {
	face, err := faceForSize(s.textSize)
	if err != nil {
		return 0, 0, 0, err
	}
	m := face.Metrics()
	d := &font.Drawer{Face: face}
	return d.MeasureString(text).Ceil(), m.Ascent.Ceil(), m.Descent.Ceil(), nil
}

// DrawText paints text with its baseline starting at pos.
func (s *Surface) DrawText(text string, pos geometry.Point, style Style) error {
	if err := style.Validate(); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	face, err := faceForSize(s.textSize)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(style.Color),
		Face: face,
		Dot:  fixed.P(int(math.Round(pos.X)), int(math.Round(pos.Y))),
	}
	d.DrawString(text)
	return nil
}
