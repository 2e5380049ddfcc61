package surface

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/example/shineypad/internal/geometry"
)

// DashPattern alternates painted and skipped lengths, in pixels, for dashed
// strokes.
var DashPattern = [2]float64{10, 10}

// Style describes how a stroke is painted.
type Style struct {
	Color  color.RGBA
	Width  int
	Dashed bool
}

// Validate reports whether the style can be painted.
func (st Style) Validate() error {
	if st.Width < 1 {
		return fmt.Errorf("width %d: %w", st.Width, ErrInvalidStyle)
	}
	return nil
}

// pen paints connected segments, carrying the dash phase from one segment to
// the next so a dashed outline does not restart at every vertex.
type pen struct {
	img   *image.RGBA
	style Style
	dist  float64
}

func (p *pen) dashOn(d float64) bool {
	period := DashPattern[0] + DashPattern[1]
	return math.Mod(d, period) < DashPattern[0]
}

func (p *pen) segment(a, b geometry.Point) {
	if !p.style.Dashed {
		a0, b0 := a.Image(), b.Image()
		drawLine(p.img, a0.X, a0.Y, b0.X, b0.Y, p.style.Color, p.style.Width)
		return
	}
	length := geometry.Distance(a, b)
	steps := int(math.Ceil(length))
	if steps == 0 {
		if p.dashOn(p.dist) {
			q := a.Image()
			setThickPixel(p.img, q.X, q.Y, p.style.Width, p.style.Color)
		}
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if !p.dashOn(p.dist + t*length) {
			continue
		}
		q := geometry.Pt(a.X+t*(b.X-a.X), a.Y+t*(b.Y-a.Y)).Image()
		setThickPixel(p.img, q.X, q.Y, p.style.Width, p.style.Color)
	}
	p.dist += length
}

func (s *Surface) stroke(points []geometry.Point, style Style, closed bool) error {
	if err := style.Validate(); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	p := &pen{img: s.img, style: style}
	if len(points) == 1 {
		p.segment(points[0], points[0])
		return nil
	}
	for i := 1; i < len(points); i++ {
		p.segment(points[i-1], points[i])
	}
	if closed && len(points) > 2 {
		p.segment(points[len(points)-1], points[0])
	}
	return nil
}

// StrokePath paints an open polyline. A single point paints a dot.
func (s *Surface) StrokePath(points []geometry.Point, style Style) error {
	return s.stroke(points, style, false)
}

// StrokePolygon paints the outline through points, joining the last vertex
// back to the first when closed is set.
func (s *Surface) StrokePolygon(points []geometry.Point, style Style, closed bool) error {
	return s.stroke(points, style, closed)
}

// StrokeLine paints a single segment.
func (s *Surface) StrokeLine(p0, p1 geometry.Point, style Style) error {
	return s.stroke([]geometry.Point{p0, p1}, style, false)
}

// StrokeRect paints the outline of r.
func (s *Surface) StrokeRect(r geometry.Rect, style Style) error {
	if r.W < 0 || r.H < 0 {
		return fmt.Errorf("rect %+v: %w", r, ErrInvalidRegion)
	}
	return s.stroke([]geometry.Point{
		geometry.Pt(r.X, r.Y),
		geometry.Pt(r.X+r.W, r.Y),
		geometry.Pt(r.X+r.W, r.Y+r.H),
		geometry.Pt(r.X, r.Y+r.H),
	}, style, true)
}

// StrokeOval paints the ellipse inscribed in r.
func (s *Surface) StrokeOval(r geometry.Rect, style Style) error {
	if r.W < 0 || r.H < 0 {
		return fmt.Errorf("oval %+v: %w", r, ErrInvalidRegion)
	}
	return s.stroke(geometry.Ellipse(r), style, true)
}

// setThickPixel paints a thick x thick square around (x, y), clipped to the
// image.
func setThickPixel(img *image.RGBA, x, y, thick int, col color.RGBA) {
	lo := -(thick / 2)
	hi := lo + thick - 1
	b := img.Bounds()
	for dy := lo; dy <= hi; dy++ {
		for dx := lo; dx <= hi; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(b) {
				img.SetRGBA(px, py, col)
			}
		}
	}
}

// drawLine is Bresenham's algorithm with a square brush.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, thick int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
