// Package geometry computes the vertex sets stroked by the shape tools.
//
// Everything here is pure: the functions take a centre, radius or drag
// endpoints and return points in screen coordinates (Y grows downward).
package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidParameter reports a shape parameter outside its allowed range.
var ErrInvalidParameter = errors.New("invalid parameter")

const (
	// MinPolygonSides is the smallest side count RegularPolygon accepts.
	MinPolygonSides = 3
	// MinStarPoints is the smallest point count Star accepts.
	MinStarPoints = 4
	// StarInnerRatio is the fixed ratio between inner and outer star radii.
	StarInnerRatio = 0.5
)

// Point is a position on the canvas.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Image rounds p to the nearest pixel.
func (p Point) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// Rect is an axis aligned box with a non-negative size.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the middle of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Image converts r to pixel bounds, rounding each edge.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	)
}

// Circle is a centre and radius.
type Circle struct {
	Center Point
	Radius float64
}

// Bounds returns the square the circle is inscribed in.
func (c Circle) Bounds() Rect {
	return Rect{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius, W: 2 * c.Radius, H: 2 * c.Radius}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func checkRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return fmt.Errorf("radius %v: %w", r, ErrInvalidParameter)
	}
	return nil
}

// RegularPolygon returns the vertices of a regular polygon with the given
// number of sides. Vertex i sits at angle i*2π/sides, starting due east.
func RegularPolygon(center Point, radius float64, sides int) ([]Point, error) {
	if sides < MinPolygonSides {
		return nil, fmt.Errorf("polygon needs at least %d sides, got %d: %w", MinPolygonSides, sides, ErrInvalidParameter)
	}
	if err := checkRadius(radius); err != nil {
		return nil, err
	}
	step := 2 * math.Pi / float64(sides)
	pts := make([]Point, sides)
	for i := range pts {
		a := float64(i) * step
		pts[i] = Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return pts, nil
}

// Star returns the 2*points vertices of a star. Even indices lie on the outer
// radius and odd indices on outerRadius*StarInnerRatio. The angle is measured
// with Y flipped and offset by π/2 so vertex 0 points straight up, rather than
// due east as a bare i·π/points angle would put it.
func Star(center Point, outerRadius float64, points int) ([]Point, error) {
	if points < MinStarPoints {
		return nil, fmt.Errorf("star needs at least %d points, got %d: %w", MinStarPoints, points, ErrInvalidParameter)
	}
	if err := checkRadius(outerRadius); err != nil {
		return nil, err
	}
	n := 2 * points
	step := math.Pi / float64(points)
	pts := make([]Point, n)
	for i := range pts {
		r := outerRadius
		if i%2 == 1 {
			r = outerRadius * StarInnerRatio
		}
		a := math.Pi/2 + float64(i)*step
		pts[i] = Point{X: center.X + r*math.Cos(a), Y: center.Y - r*math.Sin(a)}
	}
	return pts, nil
}

// Triangle returns an equilateral triangle with its first vertex straight up.
func Triangle(center Point, radius float64) ([]Point, error) {
	if err := checkRadius(radius); err != nil {
		return nil, err
	}
	pts := make([]Point, 3)
	for i := range pts {
		a := (120*float64(i) - 90) * math.Pi / 180
		pts[i] = Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return pts, nil
}

// RectangleFromDrag normalises a drag into a rectangle; the drag direction
// does not matter.
func RectangleFromDrag(start, end Point) Rect {
	return Rect{
		X: math.Min(start.X, end.X),
		Y: math.Min(start.Y, end.Y),
		W: math.Abs(end.X - start.X),
		H: math.Abs(end.Y - start.Y),
	}
}

// CircleFromDrag returns the largest circle centred in the drag's bounding
// box.
func CircleFromDrag(start, end Point) Circle {
	r := RectangleFromDrag(start, end)
	return Circle{Center: r.Center(), Radius: math.Min(r.W, r.H) / 2}
}

// TriangleFromDrag returns a triangle inscribed in the drag's bounding box.
func TriangleFromDrag(start, end Point) []Point {
	c := CircleFromDrag(start, end)
	pts, _ := Triangle(c.Center, c.Radius)
	return pts
}

// Ellipse approximates the ellipse inscribed in r with a closed polyline.
// The step count grows with the perimeter so large ellipses stay smooth.
func Ellipse(r Rect) []Point {
	c := r.Center()
	rx, ry := r.W/2, r.H/2
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt((rx*rx+ry*ry)/2)))
	if steps < 8 {
		steps = 8
	}
	pts := make([]Point, steps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts[i] = Point{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)}
	}
	return pts
}
