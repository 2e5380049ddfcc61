// Package tools turns pointer gestures into canvas mutations for whichever
// drawing tool is selected.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/shineypad/internal/geometry"
)

// ErrUnknownTool is returned when selecting or parsing a tool that does not exist.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is the active drawing tool. Exactly one is selected at a time.
type Tool int

const (
	ToolFreehand Tool = iota
	ToolLine
	ToolEraser
	ToolRect
	ToolCircle
	ToolTriangle
	ToolPolygon
	ToolStar
	ToolText
)

var toolNames = [...]string{
	ToolFreehand: "freehand",
	ToolLine:     "line",
	ToolEraser:   "eraser",
	ToolRect:     "rectangle",
	ToolCircle:   "circle",
	ToolTriangle: "triangle",
	ToolPolygon:  "polygon",
	ToolStar:     "star",
	ToolText:     "text",
}

var toolAliases = map[string]Tool{
	"pen":    ToolFreehand,
	"draw":   ToolFreehand,
	"rect":   ToolRect,
	"oval":   ToolCircle,
	"erase":  ToolEraser,
	"poly":   ToolPolygon,
	"square": ToolRect,
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	out := make([]Tool, len(toolNames))
	for i := range out {
		out[i] = Tool(i)
	}
	return out
}

func (t Tool) Valid() bool { return t >= 0 && int(t) < len(toolNames) }

func (t Tool) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool resolves a tool name or a common alias, ignoring case.
func ParseTool(s string) (Tool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	if t, ok := toolAliases[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownTool)
}

// ShapeKind is the subset of tools that commit a computed outline.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeCircle
	ShapeTriangle
	ShapePolygon
	ShapeStar
)

// Shape reports the shape a tool commits, if any.
func (t Tool) Shape() (ShapeKind, bool) {
	switch t {
	case ToolRect:
		return ShapeRect, true
	case ToolCircle:
		return ShapeCircle, true
	case ToolTriangle:
		return ShapeTriangle, true
	case ToolPolygon:
		return ShapePolygon, true
	case ToolStar:
		return ShapeStar, true
	}
	return 0, false
}

// EventKind distinguishes pointer events.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a pointer event in canvas coordinates.
type Event struct {
	Kind  EventKind
	Point geometry.Point
}

func Down(x, y float64) Event { return Event{Kind: PointerDown, Point: geometry.Pt(x, y)} }
func Move(x, y float64) Event { return Event{Kind: PointerMove, Point: geometry.Pt(x, y)} }
func Up(x, y float64) Event   { return Event{Kind: PointerUp, Point: geometry.Pt(x, y)} }

// Granularity controls how often freehand and eraser gestures checkpoint.
type Granularity int

const (
	// GranularityTick checkpoints on every mutating pointer event.
	GranularityTick Granularity = iota
	// GranularityGesture checkpoints once per gesture, on pointer-down.
	GranularityGesture
)

func (g Granularity) String() string {
	if g == GranularityGesture {
		return "gesture"
	}
	return "tick"
}

// ParseGranularity accepts "tick" or "gesture"; empty means tick.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tick":
		return GranularityTick, nil
	case "gesture":
		return GranularityGesture, nil
	}
	return 0, fmt.Errorf("unknown checkpoint granularity %q", s)
}
