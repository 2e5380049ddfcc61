package tools

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/shineypad/internal/geometry"
	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/surface"
)

// DefaultCount is the value offered by the polygon and star prompts.
const DefaultCount = 5

// Canvas is the set of raster primitives the tools paint with.
type Canvas interface {
	StrokePath(points []geometry.Point, style surface.Style) error
	StrokePolygon(points []geometry.Point, style surface.Style, closed bool) error
	StrokeLine(p0, p1 geometry.Point, style surface.Style) error
	StrokeRect(r geometry.Rect, style surface.Style) error
	StrokeOval(r geometry.Rect, style surface.Style) error
	Erase(region image.Rectangle) error
	DrawText(text string, pos geometry.Point, style surface.Style) error
}

// Checkpointer records the canvas before a mutation. Drop discards the newest
// record when the mutation it guarded never happened.
type Checkpointer interface {
	Checkpoint()
	Drop() bool
}

type gesture struct {
	active  bool
	start   geometry.Point
	current geometry.Point
	// based is set while a checkpoint taken for this gesture has not been
	// followed by any paint.
	based bool
}

// Machine is the tool state machine: Idle, or a gesture in progress for the
// selected tool. It is not safe for concurrent use.
type Machine struct {
	canvas      Canvas
	history     Checkpointer
	styles      settings.Provider
	prompts     prompt.Prompter
	granularity Granularity

	tool  Tool
	g     gesture
	text  string
	armed bool
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithGranularity sets how often freehand and eraser gestures checkpoint.
func WithGranularity(g Granularity) MachineOption {
	return func(m *Machine) { m.granularity = g }
}

// WithInitialTool selects t without prompting. Text starts unarmed.
func WithInitialTool(t Tool) MachineOption {
	return func(m *Machine) {
		if t.Valid() {
			m.tool = t
		}
	}
}

// NewMachine returns an idle machine with the freehand tool selected.
func NewMachine(canvas Canvas, history Checkpointer, styles settings.Provider, prompts prompt.Prompter, opts ...MachineOption) *Machine {
	m := &Machine{
		canvas:  canvas,
		history: history,
		styles:  styles,
		prompts: prompts,
		tool:    ToolFreehand,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) Tool() Tool   { return m.tool }
func (m *Machine) Active() bool { return m.g.active }

// Start returns the start of the gesture in progress.
func (m *Machine) Start() (geometry.Point, bool) { return m.g.start, m.g.active }

// PendingText returns the string the text tool will place on the next click.
func (m *Machine) PendingText() (string, bool) { return m.text, m.armed }

// Select cancels any gesture in progress and makes t the active tool.
// Selecting the text tool prompts for its string straight away; a dismissed
// prompt leaves the tool selected but unarmed.
func (m *Machine) Select(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("select %v: %w", t, ErrUnknownTool)
	}
	m.Cancel()
	m.text, m.armed = "", false
	m.tool = t
	logx.L().Debug("tool selected", "tool", t)
	if t != ToolText {
		return nil
	}
	s, err := m.prompts.PromptText("Enter text")
	switch {
	case errors.Is(err, prompt.ErrDismissed):
		return nil
	case err != nil:
		return fmt.Errorf("text prompt: %w", err)
	}
	m.text, m.armed = s, true
	return nil
}

// Cancel abandons the gesture in progress, discarding its checkpoint if
// nothing was painted since.
func (m *Machine) Cancel() {
	if !m.g.active {
		return
	}
	if m.g.based {
		m.history.Drop()
	}
	logx.L().Debug("gesture cancelled", "tool", m.tool, "start", m.g.start)
	m.g = gesture{}
}

// Handle routes a pointer event to the active tool.
func (m *Machine) Handle(ev Event) error {
	switch m.tool {
	case ToolFreehand:
		return m.freehand(ev)
	case ToolEraser:
		return m.erase(ev)
	case ToolLine, ToolRect, ToolCircle, ToolTriangle:
		return m.drag(ev)
	case ToolPolygon, ToolStar:
		return m.counted(ev)
	case ToolText:
		return m.placeText(ev)
	}
	return fmt.Errorf("handle %v: %w", m.tool, ErrUnknownTool)
}

// style reads the current style, rejecting it before anything is recorded.
func (m *Machine) style() (surface.Style, error) {
	st := m.styles.Style()
	if err := st.Validate(); err != nil {
		return st, err
	}
	return st, nil
}

func (m *Machine) tick() bool { return m.granularity == GranularityTick }

func (m *Machine) freehand(ev Event) error {
	switch ev.Kind {
	case PointerDown:
		st, err := m.style()
		if err != nil {
			return err
		}
		m.history.Checkpoint()
		m.g = gesture{active: true, start: ev.Point, current: ev.Point}
		return m.canvas.StrokePath([]geometry.Point{ev.Point}, st)
	case PointerMove, PointerUp:
		if !m.g.active {
			return nil
		}
		if ev.Kind == PointerUp {
			defer func() { m.g = gesture{} }()
			if ev.Point == m.g.current {
				return nil
			}
		}
		st, err := m.style()
		if err != nil {
			return err
		}
		if m.tick() {
			m.history.Checkpoint()
		}
		from := m.g.current
		m.g.current = ev.Point
		return m.canvas.StrokeLine(from, ev.Point, st)
	}
	return nil
}

// eraserRegion is the width×width square whose top-left corner is p.
func eraserRegion(p geometry.Point, width int) image.Rectangle {
	q := p.Image()
	return image.Rect(q.X, q.Y, q.X+width, q.Y+width)
}

func (m *Machine) erase(ev Event) error {
	switch ev.Kind {
	case PointerDown:
		st, err := m.style()
		if err != nil {
			return err
		}
		m.history.Checkpoint()
		m.g = gesture{active: true, start: ev.Point, current: ev.Point}
		return m.canvas.Erase(eraserRegion(ev.Point, st.Width))
	case PointerMove:
		if !m.g.active {
			return nil
		}
		st, err := m.style()
		if err != nil {
			return err
		}
		if m.tick() {
			m.history.Checkpoint()
		}
		m.g.current = ev.Point
		return m.canvas.Erase(eraserRegion(ev.Point, st.Width))
	case PointerUp:
		m.g = gesture{}
	}
	return nil
}

// begin starts a shape gesture, recording the base state.
func (m *Machine) begin(p geometry.Point) error {
	if _, err := m.style(); err != nil {
		return err
	}
	// A press without a matching release leaves a gesture open; drop its
	// base checkpoint so it cannot become an empty undo step.
	m.Cancel()
	m.history.Checkpoint()
	m.g = gesture{active: true, start: p, current: p, based: true}
	return nil
}

// abandon ends the gesture without committing, discarding its checkpoint.
func (m *Machine) abandon(reason string) {
	logx.L().Debug("gesture abandoned", "tool", m.tool, "reason", reason)
	m.Cancel()
}

// commit paints via fn and ends the gesture. A failed paint is abandoned.
func (m *Machine) commit(fn func(st surface.Style) error) error {
	st, err := m.style()
	if err == nil {
		err = fn(st)
	}
	if err != nil {
		m.abandon(err.Error())
		return err
	}
	m.g = gesture{}
	return nil
}

func (m *Machine) drag(ev Event) error {
	switch ev.Kind {
	case PointerDown:
		return m.begin(ev.Point)
	case PointerMove:
		if m.g.active {
			m.g.current = ev.Point
		}
		return nil
	case PointerUp:
		if !m.g.active {
			return nil
		}
		start, end := m.g.start, ev.Point
		m.g.current = end
		return m.commit(func(st surface.Style) error {
			switch m.tool {
			case ToolLine:
				return m.canvas.StrokeLine(start, end, st)
			case ToolRect:
				return m.canvas.StrokeRect(geometry.RectangleFromDrag(start, end), st)
			case ToolCircle:
				return m.canvas.StrokeOval(geometry.CircleFromDrag(start, end).Bounds(), st)
			default:
				return m.canvas.StrokePolygon(geometry.TriangleFromDrag(start, end), st, true)
			}
		})
	}
	return nil
}

// counted handles the polygon and star tools, which ask for a vertex count on
// release. A dismissed prompt abandons silently; an unusable answer is shown
// to the user, abandoned and returned wrapping geometry.ErrInvalidParameter.
func (m *Machine) counted(ev Event) error {
	switch ev.Kind {
	case PointerDown:
		return m.begin(ev.Point)
	case PointerMove:
		if m.g.active {
			m.g.current = ev.Point
		}
		return nil
	case PointerUp:
		if !m.g.active {
			return nil
		}
	default:
		return nil
	}
	center := m.g.start
	m.g.current = ev.Point
	radius := geometry.Distance(center, ev.Point)

	title, minimum := "Number of sides", geometry.MinPolygonSides
	if m.tool == ToolStar {
		title, minimum = "Number of points", geometry.MinStarPoints
	}
	n, err := m.prompts.PromptInteger(title, DefaultCount)
	if errors.Is(err, prompt.ErrDismissed) {
		m.abandon("prompt dismissed")
		return nil
	}
	if err != nil {
		msg := fmt.Sprintf("%v; enter a whole number of at least %d", err, minimum)
		m.prompts.Alert("Invalid input", msg)
		m.abandon(msg)
		logx.L().Warn("rejected shape count", "tool", m.tool, "err", err)
		return fmt.Errorf("%s: %v: %w", m.tool, err, geometry.ErrInvalidParameter)
	}

	var pts []geometry.Point
	if m.tool == ToolStar {
		pts, err = geometry.Star(center, radius, n)
	} else {
		pts, err = geometry.RegularPolygon(center, radius, n)
	}
	if err != nil {
		m.prompts.Alert("Invalid input", fmt.Sprintf("%s needs at least %d, got %d", title, minimum, n))
		m.abandon(err.Error())
		logx.L().Warn("rejected shape count", "tool", m.tool, "count", n)
		return fmt.Errorf("%s: %w", m.tool, err)
	}
	return m.commit(func(st surface.Style) error {
		return m.canvas.StrokePolygon(pts, st, true)
	})
}

func (m *Machine) placeText(ev Event) error {
	if ev.Kind != PointerDown || !m.armed {
		return nil
	}
	st, err := m.style()
	if err != nil {
		return err
	}
	m.history.Checkpoint()
	m.armed = false
	return m.canvas.DrawText(m.text, ev.Point, st)
}
