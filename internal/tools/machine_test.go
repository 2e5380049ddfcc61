package tools

import (
	"image/color"
	"testing"

	"github.com/example/shineypad/internal/geometry"
	"github.com/example/shineypad/internal/history"
	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rig struct {
	surf    *surface.Surface
	hist    *history.Manager
	style   *settings.Settings
	prompts *prompt.Scripted
	m       *Machine
}

func newRig(t *testing.T, opts ...MachineOption) *rig {
	t.Helper()
	r := &rig{
		surf:    surface.New(surface.DefaultWidth, surface.DefaultHeight),
		style:   settings.New(),
		prompts: prompt.NewScripted(),
	}
	r.hist = history.New(r.surf)
	r.m = NewMachine(r.surf, r.hist, r.style, r.prompts, opts...)
	return r
}

func (r *rig) drag(t *testing.T, x0, y0, x1, y1 float64) error {
	t.Helper()
	require.NoError(t, r.m.Handle(Down(x0, y0)))
	require.NoError(t, r.m.Handle(Move((x0+x1)/2, (y0+y1)/2)))
	return r.m.Handle(Up(x1, y1))
}

func (r *rig) painted(x, y int) bool { return r.surf.RGBAAt(x, y).A != 0 }

func (r *rig) blank(t *testing.T) {
	t.Helper()
	for _, b := range r.surf.Image().Pix {
		if b != 0 {
			t.Fatalf("surface was modified")
		}
	}
}

func TestParseTool(t *testing.T) {
	for _, tool := range Tools() {
		got, err := ParseTool(tool.String())
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	}
	got, err := ParseTool(" Rect ")
	require.NoError(t, err)
	assert.Equal(t, ToolRect, got)
	_, err = ParseTool("spray")
	assert.ErrorIs(t, err, ErrUnknownTool)

	k, ok := ToolStar.Shape()
	assert.True(t, ok)
	assert.Equal(t, ShapeStar, k)
	_, ok = ToolEraser.Shape()
	assert.False(t, ok)
}

func TestRectangleDrag(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.m.Select(ToolRect))
	require.NoError(t, r.drag(t, 10, 10, 110, 60))

	for _, p := range [][2]int{{10, 10}, {110, 10}, {110, 60}, {10, 60}, {60, 10}, {10, 35}} {
		assert.True(t, r.painted(p[0], p[1]), "edge %v", p)
	}
	assert.False(t, r.painted(60, 35))
	assert.False(t, r.painted(120, 70))
	assert.Equal(t, 1, r.hist.UndoDepth())
	assert.False(t, r.m.Active())

	require.True(t, r.hist.Undo())
	r.blank(t)
}

func TestRepeatedPressDropsOpenCheckpoint(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.m.Select(ToolRect))
	require.NoError(t, r.m.Handle(Down(5, 5)))
	require.NoError(t, r.m.Handle(Down(10, 10)))
	assert.Equal(t, 1, r.hist.UndoDepth())
	require.NoError(t, r.m.Handle(Up(110, 60)))
	assert.Equal(t, 1, r.hist.UndoDepth())
	assert.True(t, r.painted(10, 10))
	assert.False(t, r.painted(5, 5))

	require.True(t, r.hist.Undo())
	r.blank(t)
}

func TestRectangleDragDirectionIrrelevant(t *testing.T) {
	a := newRig(t)
	require.NoError(t, a.m.Select(ToolRect))
	require.NoError(t, a.drag(t, 10, 10, 110, 60))
	b := newRig(t)
	require.NoError(t, b.m.Select(ToolRect))
	require.NoError(t, b.drag(t, 110, 60, 10, 10))
	assert.Equal(t, a.surf.Image().Pix, b.surf.Image().Pix)
}

func TestLineCircleTriangle(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.m.Select(ToolLine))
	require.NoError(t, r.drag(t, 0, 5, 50, 5))
	assert.True(t, r.painted(25, 5))

	require.NoError(t, r.m.Select(ToolCircle))
	require.NoError(t, r.drag(t, 100, 100, 200, 140))
	// Circle of radius 20 centred at (150,120).
	assert.True(t, r.painted(170, 120))
	assert.True(t, r.painted(150, 100))
	assert.False(t, r.painted(150, 120))
	assert.False(t, r.painted(100, 100))

	require.NoError(t, r.m.Select(ToolTriangle))
	require.NoError(t, r.drag(t, 300, 300, 400, 400))
	assert.True(t, r.painted(350, 300), "apex")
	assert.Equal(t, 3, r.hist.UndoDepth())
}

func TestStarScenario(t *testing.T) {
	r := newRig(t)
	r.prompts.Push("5")
	require.NoError(t, r.m.Select(ToolStar))
	require.NoError(t, r.drag(t, 500, 500, 550, 500))

	pts, err := geometry.Star(geometry.Pt(500, 500), 50, 5)
	require.NoError(t, err)
	require.Len(t, pts, 10)
	for i, p := range pts {
		q := p.Image()
		assert.True(t, r.painted(q.X, q.Y), "vertex %d at %v", i, q)
		want := 50.0
		if i%2 == 1 {
			want = 25
		}
		assert.InDelta(t, want, geometry.Distance(geometry.Pt(500, 500), p), 1e-9)
	}
	assert.True(t, r.painted(500, 450), "first vertex points up")
	assert.False(t, r.painted(500, 500))
	assert.Equal(t, 1, r.hist.UndoDepth())
	assert.Empty(t, r.prompts.Alerts())
}

func TestPolygonDefaultAnswer(t *testing.T) {
	r := newRig(t)
	r.prompts.Push("")
	require.NoError(t, r.m.Select(ToolPolygon))
	require.NoError(t, r.drag(t, 200, 200, 260, 200))
	assert.True(t, r.painted(260, 200), "vertex 0 lies east of the centre")
	assert.Equal(t, 1, r.hist.UndoDepth())
}

func TestCountedToolsRejectInvalidInput(t *testing.T) {
	tests := []struct {
		tool   Tool
		answer string
	}{
		{ToolPolygon, "2"},
		{ToolPolygon, "0"},
		{ToolPolygon, "-4"},
		{ToolPolygon, "many"},
		{ToolStar, "3"},
		{ToolStar, "-1"},
		{ToolStar, "five"},
	}
	for _, tt := range tests {
		t.Run(tt.tool.String()+"/"+tt.answer, func(t *testing.T) {
			r := newRig(t)
			r.prompts.Push(tt.answer)
			require.NoError(t, r.m.Select(tt.tool))
			err := r.drag(t, 100, 100, 150, 100)
			assert.ErrorIs(t, err, geometry.ErrInvalidParameter)
			assert.Len(t, r.prompts.Alerts(), 1)
			assert.Zero(t, r.hist.UndoDepth())
			assert.False(t, r.m.Active())
			r.blank(t)
		})
	}
}

func TestDismissedPromptAbandonsSilently(t *testing.T) {
	for _, tool := range []Tool{ToolPolygon, ToolStar} {
		r := newRig(t)
		require.NoError(t, r.m.Select(tool))
		require.NoError(t, r.drag(t, 100, 100, 150, 100))
		assert.Empty(t, r.prompts.Alerts())
		assert.Zero(t, r.hist.UndoDepth())
		r.blank(t)
	}
}

func TestSelectCancelsGesture(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.m.Select(ToolRect))
	require.NoError(t, r.m.Handle(Down(10, 10)))
	require.True(t, r.m.Active())
	start, ok := r.m.Start()
	assert.True(t, ok)
	assert.Equal(t, geometry.Pt(10, 10), start)

	require.NoError(t, r.m.Select(ToolLine))
	assert.False(t, r.m.Active())
	assert.Zero(t, r.hist.UndoDepth())

	// The orphaned release must not commit anything.
	require.NoError(t, r.m.Handle(Up(100, 100)))
	r.blank(t)
	assert.ErrorIs(t, r.m.Select(Tool(42)), ErrUnknownTool)
}

func TestFreehandCheckpointsEveryTick(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.m.Handle(Down(10, 10)))
	require.NoError(t, r.m.Handle(Move(20, 10)))
	require.NoError(t, r.m.Handle(Move(30, 10)))
	require.NoError(t, r.m.Handle(Up(30, 10)))
	assert.Equal(t, 3, r.hist.UndoDepth())
	assert.True(t, r.painted(15, 10))
	assert.True(t, r.painted(25, 10))

	require.True(t, r.hist.Undo())
	assert.True(t, r.painted(15, 10))
	assert.False(t, r.painted(25, 10))
}

func TestFreehandGestureGranularity(t *testing.T) {
	r := newRig(t, WithGranularity(GranularityGesture))
	require.NoError(t, r.m.Handle(Down(10, 10)))
	require.NoError(t, r.m.Handle(Move(20, 10)))
	require.NoError(t, r.m.Handle(Move(30, 10)))
	require.NoError(t, r.m.Handle(Up(40, 10)))
	assert.Equal(t, 1, r.hist.UndoDepth())
	assert.True(t, r.painted(35, 10))
	require.True(t, r.hist.Undo())
	r.blank(t)
}

func TestFreehandHoverIgnored(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.m.Handle(Move(20, 10)))
	require.NoError(t, r.m.Handle(Up(30, 10)))
	assert.Zero(t, r.hist.UndoDepth())
	r.blank(t)
}

func TestEraserCutsSquareAtPointer(t *testing.T) {
	r := newRig(t)
	r.style.SetLineWidth(20)
	require.NoError(t, r.m.Select(ToolLine))
	require.NoError(t, r.drag(t, 0, 50, 200, 50))
	require.True(t, r.painted(105, 50))

	r.style.SetLineWidth(10)
	require.NoError(t, r.m.Select(ToolEraser))
	require.NoError(t, r.m.Handle(Down(100, 45)))
	require.NoError(t, r.m.Handle(Up(100, 45)))
	assert.Equal(t, color.RGBA{}, r.surf.RGBAAt(100, 45))
	assert.Equal(t, color.RGBA{}, r.surf.RGBAAt(109, 54))
	assert.True(t, r.painted(110, 50))
	assert.True(t, r.painted(99, 50))
	assert.Equal(t, 2, r.hist.UndoDepth())
}

func TestTextIsOneShot(t *testing.T) {
	r := newRig(t)
	r.prompts.Push("Hello")
	require.NoError(t, r.m.Select(ToolText))
	txt, armed := r.m.PendingText()
	assert.True(t, armed)
	assert.Equal(t, "Hello", txt)

	require.NoError(t, r.m.Handle(Down(50, 50)))
	assert.Equal(t, 1, r.hist.UndoDepth())
	before := r.surf.Image().Pix

	require.NoError(t, r.m.Handle(Down(200, 200)))
	assert.Equal(t, 1, r.hist.UndoDepth())
	assert.Equal(t, before, r.surf.Image().Pix)
	assert.Zero(t, r.prompts.Pending())
}

func TestTextDismissedLeavesToolUnarmed(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.m.Select(ToolText))
	assert.Equal(t, ToolText, r.m.Tool())
	_, armed := r.m.PendingText()
	assert.False(t, armed)
	require.NoError(t, r.m.Handle(Down(50, 50)))
	assert.Zero(t, r.hist.UndoDepth())
	r.blank(t)
}

type fixedStyle surface.Style

func (f fixedStyle) Style() surface.Style { return surface.Style(f) }

func TestInvalidStyleRejectedBeforeCheckpoint(t *testing.T) {
	surf := surface.New(100, 100)
	hist := history.New(surf)
	m := NewMachine(surf, hist, fixedStyle{Width: 0}, prompt.NewScripted())
	for _, tool := range []Tool{ToolFreehand, ToolEraser, ToolRect} {
		require.NoError(t, m.Select(tool))
		assert.ErrorIs(t, m.Handle(Down(10, 10)), surface.ErrInvalidStyle, tool.String())
	}
	assert.Zero(t, hist.UndoDepth())
}
