package script

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/shineypad/internal/bitmap"
	"github.com/example/shineypad/internal/geometry"
	"github.com/example/shineypad/internal/session"
	"github.com/example/shineypad/internal/surface"
	"github.com/example/shineypad/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const starScript = `
canvas: {width: 640, height: 600}
steps:
  - tool: star
  - color: "#ff0000"
  - width: 3
  - answer: ["5"]
  - drag: [[500, 500], [550, 500]]
  - tool: polygon
  - answer: ["2"]
  - drag: [[100, 100], [150, 100]]
    allow_error: true
`

func TestRunStarScript(t *testing.T) {
	sc, err := Parse(strings.NewReader(starScript))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 8)

	r := NewRunner(sc, nil)
	require.NoError(t, r.Run(sc))
	assert.Equal(t, 640, r.Session.Bounds().Dx())
	assert.Equal(t, tools.ToolPolygon, r.Session.Tool())
	assert.Equal(t, 1, r.Session.History().UndoDepth())

	pts, err := geometry.Star(geometry.Pt(500, 500), 50, 5)
	require.NoError(t, err)
	want := surface.New(640, 600)
	require.NoError(t, want.StrokePolygon(pts, r.Settings.Style(), true))
	assert.Equal(t, want.Image().Pix, r.Session.Surface().Image().Pix)
}

func TestRunStopsAtFirstError(t *testing.T) {
	sc, err := Parse(strings.NewReader(`
steps:
  - tool: star
  - answer: ["3"]
  - drag: [[10, 10], [60, 10]]
  - undo: 1
`))
	require.NoError(t, err)
	err = NewRunner(sc, nil).Run(sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, geometry.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "step 3")
}

func TestParseRejectsBadScripts(t *testing.T) {
	for name, src := range map[string]string{
		"unknown key":  "steps:\n  - paint: [1, 2]\n",
		"two actions":  "steps:\n  - tool: rect\n    undo: 1\n",
		"no action":    "steps:\n  - allow_error: true\n",
		"short drag":   "steps:\n  - drag: [[1, 2]]\n",
		"bad point":    "steps:\n  - down: [1, 2, 3]\n",
		"not a script": "- just\n- a list\n",
	} {
		_, err := Parse(strings.NewReader(src))
		assert.Error(t, err, name)
	}
	sc, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, sc.Steps)
}

func TestSaveAndUndoSteps(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	sc := &Script{Steps: []Step{
		{Tool: "line"},
		{Drag: []Point{{0, 5}, {40, 5}}},
		{Drag: []Point{{0, 9}, {40, 9}}},
		{Undo: 1},
		{Answer: []string{"yes"}},
		{Save: out},
	}}
	r := NewRunner(sc, nil, session.WithSize(50, 20))
	require.NoError(t, r.Run(sc))
	b, err := bitmap.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), b.Image.RGBAAt(20, 5).R, "first line is black")
	assert.Equal(t, uint8(255), b.Image.RGBAAt(20, 9).R, "second line was undone")
	assert.Equal(t, 1, r.Session.History().RedoDepth())
}

func TestParseCommand(t *testing.T) {
	st, err := ParseCommand("drag 10 10 110 60")
	require.NoError(t, err)
	assert.Equal(t, []Point{{10, 10}, {110, 60}}, st.Drag)

	st, err = ParseCommand("down 1.5 2")
	require.NoError(t, err)
	assert.Equal(t, &Point{1.5, 2}, st.Down)

	st, err = ParseCommand("undo")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Undo)

	st, err = ParseCommand("solid")
	require.NoError(t, err)
	require.NotNil(t, st.Dashed)
	assert.False(t, *st.Dashed)

	st, err = ParseCommand("save my drawing.png")
	require.NoError(t, err)
	assert.Equal(t, "my drawing.png", st.Save)

	st, err = ParseCommand("answer")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, st.Answer)

	for _, bad := range []string{"", "fly 1 2", "down 1", "drag 1 2 3", "width wide", "undo zero", "tool"} {
		_, err := ParseCommand(bad)
		assert.ErrorIs(t, err, ErrBadStep, bad)
	}
}

func TestExecCommandLine(t *testing.T) {
	r := NewRunner(nil, nil, session.WithSize(200, 200))
	for _, line := range []string{"tool rect", "width 1", "drag 10 10 110 60"} {
		st, err := ParseCommand(line)
		require.NoError(t, err, line)
		require.NoError(t, r.Exec(st), line)
	}
	assert.NotZero(t, r.Session.Surface().RGBAAt(10, 10).A)
	assert.Zero(t, r.Session.Surface().RGBAAt(60, 35).A)
}
