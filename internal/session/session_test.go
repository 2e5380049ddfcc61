package session

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/shineypad/internal/bitmap"
	"github.com/example/shineypad/internal/geometry"
	"github.com/example/shineypad/internal/persist"
	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/surface"
	"github.com/example/shineypad/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/mouse"
)

func newSession(t *testing.T, answers ...string) (*Session, *prompt.Scripted) {
	t.Helper()
	p := prompt.NewScripted(answers...)
	return New(WithPrompter(p)), p
}

func drag(t *testing.T, s *Session, x0, y0, x1, y1 float64) error {
	t.Helper()
	require.NoError(t, s.PointerDown(x0, y0))
	require.NoError(t, s.PointerMove(x1, y1))
	return s.PointerUp(x1, y1)
}

func pix(s *Session) []byte { return s.Surface().Image().Pix }

func TestDefaults(t *testing.T) {
	s, _ := newSession(t)
	assert.Equal(t, image.Rect(0, 0, surface.DefaultWidth, surface.DefaultHeight), s.Bounds())
	assert.Equal(t, tools.ToolFreehand, s.Tool())
	st := s.Style()
	assert.Equal(t, settings.DefaultLineWidth, st.Width)
	assert.Equal(t, settings.DefaultColor, st.Color)
	assert.NotEqual(t, New().ID(), s.ID())
}

func TestRectangleScenario(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.SelectTool(tools.ToolRect))
	require.NoError(t, drag(t, s, 10, 10, 110, 60))

	want := surface.New(surface.DefaultWidth, surface.DefaultHeight)
	require.NoError(t, want.StrokeRect(geometry.Rect{X: 10, Y: 10, W: 100, H: 50}, s.Style()))
	assert.Equal(t, want.Image().Pix, pix(s))
}

func TestStarScenario(t *testing.T) {
	s, _ := newSession(t, "5")
	require.NoError(t, s.SelectTool(tools.ToolStar))
	require.NoError(t, drag(t, s, 500, 500, 550, 500))

	pts, err := geometry.Star(geometry.Pt(500, 500), 50, 5)
	require.NoError(t, err)
	want := surface.New(surface.DefaultWidth, surface.DefaultHeight)
	require.NoError(t, want.StrokePolygon(pts, s.Style(), true))
	assert.Equal(t, want.Image().Pix, pix(s))
}

func TestClearDeclined(t *testing.T) {
	s, _ := newSession(t, "no")
	require.NoError(t, s.PointerDown(5, 5))
	require.NoError(t, s.PointerUp(5, 5))
	depth := s.History().UndoDepth()
	before := pix(s)

	assert.False(t, s.Clear())
	assert.Equal(t, before, pix(s))
	assert.Equal(t, depth, s.History().UndoDepth())
}

func TestClearConfirmedIsUndoable(t *testing.T) {
	s, _ := newSession(t, "yes")
	require.NoError(t, s.PointerDown(5, 5))
	require.NoError(t, s.PointerUp(5, 5))
	before := pix(s)

	require.True(t, s.Clear())
	for _, b := range pix(s) {
		require.Zero(t, b)
	}
	require.True(t, s.Undo())
	assert.Equal(t, before, pix(s))
}

func TestNewActionClearsRedo(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.SelectTool(tools.ToolLine))
	require.NoError(t, drag(t, s, 0, 100, 300, 100)) // A
	require.True(t, s.Undo())
	require.NoError(t, drag(t, s, 0, 200, 300, 200)) // B
	afterB := pix(s)

	assert.False(t, s.Redo())
	assert.Equal(t, afterB, pix(s))
	assert.Zero(t, s.Surface().RGBAAt(150, 100).A, "A stays discarded")
	assert.NotZero(t, s.Surface().RGBAAt(150, 200).A)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.PointerDown(10, 10))
	require.NoError(t, s.PointerMove(50, 60))
	require.NoError(t, s.PointerMove(90, 20))
	require.NoError(t, s.PointerUp(90, 20))
	final := pix(s)

	n := 0
	for s.Undo() {
		n++
	}
	assert.Equal(t, 3, n)
	for _, b := range pix(s) {
		require.Zero(t, b)
	}
	for s.Redo() {
	}
	assert.Equal(t, final, pix(s))
}

func TestRepeatedUndoRedoPastEnd(t *testing.T) {
	s, _ := newSession(t)
	for range 5 {
		assert.False(t, s.Undo())
		assert.False(t, s.Redo())
	}
}

func TestUndoDuringGestureAbandonsIt(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.SelectTool(tools.ToolLine))
	require.NoError(t, drag(t, s, 0, 10, 100, 10))
	require.NoError(t, s.PointerDown(0, 50))

	require.True(t, s.Undo())
	assert.Zero(t, s.Surface().RGBAAt(50, 10).A)
	require.NoError(t, s.PointerUp(100, 50))
	assert.Zero(t, s.Surface().RGBAAt(50, 50).A)
	assert.Zero(t, s.History().UndoDepth())
	assert.Equal(t, 1, s.History().RedoDepth())
}

func TestHandleMouse(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.SelectTool(tools.ToolLine))

	// Right button and hover never draw.
	require.NoError(t, s.HandleMouse(mouse.Event{X: 5, Y: 5, Button: mouse.ButtonRight, Direction: mouse.DirPress}))
	require.NoError(t, s.HandleMouse(mouse.Event{X: 50, Y: 5, Direction: mouse.DirNone}))
	require.NoError(t, s.HandleMouse(mouse.Event{X: 50, Y: 5, Button: mouse.ButtonRight, Direction: mouse.DirRelease}))
	assert.Zero(t, s.History().UndoDepth())

	require.NoError(t, s.HandleMouse(mouse.Event{X: 10, Y: 30, Button: mouse.ButtonLeft, Direction: mouse.DirPress}))
	require.NoError(t, s.HandleMouse(mouse.Event{X: 60, Y: 30, Direction: mouse.DirNone}))
	require.NoError(t, s.HandleMouse(mouse.Event{X: 110, Y: 30, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}))
	assert.NotZero(t, s.Surface().RGBAAt(60, 30).A)
	assert.Equal(t, 1, s.History().UndoDepth())
}

func TestNewCanvas(t *testing.T) {
	s, _ := newSession(t, "n", "y")
	_, err := s.NewCanvas(0, 10)
	assert.ErrorIs(t, err, surface.ErrInvalidRegion)

	ok, err := s.NewCanvas(200, 100)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, surface.DefaultWidth, s.Bounds().Dx())

	ok, err = s.NewCanvas(200, 100)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 200, 100), s.Bounds())

	require.True(t, s.Undo())
	assert.Equal(t, surface.DefaultWidth, s.Bounds().Dx())
}

func solidBitmap(w, h int, c color.RGBA) bitmap.Bitmap {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return bitmap.Bitmap{Image: img, Width: w, Height: h}
}

func TestPlacement(t *testing.T) {
	canvas := image.Rect(0, 0, 1000, 900)
	assert.Equal(t, image.Rect(400, 350, 600, 550), Placement(canvas, 200, 200))
	assert.Equal(t, image.Rect(0, 200, 1000, 700), Placement(canvas, 2000, 1000))
}

func TestImportCentres(t *testing.T) {
	s := New(WithSize(100, 80))
	blue := color.RGBA{B: 255, A: 255}
	dst, err := s.Import(solidBitmap(20, 10, blue))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(40, 35, 60, 45), dst)
	assert.Equal(t, blue, s.Surface().RGBAAt(50, 40))
	assert.Zero(t, s.Surface().RGBAAt(10, 10).A)
	assert.Equal(t, 1, s.History().UndoDepth())

	_, err = s.Import(bitmap.Bitmap{})
	assert.ErrorIs(t, err, surface.ErrInvalidBitmap)
}

func TestOpenFailureLeavesCanvasUntouched(t *testing.T) {
	s := New(WithSize(50, 50))
	require.NoError(t, s.PointerDown(5, 5))
	before := pix(s)
	depth := s.History().UndoDepth()

	_, err := s.Open(filepath.Join(t.TempDir(), "nope.png"))
	var le *bitmap.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, before, pix(s))
	assert.Equal(t, depth, s.History().UndoDepth())
}

func TestOpenAndSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solidBitmap(10, 10, color.RGBA{R: 255, A: 255}).Image))
	require.NoError(t, f.Close())

	s := New(WithSize(30, 30), WithBackground(color.RGBA{G: 255, A: 255}))
	dst, err := s.Open(in)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 10, 20, 20), dst)

	out := filepath.Join(dir, "out.whatever")
	format, err := s.Save(out)
	require.NoError(t, err)
	assert.Equal(t, persist.PNG, format)

	b, err := bitmap.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, b.Image.RGBAAt(15, 15))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, b.Image.RGBAAt(2, 2))
}

func TestSaveFailureKeepsState(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.PointerDown(5, 5))
	before := pix(s)
	_, err := s.Save(filepath.Join(t.TempDir(), "no", "such", "dir.png"))
	require.Error(t, err)
	assert.Equal(t, before, pix(s))
}

type fakeClipboard struct {
	img image.Image
	err error
}

func (f *fakeClipboard) WriteImage(img image.Image) error {
	if f.err != nil {
		return f.err
	}
	f.img = img
	return nil
}

func (f *fakeClipboard) ReadImage() (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func TestClipboardCopyPaste(t *testing.T) {
	s := New(WithSize(40, 40))
	assert.ErrorIs(t, s.CopyToClipboard(), ErrNoClipboard)
	_, err := s.PasteFromClipboard()
	assert.ErrorIs(t, err, ErrNoClipboard)

	clip := &fakeClipboard{}
	s.SetClipboard(clip)
	require.NoError(t, s.CopyToClipboard())
	require.NotNil(t, clip.img)
	assert.Equal(t, uint8(255), clip.img.(*image.RGBA).RGBAAt(0, 0).A)

	clip.img = solidBitmap(4, 4, color.RGBA{R: 9, A: 255}).Image
	dst, err := s.PasteFromClipboard()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(18, 18, 22, 22), dst)

	clip.err = errors.New("no display")
	_, err = s.PasteFromClipboard()
	var le *bitmap.LoadError
	assert.ErrorAs(t, err, &le)
}
