package appstate

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/theme"
	"github.com/example/shineypad/internal/tools"
)

// fakeHost replays queued events into a dialog loop.
type fakeHost struct {
	events []interface{}
	shown  []*dialog
	closed bool
}

func (h *fakeHost) NextEvent() interface{} {
	if len(h.events) == 0 {
		return lifecycle.Event{To: lifecycle.StageDead}
	}
	e := h.events[0]
	h.events = h.events[1:]
	return e
}

func (h *fakeHost) showDialog(d *dialog)  { h.shown = append(h.shown, d) }
func (h *fakeHost) handleSize(size.Event) {}
func (h *fakeHost) markClosed()           { h.closed = true }

func typed(s string) []interface{} {
	var out []interface{}
	for _, r := range s {
		out = append(out, key.Event{Rune: r, Direction: key.DirPress})
	}
	return out
}

func press(c key.Code) key.Event { return key.Event{Rune: -1, Code: c, Direction: key.DirPress} }

func attached(events ...interface{}) (*Dialogs, *fakeHost) {
	h := &fakeHost{events: events}
	ds := NewDialogs(nil, nil)
	ds.attach(h)
	return ds, h
}

func TestPromptIntegerReplacesDefault(t *testing.T) {
	events := []interface{}{press(key.CodeDeleteBackspace), paint.Event{}}
	events = append(events, typed("7")...)
	events = append(events, press(key.CodeReturnEnter))
	ds, h := attached(events...)

	n, err := ds.PromptInteger("Number of sides", 5)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Nil(t, h.shown[len(h.shown)-1], "dialog is cleared when done")
}

func TestPromptIntegerAcceptsDefault(t *testing.T) {
	ds, _ := attached(press(key.CodeReturnEnter))
	n, err := ds.PromptInteger("Number of points", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestPromptIntegerRejectsText(t *testing.T) {
	events := append([]interface{}{press(key.CodeDeleteBackspace)}, typed("abc")...)
	events = append(events, press(key.CodeReturnEnter))
	ds, _ := attached(events...)
	_, err := ds.PromptInteger("Number of sides", 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, prompt.ErrDismissed)
}

func TestPromptEscapeDismisses(t *testing.T) {
	ds, _ := attached(press(key.CodeEscape))
	_, err := ds.PromptInteger("Number of sides", 5)
	assert.ErrorIs(t, err, prompt.ErrDismissed)
}

func TestPromptWindowClosedDismisses(t *testing.T) {
	ds, h := attached()
	_, err := ds.PromptText("Enter text")
	assert.ErrorIs(t, err, prompt.ErrDismissed)
	assert.True(t, h.closed)
}

func TestPromptText(t *testing.T) {
	events := append(typed("Hi!"), press(key.CodeReturnEnter))
	ds, _ := attached(events...)
	s, err := ds.PromptText("Enter text")
	require.NoError(t, err)
	assert.Equal(t, "Hi!", s)

	ds, _ = attached(press(key.CodeReturnEnter))
	_, err = ds.PromptText("Enter text")
	assert.ErrorIs(t, err, prompt.ErrDismissed, "empty text counts as dismissed")
}

func TestConfirm(t *testing.T) {
	ds, _ := attached(key.Event{Rune: 'Y', Direction: key.DirPress})
	assert.True(t, ds.Confirm("Clear the whole canvas?"))

	ds, _ = attached(press(key.CodeReturnEnter))
	assert.False(t, ds.Confirm("Clear the whole canvas?"))

	ds, _ = attached(typed("q")[0], key.Event{Rune: 'n', Direction: key.DirPress})
	assert.False(t, ds.Confirm("Clear the whole canvas?"))
}

func TestAlertWaitsForKey(t *testing.T) {
	ds, h := attached(typed("x")[0], press(key.CodeReturnEnter), paint.Event{})
	ds.Alert("Invalid input", "A polygon needs at least 3 sides")
	assert.Len(t, h.events, 1, "alert stops consuming after enter")
	require.NotEmpty(t, h.shown)
	assert.Equal(t, "Invalid input", h.shown[0].title)
}

func TestDialogsFallback(t *testing.T) {
	ds := NewDialogs(prompt.NewScripted("9"), nil)
	n, err := ds.PromptInteger("Number of sides", 5)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	ds = NewDialogs(nil, nil)
	_, err = ds.PromptInteger("Number of sides", 5)
	assert.ErrorIs(t, err, prompt.ErrDismissed)
	assert.False(t, ds.Confirm("ok?"))
	assert.NotPanics(t, func() { ds.Alert("a", "b") })
}

func TestKeymapLookup(t *testing.T) {
	km := keymap{}
	km.add("undo", shortcutList{{Code: key.CodeZ, Modifiers: key.ModControl}})
	km.add("redo", shortcutList{{Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift}})
	km.add("tool:star", shortcutList{{Rune: 's'}})

	name, ok := km.lookup(key.Event{Rune: 'z', Code: key.CodeZ, Modifiers: key.ModControl})
	require.True(t, ok)
	assert.Equal(t, "undo", name)

	name, ok = km.lookup(key.Event{Rune: 'Z', Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift})
	require.True(t, ok)
	assert.Equal(t, "redo", name)

	name, ok = km.lookup(key.Event{Rune: 'S', Code: key.CodeS, Modifiers: key.ModShift})
	require.True(t, ok)
	assert.Equal(t, "tool:star", name)

	_, ok = km.lookup(key.Event{Rune: 'k', Code: key.CodeK})
	assert.False(t, ok)
}

func TestLayoutCoversEveryControl(t *testing.T) {
	counts := map[hotKind]int{}
	for _, h := range layoutToolbar() {
		counts[h.kind]++
		assert.False(t, h.rect.Empty())
		assert.LessOrEqual(t, h.rect.Max.X, toolbarWidth)
	}
	assert.Equal(t, len(tools.Tools()), counts[hotTool])
	assert.Equal(t, len(settings.Palette()), counts[hotSwatch])
	assert.Equal(t, len(settings.WidthOptions()), counts[hotWidth])
	assert.Equal(t, 1, counts[hotDashed])
}

func TestHitTest(t *testing.T) {
	h, ok := hitTest(image.Pt(2, statusHeight+buttonHeight+2), 600, 1)
	require.True(t, ok)
	assert.Equal(t, hotTool, h.kind)
	assert.Equal(t, tools.ToolLine, toolKeys[h.index].tool)

	h, ok = hitTest(image.Pt(toolbarWidth+4, 600-8), 600, 1)
	require.True(t, ok)
	assert.Equal(t, hotShortcut, h.kind)
	assert.Equal(t, "undo", shortcuts(1)[h.index].action)

	_, ok = hitTest(image.Pt(toolbarWidth+50, statusHeight+50), 600, 1)
	assert.False(t, ok)
}

func TestCanvasPoint(t *testing.T) {
	dst := imageRect(image.Rect(0, 0, 400, 300), 0.5)
	assert.Equal(t, image.Rect(toolbarWidth, statusHeight, toolbarWidth+200, statusHeight+150), dst)
	x, y := canvasPoint(float32(toolbarWidth+50), float32(statusHeight+20), dst, 0.5)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 40.0, y)
}

func TestFitZoomNeverEnlarges(t *testing.T) {
	assert.Equal(t, 1.0, fitZoom(image.Rect(0, 0, 10, 10), 1000, 1000))
	z := fitZoom(image.Rect(0, 0, 2000, 100), toolbarWidth+1000, 1000)
	assert.InDelta(t, 0.5, z, 1e-9)
}

func TestRenderFramePlacesCanvas(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 20, 20))
	red := color.RGBA{255, 0, 0, 255}
	canvas.SetRGBA(3, 4, red)

	width, height := toolbarWidth+100, toolbarBottom()+bottomHeight
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	th := theme.Default()
	renderFrame(context.Background(), dst, paintState{
		width: width, height: height, theme: th, canvas: canvas, zoom: 1,
		tool: tools.ToolStar, color: red, lineWidth: 2, hover: noHover,
	})

	assert.Equal(t, red, dst.RGBAAt(toolbarWidth+3, statusHeight+4))
	// Transparent canvas pixels show the checkerboard.
	got := dst.RGBAAt(toolbarWidth+10, statusHeight+10)
	assert.Contains(t, []color.RGBA{th.CheckerLight, th.CheckerDark}, got)

	// The selected tool button is drawn pressed.
	for _, h := range layoutToolbar() {
		if h.kind == hotTool && toolKeys[h.index].tool == tools.ToolStar {
			assert.Equal(t, th.ButtonBackgroundPress, dst.RGBAAt(h.rect.Max.X-3, h.rect.Max.Y-3))
		}
	}
}

func TestRenderFrameStopsWhenCanceled(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 200))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	th := theme.Dark()
	renderFrame(ctx, dst, paintState{width: 200, height: 200, theme: th, canvas: image.NewRGBA(image.Rect(0, 0, 10, 10)), zoom: 1, hover: noHover})
	assert.Equal(t, th.Background, dst.RGBAAt(toolbarWidth+5, statusHeight+5))
}

func TestFrozenDialogIsIndependent(t *testing.T) {
	d := &dialog{kind: dialogText, title: "Enter text"}
	cp := d.frozen()
	dst := image.NewRGBA(image.Rect(0, 0, 400, 300))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 50 {
			drawDialog(dst, theme.Default(), cp, 400, 300)
		}
	}()
	for range 50 {
		d.handleKey(key.Event{Rune: 'a', Direction: key.DirPress})
	}
	<-done

	assert.Empty(t, cp.input)
	assert.Len(t, d.input, 50)
	assert.Nil(t, (*dialog)(nil).frozen())
}
