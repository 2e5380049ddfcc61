package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/theme"
	"github.com/example/shineypad/internal/tools"
	"golang.org/x/exp/shiny/screen"
)

const (
	statusHeight = 24
	bottomHeight = 24
	buttonHeight = 24
	swatchSize   = 16
	swatchStep   = 18
	widthRow     = 16
	sectionGap   = 4
)

var toolbarWidth = 64

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// toolKeys maps toolbar order to the key that selects each tool.
var toolKeys = []struct {
	r     rune
	tool  tools.Tool
	label string
}{
	{'b', tools.ToolFreehand, "B:Pen"},
	{'l', tools.ToolLine, "L:Line"},
	{'e', tools.ToolEraser, "E:Erase"},
	{'x', tools.ToolRect, "X:Rect"},
	{'o', tools.ToolCircle, "O:Circle"},
	{'g', tools.ToolTriangle, "G:Tri"},
	{'p', tools.ToolPolygon, "P:Poly"},
	{'s', tools.ToolStar, "S:Star"},
	{'t', tools.ToolText, "T:Text"},
}

const dashedLabel = "D:Dash"

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

type hotKind int

const (
	hotNone hotKind = iota
	hotTool
	hotSwatch
	hotWidth
	hotDashed
	hotShortcut
)

// hotspot is a clickable region of the window chrome.
type hotspot struct {
	kind  hotKind
	index int
	rect  image.Rectangle
}

func (h hotspot) same(o hotspot) bool { return h.kind == o.kind && h.index == o.index }

var noHover = hotspot{kind: hotNone, index: -1}

// fitToolbar widens the toolbar so every label fits.
func fitToolbar() {
	d := &font.Drawer{Face: basicfont.Face7x13}
	max := d.MeasureString("ShineyPad").Ceil() + 8 // padding
	for _, tk := range toolKeys {
		if w := d.MeasureString(tk.label).Ceil() + 8; w > max {
			max = w
		}
	}
	if max > toolbarWidth {
		toolbarWidth = max
	}
}

// layoutToolbar returns the toolbar hotspots from top to bottom.
func layoutToolbar() []hotspot {
	var out []hotspot
	y := statusHeight
	for i := range toolKeys {
		out = append(out, hotspot{hotTool, i, image.Rect(0, y, toolbarWidth, y+buttonHeight)})
		y += buttonHeight
	}

	y += sectionGap
	x := 4
	for i := range settings.Palette() {
		out = append(out, hotspot{hotSwatch, i, image.Rect(x, y, x+swatchSize, y+swatchSize)})
		x += swatchStep
		if x+swatchSize > toolbarWidth {
			x = 4
			y += swatchStep
		}
	}
	if x != 4 {
		y += swatchStep
	}

	y += sectionGap
	for i := range settings.WidthOptions() {
		out = append(out, hotspot{hotWidth, i, image.Rect(0, y, toolbarWidth, y+widthRow)})
		y += widthRow
	}

	y += sectionGap
	out = append(out, hotspot{hotDashed, 0, image.Rect(0, y, toolbarWidth, y+buttonHeight)})
	return out
}

// toolbarBottom is the lowest y the toolbar occupies.
func toolbarBottom() int {
	hs := layoutToolbar()
	return hs[len(hs)-1].rect.Max.Y
}

type shortcut struct {
	label  string
	action string
}

func shortcuts(zoom float64) []shortcut {
	return []shortcut{
		{"^Z:undo", "undo"},
		{"^Y:redo", "redo"},
		{"^N:new", "new"},
		{"^D:clear", "clear"},
		{"^C:copy", "copy"},
		{"^V:paste", "paste"},
		{"^S:save", "save"},
		{fmt.Sprintf("+/-:zoom (%.0f%%)", zoom*100), "zoomfit"},
		{"Q:quit", "quit"},
	}
}

func layoutShortcuts(height int, zoom float64) []hotspot {
	var out []hotspot
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	meas := &font.Drawer{Face: basicfont.Face7x13}
	for i, sc := range shortcuts(zoom) {
		w := meas.MeasureString(sc.label).Ceil()
		r := image.Rect(x-2, y-14, x+w+2, y+4)
		out = append(out, hotspot{hotShortcut, i, r})
		x = r.Max.X + 8
	}
	return out
}

// hitTest finds the chrome hotspot under p.
func hitTest(p image.Point, height int, zoom float64) (hotspot, bool) {
	for _, h := range layoutToolbar() {
		if p.In(h.rect) {
			return h, true
		}
	}
	for _, h := range layoutShortcuts(height, zoom) {
		if p.In(h.rect) {
			return h, true
		}
	}
	return noHover, false
}

func fitZoom(canvas image.Rectangle, winW, winH int) float64 {
	availW := winW - toolbarWidth
	availH := winH - statusHeight - bottomHeight
	zx := float64(availW) / float64(canvas.Dx())
	zy := float64(availH) / float64(canvas.Dy())
	z := zx
	if zy < z {
		z = zy
	}
	if z > 1 {
		return 1
	}
	return z
}

// imageRect anchors the canvas just right of the toolbar and below the status
// line so canvas coordinates stay stable when the window resizes.
func imageRect(canvas image.Rectangle, zoom float64) image.Rectangle {
	w := int(float64(canvas.Dx()) * zoom)
	h := int(float64(canvas.Dy()) * zoom)
	return image.Rect(toolbarWidth, statusHeight, toolbarWidth+w, statusHeight+h)
}

// canvasPoint maps a window position to canvas coordinates.
func canvasPoint(x, y float32, dst image.Rectangle, zoom float64) (float64, float64) {
	if zoom <= 0 {
		zoom = 1
	}
	return (float64(x) - float64(dst.Min.X)) / zoom, (float64(y) - float64(dst.Min.Y)) / zoom
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

type backdrop struct {
	img         *image.RGBA
	light, dark color.RGBA
}

var backdropCache backdrop

// drawBackdrop fills r of dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA, r image.Rectangle, th *theme.Theme) {
	b := dst.Bounds()
	c := backdropCache
	if c.img == nil || c.img.Bounds() != b || c.light != th.CheckerLight || c.dark != th.CheckerDark {
		c = backdrop{img: image.NewRGBA(b), light: th.CheckerLight, dark: th.CheckerDark}
		drawCheckerboard(c.img, b, 8, c.light, c.dark)
		backdropCache = c
	}
	draw.Draw(dst, r, c.img, r.Min, draw.Src)
}

func fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func label(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func buttonColor(th *theme.Theme, state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return th.ButtonBackgroundHover
	case StatePressed:
		return th.ButtonBackgroundPress
	}
	return th.ButtonBackground
}

func drawButton(dst *image.RGBA, th *theme.Theme, r image.Rectangle, text string, state ButtonState) {
	fill(dst, r, buttonColor(th, state))
	label(dst, r.Min.X+4, r.Min.Y+16, text, th.ButtonText)
}

func stateFor(h, hover hotspot, selected bool) ButtonState {
	switch {
	case selected:
		return StatePressed
	case h.same(hover):
		return StateHover
	}
	return StateDefault
}

func drawToolbar(dst *image.RGBA, st paintState) {
	th := st.theme
	fill(dst, image.Rect(0, statusHeight, toolbarWidth, st.height-bottomHeight), th.ToolbarBackground)
	palette := settings.Palette()
	widths := settings.WidthOptions()
	for _, h := range layoutToolbar() {
		switch h.kind {
		case hotTool:
			tk := toolKeys[h.index]
			drawButton(dst, th, h.rect, tk.label, stateFor(h, st.hover, tk.tool == st.tool))
		case hotSwatch:
			p := palette[h.index]
			fill(dst, h.rect, p.Color)
			if h.same(st.hover) {
				draw.Draw(dst, h.rect, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
			}
			border := th.SwatchBorder
			if p.Color == st.color {
				border = color.RGBA{255, 255, 255, 255}
			}
			outline(dst, h.rect, border)
		case hotWidth:
			w := widths[h.index]
			fill(dst, h.rect, buttonColor(th, stateFor(h, st.hover, w == st.lineWidth)))
			label(dst, 4, h.rect.Min.Y+12, fmt.Sprintf("%d", w), th.ButtonText)
			cy := h.rect.Min.Y + widthRow/2
			bar := image.Rect(30, cy-w/2, toolbarWidth-4, cy-w/2+w).Intersect(h.rect)
			fill(dst, bar, st.color)
		case hotDashed:
			drawButton(dst, th, h.rect, dashedLabel, stateFor(h, st.hover, st.dashed))
		}
		outline(dst, h.rect, th.ButtonBorder)
	}
}

func drawShortcuts(dst *image.RGBA, st paintState) {
	th := st.theme
	fill(dst, image.Rect(0, st.height-bottomHeight, st.width, st.height), th.ToolbarBackground)
	scs := shortcuts(st.zoom)
	for _, h := range layoutShortcuts(st.height, st.zoom) {
		drawButton(dst, th, h.rect, "", stateFor(h, st.hover, false))
		outline(dst, h.rect, th.ButtonBorder)
		label(dst, h.rect.Min.X+2, h.rect.Min.Y+14, scs[h.index].label, th.ButtonText)
	}
}

func drawStatus(dst *image.RGBA, st paintState) {
	fill(dst, image.Rect(0, 0, st.width, statusHeight), st.theme.ToolbarBackground)
	label(dst, 4, 16, "ShineyPad", st.theme.ButtonText)
	label(dst, toolbarWidth+4, 16, st.status, st.theme.Foreground)
}

func drawMessage(dst *image.RGBA, st paintState, msg string) {
	d := &font.Drawer{Face: basicfont.Face7x13}
	wmsg := d.MeasureString(msg).Ceil()
	px := (st.width - wmsg) / 2
	py := st.height / 2
	rect := image.Rect(px-8, py-20, px+wmsg+8, py+10)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	outline(dst, rect, color.Black)
	label(dst, px, py, msg, color.Black)
}

type paintState struct {
	width, height int
	theme         *theme.Theme
	canvas        *image.RGBA
	zoom          float64
	tool          tools.Tool
	color         color.RGBA
	lineWidth     int
	dashed        bool
	hover         hotspot
	status        string
	message       string
	messageUntil  time.Time
	dialog        *dialog
}

// renderFrame composes the whole window into dst. It returns early once ctx
// is canceled.
func renderFrame(ctx context.Context, dst *image.RGBA, st paintState) {
	fill(dst, dst.Bounds(), st.theme.Background)
	if ctx.Err() != nil {
		return
	}

	if st.canvas != nil {
		area := image.Rect(toolbarWidth, statusHeight, st.width, st.height-bottomHeight)
		view := imageRect(st.canvas.Bounds(), st.zoom)
		drawBackdrop(dst, view.Intersect(area), st.theme)
		clipped := dst.SubImage(area).(*image.RGBA)
		xdraw.NearestNeighbor.Scale(clipped, view, st.canvas, st.canvas.Bounds(), draw.Over, nil)
	}
	if ctx.Err() != nil {
		return
	}

	drawStatus(dst, st)
	drawToolbar(dst, st)
	drawShortcuts(dst, st)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, st, st.message)
	}
	if st.dialog != nil {
		drawDialog(dst, st.theme, st.dialog, st.width, st.height)
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		logx.L().Error("new buffer", "err", err)
		return
	}
	defer b.Release()

	renderFrame(ctx, b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
