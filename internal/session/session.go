// Package session is the root of a drawing: it owns the canvas, its history
// and the tool state machine, and exposes the event intake the shells drive.
package session

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/example/shineypad/internal/bitmap"
	"github.com/example/shineypad/internal/geometry"
	"github.com/example/shineypad/internal/history"
	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/persist"
	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/surface"
	"github.com/example/shineypad/internal/tools"
	"github.com/google/uuid"
	"golang.org/x/mobile/event/mouse"
)

// ErrNoClipboard is returned by clipboard operations when none is configured.
var ErrNoClipboard = errors.New("no clipboard configured")

// Clipboard exchanges images with the desktop.
type Clipboard interface {
	WriteImage(image.Image) error
	ReadImage() (image.Image, error)
}

// Session is one drawing. It is not safe for concurrent use; shells deliver
// events from a single goroutine.
type Session struct {
	id         uuid.UUID
	surf       *surface.Surface
	hist       *history.Manager
	machine    *tools.Machine
	styles     settings.Provider
	prompts    prompt.Prompter
	clip       Clipboard
	background color.Color
	pressed    bool
}

type options struct {
	width, height int
	textSize      float64
	styles        settings.Provider
	prompts       prompt.Prompter
	clip          Clipboard
	background    color.Color
	granularity   tools.Granularity
	limit         int
}

// Option configures a Session.
type Option func(*options)

// WithSize sets the canvas size. Non-positive values use the defaults.
func WithSize(width, height int) Option {
	return func(o *options) { o.width, o.height = width, height }
}

// WithSettings sets the style provider read at every commit.
func WithSettings(p settings.Provider) Option {
	return func(o *options) { o.styles = p }
}

// WithPrompter sets the modal prompt collaborator.
func WithPrompter(p prompt.Prompter) Option {
	return func(o *options) { o.prompts = p }
}

// WithClipboard enables copy and paste.
func WithClipboard(c Clipboard) Option {
	return func(o *options) { o.clip = c }
}

// WithBackground sets the colour transparent pixels are flattened onto on
// export. The default is white.
func WithBackground(c color.Color) Option {
	return func(o *options) { o.background = c }
}

// WithGranularity sets the freehand and eraser checkpoint granularity.
func WithGranularity(g tools.Granularity) Option {
	return func(o *options) { o.granularity = g }
}

// WithHistoryLimit caps the undo stack. Zero is unbounded.
func WithHistoryLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithTextSize sets the text tool's point size.
func WithTextSize(size float64) Option {
	return func(o *options) { o.textSize = size }
}

// New creates a session with a transparent canvas and the freehand tool.
func New(opts ...Option) *Session {
	o := options{background: color.White}
	for _, fn := range opts {
		fn(&o)
	}
	if o.styles == nil {
		o.styles = settings.New()
	}
	if o.prompts == nil {
		o.prompts = prompt.NewScripted()
	}
	var sopts []surface.Option
	if o.textSize > 0 {
		sopts = append(sopts, surface.WithTextSize(o.textSize))
	}
	s := &Session{
		id:         uuid.New(),
		surf:       surface.New(o.width, o.height, sopts...),
		styles:     o.styles,
		prompts:    o.prompts,
		clip:       o.clip,
		background: o.background,
	}
	s.hist = history.New(s.surf, history.WithLimit(o.limit))
	s.machine = tools.NewMachine(s.surf, s.hist, s.styles, s.prompts, tools.WithGranularity(o.granularity))
	logx.L().Debug("session started", "session", s.id, "bounds", s.surf.Bounds())
	return s
}

func (s *Session) ID() uuid.UUID               { return s.id }
func (s *Session) Surface() *surface.Surface   { return s.surf }
func (s *Session) History() *history.Manager   { return s.hist }
func (s *Session) Tool() tools.Tool            { return s.machine.Tool() }
func (s *Session) Machine() *tools.Machine     { return s.machine }
func (s *Session) Style() surface.Style        { return s.styles.Style() }
func (s *Session) Prompter() prompt.Prompter   { return s.prompts }
func (s *Session) Background() color.Color     { return s.background }
func (s *Session) Bounds() image.Rectangle     { return s.surf.Bounds() }
func (s *Session) SetClipboard(c Clipboard)    { s.clip = c }
func (s *Session) SetBackground(c color.Color) { s.background = c }

// SelectTool switches tools, abandoning any gesture in progress.
func (s *Session) SelectTool(t tools.Tool) error {
	s.pressed = false
	return s.machine.Select(t)
}

func (s *Session) PointerDown(x, y float64) error {
	return s.machine.Handle(tools.Event{Kind: tools.PointerDown, Point: geometry.Pt(x, y)})
}

func (s *Session) PointerMove(x, y float64) error {
	return s.machine.Handle(tools.Event{Kind: tools.PointerMove, Point: geometry.Pt(x, y)})
}

func (s *Session) PointerUp(x, y float64) error {
	return s.machine.Handle(tools.Event{Kind: tools.PointerUp, Point: geometry.Pt(x, y)})
}

// HandleMouse adapts a window mouse event, already translated to canvas
// coordinates, into pointer events. Only the left button draws.
func (s *Session) HandleMouse(e mouse.Event) error {
	x, y := float64(e.X), float64(e.Y)
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return nil
		}
		s.pressed = true
		return s.PointerDown(x, y)
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft || !s.pressed {
			return nil
		}
		s.pressed = false
		return s.PointerUp(x, y)
	case mouse.DirNone:
		if !s.pressed {
			return nil
		}
		return s.PointerMove(x, y)
	}
	return nil
}

// Undo steps back one checkpoint. A gesture in progress is abandoned first.
func (s *Session) Undo() bool {
	s.machine.Cancel()
	return s.hist.Undo()
}

// Redo reapplies the last undone checkpoint.
func (s *Session) Redo() bool {
	s.machine.Cancel()
	return s.hist.Redo()
}

// Clear asks for confirmation, then makes the canvas transparent. Declining
// changes nothing and records nothing.
func (s *Session) Clear() bool {
	s.machine.Cancel()
	if !s.prompts.Confirm("Clear the whole canvas?") {
		return false
	}
	s.hist.Checkpoint()
	s.surf.Clear()
	logx.L().Debug("canvas cleared", "session", s.id)
	return true
}

// NewCanvas asks for confirmation, then replaces the canvas with a blank one
// of the given size. The previous canvas stays reachable through Undo.
func (s *Session) NewCanvas(width, height int) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, fmt.Errorf("new canvas %dx%d: %w", width, height, surface.ErrInvalidRegion)
	}
	s.machine.Cancel()
	if !s.prompts.Confirm("Create a new canvas?") {
		return false, nil
	}
	s.hist.Checkpoint()
	if err := s.surf.Reset(width, height); err != nil {
		s.hist.Drop()
		return false, err
	}
	logx.L().Info("new canvas", "session", s.id, "width", width, "height", height)
	return true, nil
}

// Placement centres a w×h bitmap in canvas. Bitmaps larger than the canvas
// are scaled down to fit, keeping their aspect ratio.
func Placement(canvas image.Rectangle, w, h int) image.Rectangle {
	cw, ch := canvas.Dx(), canvas.Dy()
	if w > cw || h > ch {
		scale := min(float64(cw)/float64(w), float64(ch)/float64(h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}
	x := canvas.Min.X + (cw-w)/2
	y := canvas.Min.Y + (ch-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// Import composites b centred on the canvas and returns where it landed.
func (s *Session) Import(b bitmap.Bitmap) (image.Rectangle, error) {
	if b.Image == nil || b.Width <= 0 || b.Height <= 0 {
		return image.Rectangle{}, surface.ErrInvalidBitmap
	}
	s.machine.Cancel()
	dst := Placement(s.surf.Bounds(), b.Width, b.Height)
	s.hist.Checkpoint()
	if err := s.surf.CompositeBitmap(b.Image, dst); err != nil {
		s.hist.Drop()
		return image.Rectangle{}, err
	}
	logx.L().Info("imported bitmap", "session", s.id, "size", fmt.Sprintf("%dx%d", b.Width, b.Height), "at", dst)
	return dst, nil
}

// Open loads the image at path and imports it. A load failure leaves the
// canvas untouched.
func (s *Session) Open(path string) (image.Rectangle, error) {
	b, err := bitmap.LoadFile(path)
	if err != nil {
		logx.L().Warn("open failed", "path", path, "err", err)
		return image.Rectangle{}, err
	}
	return s.Import(b)
}

// Export flattens the canvas onto the session background.
func (s *Session) Export() *image.RGBA {
	return s.surf.ExportPixels(s.background)
}

// Save writes the exported canvas to path. Failures leave the session as it
// was and are not retried.
func (s *Session) Save(path string) (persist.Format, error) {
	f, err := persist.Save(path, s.Export())
	if err != nil {
		logx.L().Warn("save failed", "path", path, "err", err)
	}
	return f, err
}

// CopyToClipboard publishes the exported canvas.
func (s *Session) CopyToClipboard() error {
	if s.clip == nil {
		return ErrNoClipboard
	}
	if err := s.clip.WriteImage(s.Export()); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// PasteFromClipboard imports the clipboard image like Open does.
func (s *Session) PasteFromClipboard() (image.Rectangle, error) {
	if s.clip == nil {
		return image.Rectangle{}, ErrNoClipboard
	}
	img, err := s.clip.ReadImage()
	if err != nil {
		return image.Rectangle{}, &bitmap.LoadError{Path: "clipboard", Err: err}
	}
	b, err := bitmap.FromImage(img)
	if err != nil {
		return image.Rectangle{}, err
	}
	return s.Import(b)
}
