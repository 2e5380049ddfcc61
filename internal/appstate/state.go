package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/shineypad/internal/geometry"
	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/notify"
	"github.com/example/shineypad/internal/session"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/theme"
)

// AppState holds the window shell around a drawing session.
type AppState struct {
	Session  *session.Session
	Settings *settings.Settings
	Theme    *theme.Theme
	Output   string

	dialogs  *Dialogs
	notifier *notify.Notifier

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSession sets the session the window edits.
func WithSession(s *session.Session) Option { return func(a *AppState) { a.Session = s } }

// WithSettings sets the stroke settings the toolbar edits. They must be the
// settings the session draws with.
func WithSettings(s *settings.Settings) Option { return func(a *AppState) { a.Settings = s } }

// WithTheme sets the colours of the window chrome.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithOutput sets the path Ctrl+S saves to.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithDialogs routes the session's prompts through the window.
func WithDialogs(d *Dialogs) Option { return func(a *AppState) { a.dialogs = d } }

// WithNotifier sets the desktop notifier used for save and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{Output: "drawing.png"}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.Settings == nil {
		a.Settings = settings.New()
	}
	if a.dialogs == nil {
		a.dialogs = NewDialogs(nil, a.notifier)
	}
	if a.Session == nil {
		a.Session = session.New(session.WithSettings(a.Settings), session.WithPrompter(a.dialogs))
	}
	return a
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// keymap resolves key events to action names. Entries registered with a Code
// match on code and modifiers; entries with a Rune match the lower-cased rune
// with shift ignored.
type keymap map[KeyShortcut]string

func (km keymap) add(name string, keys KeyboardShortcuts) {
	if keys == nil {
		return
	}
	for _, sc := range keys.KeyboardShortcuts() {
		km[sc] = name
	}
}

func (km keymap) lookup(e key.Event) (string, bool) {
	if name, ok := km[KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}]; ok {
		return name, true
	}
	if e.Rune <= 0 {
		return "", false
	}
	name, ok := km[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: e.Modifiers &^ key.ModShift}]
	return name, ok
}

// statusLine summarises the session for the top bar.
func statusLine(s *session.Session, st *settings.Settings) string {
	dash := "solid"
	if st.Dashed() {
		dash = "dashed"
	}
	b := s.Bounds()
	return fmt.Sprintf("%s  %s  %dpx %s  %dx%d  undo:%d redo:%d",
		s.Tool(), settings.HexString(st.Color()), st.LineWidth(), dash,
		b.Dx(), b.Dy(), s.History().UndoDepth(), s.History().RedoDepth())
}

// windowHost lets dialogs run a nested event loop on the window.
type windowHost struct {
	screen.Window
	show   func(*dialog)
	resize func(size.Event)
	close  func()
}

func (h *windowHost) showDialog(d *dialog)    { h.show(d) }
func (h *windowHost) handleSize(e size.Event) { h.resize(e) }
func (h *windowHost) markClosed()             { h.close() }

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	sess := a.Session
	st := a.Settings
	th := a.Theme

	fitToolbar()

	canvas := sess.Bounds()
	width := canvas.Dx() + toolbarWidth
	height := canvas.Dy() + statusHeight + bottomHeight
	if minHeight := toolbarBottom() + bottomHeight; height < minHeight {
		height = minHeight
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "ShineyPad"})
	if err != nil {
		logx.L().Error("new window", "err", err)
		return
	}
	defer w.Release()

	defer a.notifyClose()

	zoom := fitZoom(canvas, width, height)
	hover := noHover
	closed := false
	var message string
	var messageUntil time.Time

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for ps := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, ps)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	snapshot := func(d *dialog) paintState {
		return paintState{
			width:        width,
			height:       height,
			theme:        th,
			canvas:       sess.Surface().Image(),
			zoom:         zoom,
			tool:         sess.Tool(),
			color:        st.Color(),
			lineWidth:    st.LineWidth(),
			dashed:       st.Dashed(),
			hover:        hover,
			status:       statusLine(sess, st),
			message:      message,
			messageUntil: messageUntil,
			dialog:       d.frozen(),
		}
	}
	push := func(ps paintState) {
		paintMu.Lock()
		if paintCancel != nil && dropCount < frameDropThreshold {
			paintCancel()
			dropCount++
		}
		paintMu.Unlock()
		select {
		case paintCh <- ps:
		default:
			select {
			case <-paintCh:
			default:
			}
			paintCh <- ps
		}
	}
	repaint := func() { w.Send(paint.Event{}) }
	toast := func(msg string) {
		message = msg
		messageUntil = time.Now().Add(2 * time.Second)
		logx.L().Info(msg)
	}

	if a.dialogs != nil {
		a.dialogs.attach(&windowHost{
			Window: w,
			show:   func(d *dialog) { push(snapshot(d)) },
			resize: func(e size.Event) { width, height = e.WidthPx, e.HeightPx },
			close:  func() { closed = true },
		})
		defer a.dialogs.attach(nil)
	}

	report := func(op string, err error) {
		switch {
		case err == nil:
		case errors.Is(err, geometry.ErrInvalidParameter):
			// Already alerted by the tool.
			logx.L().Debug(op, "err", err)
		default:
			logx.L().Warn(op, "err", err)
			toast(fmt.Sprintf("%s: %v", op, err))
		}
	}

	actions := map[string]func(){}
	keys := keymap{}
	register := func(name string, ks KeyboardShortcuts, fn func()) {
		actions[name] = fn
		keys.add(name, ks)
	}

	for _, tk := range toolKeys {
		tk := tk
		register("tool:"+tk.tool.String(), shortcutList{{Rune: tk.r}}, func() {
			report("select tool", sess.SelectTool(tk.tool))
		})
	}
	register("dashed", shortcutList{{Rune: 'd'}}, func() { st.SetDashed(!st.Dashed()) })
	register("undo", shortcutList{{Code: key.CodeZ, Modifiers: key.ModControl}}, func() {
		if !sess.Undo() {
			toast("nothing to undo")
		}
	})
	register("redo", shortcutList{
		{Code: key.CodeY, Modifiers: key.ModControl},
		{Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift},
	}, func() {
		if !sess.Redo() {
			toast("nothing to redo")
		}
	})
	register("clear", shortcutList{{Code: key.CodeD, Modifiers: key.ModControl}}, func() { sess.Clear() })
	register("new", shortcutList{{Code: key.CodeN, Modifiers: key.ModControl}}, func() {
		b := sess.Bounds()
		ok, err := sess.NewCanvas(b.Dx(), b.Dy())
		report("new canvas", err)
		if ok {
			toast("new canvas")
		}
	})
	register("copy", shortcutList{{Code: key.CodeC, Modifiers: key.ModControl}}, func() {
		if err := sess.CopyToClipboard(); err != nil {
			report("copy", err)
			return
		}
		a.notifier.Copy("", sess.Export())
		toast("image copied to clipboard")
	})
	register("paste", shortcutList{{Code: key.CodeV, Modifiers: key.ModControl}}, func() {
		if _, err := sess.PasteFromClipboard(); err != nil {
			report("paste", err)
			return
		}
		toast("pasted image")
	})
	register("save", shortcutList{{Code: key.CodeS, Modifiers: key.ModControl}}, func() {
		format, err := sess.Save(a.Output)
		if err != nil {
			report("save", err)
			return
		}
		a.notifier.Save(a.Output)
		toast(fmt.Sprintf("saved %s (%s)", a.Output, format))
	})
	register("cancel", shortcutList{{Code: key.CodeEscape}}, func() { sess.Machine().Cancel() })
	register("zoomin", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { zoom *= 1.25 })
	register("zoomout", shortcutList{{Rune: '-'}}, func() {
		if zoom > 0.1 {
			zoom /= 1.25
		}
	})
	register("zoomfit", nil, func() { zoom = fitZoom(sess.Bounds(), width, height) })
	register("quit", shortcutList{{Rune: 'q'}}, func() { closed = true })

	trigger := func(action string) {
		if fn, ok := actions[action]; ok {
			fn()
		}
		repaint()
	}

	activate := func(h hotspot) {
		switch h.kind {
		case hotTool:
			trigger("tool:" + toolKeys[h.index].tool.String())
		case hotSwatch:
			st.SetColor(settings.Palette()[h.index].Color)
		case hotWidth:
			st.SetLineWidth(settings.WidthOptions()[h.index])
		case hotDashed:
			trigger("dashed")
		case hotShortcut:
			trigger(shortcuts(zoom)[h.index].action)
		}
		repaint()
	}

	for !closed {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				closed = true
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			repaint()
		case paint.Event:
			push(snapshot(nil))
		case key.Event:
			if e.Direction == key.DirRelease {
				continue
			}
			if action, ok := keys.lookup(e); ok {
				trigger(action)
			}
		case mouse.Event:
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				repaint()
				continue
			}
			p := image.Point{int(e.X), int(e.Y)}
			if h, ok := hitTest(p, height, zoom); ok {
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					activate(h)
				}
				if !h.same(hover) {
					hover = h
					repaint()
				}
				// Releases still reach the session so a drag that ends
				// over the toolbar commits.
				if e.Direction != mouse.DirRelease {
					continue
				}
			} else if hover.kind != hotNone {
				hover = noHover
				repaint()
			}
			ce := e
			cx, cy := canvasPoint(e.X, e.Y, imageRect(sess.Bounds(), zoom), zoom)
			ce.X, ce.Y = float32(cx), float32(cy)
			if err := sess.HandleMouse(ce); err != nil {
				report("draw", err)
			}
			if e.Direction != mouse.DirNone || sess.Machine().Active() {
				repaint()
			}
		}
	}

	paintMu.Lock()
	if paintCancel != nil {
		paintCancel()
	}
	paintMu.Unlock()
}
