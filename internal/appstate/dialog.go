package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/notify"
	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/theme"
)

type dialogKind int

const (
	dialogInteger dialogKind = iota
	dialogText
	dialogConfirm
	dialogAlert
)

// dialog is the state of one modal box drawn over the window.
type dialog struct {
	kind  dialogKind
	title string
	msg   string
	input []rune
	done  bool
	ok    bool
}

// frozen returns a copy the paint goroutine can read while the event loop
// keeps editing d.
func (d *dialog) frozen() *dialog {
	if d == nil {
		return nil
	}
	cp := *d
	cp.input = slices.Clone(d.input)
	return &cp
}

func (d *dialog) hint() string {
	switch d.kind {
	case dialogConfirm:
		return "Y: yes   N/Esc: no"
	case dialogAlert:
		return "Enter: close"
	}
	return "Enter: accept   Esc: cancel"
}

// handleKey applies one key event and reports whether the dialog changed.
func (d *dialog) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease || d.done {
		return false
	}
	switch d.kind {
	case dialogAlert:
		switch e.Code {
		case key.CodeReturnEnter, key.CodeEscape, key.CodeSpacebar:
			d.done, d.ok = true, true
			return true
		}
		return false
	case dialogConfirm:
		switch {
		case unicode.ToLower(e.Rune) == 'y':
			d.done, d.ok = true, true
		case unicode.ToLower(e.Rune) == 'n', e.Code == key.CodeEscape, e.Code == key.CodeReturnEnter:
			d.done, d.ok = true, false
		default:
			return false
		}
		return true
	}

	switch e.Code {
	case key.CodeReturnEnter:
		d.done, d.ok = true, true
		return true
	case key.CodeEscape:
		d.done, d.ok = true, false
		return true
	case key.CodeDeleteBackspace:
		if len(d.input) == 0 {
			return false
		}
		d.input = d.input[:len(d.input)-1]
		return true
	}
	if e.Modifiers&(key.ModControl|key.ModMeta) != 0 || e.Rune < 0 || !unicode.IsPrint(e.Rune) {
		return false
	}
	d.input = append(d.input, e.Rune)
	return true
}

// dialogHost is the window a dialog runs its nested event loop on.
type dialogHost interface {
	NextEvent() interface{}
	showDialog(d *dialog)
	handleSize(e size.Event)
	markClosed()
}

// Dialogs shows prompts as modal boxes inside the window. Until a window is
// attached, prompts go to the fallback prompter.
type Dialogs struct {
	mu       sync.Mutex
	host     dialogHost
	fallback prompt.Prompter
	notifier *notify.Notifier
}

var _ prompt.Prompter = (*Dialogs)(nil)

// NewDialogs creates a Dialogs. fallback may be nil, in which case prompts are
// dismissed while no window is attached.
func NewDialogs(fallback prompt.Prompter, n *notify.Notifier) *Dialogs {
	return &Dialogs{fallback: fallback, notifier: n}
}

func (ds *Dialogs) attach(h dialogHost) {
	ds.mu.Lock()
	ds.host = h
	ds.mu.Unlock()
}

func (ds *Dialogs) current() dialogHost {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.host
}

// run blocks on the host's events until d completes.
func (ds *Dialogs) run(h dialogHost, d *dialog) {
	h.showDialog(d)
	for !d.done {
		switch e := h.NextEvent().(type) {
		case key.Event:
			if d.handleKey(e) {
				h.showDialog(d)
			}
		case mouse.Event:
			if d.kind == dialogAlert && e.Direction == mouse.DirPress {
				d.done, d.ok = true, true
			}
		case size.Event:
			h.handleSize(e)
			h.showDialog(d)
		case paint.Event:
			h.showDialog(d)
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				h.markClosed()
				d.done, d.ok = true, false
			}
		}
	}
	h.showDialog(nil)
}

func (ds *Dialogs) PromptInteger(title string, def int) (int, error) {
	h := ds.current()
	if h == nil {
		if ds.fallback == nil {
			return 0, prompt.ErrDismissed
		}
		return ds.fallback.PromptInteger(title, def)
	}
	d := &dialog{kind: dialogInteger, title: title, input: []rune(strconv.Itoa(def))}
	ds.run(h, d)
	if !d.ok {
		return 0, prompt.ErrDismissed
	}
	answer := strings.TrimSpace(string(d.input))
	if answer == "" {
		return def, nil
	}
	return prompt.ParseInteger(answer)
}

func (ds *Dialogs) PromptText(title string) (string, error) {
	h := ds.current()
	if h == nil {
		if ds.fallback == nil {
			return "", prompt.ErrDismissed
		}
		return ds.fallback.PromptText(title)
	}
	d := &dialog{kind: dialogText, title: title}
	ds.run(h, d)
	if !d.ok || len(d.input) == 0 {
		return "", prompt.ErrDismissed
	}
	return string(d.input), nil
}

func (ds *Dialogs) Confirm(msg string) bool {
	h := ds.current()
	if h == nil {
		return ds.fallback != nil && ds.fallback.Confirm(msg)
	}
	d := &dialog{kind: dialogConfirm, title: "Confirm", msg: msg}
	ds.run(h, d)
	return d.ok
}

func (ds *Dialogs) Alert(title, msg string) {
	logx.L().Info("alert", "title", title, "msg", msg)
	ds.notifier.Alert(title, msg)
	h := ds.current()
	if h == nil {
		if ds.fallback != nil {
			ds.fallback.Alert(title, msg)
		}
		return
	}
	ds.run(h, &dialog{kind: dialogAlert, title: title, msg: msg})
}

func drawDialog(dst *image.RGBA, th *theme.Theme, d *dialog, width, height int) {
	lines := []string{d.title}
	if d.msg != "" {
		lines = append(lines, d.msg)
	}
	if d.kind == dialogInteger || d.kind == dialogText {
		lines = append(lines, "> "+string(d.input)+"_")
	}
	lines = append(lines, d.hint())

	meas := &font.Drawer{Face: basicfont.Face7x13}
	w := 200
	for _, l := range lines {
		if lw := meas.MeasureString(l).Ceil() + 24; lw > w {
			w = lw
		}
	}
	h := len(lines)*18 + 16
	x0 := (width - w) / 2
	y0 := (height - h) / 2
	rect := image.Rect(x0, y0, x0+w, y0+h)

	draw.Draw(dst, dst.Bounds(), &image.Uniform{color.RGBA{0, 0, 0, 96}}, image.Point{}, draw.Over)
	fill(dst, rect, th.ToolbarBackground)
	outline(dst, rect, th.ButtonBorder)
	for i, l := range lines {
		c := th.ButtonText
		if i == 0 {
			c = th.Foreground
		}
		label(dst, x0+12, y0+22+i*18, l, c)
	}
}
