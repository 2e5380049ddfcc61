// Package script replays recorded gestures against a drawing session. Scripts
// are YAML documents; the interactive shell feeds the same steps one line at
// a time.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/session"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/tools"
	"gopkg.in/yaml.v3"
)

// ErrBadStep is returned for a step that names no action or more than one.
var ErrBadStep = errors.New("bad step")

// Canvas sizes the session a script runs on.
type Canvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Script is a parsed gesture script.
type Script struct {
	Canvas *Canvas `yaml:"canvas,omitempty"`
	Steps  []Step  `yaml:"steps"`
}

// Point is an x, y pair written as a two element list.
type Point [2]float64

// Step is one action. Exactly one action field may be set; AllowError lets a
// step fail without stopping the run.
type Step struct {
	Tool   string   `yaml:"tool,omitempty"`
	Color  string   `yaml:"color,omitempty"`
	Width  *int     `yaml:"width,omitempty"`
	Dashed *bool    `yaml:"dashed,omitempty"`
	Down   *Point   `yaml:"down,omitempty"`
	Move   *Point   `yaml:"move,omitempty"`
	Up     *Point   `yaml:"up,omitempty"`
	Drag   []Point  `yaml:"drag,omitempty"`
	Answer []string `yaml:"answer,omitempty"`
	Undo   int      `yaml:"undo,omitempty"`
	Redo   int      `yaml:"redo,omitempty"`
	Clear  bool     `yaml:"clear,omitempty"`
	New    *Canvas  `yaml:"new,omitempty"`
	Open   string   `yaml:"open,omitempty"`
	Save   string   `yaml:"save,omitempty"`

	AllowError bool `yaml:"allow_error,omitempty"`
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{
		st.Tool != "", st.Color != "", st.Width != nil, st.Dashed != nil,
		st.Down != nil, st.Move != nil, st.Up != nil, len(st.Drag) > 0,
		len(st.Answer) > 0, st.Undo > 0, st.Redo > 0, st.Clear, st.New != nil,
		st.Open != "", st.Save != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// Parse decodes a script, rejecting unknown keys.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Script
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return &sc, nil
		}
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range sc.Steps {
		if n := st.actions(); n != 1 {
			return nil, fmt.Errorf("step %d has %d actions: %w", i+1, n, ErrBadStep)
		}
		if len(st.Drag) == 1 {
			return nil, fmt.Errorf("step %d: drag needs at least two points: %w", i+1, ErrBadStep)
		}
	}
	return &sc, nil
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Runner executes steps against one session.
type Runner struct {
	Session  *session.Session
	Settings *settings.Settings
	Prompts  prompt.Prompter
}

// NewRunner builds a session for sc with a scripted prompter. The script's
// canvas size, when set, overrides any size in opts.
func NewRunner(sc *Script, st *settings.Settings, opts ...session.Option) *Runner {
	if st == nil {
		st = settings.New()
	}
	p := prompt.NewScripted()
	all := append([]session.Option{}, opts...)
	all = append(all, session.WithSettings(st), session.WithPrompter(p))
	if sc != nil && sc.Canvas != nil {
		all = append(all, session.WithSize(sc.Canvas.Width, sc.Canvas.Height))
	}
	return &Runner{Session: session.New(all...), Settings: st, Prompts: p}
}

// Run executes every step in order and stops at the first failure not marked
// allow_error.
func (r *Runner) Run(sc *Script) error {
	for i, st := range sc.Steps {
		if err := r.Exec(st); err != nil {
			if st.AllowError {
				continue
			}
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Exec performs a single step.
func (r *Runner) Exec(st Step) error {
	s := r.Session
	switch {
	case st.Tool != "":
		t, err := tools.ParseTool(st.Tool)
		if err != nil {
			return err
		}
		return s.SelectTool(t)
	case st.Color != "":
		c, err := settings.ParseColor(st.Color)
		if err != nil {
			return err
		}
		r.Settings.SetColor(c)
	case st.Width != nil:
		r.Settings.SetLineWidth(*st.Width)
	case st.Dashed != nil:
		r.Settings.SetDashed(*st.Dashed)
	case st.Down != nil:
		return s.PointerDown(st.Down[0], st.Down[1])
	case st.Move != nil:
		return s.PointerMove(st.Move[0], st.Move[1])
	case st.Up != nil:
		return s.PointerUp(st.Up[0], st.Up[1])
	case len(st.Drag) > 0:
		return r.drag(st.Drag)
	case len(st.Answer) > 0:
		sp, ok := r.Prompts.(*prompt.Scripted)
		if !ok {
			return fmt.Errorf("answers can only be queued for scripted prompts")
		}
		sp.Push(st.Answer...)
	case st.Undo > 0:
		for range st.Undo {
			s.Undo()
		}
	case st.Redo > 0:
		for range st.Redo {
			s.Redo()
		}
	case st.Clear:
		s.Clear()
	case st.New != nil:
		_, err := s.NewCanvas(st.New.Width, st.New.Height)
		return err
	case st.Open != "":
		_, err := s.Open(st.Open)
		return err
	case st.Save != "":
		_, err := s.Save(st.Save)
		return err
	default:
		return ErrBadStep
	}
	return nil
}

func (r *Runner) drag(pts []Point) error {
	if len(pts) < 2 {
		return fmt.Errorf("drag needs at least two points: %w", ErrBadStep)
	}
	s := r.Session
	if err := s.PointerDown(pts[0][0], pts[0][1]); err != nil {
		return err
	}
	for _, p := range pts[1:] {
		if err := s.PointerMove(p[0], p[1]); err != nil {
			return err
		}
	}
	last := pts[len(pts)-1]
	return s.PointerUp(last[0], last[1])
}

// ParseCommand turns an interactive line such as "drag 10 10 110 60" into a
// step.
func ParseCommand(line string) (Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Step{}, fmt.Errorf("empty command: %w", ErrBadStep)
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	nums := func(want int) ([]float64, error) {
		if len(args) < want || (want == 2 && len(args) != 2) || len(args)%2 != 0 {
			return nil, fmt.Errorf("%s needs %d coordinates: %w", name, want, ErrBadStep)
		}
		out := make([]float64, len(args))
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number: %w", name, a, ErrBadStep)
			}
			out[i] = v
		}
		return out, nil
	}
	one := func() (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("%s needs an argument: %w", name, ErrBadStep)
		}
		return strings.Join(args, " "), nil
	}
	count := func() (int, error) {
		if len(args) == 0 {
			return 1, nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%s: bad count %q: %w", name, args[0], ErrBadStep)
		}
		return n, nil
	}

	var st Step
	switch name {
	case "tool":
		v, err := one()
		st.Tool = v
		return st, err
	case "color", "colour":
		v, err := one()
		st.Color = v
		return st, err
	case "width":
		v, err := one()
		if err != nil {
			return st, err
		}
		w, err := strconv.Atoi(v)
		if err != nil {
			return st, fmt.Errorf("width: %q is not a number: %w", v, ErrBadStep)
		}
		st.Width = &w
	case "dashed", "solid":
		d := name == "dashed"
		if len(args) > 0 {
			b, err := strconv.ParseBool(args[0])
			if err != nil {
				return st, fmt.Errorf("%s: %q is not a boolean: %w", name, args[0], ErrBadStep)
			}
			d = b == d
		}
		st.Dashed = &d
	case "down", "move", "up":
		v, err := nums(2)
		if err != nil {
			return st, err
		}
		p := &Point{v[0], v[1]}
		switch name {
		case "down":
			st.Down = p
		case "move":
			st.Move = p
		default:
			st.Up = p
		}
	case "drag":
		v, err := nums(4)
		if err != nil {
			return st, err
		}
		for i := 0; i < len(v); i += 2 {
			st.Drag = append(st.Drag, Point{v[i], v[i+1]})
		}
	case "answer":
		if len(args) == 0 {
			st.Answer = []string{""}
		} else {
			st.Answer = args
		}
	case "undo":
		n, err := count()
		st.Undo = n
		return st, err
	case "redo":
		n, err := count()
		st.Redo = n
		return st, err
	case "clear":
		st.Clear = true
	case "new":
		v, err := nums(2)
		if err != nil {
			return st, err
		}
		st.New = &Canvas{Width: int(v[0]), Height: int(v[1])}
	case "open", "save":
		v, err := one()
		if err != nil {
			return st, err
		}
		if name == "open" {
			st.Open = v
		} else {
			st.Save = v
		}
	default:
		return st, fmt.Errorf("unknown command %q: %w", name, ErrBadStep)
	}
	return st, nil
}
