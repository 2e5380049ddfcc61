package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/shineypad/internal/bitmap"
	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/script"
	"github.com/example/shineypad/internal/session"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/tools"
)

// drawCmd applies one tool gesture to an image, or to a blank canvas, and
// saves the result.
type drawCmd struct {
	file          string
	output        string
	fromClipboard bool
	toClipboard   bool
	colorSpec     string
	width         int
	dashed        bool
	textSize      float64
	tool          tools.Tool
	points        []script.Point
	answers       []string
	*root
	fs *flag.FlagSet
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

var drawFlagNames = map[string]struct{}{
	"file":           {},
	"output":         {},
	"from-clipboard": {},
	"from-clip":      {},
	"to-clipboard":   {},
	"to-clip":        {},
	"color":          {},
	"width":          {},
	"dashed":         {},
	"text-size":      {},
	"h":              {},
	"help":           {},
}

var drawBoolFlags = map[string]struct{}{
	"from-clipboard": {},
	"from-clip":      {},
	"to-clipboard":   {},
	"to-clip":        {},
	"dashed":         {},
	"h":              {},
	"help":           {},
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	style := r.config.Style
	fs.StringVar(&d.file, "file", "", "input image file")
	fs.StringVar(&d.output, "output", "", "output file path (defaults to input file)")
	fs.BoolVar(&d.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&d.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&d.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	fs.StringVar(&d.colorSpec, "color", style.Color, "stroke color name or hex value")
	fs.IntVar(&d.width, "width", style.LineWidth, "stroke width in pixels")
	fs.BoolVar(&d.dashed, "dashed", style.Dashed, "draw dashed strokes")
	fs.Float64Var(&d.textSize, "text-size", style.TextSize, "text size in points")

	flagArgs, positionals, err := splitDrawArgs(args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: d}
	}
	d.tool, err = tools.ParseTool(positionals[0])
	if err != nil {
		return nil, &UsageError{of: d, msg: err.Error()}
	}
	if err := d.parseOperands(positionals[1:]); err != nil {
		return nil, err
	}
	if _, err := settings.ParseColor(d.colorSpec); err != nil {
		return nil, err
	}
	if d.output == "" {
		switch {
		case d.fromClipboard:
			return nil, fmt.Errorf("output file is required when reading from the clipboard")
		case d.file != "":
			d.output = d.file
		default:
			return nil, fmt.Errorf("output file is required")
		}
	}
	if d.fromClipboard && d.file != "" {
		return nil, fmt.Errorf("-file and -from-clipboard cannot be combined")
	}
	if d.textSize <= 0 {
		return nil, fmt.Errorf("text-size must be positive")
	}
	d.output = r.outputPath(d.output)
	return d, nil
}

func (d *drawCmd) parseOperands(args []string) error {
	name := d.tool.String()
	switch d.tool {
	case tools.ToolText:
		if len(args) < 3 {
			return fmt.Errorf("text requires x y and content")
		}
		pts, err := expectPoints(args[:2], 2, name)
		if err != nil {
			return err
		}
		d.points = pts
		text := strings.Join(args[2:], " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("text content cannot be empty")
		}
		d.answers = []string{text}
	case tools.ToolPolygon, tools.ToolStar:
		// An empty answer takes the prompt's default count.
		coords, count := args, ""
		if len(args) == 5 {
			coords, count = args[:4], args[4]
		}
		d.answers = []string{count}
		pts, err := expectPoints(coords, 4, name)
		if err != nil {
			return err
		}
		d.points = pts
	case tools.ToolFreehand, tools.ToolEraser:
		if len(args) < 4 || len(args)%2 != 0 {
			return fmt.Errorf("%s requires at least two x y pairs", name)
		}
		pts, err := expectPoints(args, len(args), name)
		if err != nil {
			return err
		}
		d.points = pts
	default:
		pts, err := expectPoints(args, 4, name)
		if err != nil {
			return err
		}
		d.points = pts
	}
	return nil
}

func expectPoints(args []string, n int, name string) ([]script.Point, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d numeric arguments", name, n)
	}
	vals := make([]float64, n)
	for i, raw := range args {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		vals[i] = v
	}
	pts := make([]script.Point, 0, n/2)
	for i := 0; i+1 < n; i += 2 {
		pts = append(pts, script.Point{vals[i], vals[i+1]})
	}
	return pts, nil
}

// newSession builds the session the gesture runs on, sized to the source
// image when there is one.
func (d *drawCmd) newSession(p prompt.Prompter, st *settings.Settings) (*session.Session, error) {
	opts, err := d.root.sessionOptions()
	if err != nil {
		return nil, err
	}
	src, err := d.loadSource()
	if err != nil {
		return nil, err
	}
	if src.Image != nil {
		opts = append(opts, session.WithSize(src.Width, src.Height))
	}
	opts = append(opts, session.WithSettings(st), session.WithPrompter(p), session.WithTextSize(d.textSize))
	sess := session.New(opts...)
	if src.Image != nil {
		if _, err := sess.Import(src); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (d *drawCmd) loadSource() (bitmap.Bitmap, error) {
	switch {
	case d.fromClipboard:
		if d.root.clip == nil {
			return bitmap.Bitmap{}, session.ErrNoClipboard
		}
		img, err := d.root.clip.ReadImage()
		if err != nil {
			return bitmap.Bitmap{}, fmt.Errorf("read clipboard image: %w", err)
		}
		return bitmap.FromImage(img)
	case d.file != "":
		return bitmap.LoadFile(d.file)
	}
	return bitmap.Bitmap{}, nil
}

func (d *drawCmd) Run() error {
	c, err := settings.ParseColor(d.colorSpec)
	if err != nil {
		return err
	}
	st := settings.New(settings.WithColor(c), settings.WithLineWidth(d.width), settings.WithDashed(d.dashed))
	p := prompt.NewScripted()
	sess, err := d.newSession(p, st)
	if err != nil {
		return err
	}

	p.Push(d.answers...)
	err = d.gesture(sess)
	d.root.reportAlerts(p.Alerts())
	if err != nil {
		return fmt.Errorf("draw %s: %w", d.tool, err)
	}

	format, err := sess.Save(d.output)
	if err != nil {
		return fmt.Errorf("save %s: %w", d.output, err)
	}
	saved := d.output
	if abs, err := filepath.Abs(d.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(d.root.stderr, "saved %s (%s)\n", saved, format)
	d.root.notifySave(saved)
	if d.toClipboard {
		if err := sess.CopyToClipboard(); err != nil {
			return err
		}
		detail := filepath.Base(d.output)
		fmt.Fprintf(d.root.stderr, "copied %s to clipboard\n", detail)
		d.root.notifyCopy(detail, sess.Export())
	}
	return nil
}

// gesture selects the tool and replays the pointer path.
func (d *drawCmd) gesture(sess *session.Session) error {
	if err := sess.SelectTool(d.tool); err != nil {
		return err
	}
	pts := d.points
	if err := sess.PointerDown(pts[0][0], pts[0][1]); err != nil {
		return err
	}
	for _, pt := range pts[1:] {
		if err := sess.PointerMove(pt[0], pt[1]); err != nil {
			return err
		}
	}
	last := pts[len(pts)-1]
	return sess.PointerUp(last[0], last[1])
}

func splitDrawArgs(args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			positionals = append(positionals, arg)
			continue
		}
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		if _, ok := drawFlagNames[base]; !ok {
			positionals = append(positionals, arg)
			continue
		}
		// Normalise to single dash form for the flag parser.
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if _, ok := drawBoolFlags[base]; ok {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}
