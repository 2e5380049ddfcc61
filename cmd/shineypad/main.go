package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/shineypad/internal/clipboard"
	"github.com/example/shineypad/internal/config"
	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/notify"
	"github.com/example/shineypad/internal/session"
	"github.com/example/shineypad/internal/settings"
	"github.com/example/shineypad/internal/theme"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	configPath  string
	saveAlerts  bool
	copyAlerts  bool
	alertAlerts bool
	verbose     bool
	themeName   string
	activeTheme *theme.Theme
	clip        session.Clipboard

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

// scanConfigFlag finds -config ahead of flag parsing so the file can supply
// flag defaults.
func scanConfigFlag(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" || !strings.HasPrefix(a, "-") {
			return ""
		}
		name := strings.TrimLeft(a, "-")
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func newRoot(args []string) *root {
	configPath := scanConfigFlag(args)
	loader := config.NewLoader(version, configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return newRootWithConfig(cfg, os.Stdin, os.Stdout, os.Stderr)
}

func newRootWithConfig(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) *root {
	r := &root{
		fs:       flag.NewFlagSet("shineypad", flag.ContinueOnError),
		program:  "shineypad",
		notifier: notify.New(notify.LoadPreferences()),
		config:   cfg,
		clip:     clipboard.System{},
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}
	r.fs.SetOutput(stderr)
	r.fs.StringVar(&r.configPath, "config", "", "path to a config.rc file")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.alertAlerts, "notify-alert", cfg.Notify.Alert, "mirror tool alerts as desktop notifications")
	r.fs.BoolVar(&r.verbose, "v", false, "log debug detail to stderr")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme for the window (default, light, dark)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) setupLogging() {
	level := slog.LevelWarn
	if r.verbose {
		level = slog.LevelDebug
	}
	logx.Set(slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level})))
}

func (r *root) loadTheme() *theme.Theme {
	themeName := r.themeName
	if themeName == "" {
		themeName = os.Getenv("SHINEYPAD_THEME")
	}
	if themeName == "" {
		themeName = r.config.Theme
	}

	// 1. Check loaded themes from Config
	if cfgTheme, ok := r.config.Themes[themeName]; ok {
		return cfgTheme
	}
	// 2. Fallback to standard theme loader (File / Builtin / User / System)
	t, err := theme.NewLoader().Load(themeName)
	if err != nil {
		if themeName != "" && themeName != "default" {
			fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", themeName, err)
		}
		return theme.Default()
	}
	return t
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.setupLogging()
	r.notifier.Enable(notify.EventSave, r.saveAlerts)
	r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	r.notifier.Enable(notify.EventAlert, r.alertAlerts)
	r.activeTheme = r.loadTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "replay":
		cmd, err = parseReplayCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "window":
		cmd, err = parseWindowCmd(subArgs, r)
	case "colors":
		cmd, err = parseColorsCmd(subArgs, r)
	case "widths":
		cmd, err = parseWidthsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot(os.Args[1:])
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sessionOptions turns the loaded configuration into session options.
func (r *root) sessionOptions() ([]session.Option, error) {
	cfg := r.config
	g, err := cfg.Granularity()
	if err != nil {
		return nil, err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithSize(cfg.Width, cfg.Height),
		session.WithGranularity(g),
		session.WithHistoryLimit(cfg.History.Limit),
		session.WithTextSize(cfg.Style.TextSize),
		session.WithClipboard(r.clip),
	}
	if bg != nil {
		opts = append(opts, session.WithBackground(bg))
	}
	return opts, nil
}

// styleSettings returns the configured stroke settings.
func (r *root) styleSettings() (*settings.Settings, error) {
	return r.config.Settings()
}

// outputPath resolves relative output paths against save_dir.
func (r *root) outputPath(p string) string {
	if p == "" || filepath.IsAbs(p) || r.config.SaveDir == "" {
		return p
	}
	return filepath.Join(r.config.SaveDir, p)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail, img)
}

// reportAlerts prints alerts a scripted prompter collected.
func (r *root) reportAlerts(alerts []string) {
	for _, a := range alerts {
		fmt.Fprintf(r.stderr, "alert: %s\n", a)
	}
	r.notifyAlerts(alerts)
}

func (r *root) notifyAlerts(alerts []string) {
	if r == nil || r.notifier == nil {
		return
	}
	for _, a := range alerts {
		title, msg, _ := strings.Cut(a, ": ")
		r.notifier.Alert(title, msg)
	}
}
