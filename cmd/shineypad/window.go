package main

import (
	"flag"
	"fmt"

	"github.com/example/shineypad/internal/appstate"
	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/session"
)

// windowCmd opens the interactive drawing window.
type windowCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	output        string
	fromClipboard bool
}

func (w *windowCmd) FlagSet() *flag.FlagSet {
	return w.fs
}

func parseWindowCmd(args []string, r *root) (*windowCmd, error) {
	fs := flag.NewFlagSet("window", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	w := &windowCmd{root: r, fs: fs}
	fs.Usage = usageFunc(w)
	fs.StringVar(&w.file, "file", "", "image to open on the canvas")
	fs.StringVar(&w.output, "output", "drawing.png", "path written by the save shortcut")
	fs.BoolVar(&w.fromClipboard, "from-clipboard", false, "paste the clipboard image onto the canvas")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: w}
	}
	w.output = r.outputPath(w.output)
	return w, nil
}

func (w *windowCmd) Run() error {
	st, err := w.root.styleSettings()
	if err != nil {
		return err
	}
	opts, err := w.root.sessionOptions()
	if err != nil {
		return err
	}
	dialogs := appstate.NewDialogs(prompt.NewTerminal(w.root.stdin, w.root.stderr), w.root.notifier)
	opts = append(opts, session.WithSettings(st), session.WithPrompter(dialogs))
	sess := session.New(opts...)

	if w.file != "" {
		if _, err := sess.Open(w.file); err != nil {
			return fmt.Errorf("open %s: %w", w.file, err)
		}
	}
	if w.fromClipboard {
		if _, err := sess.PasteFromClipboard(); err != nil {
			return fmt.Errorf("paste from clipboard: %w", err)
		}
	}

	logx.L().Info("opening window", "session", sess.ID(), "output", w.output, "theme", w.root.activeTheme.Name)
	appstate.New(
		appstate.WithSession(sess),
		appstate.WithSettings(st),
		appstate.WithTheme(w.root.activeTheme),
		appstate.WithOutput(w.output),
		appstate.WithDialogs(dialogs),
		appstate.WithNotifier(w.root.notifier),
	).Run()
	return nil
}
