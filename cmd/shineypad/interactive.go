package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/example/shineypad/internal/prompt"
	"github.com/example/shineypad/internal/script"
	"github.com/example/shineypad/internal/settings"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd drives one session from typed commands. Prompts the tools
// raise are answered from queued "answer" lines first and the terminal after.
type interactiveCmd struct {
	*root
	fs    *flag.FlagSet
	execs commandList

	term    *prompt.Terminal
	prompts *prompt.Scripted
	runner  *script.Runner
	alerted int
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	i := &interactiveCmd{root: r, fs: fs}
	fs.Usage = usageFunc(i)
	fs.Var(&i.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: i}
	}
	return i, nil
}

func (i *interactiveCmd) setup() error {
	st, err := i.root.styleSettings()
	if err != nil {
		return err
	}
	opts, err := i.root.sessionOptions()
	if err != nil {
		return err
	}
	i.term = prompt.NewTerminal(i.root.stdin, i.root.stdout)
	i.runner = script.NewRunner(nil, st, opts...)
	sp, ok := i.runner.Prompts.(*prompt.Scripted)
	if !ok {
		return errors.New("interactive shell needs a scripted prompter")
	}
	sp.SetFallback(i.term)
	i.prompts = sp
	return nil
}

func (i *interactiveCmd) Run() error {
	if err := i.setup(); err != nil {
		return err
	}
	if len(i.execs) > 0 {
		for _, line := range i.execs {
			done, err := i.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(i.root.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	for {
		line, err := i.term.ReadLine("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		done, err := i.executeLine(line)
		if err != nil {
			fmt.Fprintln(i.root.stderr, err)
		}
		if done {
			return nil
		}
	}
}

// executeLine runs one command and reports whether the shell should stop.
func (i *interactiveCmd) executeLine(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	defer i.flushAlerts()
	sess := i.runner.Session
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprint(i.root.stdout, (&UsageError{of: i}).Error())
		return false, nil
	case "status":
		i.printStatus()
		return false, nil
	case "copy":
		if err := sess.CopyToClipboard(); err != nil {
			return false, err
		}
		fmt.Fprintln(i.root.stdout, "copied canvas to clipboard")
		i.root.notifyCopy("canvas", sess.Export())
		return false, nil
	case "paste":
		at, err := sess.PasteFromClipboard()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(i.root.stdout, "pasted at %v\n", at)
		return false, nil
	}

	step, err := script.ParseCommand(line)
	if err != nil {
		return false, err
	}
	if step.Save != "" {
		step.Save = i.root.outputPath(step.Save)
	}
	if err := i.runner.Exec(step); err != nil {
		return false, err
	}
	if step.Save != "" {
		fmt.Fprintf(i.root.stdout, "saved %s\n", step.Save)
		i.root.notifySave(step.Save)
	}
	return false, nil
}

func (i *interactiveCmd) printStatus() {
	sess := i.runner.Session
	st := i.runner.Settings
	b := sess.Bounds()
	h := sess.History()
	dash := "solid"
	if st.Dashed() {
		dash = "dashed"
	}
	fmt.Fprintf(i.root.stdout, "tool %s | color %s | width %d %s | canvas %dx%d | undo %d redo %d\n",
		sess.Tool(), settings.HexString(st.Color()), st.LineWidth(), dash,
		b.Dx(), b.Dy(), h.UndoDepth(), h.RedoDepth())
}

// flushAlerts notifies about alerts raised since the last command. The
// terminal has already shown them.
func (i *interactiveCmd) flushAlerts() {
	all := i.prompts.Alerts()
	if i.alerted >= len(all) {
		return
	}
	i.root.notifyAlerts(all[i.alerted:])
	i.alerted = len(all)
}
