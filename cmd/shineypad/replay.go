package main

import (
	"flag"
	"fmt"

	"github.com/example/shineypad/internal/script"
)

// replayCmd runs a gesture script on a fresh session.
type replayCmd struct {
	*root
	fs     *flag.FlagSet
	path   string
	output string
}

func (c *replayCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	c := &replayCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "save the final canvas to this path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.path = fs.Arg(0)
	c.output = r.outputPath(c.output)
	return c, nil
}

func (c *replayCmd) Run() error {
	sc, err := script.ParseFile(c.path)
	if err != nil {
		return fmt.Errorf("load script %s: %w", c.path, err)
	}
	st, err := c.root.styleSettings()
	if err != nil {
		return err
	}
	opts, err := c.root.sessionOptions()
	if err != nil {
		return err
	}
	runner := script.NewRunner(sc, st, opts...)
	err = runner.Run(sc)
	if sp, ok := runner.Prompts.(interface{ Alerts() []string }); ok {
		c.root.reportAlerts(sp.Alerts())
	}
	if err != nil {
		return fmt.Errorf("replay %s: %w", c.path, err)
	}
	if c.output == "" {
		return nil
	}
	format, err := runner.Session.Save(c.output)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.output, err)
	}
	fmt.Fprintf(c.root.stderr, "saved %s (%s)\n", c.output, format)
	c.root.notifySave(c.output)
	return nil
}
