package main

import (
	"flag"
	"fmt"

	"github.com/example/shineypad/internal/settings"
)

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	cmd := &colorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	palette := settings.Palette()
	if len(palette) == 0 {
		fmt.Fprintln(c.stdout, "no colors available")
		return nil
	}
	def, err := c.config.Settings()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "available palette colors (* marks the default color):")
	for idx, entry := range palette {
		marker := " "
		if entry.Color == def.Color() {
			marker = "*"
		}
		hex := settings.HexString(entry.Color)
		name := entry.Name
		if name == "" {
			name = hex
		}
		block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", entry.Color.R, entry.Color.G, entry.Color.B)
		fmt.Fprintf(c.stdout, "%s %2d: %-12s %s %s\n", marker, idx, name, hex, block)
	}
	return nil
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

type widthsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseWidthsCmd(args []string, r *root) (*widthsCmd, error) {
	fs := flag.NewFlagSet("widths", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	cmd := &widthsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *widthsCmd) Run() error {
	widths := settings.WidthOptions()
	if len(widths) == 0 {
		fmt.Fprintln(c.stdout, "no widths available")
		return nil
	}
	fmt.Fprintln(c.stdout, "available stroke widths (* marks the default width):")
	for _, width := range widths {
		marker := " "
		if width == c.config.Style.LineWidth {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %3dpx\n", marker, width)
	}
	return nil
}

func (c *widthsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}
