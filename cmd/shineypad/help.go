package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"sync"
	"text/template"

	"github.com/example/shineypad/internal/logx"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of  HelpData
	msg string
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	if e.msg != "" {
		return fmt.Sprintf("%s\n\n%s", e.msg, help)
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		logx.L().Error("rendering help template", "template", e.of.Template(), "err", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc prints the command's help template to its flag set's output.
func usageFunc(h HelpData) func() {
	return func() {
		uerr := &UsageError{of: h}
		help, err := uerr.renderHelp()
		if err != nil {
			return
		}
		out := h.FlagSet().Output()
		fmt.Fprint(out, help)
	}
}

func (r *root) Template() string {
	return "root.txt"
}

func (d *drawCmd) Template() string {
	return "draw.txt"
}

func (c *replayCmd) Template() string {
	return "replay.txt"
}

func (i *interactiveCmd) Template() string {
	return "interactive.txt"
}

func (w *windowCmd) Template() string {
	return "window.txt"
}

func (c *colorsCmd) Template() string {
	return "colors.txt"
}

func (c *widthsCmd) Template() string {
	return "widths.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func (v *versionCmd) Template() string {
	return "version.txt"
}
