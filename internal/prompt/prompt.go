// Package prompt defines the modal dialogs the drawing tools block on, with a
// terminal implementation and a scripted one for replays and tests.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/shineypad/internal/logx"
)

// ErrDismissed is returned when the user closes a prompt without answering.
var ErrDismissed = errors.New("prompt dismissed")

// Prompter is the blocking modal surface. PromptInteger returns ErrDismissed
// when the prompt is closed and a parse error when the answer is not a number.
type Prompter interface {
	PromptInteger(title string, def int) (int, error)
	PromptText(title string) (string, error)
	Confirm(msg string) bool
	Alert(title, msg string)
}

// Terminal prompts on a line-oriented stream such as stdin.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal reads answers from r and writes questions to w.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(r), out: w}
}

// ReadLine prints label and reads one line, sharing the buffer prompts read
// from. It returns io.EOF once input ends.
func (t *Terminal) ReadLine(label string) (string, error) {
	if label != "" {
		fmt.Fprint(t.out, label)
	}
	line, err := t.readLine()
	if errors.Is(err, ErrDismissed) {
		return "", io.EOF
	}
	return line, err
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
	case errors.Is(err, io.EOF):
		return "", ErrDismissed
	default:
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptInteger asks for a whole number. An empty answer accepts def.
func (t *Terminal) PromptInteger(title string, def int) (int, error) {
	fmt.Fprintf(t.out, "%s [%d]: ", title, def)
	line, err := t.readLine()
	if err != nil {
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return ParseInteger(line)
}

// PromptText asks for a line of text. An empty answer counts as dismissed.
func (t *Terminal) PromptText(title string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", title)
	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", ErrDismissed
	}
	return line, nil
}

// Confirm asks a yes/no question; anything but y or yes declines.
func (t *Terminal) Confirm(msg string) bool {
	fmt.Fprintf(t.out, "%s [y/N]: ", msg)
	line, err := t.readLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (t *Terminal) Alert(title, msg string) {
	fmt.Fprintf(t.out, "%s: %s\n", title, msg)
}

// ParseInteger parses a prompt answer, ignoring surrounding space.
func ParseInteger(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return n, nil
}

// Scripted answers prompts from a queue. An exhausted queue hands prompts to
// the fallback, or without one dismisses every prompt and declines every
// confirmation.
type Scripted struct {
	answers  []string
	alerts   []string
	fallback Prompter
}

// NewScripted queues answers in the order they will be consumed.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Push appends answers to the queue.
func (s *Scripted) Push(answers ...string) {
	s.answers = append(s.answers, answers...)
}

// Alerts returns every alert shown so far as "title: msg".
func (s *Scripted) Alerts() []string { return s.alerts }

// SetFallback sets the prompter consulted once the queue is empty. Alerts are
// recorded and also forwarded to it.
func (s *Scripted) SetFallback(p Prompter) { s.fallback = p }

// Pending reports how many answers are still queued.
func (s *Scripted) Pending() int { return len(s.answers) }

func (s *Scripted) next() (string, bool) {
	if len(s.answers) == 0 {
		return "", false
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, true
}

func (s *Scripted) PromptInteger(title string, def int) (int, error) {
	a, ok := s.next()
	if !ok {
		if s.fallback != nil {
			return s.fallback.PromptInteger(title, def)
		}
		return 0, ErrDismissed
	}
	if strings.TrimSpace(a) == "" {
		return def, nil
	}
	return ParseInteger(a)
}

func (s *Scripted) PromptText(title string) (string, error) {
	a, ok := s.next()
	if !ok && s.fallback != nil {
		return s.fallback.PromptText(title)
	}
	if !ok || a == "" {
		return "", ErrDismissed
	}
	return a, nil
}

func (s *Scripted) Confirm(msg string) bool {
	a, ok := s.next()
	if !ok {
		return s.fallback != nil && s.fallback.Confirm(msg)
	}
	switch strings.ToLower(strings.TrimSpace(a)) {
	case "y", "yes", "true":
		return true
	}
	return false
}

func (s *Scripted) Alert(title, msg string) {
	logx.L().Warn("alert", "title", title, "msg", msg)
	s.alerts = append(s.alerts, title+": "+msg)
	if s.fallback != nil {
		s.fallback.Alert(title, msg)
	}
}
