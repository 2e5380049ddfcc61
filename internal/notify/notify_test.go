package notify

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/shineypad/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func recorder(n *Notifier) *[]sent {
	var out []sent
	n.SetSender(func(title, body string, opts platform.Options) error {
		if opts.IconPath != "" {
			_, err := os.Stat(opts.IconPath)
			if err != nil {
				return err
			}
		}
		out = append(out, sent{title, body, opts})
		return nil
	})
	return &out
}

func TestDisabledEventsAreSilent(t *testing.T) {
	n := New(DefaultPreferences())
	got := recorder(n)
	n.Save("x.png")
	n.Copy("", nil)
	n.Alert("Invalid input", "at least 3")
	assert.Empty(t, *got)
}

func TestSaveUsesAbsolutePathAndIcon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pad.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	got := recorder(n)
	n.Save(path)

	require.Len(t, *got, 1)
	assert.Equal(t, "ShineyPad", (*got)[0].title)
	assert.Equal(t, "Saved "+path, (*got)[0].body)
	assert.Equal(t, path, (*got)[0].opts.IconPath)
}

func TestCopyAttachesPreview(t *testing.T) {
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)
	got := recorder(n)
	n.Copy("", image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.Len(t, *got, 1)
	assert.Equal(t, "Copied drawing to clipboard", (*got)[0].body)
	assert.NotEmpty(t, (*got)[0].opts.IconPath)
	_, err := os.Stat((*got)[0].opts.IconPath)
	assert.True(t, os.IsNotExist(err), "preview is removed after dispatch")
}

func TestAlertIsUrgent(t *testing.T) {
	n := New(DefaultPreferences())
	n.Enable(EventAlert, true)
	got := recorder(n)
	n.Alert("Invalid input", "A polygon needs at least 3 sides")

	require.Len(t, *got, 1)
	assert.Equal(t, "Invalid input: A polygon needs at least 3 sides", (*got)[0].body)
	assert.True(t, (*got)[0].opts.Urgent)
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("SHINEYPAD_NOTIFY_TITLE", "Pad")
	t.Setenv("SHINEYPAD_NOTIFY_SAVE_TEXT", "Wrote %s")
	prefs := LoadPreferences()
	assert.Equal(t, "Pad", prefs.Title)
	assert.Equal(t, "Wrote %s", prefs.Events[EventSave].Template)
	assert.Equal(t, "Copied %s to clipboard", prefs.Events[EventCopy].Template)
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.Enable(EventSave, true)
		n.Save("x")
		n.Alert("a", "b")
	})
}
