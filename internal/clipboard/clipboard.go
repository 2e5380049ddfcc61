// Package clipboard exchanges canvas images with the desktop clipboard.
package clipboard

import (
	"errors"
	"image"
	"os"

	"github.com/example/shineypad/internal/logx"
)

var (
	// ErrNoDisplay is returned when no X11 or Wayland display is reachable.
	ErrNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	// ErrNoImage is returned when the clipboard holds no image data.
	ErrNoImage = errors.New("clipboard does not contain image data")
)

// System is the desktop clipboard. The zero value is ready to use.
type System struct{}

// WriteImage encodes img as PNG and publishes it to the clipboard.
func (System) WriteImage(img image.Image) error {
	if err := writeImage(img); err != nil {
		logx.L().Debug("clipboard write failed", "err", err)
		return err
	}
	return nil
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func (System) ReadImage() (image.Image, error) {
	return readImage()
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
