// Package bitmap loads images from disk or memory into RGBA buffers ready to
// be composited onto a canvas.
package bitmap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage is returned for content that is not a recognised image.
	ErrNotImage = errors.New("not an image")
	// ErrEmpty is returned for zero-sized images and empty files.
	ErrEmpty = errors.New("empty image")
)

// LoadError reports why a bitmap could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "load bitmap: " + e.Err.Error()
	}
	return fmt.Sprintf("load bitmap %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Bitmap is a decoded image normalised to RGBA with its origin at (0,0).
type Bitmap struct {
	Image  *image.RGBA
	Width  int
	Height int
	// Format is the decoder name, such as "png".
	Format string
}

// FromImage normalises img into a Bitmap.
func FromImage(img image.Image) (Bitmap, error) {
	if img == nil || img.Bounds().Empty() {
		return Bitmap{}, &LoadError{Err: ErrEmpty}
	}
	rgba := clone.AsRGBA(img)
	if b := rgba.Bounds(); b.Min != (image.Point{}) {
		// Rebase the same pixels at the origin.
		rgba.Rect = image.Rect(0, 0, b.Dx(), b.Dy())
	}
	return Bitmap{Image: rgba, Width: rgba.Bounds().Dx(), Height: rgba.Bounds().Dy()}, nil
}

// Load sniffs and decodes an image from r.
func Load(r io.Reader) (Bitmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Bitmap{}, &LoadError{Err: err}
	}
	return decode(data)
}

// LoadFile reads and decodes the image at path.
func LoadFile(path string) (Bitmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bitmap{}, &LoadError{Path: path, Err: err}
	}
	b, err := decode(data)
	var le *LoadError
	if errors.As(err, &le) {
		le.Path = path
	}
	return b, err
}

func decode(data []byte) (Bitmap, error) {
	if len(data) == 0 {
		return Bitmap{}, &LoadError{Err: ErrEmpty}
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return Bitmap{}, &LoadError{Err: fmt.Errorf("%w: detected %s", ErrNotImage, describe(kind.MIME.Value))}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Bitmap{}, &LoadError{Err: err}
	}
	b, err := FromImage(img)
	if err != nil {
		return Bitmap{}, err
	}
	b.Format = format
	return b, nil
}

func describe(mime string) string {
	if mime == "" {
		return "unknown content"
	}
	return mime
}
