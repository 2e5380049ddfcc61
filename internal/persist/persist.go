// Package persist encodes exported canvases to disk. The file extension picks
// the codec; anything unrecognised is written as PNG.
package persist

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/shineypad/internal/logx"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// JPEGQuality is used for .jpg and .jpeg output.
const JPEGQuality = 92

// Format is an output codec.
type Format int

const (
	PNG Format = iota
	JPEG
	BMP
	TIFF
	PDF
)

func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	case PDF:
		return "pdf"
	}
	return "png"
}

// Ext returns the canonical extension, with its dot.
func (f Format) Ext() string {
	switch f {
	case JPEG:
		return ".jpg"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tiff"
	case PDF:
		return ".pdf"
	}
	return ".png"
}

// FormatForPath picks the codec for path by extension, defaulting to PNG.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return JPEG
	case ".bmp":
		return BMP
	case ".tif", ".tiff":
		return TIFF
	case ".pdf":
		return PDF
	}
	return PNG
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case PDF:
		return encodePDF(w, img)
	}
	return png.Encode(w, img)
}

// encodePDF places img on a single page sized to it, one point per pixel.
func encodePDF(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	b := img.Bounds()
	wd, ht := float64(b.Dx()), float64(b.Dy())
	// Portrait keeps Wd and Ht as given; landscape would swap them.
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("canvas", opts, &buf)
	doc.ImageOptions("canvas", 0, 0, wd, ht, false, opts, 0, "")
	if err := doc.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return doc.Output(w)
}

// Save encodes img to path using the codec its extension selects and returns
// that codec. The image is written to a temporary file beside path and renamed
// over it, so a failed save leaves any existing file intact.
func Save(path string, img image.Image) (Format, error) {
	f := FormatForPath(path)
	out, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return f, fmt.Errorf("create %q: %w", path, err)
	}
	tmp := out.Name()
	discard := func() {
		if rerr := os.Remove(tmp); rerr != nil {
			logx.L().Warn("save: removing partial file", "path", tmp, "err", rerr)
		}
	}
	if err := Encode(out, img, f); err != nil {
		if cerr := out.Close(); cerr != nil {
			logx.L().Warn("save: closing file", "path", tmp, "err", cerr)
		}
		discard()
		return f, fmt.Errorf("write %s to %q: %w", f, path, err)
	}
	if err := out.Close(); err != nil {
		discard()
		return f, fmt.Errorf("close %q: %w", path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		logx.L().Warn("save: setting mode", "path", tmp, "err", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		discard()
		return f, fmt.Errorf("replace %q: %w", path, err)
	}
	logx.L().Info("saved", "path", path, "format", f)
	return f, nil
}
