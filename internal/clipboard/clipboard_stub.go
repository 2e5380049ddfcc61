//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("clipboard image operations are not supported on this platform")

func writeImage(image.Image) error {
	return errUnsupported
}

func readImage() (image.Image, error) {
	return nil, errUnsupported
}
