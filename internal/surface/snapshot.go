package surface

import (
	"image"

	"github.com/google/uuid"
)

// Snapshot is an immutable copy of a surface's pixels. Only this package reads
// or writes the pixel data; other packages store and order snapshots.
type Snapshot struct {
	id     uuid.UUID
	bounds image.Rectangle
	pix    []byte
}

// ID identifies the snapshot in logs.
func (s Snapshot) ID() uuid.UUID { return s.id }

// Bounds returns the canvas bounds at capture time.
func (s Snapshot) Bounds() image.Rectangle { return s.bounds }

// IsZero reports whether s was never captured.
func (s Snapshot) IsZero() bool { return s.pix == nil }

// Size returns the number of pixel bytes held by s.
func (s Snapshot) Size() int { return len(s.pix) }

// Image returns a copy of the captured pixels.
func (s Snapshot) Image() *image.RGBA {
	out := image.NewRGBA(s.bounds)
	copy(out.Pix, s.pix)
	return out
}

// Snapshot captures the current buffer.
func (s *Surface) Snapshot() Snapshot {
	pix := make([]byte, len(s.img.Pix))
	copy(pix, s.img.Pix)
	return Snapshot{id: uuid.New(), bounds: s.img.Bounds(), pix: pix}
}

// Restore replaces the buffer with snap, adopting its bounds if the canvas
// was resized since it was taken. The snapshot itself is never aliased.
func (s *Surface) Restore(snap Snapshot) error {
	if snap.IsZero() {
		return ErrInvalidSnapshot
	}
	if !s.img.Bounds().Eq(snap.bounds) {
		s.img = image.NewRGBA(snap.bounds)
	}
	copy(s.img.Pix, snap.pix)
	return nil
}
