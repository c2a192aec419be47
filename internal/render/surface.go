package render

import (
	"fmt"
	"image"
)

// maxSurfaceDim guards against absurd allocation requests from corrupt
// display metrics.
const maxSurfaceDim = 16384

// Surface is a premultiplied-alpha RGBA pixel buffer.
type Surface struct {
	img *image.RGBA
}

// EnsureSize reallocates the surface when it is smaller than w x h. An
// existing surface that already covers the requested size is kept, so a
// backbuffer never shrinks across display-geometry changes.
func (s *Surface) EnsureSize(w, h int) error {
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	if w > maxSurfaceDim || h > maxSurfaceDim {
		return fmt.Errorf("surface size %dx%d exceeds limit", w, h)
	}
	if s.img != nil && s.img.Rect.Dx() >= w && s.img.Rect.Dy() >= h {
		return nil
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

// EnsureExactSize reallocates whenever the dimensions differ, for scratch
// surfaces that must match the glyph exactly.
func (s *Surface) EnsureExactSize(w, h int) error {
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	if w > maxSurfaceDim || h > maxSurfaceDim {
		return fmt.Errorf("surface size %dx%d exceeds limit", w, h)
	}
	if s.img != nil && s.img.Rect.Dx() == w && s.img.Rect.Dy() == h {
		return nil
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

// Clear resets every pixel to transparent black.
func (s *Surface) Clear() {
	if s.img == nil {
		return
	}
	pix := s.img.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// Image exposes the backing pixels. Nil before the first EnsureSize.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

func (s *Surface) Width() int {
	if s.img == nil {
		return 0
	}
	return s.img.Rect.Dx()
}

func (s *Surface) Height() int {
	if s.img == nil {
		return 0
	}
	return s.img.Rect.Dy()
}
