// Package platform wraps the OS services the overlay consumes: pointer
// state, glyph bitmaps, display geometry and the layered overlay window the
// composited frame is pushed to.
package platform

import (
	"errors"
	"image"

	"github.com/obieFM/CursorBlur/internal/cursor"
)

// ErrAlreadyRunning reports that another instance holds the single-instance
// lock. The second launch exits silently with code 0.
var ErrAlreadyRunning = errors.New("another instance is already running")

// ErrUnsupported reports that the host OS cannot provide a layered overlay
// surface.
var ErrUnsupported = errors.New("overlay not supported on this platform")

// Pointer is one sampled pointer state.
type Pointer struct {
	X, Y    int
	Visible bool
	GlyphID uintptr
}

// System provides pointer sampling, glyph resolution and display geometry.
type System interface {
	cursor.Source

	// PointerState samples the current pointer position, visibility and
	// glyph identity.
	PointerState() (Pointer, error)

	// Rasterize draws the glyph into a premultiplied RGBA image.
	Rasterize(g cursor.Glyph) (*image.RGBA, error)

	// VirtualScreen is the bounding rectangle of all display outputs.
	VirtualScreen() image.Rectangle

	// MaxRefreshHz is the highest refresh rate across displays.
	MaxRefreshHz() float64
}

// Overlay is a transparent, click-through, always-on-top window covering the
// virtual desktop.
type Overlay interface {
	// Pump drains pending OS messages without blocking and reports whether
	// a quit was requested.
	Pump() bool

	// Move repositions the window to a changed virtual screen.
	Move(r image.Rectangle)

	// Present submits the full frame with a uniform-opacity blend at the
	// virtual-screen origin.
	Present(img *image.RGBA, origin image.Point) error

	Close()
}

// Lock is a held single-instance lock.
type Lock interface {
	Release()
}
