//go:build !windows

package platform

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
	"golang.org/x/sys/unix"

	"github.com/obieFM/CursorBlur/internal/cursor"
)

// arrowGlyphID is the single glyph identity reported on hosts that cannot
// name the native cursor shape.
const arrowGlyphID = 1

const (
	arrowWidth  = 12
	arrowHeight = 19
)

type posixSystem struct{}

// NewSystem returns pointer and display services built on robotgo and the
// screenshot display enumeration. The overlay window itself is unavailable
// here; NewOverlay reports ErrUnsupported.
func NewSystem() (System, error) {
	return posixSystem{}, nil
}

func (posixSystem) PointerState() (Pointer, error) {
	x, y := robotgo.Location()
	return Pointer{X: x, Y: y, Visible: true, GlyphID: arrowGlyphID}, nil
}

func (posixSystem) Info(id uintptr) (cursor.Glyph, error) {
	if id != arrowGlyphID {
		return cursor.Glyph{}, fmt.Errorf("unknown glyph %#x", id)
	}
	return cursor.Glyph{ID: arrowGlyphID, Width: arrowWidth, Height: arrowHeight}, nil
}

// Rasterize draws a plain opaque arrow. There is no native glyph bitmap to
// query on this path.
func (posixSystem) Rasterize(g cursor.Glyph) (*image.RGBA, error) {
	w, h := g.Width, g.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("degenerate glyph %dx%d", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		span := (y*w + h - 1) / h
		if span >= w {
			span = w - 1
		}
		for x := 0; x <= span; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = 255
			img.Pix[i+1] = 255
			img.Pix[i+2] = 255
			img.Pix[i+3] = 255
		}
	}
	return img, nil
}

func (posixSystem) VirtualScreen() image.Rectangle {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rect(0, 0, 1, 1)
	}
	vs := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		vs = vs.Union(screenshot.GetDisplayBounds(i))
	}
	return vs
}

func (posixSystem) MaxRefreshHz() float64 {
	return 60
}

// NewOverlay always fails: a layered click-through desktop window has no
// portable equivalent on this build.
func NewOverlay(vs image.Rectangle) (Overlay, error) {
	return nil, ErrUnsupported
}

type fileLock struct {
	f *os.File
}

// AcquireLock takes a flock on a name-derived file under the temp directory.
func AcquireLock(name string) (Lock, error) {
	clean := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, name)
	path := filepath.Join(os.TempDir(), clean+".lock")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("flock: %w", err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) Release() {
	if l.f != nil {
		unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
		l.f.Close()
		l.f = nil
	}
}
