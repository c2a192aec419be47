package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSizeNeverShrinks(t *testing.T) {
	var s Surface
	require.NoError(t, s.EnsureSize(100, 50))
	img := s.Image()

	require.NoError(t, s.EnsureSize(40, 20))
	assert.Same(t, img, s.Image(), "smaller request keeps the existing buffer")
	assert.Equal(t, 100, s.Width())
	assert.Equal(t, 50, s.Height())

	require.NoError(t, s.EnsureSize(200, 50))
	assert.Equal(t, 200, s.Width())
}

func TestEnsureSizeDegenerateDimensions(t *testing.T) {
	var s Surface
	require.NoError(t, s.EnsureSize(0, -3))
	assert.Equal(t, 1, s.Width())
	assert.Equal(t, 1, s.Height())
}

func TestEnsureSizeRejectsAbsurdDimensions(t *testing.T) {
	var s Surface
	assert.Error(t, s.EnsureSize(1<<20, 1))
}

func TestEnsureExactSizeReallocatesOnAnyChange(t *testing.T) {
	var s Surface
	require.NoError(t, s.EnsureExactSize(32, 32))
	img := s.Image()

	require.NoError(t, s.EnsureExactSize(32, 32))
	assert.Same(t, img, s.Image())

	require.NoError(t, s.EnsureExactSize(16, 16))
	assert.Equal(t, 16, s.Width())
}

func TestClear(t *testing.T) {
	var s Surface
	require.NoError(t, s.EnsureSize(4, 4))
	for i := range s.Image().Pix {
		s.Image().Pix[i] = 200
	}

	s.Clear()
	for _, p := range s.Image().Pix {
		require.Zero(t, p)
	}
}

type capturePresenter struct {
	img    *image.RGBA
	origin image.Point
}

func (p *capturePresenter) Present(img *image.RGBA, origin image.Point) error {
	p.img = img
	p.origin = origin
	return nil
}

func TestCompositorResizeGrowsAndKeepsOrigin(t *testing.T) {
	c, err := NewCompositor(image.Rect(0, 0, 800, 600))
	require.NoError(t, err)
	assert.Equal(t, 800, c.Back().Width())

	// A display attached to the left grows the virtual screen and moves its
	// origin negative.
	require.NoError(t, c.Resize(image.Rect(-1024, 0, 800, 768)))
	assert.Equal(t, image.Point{X: -1024, Y: 0}, c.Origin())
	assert.Equal(t, 1824, c.Back().Width())
	assert.Equal(t, 768, c.Back().Height())

	// Shrinking geometry keeps the larger buffer.
	require.NoError(t, c.Resize(image.Rect(0, 0, 800, 600)))
	assert.Equal(t, 1824, c.Back().Width())
}

func TestCompositorPresent(t *testing.T) {
	c, err := NewCompositor(image.Rect(-10, -20, 90, 80))
	require.NoError(t, err)

	p := &capturePresenter{}
	require.NoError(t, c.Present(p))
	assert.Same(t, c.Back().Image(), p.img)
	assert.Equal(t, image.Point{X: -10, Y: -20}, p.origin)
}
