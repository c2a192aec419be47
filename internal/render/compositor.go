package render

import "image"

// Presenter pushes a completed frame to the host's layered-surface
// compositing primitive.
type Presenter interface {
	Present(img *image.RGBA, origin image.Point) error
}

// Compositor owns the offscreen backbuffer sized to the virtual desktop and
// hands finished frames to a Presenter at the virtual-screen origin.
type Compositor struct {
	back   Surface
	origin image.Point
}

// NewCompositor allocates the backbuffer for the given virtual-screen
// rectangle. Allocation failure here is fatal to the caller.
func NewCompositor(vs image.Rectangle) (*Compositor, error) {
	c := &Compositor{origin: vs.Min}
	if err := c.back.EnsureSize(vs.Dx(), vs.Dy()); err != nil {
		return nil, err
	}
	return c, nil
}

// Resize grows the backbuffer to cover a changed virtual screen. The buffer
// never shrinks, so trail samples in flight survive a display change.
func (c *Compositor) Resize(vs image.Rectangle) error {
	c.origin = vs.Min
	return c.back.EnsureSize(vs.Dx(), vs.Dy())
}

// Back returns the backbuffer surface the renderer paints into.
func (c *Compositor) Back() *Surface {
	return &c.back
}

// Origin is the virtual-screen origin the current frame maps to.
func (c *Compositor) Origin() image.Point {
	return c.origin
}

// Present submits the full backbuffer to the presenter.
func (c *Compositor) Present(p Presenter) error {
	return p.Present(c.back.Image(), c.origin)
}
