// Package cursor tracks the identity and geometry of the current pointer
// glyph so the renderer only re-queries the OS when the shape changes.
package cursor

// defaultSize is used when the OS reports a zero-sized glyph bitmap.
const defaultSize = 32

// Glyph describes the current pointer shape. ID is the OS identity of the
// shape; two glyphs with equal IDs are the same bitmap.
type Glyph struct {
	ID            uintptr
	Width, Height int
	HotX, HotY    int
}

// Source resolves a glyph identity to its geometry and hotspot.
type Source interface {
	Info(id uintptr) (Glyph, error)
}

// Cache holds the most recently resolved glyph. Refresh is a no-op while the
// OS keeps reporting the same identity.
type Cache struct {
	current Glyph
}

// Refresh re-queries glyph geometry when id differs from the cached identity.
// A failed query keeps the previous glyph; the mismatched identity means the
// next call retries automatically.
func (c *Cache) Refresh(id uintptr, src Source) error {
	if id == c.current.ID {
		return nil
	}

	g, err := src.Info(id)
	if err != nil {
		return err
	}

	if g.Width == 0 {
		g.Width = defaultSize
	}
	if g.Height == 0 {
		g.Height = defaultSize
	}
	c.current = g
	return nil
}

// Current returns the cached glyph. Zero value until the first Refresh.
func (c *Cache) Current() Glyph {
	return c.current
}
