// Package render turns the sample buffer into a composited overlay frame:
// it tints and caches the pointer glyph, interpolates between samples and
// alpha-blends the glyph along the stroke onto an offscreen surface.
package render

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/obieFM/CursorBlur/internal/config"
	"github.com/obieFM/CursorBlur/internal/cursor"
	"github.com/obieFM/CursorBlur/internal/trail"
)

// minVisibleAlpha is the threshold below which a blend is skipped as
// visually negligible.
const minVisibleAlpha = 3

// fadeBiasFactor amplifies sample age toward the newer end of a segment so
// fade-out leans into the trailing edge. Tuned visually.
const fadeBiasFactor = 0.1

// GlyphRasterizer produces the pixel image of a pointer glyph.
type GlyphRasterizer interface {
	Rasterize(g cursor.Glyph) (*image.RGBA, error)
}

// Renderer owns the tinted-glyph cache and the scratch blend surface.
// It is single-threaded; one Renderer belongs to one frame loop.
type Renderer struct {
	sensitivity float32
	fadeMs      float32
	maxAlpha    float32
	tint        config.Tint

	// Tinted glyph cache, keyed by glyph identity and dimensions.
	tinted   *image.RGBA
	tintedID uintptr
	tintedW  int
	tintedH  int

	scratch Surface
	mask    image.Uniform
}

func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		sensitivity: float32(cfg.Sensitivity),
		fadeMs:      float32(cfg.FadeMs),
		maxAlpha:    float32(cfg.MaxAlpha),
		tint:        cfg.TintColor,
	}
}

// Render paints one complete frame of the trail into dst. origin is the
// virtual-screen origin so absolute pointer coordinates map onto the surface.
// A non-nil error means dst holds no usable frame and the caller must not
// present it; the cache key stays mismatched so the next frame retries.
func (r *Renderer) Render(dst *Surface, origin image.Point, g cursor.Glyph, raster GlyphRasterizer, samples []trail.Sample, now time.Time) error {
	if err := r.scratch.EnsureExactSize(g.Width, g.Height); err != nil {
		return fmt.Errorf("glyph scratch: %w", err)
	}

	if r.tinted == nil || g.ID != r.tintedID || g.Width != r.tintedW || g.Height != r.tintedH {
		img, err := raster.Rasterize(g)
		if err != nil {
			return fmt.Errorf("rasterize glyph %#x: %w", g.ID, err)
		}
		if img == nil {
			return fmt.Errorf("rasterize glyph %#x: no bitmap", g.ID)
		}
		applyTint(img, r.tint)
		r.tinted = img
		r.tintedID = g.ID
		r.tintedW = g.Width
		r.tintedH = g.Height
	}

	dst.Clear()

	// Fresh copy each frame keeps the tinted cache immutable under blends.
	r.scratch.Clear()
	draw.Copy(r.scratch.Image(), image.Point{}, r.tinted, r.tinted.Bounds(), draw.Src, nil)

	// Walk adjacent sample pairs newest-first so newer, more opaque strokes
	// are not occluded by older ones where they overlap.
	for i := len(samples) - 2; i >= 0; i-- {
		s0 := samples[i]
		s1 := samples[i+1]

		age0 := float32(now.Sub(s0.At)) / float32(time.Millisecond)
		if age0 > r.fadeMs {
			continue
		}

		dx := float32(s1.X - s0.X)
		dy := float32(s1.Y - s0.Y)
		distSq := dx*dx + dy*dy
		if distSq < 1 {
			continue
		}

		dist := math32.Sqrt(distSq)
		steps := int(math32.Ceil(dist))
		stepFrac := 1 / float32(steps)

		speed := clamp01(dist * r.sensitivity)

		// Interpolate between the pair to fill gaps with sub-pixel steps.
		for j := steps; j >= 0; j-- {
			t := float32(j) * stepFrac

			fade := 1 - (age0+age0*t*fadeBiasFactor)/r.fadeMs
			if fade < 0 {
				fade = 0
			}
			a := r.maxAlpha * fade * speed
			if a > 255 {
				a = 255
			}
			alpha := uint8(a)
			if alpha < minVisibleAlpha {
				continue
			}

			px := int(math32.Round(float32(s0.X) + dx*t))
			py := int(math32.Round(float32(s0.Y) + dy*t))
			r.blend(dst, px-origin.X-g.HotX, py-origin.Y-g.HotY, alpha)
		}
	}
	return nil
}

// blend composites the scratch glyph onto dst at (x, y) with one uniform
// alpha weight for the whole glyph.
func (r *Renderer) blend(dst *Surface, x, y int, alpha uint8) {
	src := r.scratch.Image()
	rect := image.Rect(x, y, x+src.Rect.Dx(), y+src.Rect.Dy())
	r.mask.C = color.Alpha{A: alpha}
	draw.DrawMask(dst.Image(), rect, src, image.Point{}, &r.mask, image.Point{}, draw.Over)
}

// applyTint multiplies each color channel by the tint channel over 255.
// The alpha channel is untouched. This is the only full-bitmap per-pixel
// pass; it runs once per glyph change, not per frame.
func applyTint(img *image.RGBA, t config.Tint) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = uint8(uint32(pix[i+0]) * uint32(t.R) / 255)
		pix[i+1] = uint8(uint32(pix[i+1]) * uint32(t.G) / 255)
		pix[i+2] = uint8(uint32(pix[i+2]) * uint32(t.B) / 255)
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
