// Package trail keeps the bounded, time-ordered history of pointer positions
// that the renderer turns into a fading stroke.
package trail

import "time"

// MaxSamples is the hard cap on retained trail samples.
const MaxSamples = 500

// evictionGraceMs keeps samples slightly past their fade time so a segment's
// older endpoint is still available while its newer end is being drawn.
const evictionGraceMs = 50

// Sample is one recorded pointer position. Immutable once created.
type Sample struct {
	X, Y int
	At   time.Time
}

// Buffer holds samples oldest-first with strictly non-decreasing timestamps.
type Buffer struct {
	samples []Sample
	fadeMs  float64
}

func NewBuffer(fadeMs float64) *Buffer {
	return &Buffer{
		samples: make([]Sample, 0, MaxSamples),
		fadeMs:  fadeMs,
	}
}

// Update records the current pointer position. A sample is appended only when
// the pointer has moved at least one pixel since the newest retained sample.
// When visible is false no sample is appended; the call still evicts expired
// samples so the trail drains after the pointer vanishes.
func (b *Buffer) Update(x, y int, visible bool, now time.Time) {
	if visible {
		add := len(b.samples) == 0
		if !add {
			last := b.samples[len(b.samples)-1]
			dx := x - last.X
			dy := y - last.Y
			add = dx*dx+dy*dy >= 1
		}

		if add {
			b.samples = append(b.samples, Sample{X: x, Y: y, At: now})
			if len(b.samples) > MaxSamples {
				b.samples = b.samples[1:]
			}
		}
	}

	b.evict(now)
}

func (b *Buffer) evict(now time.Time) {
	maxAge := b.fadeMs + evictionGraceMs
	for len(b.samples) > 0 {
		ageMs := float64(now.Sub(b.samples[0].At)) / float64(time.Millisecond)
		if ageMs <= maxAge {
			break
		}
		b.samples = b.samples[1:]
	}
}

// Samples returns the retained history oldest-first. The slice is only valid
// until the next Update.
func (b *Buffer) Samples() []Sample {
	return b.samples
}

func (b *Buffer) Len() int {
	return len(b.samples)
}
