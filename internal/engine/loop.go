// Package engine paces the sample-render-present cycle against the fastest
// attached display and reacts to desktop geometry changes.
package engine

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/obieFM/CursorBlur/internal/config"
	"github.com/obieFM/CursorBlur/internal/cursor"
	"github.com/obieFM/CursorBlur/internal/platform"
	"github.com/obieFM/CursorBlur/internal/render"
	"github.com/obieFM/CursorBlur/internal/trail"
)

// Refresh pacing bounds. A driver reporting junk still yields a sane tick.
const (
	minRefreshHz = 30
	maxRefreshHz = 240
)

// Loop owns the per-tick pipeline: pump window messages, sample the pointer,
// update the trail and push a composited frame to the overlay.
type Loop struct {
	sys     platform.System
	overlay platform.Overlay
	clock   Clock

	buffer     *trail.Buffer
	cache      *cursor.Cache
	renderer   *render.Renderer
	compositor *render.Compositor

	interval time.Duration
	vs       image.Rectangle

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoop wires the pipeline for the current virtual screen. The tick
// interval follows the highest refresh rate across attached displays.
func NewLoop(cfg *config.Config, sys platform.System, overlay platform.Overlay, clock Clock) (*Loop, error) {
	vs := sys.VirtualScreen()
	compositor, err := render.NewCompositor(vs)
	if err != nil {
		return nil, fmt.Errorf("allocate backbuffer: %w", err)
	}

	hz := sys.MaxRefreshHz()
	if hz < minRefreshHz {
		hz = minRefreshHz
	} else if hz > maxRefreshHz {
		hz = maxRefreshHz
	}

	return &Loop{
		sys:        sys,
		overlay:    overlay,
		clock:      clock,
		buffer:     trail.NewBuffer(cfg.FadeMs),
		cache:      &cursor.Cache{},
		renderer:   render.NewRenderer(cfg),
		compositor: compositor,
		interval:   time.Duration(float64(time.Second) / hz),
		vs:         vs,
		stop:       make(chan struct{}),
	}, nil
}

// Interval is the pacing interval derived from the display refresh rate.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run drives ticks until the overlay reports a quit, Stop is called, or the
// backbuffer cannot follow a display change.
func (l *Loop) Run() error {
	last := l.clock.Now()
	for {
		if l.overlay.Pump() {
			return nil
		}
		select {
		case <-l.stop:
			return nil
		default:
		}

		now := l.clock.Now()
		if err := l.tick(now); err != nil {
			return err
		}

		next := last.Add(l.interval)
		if d := next.Sub(l.clock.Now()); d > 0 {
			l.clock.Sleep(d)
			last = next
		} else {
			// A long tick overran its slot; restart pacing from here
			// instead of bursting to catch up.
			last = l.clock.Now()
		}
	}
}

// Stop requests shutdown. Safe to call from any goroutine, more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *Loop) tick(now time.Time) error {
	if vs := l.sys.VirtualScreen(); vs != l.vs {
		l.vs = vs
		l.overlay.Move(vs)
		if err := l.compositor.Resize(vs); err != nil {
			return fmt.Errorf("resize backbuffer: %w", err)
		}
	}

	p, err := l.sys.PointerState()
	if err != nil {
		log.Printf("pointer query failed: %v", err)
		return nil
	}
	l.buffer.Update(p.X, p.Y, p.Visible, now)

	if !p.Visible {
		// No fresh samples arrive while the pointer is hidden; keep
		// fading out whatever is left, then go idle.
		if l.buffer.Len() > 0 {
			l.frame(now)
		}
		return nil
	}

	if err := l.cache.Refresh(p.GlyphID, l.sys); err != nil {
		// Draw with the stale glyph geometry; the mismatched identity
		// makes the next tick retry the query.
		log.Printf("cursor query failed: %v", err)
	}
	l.frame(now)
	return nil
}

// frame draws and presents one frame. A failed draw leaves the previous
// frame on screen rather than pushing a blank one.
func (l *Loop) frame(now time.Time) {
	err := l.renderer.Render(l.compositor.Back(), l.compositor.Origin(),
		l.cache.Current(), l.sys, l.buffer.Samples(), now)
	if err != nil {
		log.Printf("frame skipped: %v", err)
		return
	}
	if err := l.compositor.Present(l.overlay); err != nil {
		log.Printf("present failed: %v", err)
	}
}
