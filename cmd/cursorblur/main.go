// Command cursorblur draws a fading, speed-sensitive trail of the cursor
// glyph on a transparent click-through overlay spanning every display.
package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	hook "github.com/robotn/gohook"

	"github.com/obieFM/CursorBlur/internal/config"
	"github.com/obieFM/CursorBlur/internal/engine"
	"github.com/obieFM/CursorBlur/internal/platform"
)

// One overlay per session. The name is shared with any other build of this
// program so stacked trails never happen.
const lockName = "Global\\CursorBlurOverlay_Mutex"

type Application struct {
	cfg     *config.Config
	lock    platform.Lock
	overlay platform.Overlay
	loop    *engine.Loop
}

func main() {
	app, err := newApplication(os.Args[1:])
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			// The running instance keeps the overlay; leave quietly.
			return
		}
		log.Printf("startup failed: %v", err)
		return
	}
	defer app.shutdown()

	app.run()
}

func newApplication(args []string) (*Application, error) {
	lock, err := platform.AcquireLock(lockName)
	if err != nil {
		return nil, err
	}

	cfg := config.Parse(args)
	log.Printf("trail config: sensitivity=%.3f fade=%.0fms alpha=%d tint=#%02x%02x%02x",
		cfg.Sensitivity, cfg.FadeMs, cfg.MaxAlpha,
		cfg.TintColor.R, cfg.TintColor.G, cfg.TintColor.B)

	sys, err := platform.NewSystem()
	if err != nil {
		lock.Release()
		return nil, err
	}

	overlay, err := platform.NewOverlay(sys.VirtualScreen())
	if err != nil {
		lock.Release()
		return nil, err
	}

	loop, err := engine.NewLoop(cfg, sys, overlay, engine.NewClock())
	if err != nil {
		overlay.Close()
		lock.Release()
		return nil, err
	}

	return &Application{
		cfg:     cfg,
		lock:    lock,
		overlay: overlay,
		loop:    loop,
	}, nil
}

func (a *Application) run() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("signal received, shutting down")
		a.loop.Stop()
	}()

	go a.watchHotkey()

	log.Printf("overlay running at %v per frame, press ctrl+shift+q to quit", a.loop.Interval())
	if err := a.loop.Run(); err != nil {
		log.Printf("overlay loop failed: %v", err)
	}
}

// watchHotkey blocks on the global keyboard hook until shutdown.
func (a *Application) watchHotkey() {
	hook.Register(hook.KeyDown, []string{"q", "ctrl", "shift"}, func(e hook.Event) {
		log.Println("quit hotkey pressed")
		a.loop.Stop()
	})
	s := hook.Start()
	<-hook.Process(s)
}

func (a *Application) shutdown() {
	hook.End()
	a.overlay.Close()
	a.lock.Release()
	log.Println("overlay stopped")
}
