// Command sandcore-view runs the engine and a reference renderer in one
// process, for local interactive use: brush input drives the edit surface
// directly instead of going over the host boundary.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/sandforge/sandcore"
	"github.com/sandforge/sandcore/rt/config"
	"github.com/sandforge/sandcore/rt/render"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	bundlePath := flag.String("bundle", "", "path to a content bundle JSON file to load at startup")
	flag.Parse()

	logger := sandcore.NewDefaultLogger("sandcore-view", *debug)

	cfg, err := config.Load("sandcore", ".", "/etc/sandcore")
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	if *bundlePath == "" {
		logger.Errorf("-bundle is required")
		os.Exit(1)
	}
	data, err := os.ReadFile(*bundlePath)
	if err != nil {
		logger.Errorf("read bundle: %v", err)
		os.Exit(1)
	}

	w, h := cfg.WorldSizePreset.Dimensions()

	engine := sandcore.NewEngine(logger)
	resp := engine.Handle(sandcore.Request{
		Type: sandcore.MsgInit, W: w, H: h, ViewportW: w, ViewportH: h, JSON: data,
	})
	if resp.Err != nil {
		logger.Errorf("init failed: %v", resp.Err)
		os.Exit(1)
	}
	engine.Handle(sandcore.Request{Type: sandcore.MsgSettings, Speed: floatPtr(cfg.Speed)})
	engine.Handle(sandcore.Request{Type: sandcore.MsgPlay})

	win, err := render.NewWindow("sandcore", w, h)
	if err != nil {
		logger.Errorf("open window: %v", err)
		os.Exit(1)
	}
	defer win.Close()
	win.BindWorld(w, h)

	brushID := uint8(1)
	brushRadius := cfg.BrushSize
	brushShape := cfg.BrushShapeValue()

	last := time.Now()
	for !win.ShouldClose() {
		win.PollEvents()
		win.Input.Poll()

		now := time.Now()
		dtMs := float64(now.Sub(last).Microseconds()) / 1000.0
		last = now

		if scroll := win.Input.ConsumeScroll(); scroll != 0 {
			t := engine.Transform()
			engine.Handle(sandcore.Request{
				Type: sandcore.MsgTransform,
				Zoom: t.Zoom * float32(1+0.1*scroll), PanX: t.PanX, PanY: t.PanY,
			})
		}

		if win.Input.LeftDown {
			wx, wy := engine.Transform().ScreenToWorld(int(win.Input.MouseX), int(win.Input.MouseY))
			engine.Handle(sandcore.Request{
				Type: sandcore.MsgInput, X: wx, Y: wy, Radius: brushRadius,
				ElementID: brushID, BrushShape: brushShape,
			})
		}
		if win.Input.LeftJustReleased {
			engine.Handle(sandcore.Request{Type: sandcore.MsgInputEnd})
		}

		result := engine.RunFrame(dtMs)
		if result.Stats != nil {
			logger.Debugf("stats: fps=%.1f particles=%d", result.Stats.FPS, result.Stats.ParticleCount)
		}

		cv := engine.Views()
		settings := engine.Settings()
		if err := win.Present(cv, result.Plan, settings.RenderMode); err != nil {
			logger.Errorf("present: %v", err)
			break
		}
	}
}

func floatPtr(f float32) *float32 { return &f }
