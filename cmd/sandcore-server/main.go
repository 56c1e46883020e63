// Command sandcore-server runs the engine headless behind the host
// boundary websocket, for use by a remote (e.g. browser/WASM) host.
package main

import (
	"flag"
	"os"

	"github.com/sandforge/sandcore"
	"github.com/sandforge/sandcore/rt/config"
	"github.com/sandforge/sandcore/rt/host"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	bundlePath := flag.String("bundle", "", "path to a content bundle JSON file to load at startup")
	flag.Parse()

	logger := sandcore.NewDefaultLogger("sandcore-server", *debug)

	cfg, err := config.Load("sandcore", ".", "/etc/sandcore")
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}

	engine := sandcore.NewEngine(logger)

	w, h := config.WorldSizePreset("medium").Dimensions()
	if cfg.WorldSizePreset != "" {
		w, h = cfg.WorldSizePreset.Dimensions()
	}

	initReq := sandcore.Request{Type: sandcore.MsgInit, W: w, H: h, ViewportW: w, ViewportH: h}
	if *bundlePath != "" {
		data, err := os.ReadFile(*bundlePath)
		if err != nil {
			logger.Errorf("read bundle %s: %v", *bundlePath, err)
			os.Exit(1)
		}
		initReq.JSON = data
	}

	resp := engine.Handle(initReq)
	if resp.Err != nil {
		logger.Errorf("init failed: %v", resp.Err)
		os.Exit(1)
	}

	srv := host.NewServer(cfg.ListenAddr, engine, logger)
	logger.Infof("listening on %s", cfg.ListenAddr)
	if err := srv.Serve(); err != nil {
		logger.Errorf("server exited: %v", err)
		os.Exit(1)
	}
}
