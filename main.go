package main

import (
	"os"

	"fyne.io/fyne/v2/app"

	"LocalPaint/internal/config"
	"LocalPaint/internal/logger"
	pnet "LocalPaint/internal/net"
	"LocalPaint/internal/paint"
	"LocalPaint/internal/screen"
	"LocalPaint/internal/ui"
)

const appID = "io.localpaint.app"

func main() {
	configPath, err := config.Path()
	if err != nil {
		configPath = ""
	}
	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}

	log := logger.NewConsoleLogger(logger.ParseLevel(cfg.LogLevelOverride()))
	if err != nil {
		log.Warning("main", "settings will not be persisted", map[string]interface{}{"error": err.Error()})
	}
	if cfgErr != nil {
		log.Error("main", cfgErr, map[string]interface{}{"fallback": "defaults"})
	}

	width, height := cfg.Canvas.FallbackWidth, cfg.Canvas.FallbackHeight
	if sw, sh, err := screen.Primary(); err != nil {
		log.Warning("main", "screen size unavailable, using fallback", map[string]interface{}{"error": err.Error()})
	} else {
		width, height = screen.CanvasSize(sw, sh, cfg.Canvas.Divisor)
	}

	brush, err := cfg.DefaultBrush()
	if err != nil {
		log.Error("main", err, map[string]interface{}{"fallback": "default brush"})
		brush = paint.DefaultBrush()
	}

	log.Info("main", "starting", map[string]interface{}{
		"version": ui.AppVersion,
		"canvas":  []int{width, height},
		"config":  configPath,
	})

	a := app.NewWithID(appID)
	paintApp := ui.NewApp(a, cfg, brush, width, height, log)
	paintApp.OnQuit = func(b paint.Brush) {
		// A broken settings file is left for the user to fix.
		if configPath == "" || cfgErr != nil {
			return
		}
		cfg.RememberBrush(b)
		if err := cfg.Save(configPath); err != nil {
			log.Error("main", err, map[string]interface{}{"path": configPath})
		}
	}

	if len(os.Args) > 1 && pnet.IsLink(os.Args[1]) {
		paintApp.Join(os.Args[1])
	}
	paintApp.ShowAndRun()
}
