package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperav/hyperviz/internal/audio"
	"github.com/hyperav/hyperviz/internal/core"
	"github.com/hyperav/hyperviz/internal/geometry"
	"github.com/hyperav/hyperviz/internal/player"
	"github.com/hyperav/hyperviz/internal/projection"
	"github.com/hyperav/hyperviz/internal/render"
	"github.com/hyperav/hyperviz/internal/ui"
)

func main() {
	geomFlag := flag.String("geometry", "hypercube", "initial polytope: hypercube, hypertetrahedron, hypersphere")
	methodFlag := flag.String("projection", "perspective", "projection method: perspective, stereographic")
	fpsFlag := flag.Int("fps", 30, "target frame rate")
	intensityFlag := flag.Float64("intensity", 0.7, "audio reactivity, 0 to 1")
	sphereResFlag := flag.Int("sphere-res", geometry.DefaultSphereResolution, "hypersphere grid resolution")
	logFlag := flag.String("log", "", "append structured logs to this file")
	flag.Parse()

	if err := run(*geomFlag, *methodFlag, *fpsFlag, *intensityFlag, *sphereResFlag, *logFlag, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(geomName, methodName string, fps int, intensity float64, sphereRes int, logPath, trackPath string) error {
	// The alternate screen belongs to the UI; logs go to a file or
	// nowhere.
	logger := slog.New(slog.DiscardHandler)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	kind, err := geometry.ParseKind(geomName)
	if err != nil {
		return err
	}
	method, err := projection.ParseMethod(methodName)
	if err != nil {
		return err
	}

	cell := &audio.Cell{}
	var p *player.Player
	var meta player.TrackInfo
	if trackPath != "" {
		if _, err := os.Stat(trackPath); err != nil {
			return err
		}
		meta = player.ReadTrackInfo(trackPath)
		p, err = player.New(trackPath, cell)
		if err != nil {
			return fmt.Errorf("opening %s: %w", trackPath, err)
		}
		defer p.Close()
	}

	device := render.NewTermDevice(80, 20)
	c := core.New(device, cell, core.Options{
		Width:            80,
		Height:           20,
		FPS:              fps,
		Kind:             kind,
		SphereResolution: sphereRes,
		Intensity:        intensity,
		Logger:           logger,
	})
	if err := c.Init(); err != nil {
		return err
	}
	if method != projection.Perspective {
		cfg := c.Projection()
		cfg.Method = method
		if err := c.SetProjection(cfg); err != nil {
			return err
		}
	}
	if err := c.Start(); err != nil {
		return err
	}
	defer c.Dispose()

	prog := tea.NewProgram(ui.New(c, p, meta, fps), tea.WithAltScreen())
	_, err = prog.Run()
	return err
}
