package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/engine"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/config"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/logger"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/metrics"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/profiler"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/window"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	presetName := flag.String("preset", "", "preset to start with, overrides the config")
	logLevel := flag.String("log-level", "", "debug, info, warn or error, overrides the config")
	check := flag.Bool("check", false, "compile every shader and exit")
	flag.Parse()

	if *check {
		os.Exit(checkShaders())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *presetName != "" {
		cfg.Presets.Initial = *presetName
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log := logger.New(logger.Config{
		Environment: cfg.Log.Environment,
		LogLevel:    cfg.Log.Level,
		ServiceName: "galaxy",
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("galaxy exited with an error", zap.Error(err))
		os.Exit(1)
	}
}

// checkShaders compiles every embedded shader and returns the process exit code.
func checkShaders() int {
	skipped, err := shader.ValidateAll(frame.Shaders()...)
	for _, key := range skipped {
		fmt.Printf("skipped %s: unsupported by the offline validator\n", key)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%d shaders ok\n", len(frame.Shaders())-len(skipped))
	return 0
}

func run(cfg config.Config, log *zap.Logger) error {
	initial, err := config.FindPreset(cfg.Presets.Dir, cfg.Presets.Initial)
	if err != nil {
		return err
	}
	state := sim.FromPreset(initial)

	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Render.PresentMode)),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Render.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Render.ForceSoftware),
		renderer.WithLogger(log),
	)
	defer r.Release()

	cam := camera.NewCamera()
	cam.SetAspect(float32(win.Width()) / float32(max(win.Height(), 1)))

	orchestrator, err := frame.NewOrchestrator(r, state,
		frame.WithLogger(log),
		frame.WithCamera(cam),
		frame.WithProfiler(profiler.NewProfiler(
			profiler.WithLogger(log),
			profiler.WithWindow(time.Duration(cfg.Render.StatsWindow)),
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to build the frame orchestrator: %w", err)
	}
	defer orchestrator.Release()

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithOrchestrator(orchestrator),
		engine.WithFrameLimit(cfg.Render.FrameLimit),
		engine.WithLogger(log),
	)

	keys := &keyBindings{
		orchestrator: orchestrator,
		presets:      sim.BuiltinPresets(),
		quit:         eng.Quit,
		logger:       log,
	}
	eng.SetKeyCallback(func(key uint32) { keys.handle(key) })

	if cfg.Presets.Dir != "" {
		watcher, err := config.NewPresetWatcher(cfg.Presets.Dir,
			config.WithLogger(log),
			config.WithDebounce(time.Duration(cfg.Presets.Debounce)),
		)
		if err != nil {
			return err
		}
		defer watcher.Close()
		eng.ForwardPresets(watcher.Requests())
	}

	title := &titleBar{base: cfg.Window.Title, set: win.SetTitle}
	var observe func(frame.Stats)
	eng.SetFrameCallback(func(bool, error) {
		title.update(orchestrator)
		if observe != nil {
			observe(orchestrator.Stats())
		}
	})

	if cfg.Metrics.Listen != "" {
		m := metrics.New()
		observe = m.Observe

		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		log.Info("serving metrics", zap.String("addr", cfg.Metrics.Listen))
	}

	log.Info("galaxy starting",
		zap.String("preset", initial.Name),
		zap.Uint32("particles", state.Params.TotalParticles),
		zap.Uint32("msaa", cfg.Render.MSAA),
	)
	eng.Run()
	return nil
}
