package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/config"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/galaxy"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/logger"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"go.uber.org/zap"
)

func main() {
	presetName := flag.String("preset", "milky-way", "built-in preset name or the name of a preset in -dir")
	presetDir := flag.String("dir", "", "directory of preset files")
	presetFile := flag.String("file", "", "preset file to read, overrides -preset")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "worker pool size")
	chunk := flag.Uint("chunk", galaxy.DefaultCensusChunk, "particles per task")
	years := flag.Float64("time", 0, "simulated time in years")
	aspect := flag.Float64("aspect", 16.0/9.0, "aspect ratio of the default camera")
	flag.Parse()

	log := logger.New(logger.Config{Environment: "development", LogLevel: "info", ServiceName: "galaxy-census"})
	defer func() { _ = log.Sync() }()

	preset, err := loadPreset(*presetFile, *presetDir, *presetName)
	if err != nil {
		log.Error("failed to load preset", zap.Error(err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	view := defaultView(float32(*aspect))
	report, err := galaxy.Census(ctx, preset.Params, galaxy.CensusOptions{
		Workers: *workers,
		Chunk:   uint32(*chunk),
		View:    &view,
		Time:    *years,
	})
	if err != nil {
		log.Error("census cancelled", zap.Error(err))
		os.Exit(1)
	}
	log.Info("census finished",
		zap.String("preset", preset.Name),
		zap.Uint64("particles", report.Total),
		zap.Duration("elapsed", report.Elapsed),
	)

	if err := renderReport(os.Stdout, preset, &report); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadPreset(file, dir, name string) (sim.Preset, error) {
	if file != "" {
		return sim.LoadPreset(file)
	}
	return config.FindPreset(dir, name)
}
