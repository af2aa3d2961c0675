package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const presetExt = ".toml"

// PresetWatcher watches a directory of preset files and delivers every reloaded preset on
// a buffered channel. The host loop drains Requests between frames.
type PresetWatcher struct {
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	watcher  *fsnotify.Watcher
	requests chan sim.Preset
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewPresetWatcher starts watching dir.
//
// Parameters:
//   - dir: the preset directory, which must exist
//   - options: optional PresetWatcherOption values
//
// Returns:
//   - *PresetWatcher: the running watcher
//   - error: an error if the directory cannot be watched
func NewPresetWatcher(dir string, options ...PresetWatcherOption) (*PresetWatcher, error) {
	w := &PresetWatcher{
		dir:      dir,
		debounce: 200 * time.Millisecond,
		logger:   zap.NewNop(),
		requests: make(chan sim.Preset, 8),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create preset watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch preset directory %s: %w", dir, err)
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Requests returns the channel reloaded presets are delivered on.
func (w *PresetWatcher) Requests() <-chan sim.Preset {
	return w.requests
}

// Close stops the watcher and waits for its goroutine. Safe to call more than once.
func (w *PresetWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func isPresetEvent(ev fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), presetExt) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)
}

// run collects events until a file has been quiet for the debounce period, then reloads it.
func (w *PresetWatcher) run() {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isPresetEvent(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("preset watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			clear(pending)
			sort.Strings(paths)
			for _, path := range paths {
				w.reload(path)
			}
		}
	}
}

func (w *PresetWatcher) reload(path string) {
	p, err := sim.LoadPreset(path)
	if err != nil {
		// Renamed-away and half-written files fail here and are picked up by their next event.
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("preset reload failed", zap.String("path", path), zap.Error(err))
		}
		return
	}
	select {
	case w.requests <- p:
		w.logger.Info("preset reloaded", zap.String("preset", p.Name), zap.String("path", path))
	default:
		w.logger.Warn("preset request dropped, loop is not draining", zap.String("preset", p.Name))
	}
}

// LoadPresets reads every preset file in dir, sorted by file name.
//
// Parameters:
//   - dir: the preset directory
//
// Returns:
//   - []sim.Preset: the decoded presets
//   - error: the first read or decode error
func LoadPresets(dir string) ([]sim.Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory %s: %w", dir, err)
	}
	var presets []sim.Preset
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), presetExt) {
			continue
		}
		p, err := sim.LoadPreset(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// FindPreset looks name up among the built-in presets, then among the files in dir.
//
// Parameters:
//   - dir: the preset directory; empty searches built-ins only
//   - name: the preset name
//
// Returns:
//   - sim.Preset: the preset
//   - error: an error if no preset has that name or a file cannot be read
func FindPreset(dir, name string) (sim.Preset, error) {
	if p, ok := sim.BuiltinPreset(name); ok {
		return p, nil
	}
	if dir != "" {
		presets, err := LoadPresets(dir)
		if err != nil {
			return sim.Preset{}, err
		}
		for _, p := range presets {
			if p.Name == name {
				return p, nil
			}
		}
	}
	return sim.Preset{}, fmt.Errorf("unknown preset %q", name)
}
