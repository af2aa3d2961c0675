package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePreset(t *testing.T, dir, file, name string, exposure float32) {
	t.Helper()
	p := sim.Preset{Name: name, Params: sim.DefaultParams()}
	p.Params.Exposure = exposure
	require.NoError(t, sim.SavePreset(filepath.Join(dir, file), p))
}

func newWatcher(t *testing.T, dir string) *PresetWatcher {
	t.Helper()
	w, err := NewPresetWatcher(dir, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestPresetWatcherDeliversReload(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	writePreset(t, dir, "bright.toml", "bright", 3)

	select {
	case p := <-w.Requests():
		assert.Equal(t, "bright", p.Name)
		assert.Equal(t, float32(3), p.Params.Exposure)
	case <-time.After(5 * time.Second):
		t.Fatal("no preset delivered")
	}
}

func TestPresetWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	for i := 1; i <= 3; i++ {
		writePreset(t, dir, "tuned.toml", "tuned", float32(i))
	}

	select {
	case p := <-w.Requests():
		assert.Equal(t, float32(3), p.Params.Exposure)
	case <-time.After(5 * time.Second):
		t.Fatal("no preset delivered")
	}
	select {
	case p := <-w.Requests():
		t.Fatalf("unexpected second delivery %q", p.Name)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPresetWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	select {
	case p := <-w.Requests():
		t.Fatalf("unexpected delivery %q", p.Name)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPresetWatcherCloseTwice(t *testing.T) {
	w, err := NewPresetWatcher(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestPresetWatcherMissingDir(t *testing.T) {
	_, err := NewPresetWatcher(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestFindPreset(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "custom.toml", "custom", 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("#"), 0o644))

	p, err := FindPreset(dir, "custom")
	require.NoError(t, err)
	assert.Equal(t, float32(2), p.Params.Exposure)

	p, err = FindPreset("", "grand-design")
	require.NoError(t, err)
	assert.Equal(t, "grand-design", p.Name)

	_, err = FindPreset(dir, "nope")
	assert.Error(t, err)

	all, err := LoadPresets(dir)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
