package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drag struct {
	button uint32
	dx, dy float32
}

func recordingWindow() (*engineWindow, *[]drag) {
	var drags []drag
	w := &engineWindow{}
	w.SetDragCallback(func(button uint32, dx, dy float32) {
		drags = append(drags, drag{button, dx, dy})
	})
	return w, &drags
}

func TestDragNeedsHeldButton(t *testing.T) {
	w, drags := recordingWindow()
	w.cursorMoved(10, 10)
	w.cursorMoved(20, 30)
	assert.Empty(t, *drags)
}

func TestDragReportsDeltas(t *testing.T) {
	w, drags := recordingWindow()
	w.cursorMoved(10, 10)
	w.buttonChanged(0, true)

	// The first move after a press only anchors the cursor.
	w.cursorMoved(15, 12)
	w.cursorMoved(20, 10)
	w.cursorMoved(21, 14)

	require.Len(t, *drags, 2)
	assert.Equal(t, drag{0, 5, -2}, (*drags)[0])
	assert.Equal(t, drag{0, 1, 4}, (*drags)[1])

	w.buttonChanged(0, false)
	w.cursorMoved(40, 40)
	assert.Len(t, *drags, 2)
}

func TestDragPrefersLowestButton(t *testing.T) {
	w, drags := recordingWindow()
	w.buttonChanged(2, true)
	w.cursorMoved(0, 0)
	w.cursorMoved(1, 0)
	w.buttonChanged(0, true)
	w.cursorMoved(1, 0)
	w.cursorMoved(1, 3)

	require.Len(t, *drags, 2)
	assert.Equal(t, uint32(2), (*drags)[0].button)
	assert.Equal(t, drag{0, 0, 3}, (*drags)[1])
}

func TestUninitializedWindow(t *testing.T) {
	w := &engineWindow{}
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.ErrorIs(t, w.Close(), errNotInitialized)
	w.SetTitle("galaxy")
	assert.Equal(t, "galaxy", w.title)
	w.ProcessMessages()
}
