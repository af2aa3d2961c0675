package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtent struct{ W, H uint32 }

type fakeTexture struct {
	key      fakeExtent
	released int
}

func (f *fakeTexture) Release() { f.released++ }

func newTextureSlot(created *[]*fakeTexture) *Slot[fakeExtent, *fakeTexture] {
	return NewSlot("test texture", func(k fakeExtent) (*fakeTexture, error) {
		t := &fakeTexture{key: k}
		*created = append(*created, t)
		return t, nil
	})
}

func TestEnsureSameKeyReturnsSameInstance(t *testing.T) {
	var created []*fakeTexture
	s := newTextureSlot(&created)

	a, fresh, err := s.Ensure(fakeExtent{800, 600})
	require.NoError(t, err)
	assert.True(t, fresh)

	b, fresh, err := s.Ensure(fakeExtent{800, 600})
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Same(t, a, b)
	assert.Len(t, created, 1)
	assert.Equal(t, uint64(1), s.Generation())
}

func TestEnsureNewKeyReleasesOldExactlyOnce(t *testing.T) {
	var created []*fakeTexture
	s := newTextureSlot(&created)

	old, _, err := s.Ensure(fakeExtent{800, 600})
	require.NoError(t, err)
	next, fresh, err := s.Ensure(fakeExtent{1024, 768})
	require.NoError(t, err)

	assert.True(t, fresh)
	assert.NotSame(t, old, next)
	assert.Equal(t, 1, old.released)
	assert.Equal(t, 0, next.released)

	_, _, err = s.Ensure(fakeExtent{1024, 768})
	require.NoError(t, err)
	assert.Equal(t, 1, old.released)
}

func TestGetBeforeEnsure(t *testing.T) {
	var created []*fakeTexture
	s := newTextureSlot(&created)

	_, err := s.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, _, err = s.Ensure(fakeExtent{1, 1})
	require.NoError(t, err)
	got, err := s.Get()
	require.NoError(t, err)
	assert.Same(t, created[0], got)
}

func TestInvalidateForcesRecreate(t *testing.T) {
	var created []*fakeTexture
	s := newTextureSlot(&created)
	key := fakeExtent{4, 4}

	_, _, err := s.Ensure(key)
	require.NoError(t, err)
	s.Invalidate()
	assert.Equal(t, StateStale, s.State())

	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, fresh, err := s.Ensure(key)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 1, created[0].released)
	assert.Equal(t, StateValid, s.State())
}

func TestReleaseIsIdempotent(t *testing.T) {
	var created []*fakeTexture
	s := newTextureSlot(&created)

	_, _, err := s.Ensure(fakeExtent{2, 2})
	require.NoError(t, err)
	s.Release()
	s.Release()
	assert.Equal(t, 1, created[0].released)
	assert.Equal(t, StateUninitialized, s.State())
}

func TestCreateFailureLeavesSlotEmpty(t *testing.T) {
	boom := errors.New("out of memory")
	s := NewSlot("broken", func(int) (*fakeTexture, error) { return nil, boom })

	_, _, err := s.Ensure(1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Zero(t, s.Generation())
}

func TestDependentsReleasedOnParentRecreate(t *testing.T) {
	var views []*fakeTexture
	view := newTextureSlot(&views)

	var groups []*fakeTexture
	group := NewSlot("bind group", func(g uint64) (*fakeTexture, error) {
		ft := &fakeTexture{}
		groups = append(groups, ft)
		return ft, nil
	}).DependsOn(view)

	_, _, err := view.Ensure(fakeExtent{8, 8})
	require.NoError(t, err)
	require.NoError(t, Require(view))
	_, _, err = group.Ensure(view.Generation())
	require.NoError(t, err)

	_, _, err = view.Ensure(fakeExtent{16, 16})
	require.NoError(t, err)
	assert.Equal(t, 1, groups[0].released)
	assert.Equal(t, StateUninitialized, group.State())

	view.Release()
	assert.Equal(t, 1, groups[0].released)
	err = Require(view, group)
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "test texture")
}

func TestTrackerSumsValidSlots(t *testing.T) {
	var created []*fakeTexture
	tex := WithSize(newTextureSlot(&created), func(k fakeExtent) uint64 {
		return uint64(k.W) * uint64(k.H) * 8
	})
	buf := NewSlot("counter", func(int) (*fakeTexture, error) { return &fakeTexture{}, nil }, WithBytes(4))

	tr := NewTracker(tex, buf)
	assert.Zero(t, tr.Bytes())

	_, _, err := tex.Ensure(fakeExtent{10, 10})
	require.NoError(t, err)
	_, _, err = buf.Ensure(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(804), tr.Bytes())
	assert.Equal(t, uint64(800), tr.Breakdown()["test texture"])

	buf.Release()
	assert.Equal(t, uint64(800), tr.Bytes())
}

func TestUniformChanged(t *testing.T) {
	type params struct{ Exposure, White float32 }
	var u Uniform[params]

	assert.True(t, u.Changed(params{1, 11}))
	assert.False(t, u.Changed(params{1, 11}))
	assert.True(t, u.Changed(params{2, 11}))
	u.Reset()
	assert.True(t, u.Changed(params{2, 11}))
}
