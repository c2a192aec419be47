package cursor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	glyphs map[uintptr]Glyph
	calls  int
	err    error
}

func (f *fakeSource) Info(id uintptr) (Glyph, error) {
	f.calls++
	if f.err != nil {
		return Glyph{}, f.err
	}
	return f.glyphs[id], nil
}

func TestRefreshQueriesOnlyOnIdentityChange(t *testing.T) {
	src := &fakeSource{glyphs: map[uintptr]Glyph{
		7: {ID: 7, Width: 48, Height: 48, HotX: 4, HotY: 6},
	}}

	var c Cache
	require.NoError(t, c.Refresh(7, src))
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 48, c.Current().Width)
	assert.Equal(t, 4, c.Current().HotX)

	// Same identity across many refreshes: no further queries.
	for i := 0; i < 100; i++ {
		require.NoError(t, c.Refresh(7, src))
	}
	assert.Equal(t, 1, src.calls)
}

func TestRefreshDefaultsZeroDimensions(t *testing.T) {
	src := &fakeSource{glyphs: map[uintptr]Glyph{
		3: {ID: 3, HotX: 1, HotY: 1},
	}}

	var c Cache
	require.NoError(t, c.Refresh(3, src))
	assert.Equal(t, 32, c.Current().Width)
	assert.Equal(t, 32, c.Current().Height)
}

func TestRefreshFailureKeepsPreviousGlyph(t *testing.T) {
	src := &fakeSource{glyphs: map[uintptr]Glyph{
		7: {ID: 7, Width: 32, Height: 32},
	}}

	var c Cache
	require.NoError(t, c.Refresh(7, src))

	src.err = errors.New("query failed")
	assert.Error(t, c.Refresh(9, src))
	assert.Equal(t, uintptr(7), c.Current().ID)

	// Identity still mismatched, so the next refresh retries.
	src.err = nil
	src.glyphs[9] = Glyph{ID: 9, Width: 64, Height: 64}
	require.NoError(t, c.Refresh(9, src))
	assert.Equal(t, uintptr(9), c.Current().ID)
	assert.Equal(t, 64, c.Current().Width)
}
