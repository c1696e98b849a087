package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/washbook/slot/sqlite"
)

func newTestSlot(t *testing.T) *sqlite.Slot {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "washbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSlot_EmptyOnFirstOpen(t *testing.T) {
	s := newTestSlot(t)

	doc, found, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, doc)
}

func TestSlot_WriteReadRoundTrip(t *testing.T) {
	s := newTestSlot(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, []byte(`{"version":1}`)))

	doc, found, err := s.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte(`{"version":1}`), doc)
}

func TestSlot_WriteOverwrites(t *testing.T) {
	// Single-slot persistence: the second write replaces the first, it does
	// not add a row.
	s := newTestSlot(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, []byte(`{"version":1}`)))
	require.NoError(t, s.Write(ctx, []byte(`{"version":2}`)))

	doc, found, err := s.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte(`{"version":2}`), doc)
}

func TestSlot_Clear(t *testing.T) {
	s := newTestSlot(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, []byte(`{}`)))
	require.NoError(t, s.Clear(ctx))

	_, found, err := s.Read(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSlot_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "washbook.db")
	ctx := context.Background()

	first, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, []byte(`{"version":1}`)))
	require.NoError(t, first.Close())

	second, err := sqlite.New(path)
	require.NoError(t, err)
	defer second.Close()

	doc, found, err := second.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte(`{"version":1}`), doc)
}
