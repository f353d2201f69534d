package store

import (
	"path/filepath"
	"testing"

	"github.com/anikak11/raftlog/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOpen(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFreshAppendAndReload(t *testing.T) {
	dir := t.TempDir()
	s := mustOpen(t, dir)

	_, err := s.Append(codec.Entry{Index: 1, Term: 1, CommandName: "SET", Command: []byte("x 1")})
	require.NoError(t, err)
	_, err = s.Append(codec.Entry{Index: 2, Term: 1, CommandName: "SET", Command: []byte("y 2")})
	require.NoError(t, err)
	require.NoError(t, s.Sync())

	assert.Equal(t, uint64(2), s.LastIndex())
	assert.Equal(t, uint64(1), s.LastTerm())
	expectedSize := s.CurrentSize()

	s.Close()

	reloaded, err := Open(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	defer reloaded.Close()

	assert.Equal(t, uint64(2), reloaded.LastIndex())
	assert.Equal(t, expectedSize, reloaded.CurrentSize())

	e1, ok := reloaded.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "x 1", string(e1.Command))
	e2, ok := reloaded.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "y 2", string(e2.Command))
}

func TestEmptyLogBoundaries(t *testing.T) {
	dir := t.TempDir()
	s := mustOpen(t, dir)

	assert.Equal(t, uint64(0), s.LastIndex())
	assert.Equal(t, uint64(0), s.LastTerm())
	assert.Equal(t, uint64(0), s.TermAt(1))
	_, ok := s.Lookup(1)
	assert.False(t, ok)
}

func TestDensityAndPositionInvariants(t *testing.T) {
	// Indices must be contiguous, each record's byte position must match
	// the cumulative size of everything before it, and the store's current
	// size must equal the sum of all encoded record sizes.
	dir := t.TempDir()
	s := mustOpen(t, dir)

	for i := uint64(1); i <= 5; i++ {
		_, err := s.Append(codec.Entry{Index: i, Term: 1, CommandName: "SET", Command: []byte("k v")})
		require.NoError(t, err)
	}
	require.NoError(t, s.Sync())

	var cumulative int64
	for i := range s.entries {
		assert.Equal(t, cumulative, s.entries[i].Position, "position at record %d", i)
		cumulative += int64(len(codec.Encode(s.entries[i].Entry)))
		if i > 0 {
			assert.Equal(t, s.entries[i-1].Index+1, s.entries[i].Index, "index density at record %d", i)
		}
	}
	assert.Equal(t, cumulative, s.CurrentSize(), "cumulative size")
}

func TestTruncate(t *testing.T) {
	dir := t.TempDir()
	s := mustOpen(t, dir)

	for i := uint64(1); i <= 4; i++ {
		_, err := s.Append(codec.Entry{Index: i, Term: 1, CommandName: "SET", Command: []byte("k v")})
		require.NoError(t, err)
	}
	require.NoError(t, s.Truncate(2))
	assert.Equal(t, uint64(1), s.LastIndex())

	// Truncating at an index already beyond the log tail is idempotent.
	require.NoError(t, s.Truncate(2))
	assert.Equal(t, uint64(1), s.LastIndex())

	// no-op when index beyond last.
	require.NoError(t, s.Truncate(99))
	assert.Equal(t, uint64(1), s.LastIndex())
}

func TestTruncateThenReloadMatchesFileLength(t *testing.T) {
	dir := t.TempDir()
	s := mustOpen(t, dir)
	for i := uint64(1); i <= 3; i++ {
		_, err := s.Append(codec.Entry{Index: i, Term: 1, CommandName: "SET", Command: []byte("k v")})
		require.NoError(t, err)
	}
	require.NoError(t, s.Truncate(2))
	require.NoError(t, s.Sync())
	expected := s.CurrentSize()
	s.Close()

	reloaded, err := Open(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	defer reloaded.Close()
	assert.Equal(t, uint64(1), reloaded.LastIndex())
	assert.Equal(t, expected, reloaded.CurrentSize())
}
