package raftlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/anikak11/raftlog/internal/config"
	"github.com/anikak11/raftlog/internal/consensus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openCore(t *testing.T) *Core {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(config.Default(filepath.Join(dir, "core.log")))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestProposeAsLeaderAppendsAndRunsCallback(t *testing.T) {
	c := openCore(t)
	c.SetTerm(3)
	c.SetRole(Leader)

	var gotIndex uint64
	index, err := c.Propose(context.Background(), "SET", []byte("x 1"), func(e Entry) {
		gotIndex = e.Index
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), index)

	require.NoError(t, c.AdvanceCommitAndApply(1))
	assert.Equal(t, uint64(1), gotIndex)
	assert.Equal(t, uint64(1), c.LastApplied())
}

func TestProposeRejectsOversizedCommandName(t *testing.T) {
	c := openCore(t)
	c.SetRole(Leader)
	_, err := c.Propose(context.Background(), "THIS_NAME_IS_WAY_TOO_LONG_FOR_THE_LIMIT", []byte(""), nil)
	assert.Error(t, err)
}

func TestIngestBatchFromEmptyLog(t *testing.T) {
	c := openCore(t)
	entries := []Entry{
		{Index: 1, Term: 1, CommandName: "SET", Command: []byte("x 1")},
		{Index: 2, Term: 1, CommandName: "SET", Command: []byte("y 2")},
	}
	require.NoError(t, c.IngestBatch(context.Background(), 0, 0, 1, entries))

	lastIndex, lastTerm, commitIndex := c.SnapshotState()
	assert.Equal(t, uint64(2), lastIndex)
	assert.Equal(t, uint64(1), lastTerm)
	assert.Equal(t, uint64(1), commitIndex)
	assert.Equal(t, uint64(1), c.LastApplied())
}

func TestIngestBatchRejectsMismatchedAnchor(t *testing.T) {
	c := openCore(t)
	entries := []Entry{{Index: 1, Term: 1, CommandName: "SET", Command: []byte("x 1")}}
	err := c.IngestBatch(context.Background(), 5, 1, 0, entries)
	assert.ErrorIs(t, err, consensus.ErrLogMismatch)

	lastIndex, _, _ := c.SnapshotState()
	assert.Equal(t, uint64(0), lastIndex)
}

func TestIngestBatchConflictTruncatesTail(t *testing.T) {
	c := openCore(t)
	first := []Entry{
		{Index: 1, Term: 1, CommandName: "SET", Command: []byte("x 1")},
		{Index: 2, Term: 1, CommandName: "SET", Command: []byte("y 2")},
		{Index: 3, Term: 1, CommandName: "SET", Command: []byte("z 3")},
	}
	require.NoError(t, c.IngestBatch(context.Background(), 0, 0, 0, first))

	conflict := []Entry{{Index: 2, Term: 2, CommandName: "SET", Command: []byte("y 99")}}
	require.NoError(t, c.IngestBatch(context.Background(), 1, 1, 0, conflict))

	lastIndex, lastTerm, _ := c.SnapshotState()
	assert.Equal(t, uint64(2), lastIndex)
	assert.Equal(t, uint64(2), lastTerm)

	got, ok := c.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "y 99", string(got.Command))
}

func TestCrashRecoveryPreservesCommittedEntries(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "core.log")

	c, err := Open(config.Default(logPath))
	require.NoError(t, err)
	c.SetRole(Leader)
	_, err = c.Propose(context.Background(), "SET", []byte("x 1"), nil)
	require.NoError(t, err)
	_, err = c.Propose(context.Background(), "SET", []byte("y 2"), nil)
	require.NoError(t, err)
	require.NoError(t, c.AdvanceCommitAndApply(2))
	require.NoError(t, c.Close())

	reopened, err := Open(config.Default(logPath))
	require.NoError(t, err)
	defer reopened.Close()

	lastIndex, _, _ := reopened.SnapshotState()
	assert.Equal(t, uint64(2), lastIndex)
	e, ok := reopened.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "y 2", string(e.Command))
}

func TestRegisteredCommandAppliesThroughDispatch(t *testing.T) {
	c := openCore(t)
	var seen []string
	c.RegisterCommand("SET", 2, func(args []string) error {
		seen = append(seen, args[0])
		return nil
	})

	entries := []Entry{{Index: 1, Term: 1, CommandName: "SET", Command: []byte("x 1")}}
	require.NoError(t, c.IngestBatch(context.Background(), 0, 0, 1, entries))
	assert.Equal(t, []string{"x"}, seen)
}
