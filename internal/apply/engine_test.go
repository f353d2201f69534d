package apply

import (
	"testing"

	"github.com/anikak11/raftlog/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngineLog struct {
	entries map[uint64]codec.Entry
	last    uint64
}

func newFakeEngineLog(entries ...codec.Entry) *fakeEngineLog {
	f := &fakeEngineLog{entries: make(map[uint64]codec.Entry)}
	for _, e := range entries {
		f.entries[e.Index] = e
		if e.Index > f.last {
			f.last = e.Index
		}
	}
	return f
}

func (f *fakeEngineLog) LastIndex() uint64 { return f.last }

func (f *fakeEngineLog) Lookup(index uint64) (codec.Entry, bool) {
	e, ok := f.entries[index]
	return e, ok
}

func entry(i uint64, name, cmd string) codec.Entry {
	return codec.Entry{Index: i, Term: 1, CommandName: name, Command: []byte(cmd)}
}

func TestAdvanceCommitIndexClampsToLastIndex(t *testing.T) {
	log := newFakeEngineLog(entry(1, "SET", "x 1"), entry(2, "SET", "y 2"))
	e := New(log, NewRegistry())
	e.AdvanceCommitIndex(10)
	assert.Equal(t, uint64(2), e.CommitIndex())
}

func TestAdvanceCommitIndexIgnoresSmallerValue(t *testing.T) {
	log := newFakeEngineLog(entry(1, "SET", "x 1"), entry(2, "SET", "y 2"))
	e := New(log, NewRegistry())
	e.AdvanceCommitIndex(2)
	e.AdvanceCommitIndex(1)
	assert.Equal(t, uint64(2), e.CommitIndex())
}

func TestApplyCommittedInOrderExactlyOnce(t *testing.T) {
	log := newFakeEngineLog(entry(1, "SET", "x 1"), entry(2, "SET", "y 2"), entry(3, "SET", "z 3"))
	reg := NewRegistry()
	var order []string
	reg.Register("SET", 2, func(args []string) error {
		order = append(order, args[0])
		return nil
	})
	e := New(log, reg)
	e.AdvanceCommitIndex(3)
	require.NoError(t, e.ApplyCommitted())
	assert.Equal(t, []string{"x", "y", "z"}, order)
	assert.Equal(t, uint64(3), e.LastApplied())

	// Re-running with no new commit advance applies nothing further.
	require.NoError(t, e.ApplyCommitted())
	assert.Equal(t, []string{"x", "y", "z"}, order)
}

func TestApplyCommittedLeaderFastPathBypassesRegistry(t *testing.T) {
	log := newFakeEngineLog(entry(1, "INCR", "c"))
	reg := NewRegistry()
	reg.Register("INCR", 1, func(args []string) error {
		t.Fatal("registry should not be consulted when a pending client callback exists")
		return nil
	})
	e := New(log, reg)
	e.SetLeader(true)

	var got codec.Entry
	e.RegisterPendingClient(1, func(applied codec.Entry) { got = applied })

	e.AdvanceCommitIndex(1)
	require.NoError(t, e.ApplyCommitted())
	assert.Equal(t, uint64(1), got.Index)
	assert.Equal(t, uint64(1), e.LastApplied())
}

func TestApplyCommittedUnknownCommandNonFatal(t *testing.T) {
	log := newFakeEngineLog(entry(1, "BOGUS", "a b"), entry(2, "SET", "x 1"))
	reg := NewRegistry()
	applied := false
	reg.Register("SET", 2, func(args []string) error {
		applied = true
		return nil
	})
	e := New(log, reg)
	e.AdvanceCommitIndex(2)
	require.NoError(t, e.ApplyCommitted())
	assert.True(t, applied)
	assert.Equal(t, uint64(2), e.LastApplied())
}

func TestApplyCommittedMissingEntryIsFatal(t *testing.T) {
	log := newFakeEngineLog(entry(1, "SET", "x 1"))
	log.last = 2 // simulate a commit index advanced past what Lookup can serve
	e := New(log, NewRegistry())
	e.AdvanceCommitIndex(2)
	err := e.ApplyCommitted()
	assert.ErrorIs(t, err, ErrMissingEntry)
}
