// Package consensus implements the Raft log-matching and conflict-truncation
// rules applied to leader-pushed batches before they are durably appended.
package consensus

import (
	"fmt"

	"github.com/anikak11/raftlog/internal/codec"
	"github.com/anikak11/raftlog/internal/store"
	"github.com/rs/zerolog"
)

// logStore is the subset of store.Store the Enforcer needs. Kept as an
// interface so tests can exercise the enforcer against a fake.
type logStore interface {
	LastIndex() uint64
	TermAt(index uint64) uint64
	Lookup(index uint64) (codec.Entry, bool)
	Append(e codec.Entry) (store.Record, error)
	Truncate(index uint64) error
}

// Enforcer implements VerifyAppend and the conflict-truncate-on-write rule.
type Enforcer struct {
	log    logStore
	logger zerolog.Logger
}

// New builds an Enforcer over log. A zero-value logger defaults to disabled.
func New(log logStore, logger zerolog.Logger) *Enforcer {
	return &Enforcer{log: log, logger: logger}
}

// VerifyAppend checks that prevIndex/prevTerm name an entry this node
// actually holds. prevIndex 0 always matches (append at the start of the log).
func (en *Enforcer) VerifyAppend(prevIndex, prevTerm uint64) error {
	if prevIndex == 0 {
		return nil
	}
	if prevIndex > en.log.LastIndex() {
		return &LogMismatchError{PrevIndex: prevIndex, PrevTerm: prevTerm}
	}
	if en.log.TermAt(prevIndex) != prevTerm {
		return &LogMismatchError{PrevIndex: prevIndex, PrevTerm: prevTerm}
	}
	return nil
}

// IngestBatch runs Verify, then the per-entry conflict-truncate-or-append
// rule, for every entry of the batch in order. It never truncates at or
// below commitIndex; any leader protocol bug that would is reported as
// ErrSafetyViolation and the store is left untouched for that entry onward.
// The caller (raftlog.Core) is responsible for the final Sync() that makes
// the whole batch durable.
func (en *Enforcer) IngestBatch(prevIndex, prevTerm, commitIndex uint64, entries []codec.Entry) error {
	if err := en.VerifyAppend(prevIndex, prevTerm); err != nil {
		return err
	}

	for _, e := range entries {
		existing, ok := en.log.Lookup(e.Index)
		switch {
		case !ok:
			if _, err := en.log.Append(e); err != nil {
				return fmt.Errorf("appending entry %d: %w", e.Index, err)
			}
		case existing.Term == e.Term:
			// Already have it: idempotent replay, skip.
			continue
		default:
			if e.Index <= commitIndex {
				return &SafetyViolationError{Index: e.Index, CommitIndex: commitIndex}
			}
			en.logger.Warn().
				Uint64("index", e.Index).
				Uint64("existing_term", existing.Term).
				Uint64("new_term", e.Term).
				Msg("conflict detected, truncating")
			if err := en.log.Truncate(e.Index); err != nil {
				return fmt.Errorf("truncating at %d: %w", e.Index, err)
			}
			if _, err := en.log.Append(e); err != nil {
				return fmt.Errorf("appending entry %d after truncate: %w", e.Index, err)
			}
		}
	}
	return nil
}
