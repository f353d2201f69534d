package apply

import (
	"errors"

	"github.com/anikak11/raftlog/internal/codec"
	"github.com/anikak11/raftlog/internal/logging"
	"github.com/anikak11/raftlog/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrMissingEntry is the defensive error returned if ApplyCommitted is
// asked to apply an index the log doesn't have. Should not occur when the
// log-matching invariants hold; signals a bug upstream.
var ErrMissingEntry = errors.New("missing_entry")

// ClientCallback is the leader's continuation for a proposed entry,
// invoked at apply time in place of re-parsing entry.Command.
type ClientCallback func(e codec.Entry)

// logStore is the subset of store.Store the engine needs.
type logStore interface {
	LastIndex() uint64
	Lookup(index uint64) (codec.Entry, bool)
}

// Engine advances commit_index and drains committed entries into the
// registered state machine exactly once, in index order.
type Engine struct {
	log      logStore
	registry *Registry

	commitIndex uint64
	lastApplied uint64
	isLeader    bool

	pendingClients map[uint64]ClientCallback

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New builds an Engine over log, dispatching applied commands through registry.
func New(log logStore, registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		log:            log,
		registry:       registry,
		pendingClients: make(map[uint64]ClientCallback),
		logger:         logging.Disabled(),
		metrics:        metrics.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLeader toggles whether this node consults pendingClients at apply
// time. Role transitions live outside the engine; the caller supplies the
// current role.
func (e *Engine) SetLeader(isLeader bool) {
	e.isLeader = isLeader
}

// RegisterPendingClient records the client continuation for a proposed
// index, consumed (and removed) the first time that index is applied.
func (e *Engine) RegisterPendingClient(index uint64, cb ClientCallback) {
	e.pendingClients[index] = cb
}

// CommitIndex returns the current commit index.
func (e *Engine) CommitIndex() uint64 { return e.commitIndex }

// LastApplied returns the highest index applied to the state machine.
func (e *Engine) LastApplied() uint64 { return e.lastApplied }

// AdvanceCommitIndex implements the monotone commit-index advance rule:
// commitIndex = min(leaderCommit, lastIndex), only if that is greater than
// the current commitIndex. A smaller leaderCommit is ignored.
func (e *Engine) AdvanceCommitIndex(leaderCommit uint64) {
	if leaderCommit <= e.commitIndex {
		return
	}
	last := e.log.LastIndex()
	if leaderCommit < last {
		e.commitIndex = leaderCommit
	} else {
		e.commitIndex = last
	}
	e.metrics.CommitIndex.Set(float64(e.commitIndex))
}

// ApplyCommitted drains every entry between lastApplied and commitIndex, in
// order, exactly once. Apply-time errors (unknown command, bad arity, parse
// failure) are logged and do not stop the loop or leave the entry unapplied.
// The apply loop must never stall the log.
func (e *Engine) ApplyCommitted() error {
	for e.lastApplied < e.commitIndex {
		next := e.lastApplied + 1

		entry, ok := e.log.Lookup(next)
		if !ok {
			return ErrMissingEntry
		}

		if e.isLeader {
			if cb, pending := e.pendingClients[next]; pending {
				cb(entry)
				delete(e.pendingClients, next)
				e.lastApplied = next
				e.metrics.LastApplied.Set(float64(e.lastApplied))
				continue
			}
		}

		if err := e.registry.Dispatch(entry.CommandName, entry.Command); err != nil {
			e.logger.Warn().
				Uint64("index", next).
				Str("command_name", entry.CommandName).
				Err(err).
				Msg("apply-time error, entry still counted as applied")
			e.metrics.ApplyErrors.WithLabelValues(applyErrorReason(err)).Inc()
		}

		e.lastApplied = next
		e.metrics.LastApplied.Set(float64(e.lastApplied))
	}
	return nil
}

func applyErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, ErrBadArity):
		return "bad_arity"
	default:
		return "parse_failure"
	}
}
