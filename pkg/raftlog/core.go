// Package raftlog is the explicit, non-singleton handle gluing the entry
// codec, log store, consistency enforcer, and commit/apply engine together
// behind the collaborator contract a cluster layer consumes.
package raftlog

import (
	"context"
	"fmt"
	"sync"

	"github.com/anikak11/raftlog/internal/apply"
	"github.com/anikak11/raftlog/internal/codec"
	"github.com/anikak11/raftlog/internal/config"
	"github.com/anikak11/raftlog/internal/consensus"
	"github.com/anikak11/raftlog/internal/logging"
	"github.com/anikak11/raftlog/internal/metrics"
	"github.com/anikak11/raftlog/internal/store"
	"github.com/rs/zerolog"
)

// Entry is the public log-entry type: (index, term, command_name, command).
type Entry = codec.Entry

// ClientCallback is the leader's continuation for a proposed entry.
type ClientCallback = apply.ClientCallback

// CommandHandler is invoked during apply with the decoded argument vector.
type CommandHandler = apply.CommandHandler

// Role mirrors the node's Raft role; only Leader consults pending client
// continuations at apply time. Transitions live outside the core.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

// Core is the single, explicitly-owned handle for a replicated log: open
// at startup (constructs the file + load), used for the node's lifetime,
// and closed at shutdown. It is safe for concurrent use — every exported
// method is serialized behind one coarse lock, matching the single-task
// cooperative execution model the algorithm assumes.
type Core struct {
	mu sync.Mutex

	store    *store.Store
	enforcer *consensus.Enforcer
	engine   *apply.Engine
	registry *apply.Registry

	cfg         config.Config
	currentTerm uint64
	role        Role

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Core at construction time.
type Option func(*Core)

// WithLogger attaches a structured logger shared by every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Core) { c.logger = logger }
}

// WithMetrics attaches a metrics sink shared by every component.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Core) { c.metrics = m }
}

// Open opens (or creates) the log file named by cfg.LogPath and recovers
// any entries already on disk. A format error during recovery is fatal and
// returned directly — the caller must refuse to start the node.
func Open(cfg config.Config, opts ...Option) (*Core, error) {
	c := &Core{
		cfg:      cfg,
		registry: apply.NewRegistry(),
		logger:   logging.Disabled(),
		metrics:  metrics.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	st, err := store.Open(cfg.LogPath, store.WithLogger(c.logger), store.WithMetrics(c.metrics))
	if err != nil {
		return nil, err
	}
	c.store = st
	c.enforcer = consensus.New(st, c.logger)
	c.engine = apply.New(st, c.registry, apply.WithLogger(c.logger), apply.WithMetrics(c.metrics))
	return c, nil
}

// Close flushes and closes the underlying log file. The Core must not be
// used afterward.
func (c *Core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	syncErr := c.store.Sync()
	if err := c.store.Close(); err != nil {
		return err
	}
	return syncErr
}

// RegisterCommand populates the state-machine dispatch table. Called by the
// (out-of-scope) cluster layer at startup, before any entries are applied.
func (c *Core) RegisterCommand(name string, aritySpec int, handler CommandHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Register(name, aritySpec, handler)
}

// SetTerm records the node's current Raft term, consulted by Propose.
// Term tracking and election itself live outside the core.
func (c *Core) SetTerm(term uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTerm = term
}

// SetRole records the node's current role; only Leader consults pending
// client continuations at apply time.
func (c *Core) SetRole(role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.role = role
	c.engine.SetLeader(role == Leader)
}

// Propose allocates the next index at the current term, appends the
// command, and registers cb to be invoked (instead of re-parsed) when this
// index is applied. Leader-only; the caller is responsible for having
// called SetRole(Leader) first.
func (c *Core) Propose(ctx context.Context, commandName string, command []byte, cb ClientCallback) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(commandName) > c.cfg.MaxCommandNameLen {
		return 0, fmt.Errorf("command_name %q exceeds %d bytes", commandName, c.cfg.MaxCommandNameLen)
	}
	if c.cfg.MaxCommandLen > 0 && len(command) > c.cfg.MaxCommandLen {
		return 0, fmt.Errorf("command exceeds %d bytes", c.cfg.MaxCommandLen)
	}

	index := c.store.LastIndex() + 1
	entry := Entry{Index: index, Term: c.currentTerm, CommandName: commandName, Command: command}
	if _, err := c.store.Append(entry); err != nil {
		return 0, err
	}
	if cb != nil {
		c.engine.RegisterPendingClient(index, cb)
	}
	if c.cfg.SyncPolicy == config.SyncAlways {
		if err := c.store.Sync(); err != nil {
			return 0, err
		}
	}
	return index, nil
}

// IngestBatch runs the full Enforcer + commit/apply pipeline for a
// leader-pushed batch: verify the (prevIndex, prevTerm) anchor,
// conflict-truncate-or-append each entry, fsync once for the whole batch,
// advance commit_index from leaderCommit, and drain the apply loop.
func (c *Core) IngestBatch(ctx context.Context, prevIndex, prevTerm, leaderCommit uint64, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enforcer.IngestBatch(prevIndex, prevTerm, c.engine.CommitIndex(), entries); err != nil {
		return err
	}
	if err := c.store.Sync(); err != nil {
		return err
	}

	c.engine.AdvanceCommitIndex(leaderCommit)
	return c.engine.ApplyCommitted()
}

// AdvanceCommitAndApply is the leader-side counterpart to the commit advance
// inside IngestBatch: called once a quorum has acknowledged an index, it
// advances commit_index and drains the apply loop.
func (c *Core) AdvanceCommitAndApply(index uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.AdvanceCommitIndex(index)
	return c.engine.ApplyCommitted()
}

// SnapshotState returns a read-only view used for AppendEntries construction
// and election term checks by the (out-of-scope) cluster layer.
func (c *Core) SnapshotState() (lastIndex, lastTerm, commitIndex uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.LastIndex(), c.store.LastTerm(), c.engine.CommitIndex()
}

// LastApplied returns the highest index applied to the state machine.
func (c *Core) LastApplied() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.LastApplied()
}

// Lookup returns the entry at index, if present.
func (c *Core) Lookup(index uint64) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Lookup(index)
}

// SyncNow forces an fsync, for external callers that need durability before
// replying to a peer.
func (c *Core) SyncNow(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Sync()
}
