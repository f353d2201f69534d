package store

import (
	"os"

	"github.com/anikak11/raftlog/internal/codec"
	"github.com/anikak11/raftlog/internal/metrics"
	"github.com/rs/zerolog"
)

// Record is a log entry augmented with the byte offset of its frame in the
// log file. Position is used exclusively by Truncate.
type Record struct {
	codec.Entry
	Position int64
}

// Store owns the append-only log file and the in-memory ordered sequence of
// records. It is NOT safe for concurrent use: this is a single-threaded
// cooperative component, and callers (raftlog.Core) are responsible for
// serializing access.
type Store struct {
	path string
	file *os.File

	// baseIndex is first_log_index. The source assumes 1 (no snapshots);
	// it is carried explicitly to keep the lookup/truncate arithmetic
	// uniform per the dense-sequence design note.
	baseIndex uint64

	entries     []Record
	currentSize int64

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger attaches a structured logger. Defaults to a disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics attaches a metrics sink. Defaults to a no-op sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}
