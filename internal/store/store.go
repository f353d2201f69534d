// Package store owns the append-only log file and the in-memory ordered
// sequence of records backing a replicated log: load, append, truncate,
// sync, and O(1) lookup by dense index.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/anikak11/raftlog/internal/codec"
	"github.com/anikak11/raftlog/internal/logging"
	"github.com/anikak11/raftlog/internal/metrics"
)

// firstLogIndex is the index of the first entry ever written; there is no
// snapshotting, so the log always starts dense from here.
const firstLogIndex = 1

// Open opens (creating if absent, 0644) the log file at path and loads any
// existing entries into memory. It fails if the file contains a malformed
// or truncated-mid-frame byte stream.
func Open(path string, opts ...Option) (*Store, error) {
	dirPath := filepath.Dir(path)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating log directory %q: %v", ErrIOError, dirPath, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening log file %q: %v", ErrIOError, path, err)
	}
	// A crash between file creation and a later fsync of the entry itself
	// must not leave the directory entry for the log file missing.
	if dir, err := os.Open(dirPath); err == nil {
		dir.Sync()
		dir.Close()
	}

	s := &Store{
		path:      path,
		file:      file,
		baseIndex: firstLogIndex,
		entries:   make([]Record, 0),
		logger:    logging.Disabled(),
		metrics:   metrics.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// load decodes every well-formed frame from offset 0, populating entries
// and currentSize. Corresponds to the original design's loadLogFile.
func (s *Store) load() error {
	stat, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat log file: %v", ErrIOError, err)
	}
	if stat.Size() == 0 {
		s.currentSize = 0
		s.logger.Info().Msg("log file empty on open")
		return nil
	}

	readFile, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: reopening log for read: %v", ErrIOError, err)
	}
	defer readFile.Close()

	r := bufio.NewReader(readFile)
	var offset int64
	for {
		entry, size, err := codec.Decode(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("loading log at offset %d: %w", offset, err)
		}
		s.entries = append(s.entries, Record{Entry: entry, Position: offset})
		offset += size
	}
	s.currentSize = offset

	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("%w: seeking to end after load: %v", ErrIOError, err)
	}
	s.logger.Info().Int("entries", len(s.entries)).Int64("bytes", s.currentSize).Msg("log loaded")
	return nil
}

// Append encodes e, writes it to the file, and — only on a complete write —
// updates the in-memory sequence. It does not fsync.
func (s *Store) Append(e codec.Entry) (Record, error) {
	frame := codec.Encode(e)

	n, err := s.file.Write(frame)
	if n > 0 && n < len(frame) {
		// Roll the file back to the last known-good size; do not mutate
		// in-memory state on a partial write.
		if terr := s.file.Truncate(s.currentSize); terr != nil {
			s.logger.Error().Err(terr).Msg("failed to roll back short write")
		} else if _, serr := s.file.Seek(s.currentSize, io.SeekStart); serr != nil {
			s.logger.Error().Err(serr).Msg("failed to seek after rolling back short write")
		}
		return Record{}, fmt.Errorf("%w: entry %d wrote %d of %d bytes", ErrShortWrite, e.Index, n, len(frame))
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: writing entry %d: %v", ErrIOError, e.Index, err)
	}

	rec := Record{Entry: e, Position: s.currentSize}
	s.entries = append(s.entries, rec)
	s.currentSize += int64(n)
	s.metrics.EntriesAppended.Inc()
	return rec, nil
}

// Truncate discards the record at index and every record after it. A no-op
// if index is beyond the current last index.
func (s *Store) Truncate(index uint64) error {
	if index > s.LastIndex() {
		return nil
	}
	pos, ok := s.position(index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchIndex, index)
	}

	if err := s.file.Truncate(pos); err != nil {
		return fmt.Errorf("%w: truncating log to offset %d: %v", ErrIOError, pos, err)
	}
	if _, err := s.file.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seeking after truncate: %v", ErrIOError, err)
	}

	s.currentSize = pos
	s.entries = s.entries[:index-s.baseIndex]
	s.metrics.Truncations.Inc()
	s.logger.Info().Uint64("index", index).Msg("log truncated")
	return nil
}

// Sync flushes the file to durable storage.
func (s *Store) Sync() error {
	start := time.Now()
	err := s.file.Sync()
	s.metrics.SyncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	s.metrics.SyncTotal.Inc()
	return nil
}

// Lookup returns the entry at index, if present.
func (s *Store) Lookup(index uint64) (codec.Entry, bool) {
	if index < s.baseIndex || index > s.LastIndex() {
		return codec.Entry{}, false
	}
	return s.entries[index-s.baseIndex].Entry, true
}

// LastIndex returns the index of the last record, or 0 if the log is empty.
func (s *Store) LastIndex() uint64 {
	if len(s.entries) == 0 {
		return 0
	}
	return s.entries[len(s.entries)-1].Index
}

// LastTerm returns the term of the last record, or 0 if the log is empty.
func (s *Store) LastTerm() uint64 {
	if len(s.entries) == 0 {
		return 0
	}
	return s.entries[len(s.entries)-1].Term
}

// TermAt returns the term of the entry at index, or 0 if absent.
func (s *Store) TermAt(index uint64) uint64 {
	e, ok := s.Lookup(index)
	if !ok {
		return 0
	}
	return e.Term
}

// CurrentSize returns the number of bytes written to the file. Must match
// the file length on disk after Sync.
func (s *Store) CurrentSize() int64 {
	return s.currentSize
}

// BaseIndex returns first_log_index (always 1: no snapshots/compaction).
func (s *Store) BaseIndex() uint64 {
	return s.baseIndex
}

func (s *Store) position(index uint64) (int64, bool) {
	if index < s.baseIndex || index > s.LastIndex() {
		return 0, false
	}
	return s.entries[index-s.baseIndex].Position, true
}

// Close closes the underlying file. The store must not be used afterward.
func (s *Store) Close() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("%w: closing log file: %v", ErrIOError, err)
	}
	return nil
}
