package store

import "errors"

// Sentinel errors surfaced to callers.
var (
	// ErrIOError wraps any unexpected file-system error during append/load.
	ErrIOError = errors.New("io_error")

	// ErrShortWrite is returned when write(2) returns fewer bytes than the
	// encoded frame. In-memory state is left untouched; the file is rolled
	// back to currentSize before the error is returned.
	ErrShortWrite = errors.New("short_write")

	// ErrSyncFailed wraps an fsync(2) failure.
	ErrSyncFailed = errors.New("sync_failed")

	// ErrNoSuchIndex is returned by operations that require an existing
	// index (e.g. Truncate beyond the log is a no-op, not this error).
	ErrNoSuchIndex = errors.New("no_such_index")
)
