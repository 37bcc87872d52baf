// Package errs defines the sentinel error kinds surfaced by the core.
package errs

import "errors"

// Sentinel kinds. Callers compare with errors.Is; wrap with fmt.Errorf("...: %w", err)
// to attach file/operation context before returning to a caller.
var (
	// ErrIndexBuild means a chunk read failed while building an offset index.
	// The partial offset table is dropped and the file import aborts.
	ErrIndexBuild = errors.New("index build failed")

	// ErrStorage means a persisted-store transaction aborted. The caller
	// degrades the file to the large-file path if possible.
	ErrStorage = errors.New("storage operation failed")

	// ErrInvalidRegex means a filter regex failed to compile. Matching
	// degrades to "no matches"; the viewport stays mounted.
	ErrInvalidRegex = errors.New("invalid regex")

	// ErrRangeOutOfBounds names the out-of-range case. No function in
	// the core returns it: out-of-range requests are clamped silently.
	ErrRangeOutOfBounds = errors.New("range out of bounds")

	// ErrStaleResult means a result arrived for a disposed provider or a
	// superseded jump. It is discarded at the merge point, never surfaced.
	ErrStaleResult = errors.New("stale result")
)
