package compaction

import "errors"

// Misuse errors. These are the only errors the engine ever returns from its
// happy path; every other anomaly in the taxonomy (summarizer failure,
// size-regression, round-trip gaps, budget infeasibility) degrades silently
// into the returned result's counters instead of a Go error.
var (
	// ErrUnsupportedMode is returned when CompressOptions.Mode names a mode
	// this engine does not implement. "lossy" is reserved for a future,
	// deliberately destructive compression mode and is never silently
	// downgraded to the lossless path.
	ErrUnsupportedMode = errors.New("compaction: unsupported mode")
)
