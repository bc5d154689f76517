// Package pipeline orchestrates swing capture and analysis: the session
// state machine, the live debounced polling loop, and the cancellable batch
// pipeline over video-derived frame pairs.
//
// This is the only layer that fails. Components below it (event detection,
// metrics, flaws, matching) are total functions; every error surfaced here is
// one of the typed sentinels below, possibly wrapped with context.
package pipeline

import "errors"

var (
	// ErrNoSwingDetected means a batch run produced too few usable pose
	// frames to identify a swing in either source.
	ErrNoSwingDetected = errors.New("pipeline: no swing detected")

	// ErrBatchTimeout means the batch run exceeded its caller-supplied
	// overall budget. Partial progress is discarded.
	ErrBatchTimeout = errors.New("pipeline: batch timeout exceeded")

	// ErrBatchCancelled means the cancellation flag was observed between
	// units of work and the run aborted cleanly.
	ErrBatchCancelled = errors.New("pipeline: batch cancelled")

	// ErrPipelineBusy means an analysis pass was already in flight for the
	// session. Overlapping triggers are dropped, not queued.
	ErrPipelineBusy = errors.New("pipeline: analysis already in flight")

	// ErrSessionState means a lifecycle transition was requested from the
	// wrong state, for example starting an already-active session.
	ErrSessionState = errors.New("pipeline: invalid session state transition")
)
