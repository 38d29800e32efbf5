package hooks

import "errors"

// Sentinel errors for the hooks package.
var (
	// ErrAlreadyRunning is returned by CanStart when the hook already has a
	// status line for the entry id, or another of its status lines is still
	// running.
	ErrAlreadyRunning = errors.New("hook is already running for this entry")

	// ErrParentNotReady is returned when a proposal-id hook start is
	// attempted before its parent entry's status line is PASSED or
	// annotated with this proposal's id.
	ErrParentNotReady = errors.New("parent entry is not ready for a proposal hook run")

	// ErrSkippedForProposal is returned when a `$`-prefixed hook is asked
	// to start against a proposal entry id.
	ErrSkippedForProposal = errors.New("hook is skipped for proposal entries")

	// ErrNoCompletionMarker names the case of an output file with no
	// ===HOOK_COMPLETE=== line yet. ParseCompletion and ReadMarkerWithRetry
	// report that case with a false result rather than this error.
	ErrNoCompletionMarker = errors.New("no completion marker found in hook output")
)
