package projectfile

import "errors"

// Sentinel errors for the projectfile package.
var (
	// ErrLockTimeout is returned when the advisory lock could not be
	// acquired before the configured timeout elapsed.
	ErrLockTimeout = errors.New("timed out waiting for project file lock")

	// ErrNotLocked is returned when Release or a protected operation is
	// attempted on a Lock that was never successfully acquired.
	ErrNotLocked = errors.New("project file lock is not held")

	// ErrIO wraps unexpected filesystem failures while reading or writing
	// the project file (distinct from lock contention or parse errors).
	ErrIO = errors.New("project file io error")
)
