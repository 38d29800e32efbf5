// Package lifecycle implements the three CL lifecycle operations spec §4.8
// names outside the normal WIP->Drafted->Mailed->Submitted progression:
// Revert, Archive, and Restore. Grounded on original_source/.../ace/revert.py,
// archive.py, restore.py, and the shared helpers in operations.py.
package lifecycle

import "errors"

var (
	// ErrNoCL means the ChangeSpec has no CL set, so there is nothing to
	// revert or archive.
	ErrNoCL = errors.New("lifecycle: changespec has no CL set")
	// ErrActiveChildren means another ChangeSpec still cites this one as
	// its parent and has not reached the operation's required terminal
	// status.
	ErrActiveChildren = errors.New("lifecycle: other changespecs still depend on this one")
	// ErrNoWorkspace means no workspace directory could be determined for
	// the operation (Revert expects an existing RUNNING claim; Archive
	// expects an Axe slot to be available).
	ErrNoWorkspace = errors.New("lifecycle: could not determine workspace directory")
	// ErrWrongStatus means Restore was asked to restore a ChangeSpec that
	// is neither Reverted nor Archived.
	ErrWrongStatus = errors.New("lifecycle: status is not Reverted or Archived")
	// ErrDiffNotFound means Restore could not locate a stashed diff file
	// under either the reverted/ or archived/ subdirectory.
	ErrDiffNotFound = errors.New("lifecycle: stashed diff file not found")
)
