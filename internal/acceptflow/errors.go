package acceptflow

import "errors"

var (
	// ErrProposalNotFound means the requested display number has no
	// matching proposal HISTORY entry on the named CL.
	ErrProposalNotFound = errors.New("acceptflow: proposal not found")
	// ErrNoDiffPath means the proposal entry carries no diff path, so there
	// is nothing to apply (spec §4.7 step 2).
	ErrNoDiffPath = errors.New("acceptflow: proposal has no diff path")
	// ErrApplyDiff wraps a VcsProvider.ApplyPatch failure.
	ErrApplyDiff = errors.New("acceptflow: apply diff failed")
	// ErrAmend wraps a VcsProvider.Reword failure during the amend step.
	ErrAmend = errors.New("acceptflow: amend failed")
)
