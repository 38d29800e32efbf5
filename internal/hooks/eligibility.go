package hooks

import "github.com/gai-dev/gai/internal/changespec"

// CanStart implements spec §4.4's eligibility-to-start rules for a single
// (hook, entryID) pair.
//
//   - Regular entry id N: eligible iff no status line for N exists yet and
//     no other status line for this hook is RUNNING.
//   - Proposal id Na: additionally require the parent entry's status line
//     is PASSED, or the parent's suffix equals Na (the fix-hook exception:
//     the parent line is annotated with the proposal id addressing it).
//   - A `$`-prefixed hook never runs against a proposal entry.
func CanStart(h *changespec.HookEntry, entryID string, isProposal bool, parentEntryID string) (bool, error) {
	if isProposal && h.SkipProposalRuns() {
		return false, ErrSkippedForProposal
	}

	if sl := h.StatusLineFor(entryID); sl != nil {
		return false, ErrAlreadyRunning
	}
	for _, sl := range h.StatusLines {
		if sl.Status == changespec.HookRunning || sl.SuffixType.RunningTerminal() {
			return false, ErrAlreadyRunning
		}
	}

	if isProposal {
		parent := h.StatusLineFor(parentEntryID)
		if parent == nil {
			return false, ErrParentNotReady
		}
		if parent.Status == changespec.HookPassed {
			return true, nil
		}
		if parent.Suffix == entryID {
			return true, nil
		}
		return false, ErrParentNotReady
	}

	return true, nil
}
