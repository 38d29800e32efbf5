package changespec

import "fmt"

// Status is one of the CL lifecycle states. Modeled the way internal/ratchet
// models its Step/Tier enums: a string type plus an explicit adjacency table,
// rather than open string comparisons scattered through callers.
type Status string

const (
	StatusWIP       Status = "WIP"
	StatusDrafted   Status = "Drafted"
	StatusMailed    Status = "Mailed"
	StatusSubmitted Status = "Submitted"
	StatusReverted  Status = "Reverted"
	StatusArchived  Status = "Archived"
)

// transitions is the adjacency table enforced when a caller requests
// validation. Lifecycle ops (revert/archive/restore) bypass it entirely.
var transitions = map[Status]map[Status]bool{
	StatusWIP:     {StatusDrafted: true},
	StatusDrafted: {StatusWIP: true, StatusMailed: true},
	StatusMailed:  {StatusDrafted: true, StatusSubmitted: true},
	// Submitted, Reverted, Archived are terminal under the validated machine;
	// only LifecycleOps (validate=false) may leave them.
}

// CanTransition reports whether from->to is a legal validated transition.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Transition applies a status change, enforcing the adjacency table unless
// validate is false (the escape hatch reserved for revert/archive/restore).
func Transition(cs *ChangeSpec, to Status, validate bool) error {
	from := Status(cs.Status)
	if validate && !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	cs.Status = string(to)
	return nil
}

// IsTerminal reports whether status is one the CL will not normally leave.
func IsTerminal(status Status) bool {
	switch status {
	case StatusSubmitted, StatusReverted, StatusArchived:
		return true
	default:
		return false
	}
}

// NeedsTerminalCleanup reports whether the slow loop should strip attention
// markers for this status. Archived is deliberately excluded: an archived
// CL's hooks/agents were already reaped by the archive operation itself.
func NeedsTerminalCleanup(status Status) bool {
	return status == StatusReverted || status == StatusSubmitted
}

// currentEntry returns the highest-numbered accepted (non-proposal) commit
// entry, or nil if there are none yet.
func currentEntry(cs *ChangeSpec) *CommitEntry {
	var best *CommitEntry
	for i := range cs.Commits {
		c := &cs.Commits[i]
		if c.IsProposal() {
			continue
		}
		if best == nil || c.Base > best.Base {
			best = c
		}
	}
	return best
}

// liveProposals returns the proposals sharing the current entry's base id.
func liveProposals(cs *ChangeSpec, currentBase int) []CommitEntry {
	var out []CommitEntry
	for _, c := range cs.Commits {
		if c.IsProposal() && c.Base == currentBase {
			out = append(out, c)
		}
	}
	return out
}

// anyErrorSuffix scans every suffix-bearing field on the ChangeSpec for an
// `error` discriminator.
func anyErrorSuffix(cs *ChangeSpec) bool {
	for _, c := range cs.Commits {
		if c.SuffixType == SuffixError {
			return true
		}
	}
	for _, h := range cs.Hooks {
		for _, sl := range h.StatusLines {
			if sl.SuffixType == SuffixError {
				return true
			}
		}
	}
	for _, cm := range cs.Comments {
		if cm.SuffixType == SuffixError {
			return true
		}
	}
	for _, m := range cs.Mentors {
		for _, sl := range m.StatusLines {
			if sl.SuffixType == SuffixError {
				return true
			}
		}
	}
	return false
}

// allHooksPassedForCurrent reports whether every hook that applies to the
// current commit entry (and its live proposals) has a PASSED status line
// for each applicable id. A hook skipped for proposals via "$" is exempt
// from the proposal-side check.
func allHooksPassedForCurrent(cs *ChangeSpec) bool {
	entry := currentEntry(cs)
	if entry == nil {
		return len(cs.Hooks) == 0
	}
	ids := []string{entry.DisplayNumber}
	for _, p := range liveProposals(cs, entry.Base) {
		ids = append(ids, p.DisplayNumber)
	}

	for _, h := range cs.Hooks {
		for _, id := range ids {
			isProposalID := id != entry.DisplayNumber
			if isProposalID && h.SkipProposalRuns() {
				continue
			}
			sl := h.StatusLineFor(id)
			if sl == nil || sl.Status != HookPassed {
				return false
			}
		}
	}
	return true
}

// CurrentAndLiveProposalEntryIDs returns the display numbers of the current
// accepted commit entry and every proposal still live against it (same base
// number). Used by the scheduler to decide which commit entry ids a hook or
// mentor run applies to "right now".
func CurrentAndLiveProposalEntryIDs(cs *ChangeSpec) []string {
	entry := currentEntry(cs)
	if entry == nil {
		return nil
	}
	ids := []string{entry.DisplayNumber}
	for _, p := range liveProposals(cs, entry.Base) {
		ids = append(ids, p.DisplayNumber)
	}
	return ids
}

// ParentReady reports whether proj's lookup of cs.Parent is in a state that
// permits cs to be marked ready to mail: the parent is gone (legal
// fallback: proceed), already Submitted, or itself carries the
// READY-TO-MAIL suffix.
func ParentReady(cs *ChangeSpec, proj *ProjectSpec) bool {
	if cs.Parent == "" {
		return true
	}
	parent := proj.ByName(cs.Parent)
	if parent == nil {
		return true
	}
	if Status(parent.Status) == StatusSubmitted {
		return true
	}
	return parent.ReadyToMail
}

// ComputeReadyToMail is P5's pure function: base status Drafted, no error
// suffix anywhere, parent ready, and all hooks passed for the current entry
// and its live proposals.
func ComputeReadyToMail(cs *ChangeSpec, proj *ProjectSpec) (bool, string) {
	if Status(cs.Status) != StatusDrafted {
		return false, "base status is not Drafted"
	}
	if anyErrorSuffix(cs) {
		return false, "error suffix present"
	}
	if !ParentReady(cs, proj) {
		return false, "parent not ready"
	}
	if !allHooksPassedForCurrent(cs) {
		return false, "hooks not all passed"
	}
	return true, ""
}

// ApplyReadyToMail recomputes and stores the READY-TO-MAIL suffix for cs.
// Idempotent: calling it repeatedly with unchanged state is a no-op.
func ApplyReadyToMail(cs *ChangeSpec, proj *ProjectSpec) {
	ready, _ := ComputeReadyToMail(cs, proj)
	cs.ReadyToMail = ready
}

// AcknowledgeTerminalStatusMarkers strips attention markers once a CL has
// reached Reverted or Submitted (R4: idempotent on repeated calls).
func AcknowledgeTerminalStatusMarkers(cs *ChangeSpec) {
	if !NeedsTerminalCleanup(Status(cs.Status)) {
		return
	}

	for i := range cs.Commits {
		if cs.Commits[i].SuffixType == SuffixError || cs.Commits[i].SuffixType == SuffixRunningAgent {
			cs.Commits[i].Suffix = ""
			cs.Commits[i].SuffixType = SuffixNone
		}
	}
	for hi := range cs.Hooks {
		for si := range cs.Hooks[hi].StatusLines {
			sl := &cs.Hooks[hi].StatusLines[si]
			switch sl.SuffixType {
			case SuffixError:
				sl.SuffixType = SuffixPlain
			case SuffixRunningAgent:
				sl.SuffixType = SuffixKilledAgent
			}
		}
	}
	for ci := range cs.Comments {
		if cs.Comments[ci].SuffixType == SuffixError || cs.Comments[ci].SuffixType == SuffixRunningAgent {
			cs.Comments[ci].Suffix = ""
			cs.Comments[ci].SuffixType = SuffixNone
		}
	}
	cs.ReadyToMail = false
}

// MarkReadyToMail is the single atomic write behind "mark CL ready to mail":
// every unaccepted proposal is tagged BROKEN PROPOSAL and, when a final
// status is supplied, the CL transitions to it (bypassing validation, since
// this operation is itself a controlled terminal move); otherwise the
// READY-TO-MAIL suffix is (re)computed and stored.
func MarkReadyToMail(cs *ChangeSpec, proj *ProjectSpec, finalStatus Status) {
	for i := range cs.Commits {
		if cs.Commits[i].IsProposal() && cs.Commits[i].SuffixType != SuffixBroken {
			cs.Commits[i].Suffix = "BROKEN PROPOSAL"
			cs.Commits[i].SuffixType = SuffixBroken
		}
	}
	if finalStatus != "" {
		_ = Transition(cs, finalStatus, false)
		cs.ReadyToMail = false
		return
	}
	ApplyReadyToMail(cs, proj)
}
