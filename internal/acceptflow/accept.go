// Package acceptflow implements accepting a proposal into history
// (spec §4.7): apply its diff, amend the commit, renumber HISTORY, and the
// reject-all-and-mail shortcut. Grounded on
// original_source/.../ace/tui/actions/hints/_accept.py and
// .../ace/mail_ops.py.
package acceptflow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/vcs"
)

// AcceptProposal implements spec §4.7 steps 1-6: apply the proposal's diff
// into the workspace currently checked out at clName, amend it into the
// commit, renumber HISTORY so the proposal becomes the next accepted entry,
// and mark any now-stale sibling proposals BROKEN PROPOSAL. changedTestTargets
// is the proposal's changed_test_targets metadata (§4.7 step 6); the `.gp`
// grammar does not carry this as a HISTORY field, so callers that tracked it
// out-of-band (e.g. from the agent that produced the proposal) pass it
// through explicitly.
func AcceptProposal(ctx context.Context, pf *projectfile.ProjectFile, vcsProv vcs.Provider, clName, proposalDisplayNumber string, changedTestTargets []string) (string, error) {
	var newDisplayNumber string

	err := pf.MutateChangeSpec(ctx, clName, fmt.Sprintf("Accept proposal %s for %s", proposalDisplayNumber, clName), func(cs *changespec.ChangeSpec) error {
		idx := -1
		for i, c := range cs.Commits {
			if c.DisplayNumber == proposalDisplayNumber && c.IsProposal() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s/%s", ErrProposalNotFound, clName, proposalDisplayNumber)
		}
		entry := cs.Commits[idx]
		if entry.Diff == "" {
			return fmt.Errorf("%w: %s/%s", ErrNoDiffPath, clName, proposalDisplayNumber)
		}

		if res := vcsProv.ApplyPatch(ctx, entry.Diff); !res.OK {
			return fmt.Errorf("%w: %s", ErrApplyDiff, res.Detail)
		}
		desc := vcsProv.PrepareDescriptionForReword(ctx, entry.Note)
		if res := vcsProv.Reword(ctx, desc.Detail); !res.OK {
			return fmt.Errorf("%w: %s", ErrAmend, res.Detail)
		}

		newBase := highestRegularEntryBase(cs) + 1
		newDisplayNumber = strconv.Itoa(newBase)
		cs.Commits = append(cs.Commits, changespec.CommitEntry{
			DisplayNumber: newDisplayNumber,
			Base:          newBase,
			Note:          entry.Note,
		})

		for i := range cs.Commits {
			c := &cs.Commits[i]
			if c.IsProposal() && c.Base == entry.Base && c.DisplayNumber != proposalDisplayNumber && c.SuffixType != changespec.SuffixBroken {
				c.Suffix = "BROKEN PROPOSAL"
				c.SuffixType = changespec.SuffixBroken
			}
		}
		cs.Commits = append(cs.Commits[:idx], cs.Commits[idx+1:]...)

		if len(changedTestTargets) > 0 {
			ensureTestTargetHooks(cs, changedTestTargets)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("proposal %s accepted as entry %s for %s", proposalDisplayNumber, newDisplayNumber, clName), nil
}

// highestRegularEntryBase returns the highest base number among cs's
// non-proposal commit entries, or 0 if there are none (so the first
// accepted entry is numbered 1).
func highestRegularEntryBase(cs *changespec.ChangeSpec) int {
	best := 0
	for _, c := range cs.Commits {
		if !c.IsProposal() && c.Base > best {
			best = c.Base
		}
	}
	return best
}

// ensureTestTargetHooks adds a "bb_rabbit_test <target>" hook for each
// changed target that doesn't already have one, matching hints.py's
// idempotent hook-provisioning behavior when a proposal's
// changed_test_targets metadata names targets outside the CL's existing
// HOOKS set.
func ensureTestTargetHooks(cs *changespec.ChangeSpec, targets []string) {
	have := make(map[string]bool, len(cs.Hooks))
	for _, h := range cs.Hooks {
		have[h.BareCommand()] = true
	}
	for _, target := range targets {
		command := fmt.Sprintf("bb_rabbit_test %s", target)
		if have[command] {
			continue
		}
		cs.Hooks = append(cs.Hooks, changespec.HookEntry{Command: command})
		have[command] = true
	}
}

// RejectAllAndMail implements spec §4.7's reject-all-and-mail: every
// non-accepted proposal is marked BROKEN PROPOSAL in one write, and the CL
// either transitions to Mailed (mail=true) or has its READY-TO-MAIL suffix
// recomputed and stored.
func RejectAllAndMail(ctx context.Context, pf *projectfile.ProjectFile, clName string, mail bool) error {
	return pf.Mutate(ctx, fmt.Sprintf("Reject all proposals for %s", clName), func(proj *changespec.ProjectSpec) error {
		cs := proj.ByName(clName)
		if cs == nil {
			return fmt.Errorf("%w: %s", changespec.ErrNotFound, clName)
		}
		final := changespec.Status("")
		if mail {
			final = changespec.StatusMailed
		}
		changespec.MarkReadyToMail(cs, proj, final)
		return nil
	})
}
