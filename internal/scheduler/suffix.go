package scheduler

import (
	"context"
	"strconv"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
)

// applySuffixTransforms implements spec §4.6 eligibility step 6 ("apply
// suffix transforms"): the already-built READY-TO-MAIL computation and
// terminal-marker acknowledgment, plus the two old-entry suffix cleanups
// ported here from suffix_transforms.py (transform_old_proposal_suffixes,
// strip_old_entry_error_markers), which have no home in internal/changespec
// since they only make sense as part of the loop's per-tick sweep.
func (s *Scheduler) applySuffixTransforms(ctx context.Context, pf *projectfile.ProjectFile, clName string, proj *changespec.ProjectSpec) {
	_ = pf.MutateChangeSpec(ctx, clName, "Apply suffix transforms", func(cs *changespec.ChangeSpec) error {
		transformOldProposalSuffixes(cs)
		stripOldEntryErrorMarkers(cs)
		changespec.AcknowledgeTerminalStatusMarkers(cs)
		changespec.ApplyReadyToMail(cs, proj)
		return nil
	})
}

// highestRegularEntryBase returns the highest base number among cs's
// non-proposal commit entries, or -1 if there are none.
func highestRegularEntryBase(cs *changespec.ChangeSpec) int {
	best := -1
	for _, c := range cs.Commits {
		if !c.IsProposal() && c.Base > best {
			best = c.Base
		}
	}
	return best
}

// transformOldProposalSuffixes clears the error suffix from a proposal's
// HISTORY entry once a later regular entry has been accepted, mirroring
// suffix_transforms.py's transform_old_proposal_suffixes: an error against a
// proposal that was never accepted stops being actionable once history has
// moved past it.
func transformOldProposalSuffixes(cs *changespec.ChangeSpec) {
	highest := highestRegularEntryBase(cs)
	if highest < 0 {
		return
	}
	for i := range cs.Commits {
		c := &cs.Commits[i]
		if c.IsProposal() && c.Base < highest && c.SuffixType == changespec.SuffixError {
			c.Suffix = ""
			c.SuffixType = changespec.SuffixNone
		}
	}
}

// highestAllNumericEntry returns the highest display number parseable as a
// plain integer (i.e. excluding lettered proposal entries like "2a").
func highestAllNumericEntry(cs *changespec.ChangeSpec) int {
	best := -1
	for _, c := range cs.Commits {
		n, err := strconv.Atoi(c.DisplayNumber)
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	return best
}

// stripOldEntryErrorMarkers downgrades a hook's error suffix to plain once a
// later all-numeric entry exists, mirroring
// suffix_transforms.py's strip_old_entry_error_markers: an older entry's
// hook failure stops demanding attention once the CL has moved on.
func stripOldEntryErrorMarkers(cs *changespec.ChangeSpec) {
	highest := highestAllNumericEntry(cs)
	if highest < 0 {
		return
	}
	for hi := range cs.Hooks {
		for si := range cs.Hooks[hi].StatusLines {
			sl := &cs.Hooks[hi].StatusLines[si]
			n, err := strconv.Atoi(sl.CommitEntryNum)
			if err != nil || n >= highest {
				continue
			}
			if sl.SuffixType == changespec.SuffixError {
				sl.SuffixType = changespec.SuffixPlain
			}
		}
	}
}
