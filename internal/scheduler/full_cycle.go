package scheduler

import (
	"context"
	"time"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
)

// backgroundCheckFreshness bounds how often the (expensive, external)
// IsCLSubmitted/CritiqueComments checks are repeated for the same CL across
// full cycles, mirroring core.py's per-CL freshness cache.
const backgroundCheckFreshness = 1 * time.Hour

// isLeafCL reports whether cs has no parent still in flight: an empty
// parent, or one already Submitted. Spec §4.6's first-cycle freshness-cache
// bypass only applies to these, since a CL still waiting on its parent has
// nothing new to check yet.
func isLeafCL(cs *changespec.ChangeSpec, proj *changespec.ProjectSpec) bool {
	if cs.Parent == "" {
		return true
	}
	parent := proj.ByName(cs.Parent)
	return parent == nil || changespec.Status(parent.Status) == changespec.StatusSubmitted
}

// shouldCheckBackground reports whether clName's background checks are due,
// either because they have never run or because backgroundCheckFreshness has
// elapsed, bypassed unconditionally on the scheduler's first full cycle for
// leaf CLs (spec §4.6).
func (s *Scheduler) shouldCheckBackground(clName string, leaf bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstCycle && leaf {
		return true
	}
	last, ok := s.lastChecked[clName]
	return !ok || time.Since(last) >= backgroundCheckFreshness
}

func (s *Scheduler) markBackgroundChecked(clName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastChecked[clName] = time.Now()
}

// RunFullCycle implements spec §4.6's slow cadence: poll the project-specific
// background checks (gated by the freshness cache) for every in-scope CL,
// then sweep orphaned workspace claims once per project file.
func (s *Scheduler) RunFullCycle(ctx context.Context) error {
	for _, pf := range s.opts.ProjectFiles {
		proj, err := pf.Read()
		if err != nil {
			s.opts.Log.Printf("read project file: %v\n", err)
			continue
		}

		for _, cs := range s.targetsFor(proj) {
			leaf := isLeafCL(cs, proj)
			if !s.shouldCheckBackground(cs.Name, leaf) {
				continue
			}
			s.runBackgroundChecks(ctx, pf, cs)
			s.markBackgroundChecked(cs.Name)
		}

		s.sweepOrphans(ctx, pf)
	}
	return nil
}

// runBackgroundChecks implements spec §4.6 item 1: is_cl_submitted drives
// the Mailed -> Submitted transition; critique_comments --me is consulted
// here only to log visibility (the real comment-reply gating happens in
// startDueCRS on the hook-tick cadence, which calls CritiqueComments itself).
func (s *Scheduler) runBackgroundChecks(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec) {
	if changespec.Status(cs.Status) == changespec.StatusMailed {
		submitted, err := s.opts.Checks.IsCLSubmitted(ctx, cs.Name)
		if err != nil {
			s.opts.Log.VerbosePrintf("is_cl_submitted(%s): %v\n", cs.Name, err)
		} else if submitted {
			if err := pf.MutateChangeSpec(ctx, cs.Name, "Mark submitted", func(live *changespec.ChangeSpec) error {
				return changespec.Transition(live, changespec.StatusSubmitted, false)
			}); err != nil {
				s.opts.Log.VerbosePrintf("mark %s submitted: %v\n", cs.Name, err)
			} else {
				s.opts.Log.Printf("%s: Mailed -> Submitted\n", cs.Name)
			}
		}
	}

	if _, err := s.opts.Checks.CritiqueComments(ctx, cs.Name, true); err != nil {
		s.opts.Log.VerbosePrintf("critique_comments --me(%s): %v\n", cs.Name, err)
	}
}
