package scheduler

import (
	"context"
	"fmt"

	"github.com/gai-dev/gai/internal/agents"
	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/hooks"
	"github.com/gai-dev/gai/internal/projectfile"
)

// startWorkflows implements spec §4.6 eligibility step 5 ("run workflow
// starters"): CRS against unresolved critique comments, fix-hook against a
// summarized failure, and summarize-hook against a fresh failure still
// missing one. All three share the tick's budget except "!" hooks, which
// summarize-hook and fix-hook inherit from the hook they operate on.
func (s *Scheduler) startWorkflows(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec, budget *tickBudget) []string {
	var messages []string
	messages = append(messages, s.startDueCRS(ctx, pf, cs, budget)...)
	messages = append(messages, s.startDueFixHooks(ctx, pf, cs, budget)...)
	messages = append(messages, s.startDueSummarizeHooks(ctx, pf, cs, budget)...)
	return messages
}

// startDueCRS launches a critique-response workflow for every reviewer whose
// comments are still outstanding per s.opts.Checks.CritiqueComments, and
// that isn't already running one. Grounded on core.py's pending-checks
// gating: the background check, not the comment's own suffix, is what
// decides "still unresolved" (a SuffixNone comment may already be settled
// and simply not yet swept from the list).
func (s *Scheduler) startDueCRS(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec, budget *tickBudget) []string {
	var messages []string
	for _, c := range cs.Comments {
		if c.SuffixType == changespec.SuffixRunningAgent {
			continue
		}
		unresolved, err := s.opts.Checks.CritiqueComments(ctx, cs.Name, false)
		if err != nil || !unresolved {
			continue
		}
		if budget.available() <= 0 {
			s.opts.Log.VerbosePrintf("CRS start deferred for %s/%s: runner limit reached\n", cs.Name, c.Reviewer)
			continue
		}
		msg, err := agents.LaunchCRS(ctx, s.launchParams(pf), cs, c.Reviewer, s.opts.VCS)
		if err != nil {
			s.opts.Log.VerbosePrintf("CRS launch failed for %s/%s: %v\n", cs.Name, c.Reviewer, err)
			continue
		}
		budget.consume(1)
		messages = append(messages, msg)
	}
	return messages
}

// startDueFixHooks claims and launches a fix-hook workflow for every FAILED
// status line already carrying a summarize-hook summary. The claim step
// (TryClaimHookForFix) serializes against a second scheduler tick or process
// making the same decision; a claim loss is silently skipped rather than
// logged, since losing the race is the expected outcome, not a failure.
func (s *Scheduler) startDueFixHooks(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec, budget *tickBudget) []string {
	var messages []string
	for hi := range cs.Hooks {
		h := &cs.Hooks[hi]
		for _, sl := range h.StatusLines {
			if sl.Status != changespec.HookFailed || sl.SuffixType != changespec.SuffixSummarizeComplete || sl.Suffix == "" {
				continue
			}
			if !h.SkipFixHook() && budget.available() <= 0 {
				s.opts.Log.VerbosePrintf("fix-hook start deferred for %s '%s': runner limit reached\n", cs.Name, h.BareCommand())
				continue
			}
			claimToken := fmt.Sprintf("claim-%s", hooks.Now())
			summary, err := agents.TryClaimHookForFix(ctx, pf, cs.Name, h.Command, sl.CommitEntryNum, claimToken)
			if err != nil {
				continue
			}
			msg, err := agents.LaunchFixHookClaimed(ctx, s.launchParams(pf), cs, h, sl.CommitEntryNum, summary, s.opts.VCS)
			if err != nil {
				s.opts.Log.VerbosePrintf("fix-hook launch failed for %s '%s': %v\n", cs.Name, h.BareCommand(), err)
				continue
			}
			if !h.SkipFixHook() {
				budget.consume(1)
			}
			messages = append(messages, msg)
		}
	}
	return messages
}

// startDueSummarizeHooks launches a summarize-hook workflow for every FAILED
// status line that has neither a summary nor a running_agent/claiming_fix
// suffix yet, so a failure is only ever summarized once before fix-hook
// takes over.
func (s *Scheduler) startDueSummarizeHooks(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec, budget *tickBudget) []string {
	var messages []string
	for hi := range cs.Hooks {
		h := &cs.Hooks[hi]
		for _, sl := range h.StatusLines {
			if sl.Status != changespec.HookFailed {
				continue
			}
			switch sl.SuffixType {
			case changespec.SuffixNone, changespec.SuffixPlain, changespec.SuffixError:
			default:
				continue
			}
			if !h.SkipFixHook() && budget.available() <= 0 {
				s.opts.Log.VerbosePrintf("summarize-hook start deferred for %s '%s': runner limit reached\n", cs.Name, h.BareCommand())
				continue
			}
			hookOutputPath := hooks.OutputPath(s.opts.BaseDir, cs.Name, sl.Timestamp)
			msg, err := agents.LaunchSummarizeHook(ctx, s.launchParams(pf), cs, h, sl.CommitEntryNum, hookOutputPath)
			if err != nil {
				s.opts.Log.VerbosePrintf("summarize-hook launch failed for %s '%s': %v\n", cs.Name, h.BareCommand(), err)
				continue
			}
			if !h.SkipFixHook() {
				budget.consume(1)
			}
			messages = append(messages, msg)
		}
	}
	return messages
}
