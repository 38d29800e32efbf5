package scheduler

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/hooks"
	"github.com/gai-dev/gai/internal/procutil"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/workspace"
)

// reconcileHooks advances every RUNNING hook status line on cs by one tick
// (spec §4.4, driven by the already-built hooks.EvaluateRunning), merging
// every change in a single MergeHooks call per spec §4.6's "Writes"
// bullet. The PID embedded in a RUNNING line's Suffix is unchanged across
// the running_process -> pending_dead_process transition (only Summary
// gains the grace-period marker), so it is always recoverable with a
// direct strconv.Atoi.
func (s *Scheduler) reconcileHooks(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec, now time.Time) []string {
	var messages []string
	modified := make(map[string]changespec.HookEntry)

	for _, h := range cs.Hooks {
		var changedLines []changespec.HookStatusLine
		for _, sl := range h.StatusLines {
			if sl.Status != changespec.HookRunning {
				continue
			}
			pid, err := strconv.Atoi(sl.Suffix)
			if err != nil {
				continue
			}
			isAlive := procutil.IsRunning(pid)
			outputPath := hooks.OutputPath(s.opts.BaseDir, cs.Name, sl.Timestamp)

			var marker *hooks.CompletionMarker
			var found bool
			if !isAlive && sl.SuffixType != changespec.SuffixPendingDeadProcess {
				// Process just went away: the marker may not have flushed
				// yet, so retry a few times before accepting pending_dead.
				marker, found = hooks.ReadMarkerWithRetry(outputPath)
			} else {
				content, _ := os.ReadFile(outputPath)
				marker, found = hooks.ParseCompletion(string(content))
			}
			var m *hooks.CompletionMarker
			if found {
				m = marker
			}
			updated := hooks.EvaluateRunning(sl, sl.Timestamp, isAlive, m, now)
			if updated.Status != sl.Status || updated.SuffixType != sl.SuffixType || updated.Summary != sl.Summary {
				changedLines = append(changedLines, updated)
			}
		}
		if len(changedLines) == 0 {
			continue
		}
		updatedHook := h
		for _, sl := range changedLines {
			updatedHook = updatedHook.WithStatusLine(sl)
		}
		modified[h.Command] = updatedHook
		for _, sl := range changedLines {
			messages = append(messages, fmt.Sprintf("hook '%s' (%s) -> %s", h.BareCommand(), sl.CommitEntryNum, sl.Status))
		}
	}

	if len(modified) == 0 {
		return messages
	}
	if err := pf.MergeHooks(ctx, cs.Name, fmt.Sprintf("Hook tick reconcile for %s", cs.Name), modified); err != nil {
		s.opts.Log.VerbosePrintf("merge hook updates for %s: %v\n", cs.Name, err)
		return messages
	}

	for command := range modified {
		h := modified[command]
		for _, sl := range h.StatusLines {
			if sl.Status.Terminal() {
				s.releaseEntryWorkspaceIfDone(ctx, pf, cs.Name, sl.CommitEntryNum)
			}
		}
	}
	return messages
}

// startEligibleHooks implements spec §4.4/§4.6 item 2: for every commit
// entry id currently in play (the accepted entry plus its live proposals),
// start every hook that CanStart reports eligible, subject to the shared
// concurrency budget (unlimited "!" hooks bypass it entirely).
func (s *Scheduler) startEligibleHooks(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec, budget *tickBudget) []string {
	var messages []string
	entryIDs := changespec.CurrentAndLiveProposalEntryIDs(cs)
	if len(entryIDs) == 0 {
		return messages
	}
	currentID := entryIDs[0]

	for hi := range cs.Hooks {
		h := &cs.Hooks[hi]
		for _, id := range entryIDs {
			isProposal := id != currentID
			ok, _ := hooks.CanStart(h, id, isProposal, currentID)
			if !ok {
				continue
			}
			if !h.SkipFixHook() && budget.available() <= 0 {
				s.opts.Log.VerbosePrintf("hook start deferred for %s '%s': runner limit reached\n", cs.Name, h.BareCommand())
				continue
			}
			sl, workflowName, err := s.startHook(ctx, pf, cs.Name, h, id)
			if err != nil {
				s.opts.Log.VerbosePrintf("start hook '%s' (%s) on %s: %v\n", h.BareCommand(), id, cs.Name, err)
				continue
			}
			if err := pf.MergeHooks(ctx, cs.Name, fmt.Sprintf("Start hook '%s' for %s", h.Command, cs.Name), map[string]changespec.HookEntry{
				h.Command: h.WithStatusLine(sl),
			}); err != nil {
				s.opts.Log.VerbosePrintf("persist hook start for %s: %v\n", cs.Name, err)
				releaseClaimByWorkflow(ctx, pf, workflowName, cs.Name)
				continue
			}
			if !h.SkipFixHook() {
				budget.consume(1)
			}
			messages = append(messages, fmt.Sprintf("hook '%s' -> RUNNING for %s", h.BareCommand(), id))
		}
	}
	return messages
}

// startHook claims a workspace in the Axe pool, checks the CL out into it,
// and launches the hook's wrapper script, mirroring
// internal/agents.launchInWorkspace's spawn-then-claim-with-real-pid
// pattern but against the scheduler's own concurrency budget rather than
// AgentLauncher's. A claim race rolls the subprocess back with SIGTERM
// (never SIGKILL: spec §5 reserves that escalation for AgentLauncher's own
// claim-failure path, not the scheduler's).
func (s *Scheduler) startHook(ctx context.Context, pf *projectfile.ProjectFile, clName string, h *changespec.HookEntry, entryID string) (changespec.HookStatusLine, string, error) {
	workflowName := fmt.Sprintf("axe(hooks)-%s", entryID)

	proj, err := pf.Read()
	if err != nil {
		return changespec.HookStatusLine{}, "", err
	}
	ws, err := workspace.GetFirstAvailable(proj, workspace.Axe, s.opts.PrimaryMax)
	if err != nil {
		return changespec.HookStatusLine{}, "", err
	}
	workspaceDir := workspace.DirectoryForNum(s.opts.BaseDir, ws)

	if res := s.opts.VCS.Checkout(ctx, clName); !res.OK {
		return changespec.HookStatusLine{}, "", fmt.Errorf("checkout %s into workspace %d: %s", clName, ws, res.Detail)
	}

	ts := hooks.Now()
	outputPath := hooks.OutputPath(s.opts.BaseDir, clName, ts)
	sl, err := hooks.StartHookBackground(workspaceDir, h, entryID, outputPath)
	if err != nil {
		return changespec.HookStatusLine{}, "", err
	}

	pid, _ := strconv.Atoi(sl.Suffix)
	if claimErr := workspace.ClaimWorkspace(ctx, pf, ws, workflowName, pid, clName); claimErr != nil {
		procutil.KillProcessGroup(pid)
		return changespec.HookStatusLine{}, "", fmt.Errorf("claim workspace %d: %w", ws, claimErr)
	}
	return sl, workflowName, nil
}

// releaseEntryWorkspaceIfDone releases the Axe workspace held for entryID
// once every hook's status line for it has left RUNNING, mirroring
// hook_checks.py's release_entry_workspace. Per-entry (not per-hook)
// release granularity matches workflow_name = axe(hooks)-<entry_id>
// covering every hook of one proposal sharing one workspace (spec §5).
func (s *Scheduler) releaseEntryWorkspaceIfDone(ctx context.Context, pf *projectfile.ProjectFile, clName, entryID string) {
	proj, err := pf.Read()
	if err != nil {
		return
	}
	cs := proj.ByName(clName)
	if cs == nil {
		return
	}
	for _, h := range cs.Hooks {
		if sl := h.StatusLineFor(entryID); sl != nil && sl.Status == changespec.HookRunning {
			return
		}
	}
	releaseClaimByWorkflow(ctx, pf, fmt.Sprintf("axe(hooks)-%s", entryID), clName)
}
