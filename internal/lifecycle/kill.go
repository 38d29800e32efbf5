package lifecycle

import (
	"context"
	"fmt"

	"github.com/gai-dev/gai/internal/agents"
	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/procutil"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/workspace"
)

// killAllRunningForCL implements the kill_and_persist_all_running_processes
// call every lifecycle op makes before touching a ChangeSpec: every RUNNING
// hook (direct subprocess or agent-backed), running_agent comment, and
// RUNNING mentor belonging to clName is SIGTERM'd and marked dead/killed in
// one atomic write; matching workspace claims are released afterwards, one
// write each. summary is the note
// persisted alongside each killed status line (e.g. "Killed hook running on
// reverted CL.", matching revert.py/archive.py's log_fn message).
func killAllRunningForCL(ctx context.Context, pf *projectfile.ProjectFile, clName, summary string) error {
	proj, err := pf.Read()
	if err != nil {
		return err
	}
	cs := proj.ByName(clName)
	if cs == nil {
		return fmt.Errorf("%w: %s", changespec.ErrNotFound, clName)
	}

	type target struct {
		pid          int
		workflowName string
	}
	var kills []target

	hookUpdates := make(map[string]changespec.HookEntry)
	for _, h := range cs.Hooks {
		var changed []changespec.HookStatusLine
		for _, sl := range h.StatusLines {
			if sl.Status != changespec.HookRunning {
				continue
			}
			if sl.SuffixType == changespec.SuffixRunningAgent {
				kind, pid, ts, err := agents.ParseSuffix(sl.Suffix)
				if err != nil {
					continue
				}
				wf := ""
				if kind == agents.KindFixHook {
					wf = fmt.Sprintf("loop(fix-hook)-%s", ts)
				}
				kills = append(kills, target{pid: pid, workflowName: wf})
				sl.Status = changespec.HookDead
				sl.SuffixType = changespec.SuffixKilledAgent
				sl.Summary = summary
			} else if pid, ok := parsePID(sl.Suffix); ok {
				kills = append(kills, target{pid: pid, workflowName: fmt.Sprintf("axe(hooks)-%s", sl.CommitEntryNum)})
				sl.Status = changespec.HookDead
				sl.SuffixType = changespec.SuffixKilledProcess
				sl.Summary = summary
			} else {
				continue
			}
			changed = append(changed, sl)
		}
		if len(changed) == 0 {
			continue
		}
		updated := h
		for _, sl := range changed {
			updated = updated.WithStatusLine(sl)
		}
		hookUpdates[h.Command] = updated
	}

	var killedComments []int
	for i, c := range cs.Comments {
		if c.SuffixType != changespec.SuffixRunningAgent {
			continue
		}
		kind, pid, _, err := agents.ParseSuffix(c.Suffix)
		if err != nil || kind != agents.KindCRS {
			continue
		}
		kills = append(kills, target{pid: pid, workflowName: fmt.Sprintf("loop(crs)-%s", c.Reviewer)})
		killedComments = append(killedComments, i)
	}

	type mentorHit struct {
		entryID, profile, mentor string
	}
	var killedMentors []mentorHit
	for _, me := range cs.Mentors {
		for _, sl := range me.StatusLines {
			if sl.Status != changespec.MentorRunning || sl.SuffixType != changespec.SuffixRunningAgent {
				continue
			}
			_, pid, _, err := agents.ParseSuffix(sl.Suffix)
			if err != nil {
				continue
			}
			kills = append(kills, target{pid: pid, workflowName: fmt.Sprintf("loop(mentor)-%s-%s", sl.ProfileName, me.EntryID)})
			killedMentors = append(killedMentors, mentorHit{entryID: me.EntryID, profile: sl.ProfileName, mentor: sl.MentorName})
		}
	}

	if len(hookUpdates) == 0 && len(killedComments) == 0 && len(killedMentors) == 0 {
		return nil
	}

	for _, k := range kills {
		if procutil.IsRunning(k.pid) {
			procutil.KillProcessGroup(k.pid)
		}
	}

	err = pf.MutateChangeSpec(ctx, clName, fmt.Sprintf("Kill running processes for %s", clName), func(live *changespec.ChangeSpec) error {
		for command, updated := range hookUpdates {
			for hi := range live.Hooks {
				if live.Hooks[hi].Command == command {
					live.Hooks[hi] = updated
				}
			}
		}
		for _, i := range killedComments {
			if i < len(live.Comments) {
				live.Comments[i].Suffix = summary
				live.Comments[i].SuffixType = changespec.SuffixKilledAgent
			}
		}
		for _, hit := range killedMentors {
			for mi := range live.Mentors {
				if live.Mentors[mi].EntryID != hit.entryID {
					continue
				}
				for si := range live.Mentors[mi].StatusLines {
					sl := &live.Mentors[mi].StatusLines[si]
					if sl.ProfileName == hit.profile && sl.MentorName == hit.mentor && sl.Status == changespec.MentorRunning {
						sl.Status = changespec.MentorDead
						sl.SuffixType = changespec.SuffixKilledAgent
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, k := range kills {
		if k.workflowName == "" {
			continue
		}
		_ = releaseClaimByWorkflow(ctx, pf, k.workflowName, clName)
	}
	return nil
}

// parsePID parses a direct-exec hook's Suffix, which is a bare PID rather
// than an agents.FormatSuffix-encoded string (reconcileHooks in
// internal/scheduler does the same strconv.Atoi).
func parsePID(suffix string) (int, bool) {
	n := 0
	if suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// releaseClaimByWorkflow releases the RUNNING: row for (workflowName,
// clName) if one still exists, mirroring internal/scheduler's helper of the
// same name (duplicated rather than exported across packages for a single
// three-line lookup).
func releaseClaimByWorkflow(ctx context.Context, pf *projectfile.ProjectFile, workflowName, clName string) error {
	proj, err := pf.Read()
	if err != nil {
		return err
	}
	for _, c := range proj.Running {
		if c.WorkflowName == workflowName && c.CLName == clName {
			return workspace.ReleaseWorkspace(ctx, pf, c.WorkspaceNum, workflowName, clName)
		}
	}
	return nil
}
