package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gai-dev/gai/internal/agents"
	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/hooks"
	"github.com/gai-dev/gai/internal/procutil"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/workspace"
)

// reconcileComments reconciles every CRS running_agent comment suffix:
// marker found -> ApplyCRSCompletion; process confirmed dead with no
// marker, or alive past the zombie timeout -> treated as a failing
// completion after SIGTERM. Grounded on spec §4.6 item 4 ("detect comment
// zombies") and internal/agents.ApplyCRSCompletion, reused here as the
// single reconciliation point for both the normal-poll and zombie paths so
// there is one success/failure write path rather than two.
func (s *Scheduler) reconcileComments(ctx context.Context, pf *projectfile.ProjectFile, proj *changespec.ProjectSpec, cs *changespec.ChangeSpec, now time.Time) []string {
	var messages []string

	for _, c := range cs.Comments {
		if c.SuffixType != changespec.SuffixRunningAgent {
			continue
		}
		kind, pid, ts, err := agents.ParseSuffix(c.Suffix)
		if err != nil || kind != agents.KindCRS {
			continue
		}
		workflowName := fmt.Sprintf("loop(crs)-%s", c.Reviewer)
		workspaceDir := workspaceDirForClaim(proj, s.opts.BaseDir, workflowName, cs.Name)

		outputPath := hooks.AgentOutputPath(s.opts.BaseDir, cs.Name, hooks.AgentCRS, ts)
		content, _ := os.ReadFile(outputPath)
		completion, found := agents.ParseCompletion(string(content))

		isAlive := procutil.IsRunning(pid)
		age := time.Duration(0)
		if parsed, err := time.ParseInLocation(hooks.TimestampLayout, ts, time.Local); err == nil {
			age = now.Sub(parsed)
		}

		switch {
		case found:
			msg, err := agents.ApplyCRSCompletion(ctx, pf, s.opts.Accept, cs.Name, c.Reviewer, workflowName, workspaceDir, completion)
			if err != nil {
				s.opts.Log.VerbosePrintf("apply CRS completion for %s/%s: %v\n", cs.Name, c.Reviewer, err)
				continue
			}
			messages = append(messages, msg)
		case !isAlive:
			msg, err := agents.ApplyCRSCompletion(ctx, pf, s.opts.Accept, cs.Name, c.Reviewer, workflowName, workspaceDir, &agents.Completion{ExitCode: -1})
			if err != nil {
				s.opts.Log.VerbosePrintf("apply CRS death for %s/%s: %v\n", cs.Name, c.Reviewer, err)
				continue
			}
			messages = append(messages, msg)
		case age >= s.opts.ZombieTimeout:
			procutil.KillProcessGroup(pid)
			messages = append(messages, fmt.Sprintf("CRS workflow [%s] -> SIGTERM (zombie, will reap next tick)", c.Reviewer))
		}
	}
	return messages
}

// workspaceDirForClaim resolves the physical workspace directory backing a
// RUNNING: claim for (workflowName, clName), or "" if none is held (e.g. a
// failure path that never needs it, since ApplyCRSCompletion only touches
// workspaceDir when auto-accepting a successful proposal).
func workspaceDirForClaim(proj *changespec.ProjectSpec, baseDir, workflowName, clName string) string {
	for _, c := range proj.Running {
		if c.WorkflowName == workflowName && c.CLName == clName {
			return workspace.DirectoryForNum(baseDir, c.WorkspaceNum)
		}
	}
	return ""
}
