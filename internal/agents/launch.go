package agents

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/hooks"
	"github.com/gai-dev/gai/internal/procutil"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/vcs"
	"github.com/gai-dev/gai/internal/workspace"
)

// claimGraceTimeout bounds how long Launch waits for a subprocess to exit
// after SIGTERM before escalating to SIGKILL (spec §4.5 step 6).
const claimGraceTimeout = 5 * time.Second

// Runner builds the argv for a spawned agent subprocess. Each Kind's runner
// script lives outside this package (cmd/gai wires in the concrete
// executable); Launch only cares that argv[0] is runnable and that the
// subprocess writes its own Completion marker to outputPath.
type Runner func(kind Kind, outputPath string, extra ...string) []string

// LaunchParams bundles the dependencies shared by every agent kind's 7-step
// launch pattern (spec §4.5): obtain a loop workspace, prep it with the
// VcsProvider, spawn detached, claim with the real PID, publish the
// running_agent status line.
type LaunchParams struct {
	PF         *projectfile.ProjectFile
	BaseDir    string
	PrimaryMax int
	Runner     Runner
}

// launchInWorkspace implements the common body of steps 1, 3, 5, 6 for the
// three kinds that need a checked-out workspace (CRS, fix-hook, mentor).
// summarize-hook skips this path entirely per spec §4.5 item 3's
// parenthetical.
func (p LaunchParams) launchInWorkspace(ctx context.Context, clName, workflowName string, kind Kind, ts string, vcsProv vcs.Provider, extraArgv ...string) (workspaceDir string, pid int, err error) {
	proj, err := p.PF.Read()
	if err != nil {
		return "", 0, err
	}
	ws, err := workspace.GetFirstAvailable(proj, workspace.Loop, p.PrimaryMax)
	if err != nil {
		return "", 0, err
	}
	workspaceDir = workspace.DirectoryForNum(p.BaseDir, ws)
	if _, statErr := os.Stat(workspaceDir); statErr != nil {
		return "", 0, fmt.Errorf("%w: %s", ErrWorkspaceDirMissing, workspaceDir)
	}

	if res := vcsProv.Checkout(ctx, clName); !res.OK {
		return "", 0, fmt.Errorf("checkout %s into workspace %d: %s", clName, ws, res.Detail)
	}

	outputPath := hooks.AgentOutputPath(p.BaseDir, clName, agentOutputType(kind), ts)
	argv := p.Runner(kind, outputPath, extraArgv...)

	sp, err := spawnDetached(workspaceDir, outputPath, argv)
	if err != nil {
		return "", 0, err
	}

	if claimErr := workspace.ClaimWorkspace(ctx, p.PF, ws, workflowName, sp.pid, clName); claimErr != nil {
		terminateAndWait(sp.pid)
		return "", 0, fmt.Errorf("%w: %v", ErrClaimFailed, claimErr)
	}

	return workspaceDir, sp.pid, nil
}

func agentOutputType(kind Kind) hooks.AgentOutputType {
	switch kind {
	case KindFixHook:
		return hooks.AgentFixHook
	case KindSummarizeHook:
		return hooks.AgentSummarizeHook
	default:
		return hooks.AgentCRS
	}
}

// LaunchCRS starts a critique-response workflow for one comment entry
// (spec §4.5). On success the comment's suffix is published as
// running_agent with the `crs-<pid>-<ts>` suffix.
func LaunchCRS(ctx context.Context, p LaunchParams, cs *changespec.ChangeSpec, reviewer string, vcsProv vcs.Provider) (string, error) {
	ts := hooks.Now()
	workflowName := fmt.Sprintf("loop(crs)-%s", reviewer)
	_, pid, err := p.launchInWorkspace(ctx, cs.Name, workflowName, KindCRS, ts, vcsProv, reviewer)
	if err != nil {
		return "", err
	}
	suffix := FormatSuffix(KindCRS, pid, ts)
	err = p.PF.MutateChangeSpec(ctx, cs.Name, fmt.Sprintf("Start CRS for %s", cs.Name), func(live *changespec.ChangeSpec) error {
		for i := range live.Comments {
			if live.Comments[i].Reviewer == reviewer {
				live.Comments[i].Suffix = suffix
				live.Comments[i].SuffixType = changespec.SuffixRunningAgent
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CRS workflow -> RUNNING for [%s]", reviewer), nil
}

// LaunchFixHook starts a fix-hook workflow against a failing hook's
// commit-entry status line. It refuses to start (ErrNoSummary) unless the
// line already carries a summarize-hook summary, matching spec §4.5 item 4.
func LaunchFixHook(ctx context.Context, p LaunchParams, cs *changespec.ChangeSpec, hook *changespec.HookEntry, entryID string, vcsProv vcs.Provider) (string, error) {
	sl := hook.StatusLineFor(entryID)
	if sl == nil || sl.SuffixType != changespec.SuffixSummarizeComplete || sl.Suffix == "" {
		return "", ErrNoSummary
	}
	existingSummary := sl.Suffix

	ts := hooks.Now()
	workflowName := fmt.Sprintf("loop(fix-hook)-%s", ts)
	_, pid, err := p.launchInWorkspace(ctx, cs.Name, workflowName, KindFixHook, ts, vcsProv, hook.BareCommand(), entryID)
	if err != nil {
		return "", err
	}
	suffix := FormatSuffix(KindFixHook, pid, ts)
	err = p.PF.MergeHooks(ctx, cs.Name, fmt.Sprintf("Start fix-hook for %s", cs.Name), map[string]changespec.HookEntry{
		hook.Command: hook.WithStatusLine(changespec.HookStatusLine{
			CommitEntryNum: entryID,
			Timestamp:      ts,
			Status:         changespec.HookRunning,
			Suffix:         suffix,
			SuffixType:     changespec.SuffixRunningAgent,
			Summary:        existingSummary,
		}),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("fix-hook workflow -> RUNNING for '%s' (%s)", hook.Command, entryID), nil
}

// LaunchFixHookClaimed is LaunchFixHook's counterpart for callers that have
// already won the race via TryClaimHookForFix: the precondition check is
// skipped (the hook's status line now reads claiming_fix, not
// summarize_complete) and summary is the text TryClaimHookForFix returned,
// rather than re-derived from the current suffix.
func LaunchFixHookClaimed(ctx context.Context, p LaunchParams, cs *changespec.ChangeSpec, hook *changespec.HookEntry, entryID, summary string, vcsProv vcs.Provider) (string, error) {
	ts := hooks.Now()
	workflowName := fmt.Sprintf("loop(fix-hook)-%s", ts)
	_, pid, err := p.launchInWorkspace(ctx, cs.Name, workflowName, KindFixHook, ts, vcsProv, hook.BareCommand(), entryID)
	if err != nil {
		return "", err
	}
	suffix := FormatSuffix(KindFixHook, pid, ts)
	err = p.PF.MergeHooks(ctx, cs.Name, fmt.Sprintf("Start fix-hook for %s", cs.Name), map[string]changespec.HookEntry{
		hook.Command: hook.WithStatusLine(changespec.HookStatusLine{
			CommitEntryNum: entryID,
			Timestamp:      ts,
			Status:         changespec.HookRunning,
			Suffix:         suffix,
			SuffixType:     changespec.SuffixRunningAgent,
			Summary:        summary,
		}),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("fix-hook workflow -> RUNNING for '%s' (%s)", hook.Command, entryID), nil
}

// LaunchSummarizeHook starts a summarize-hook workflow. Unlike the other
// three kinds, it needs no workspace: the subprocess only reads the hook's
// existing output file and writes a summary (spec §4.5 item 3 parenthetical).
func LaunchSummarizeHook(ctx context.Context, p LaunchParams, cs *changespec.ChangeSpec, hook *changespec.HookEntry, entryID, hookOutputPath string) (string, error) {
	ts := hooks.Now()
	outputPath := hooks.AgentOutputPath(p.BaseDir, cs.Name, hooks.AgentSummarizeHook, ts)
	argv := p.Runner(KindSummarizeHook, outputPath, hook.BareCommand(), hookOutputPath, entryID)

	sp, err := spawnDetached(p.BaseDir, outputPath, argv)
	if err != nil {
		return "", err
	}

	suffix := FormatSuffix(KindSummarizeHook, sp.pid, ts)
	err = p.PF.MergeHooks(ctx, cs.Name, fmt.Sprintf("Start summarize-hook for %s", cs.Name), map[string]changespec.HookEntry{
		hook.Command: hook.WithStatusLine(changespec.HookStatusLine{
			CommitEntryNum: entryID,
			Timestamp:      ts,
			Status:         changespec.HookRunning,
			Suffix:         suffix,
			SuffixType:     changespec.SuffixRunningAgent,
		}),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("summarize-hook workflow -> RUNNING for '%s' (%s)", hook.Command, entryID), nil
}

// LaunchMentor starts a mentor run against profile for the latest commit
// entry. Unlike the other kinds it early-registers a STARTING status row
// before spawning, so a concurrent scheduler tick cannot double-launch the
// same profile while the subprocess and workspace claim are still in
// flight (spec §4.5 item 2).
func LaunchMentor(ctx context.Context, p LaunchParams, cs *changespec.ChangeSpec, entryID, profile string, vcsProv vcs.Provider) (string, error) {
	startTS := hooks.Now()
	err := p.PF.MutateChangeSpec(ctx, cs.Name, fmt.Sprintf("Register starting mentor for %s", cs.Name), func(live *changespec.ChangeSpec) error {
		me := findOrAppendMentorEntry(live, entryID)
		me.StatusLines = append(me.StatusLines, changespec.MentorStatusLine{
			ProfileName: profile,
			MentorName:  profile,
			Status:      changespec.MentorStarting,
			Timestamp:   startTS,
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	workflowName := fmt.Sprintf("loop(mentor)-%s-%s", profile, entryID)
	runTS := hooks.Now()
	_, pid, err := p.launchInWorkspace(ctx, cs.Name, workflowName, KindMentor, runTS, vcsProv, profile, entryID)
	if err != nil {
		return "", err
	}
	suffix := FormatSuffix(KindMentor, pid, runTS)
	err = p.PF.MutateChangeSpec(ctx, cs.Name, fmt.Sprintf("Start mentor for %s", cs.Name), func(live *changespec.ChangeSpec) error {
		me := findOrAppendMentorEntry(live, entryID)
		for i := range me.StatusLines {
			if me.StatusLines[i].ProfileName == profile && me.StatusLines[i].Timestamp == startTS {
				me.StatusLines[i].Status = changespec.MentorRunning
				me.StatusLines[i].Suffix = suffix
				me.StatusLines[i].SuffixType = changespec.SuffixRunningAgent
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("mentor [%s] -> RUNNING for %s", profile, entryID), nil
}

func findOrAppendMentorEntry(cs *changespec.ChangeSpec, entryID string) *changespec.MentorEntry {
	for i := range cs.Mentors {
		if cs.Mentors[i].EntryID == entryID {
			return &cs.Mentors[i]
		}
	}
	cs.Mentors = append(cs.Mentors, changespec.MentorEntry{EntryID: entryID})
	return &cs.Mentors[len(cs.Mentors)-1]
}

type spawned struct {
	pid int
}

func spawnDetached(dir, outputPath string, argv []string) (*spawned, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("create agent output dir: %w", err)
	}
	output, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open agent output file: %w", err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		output.Close()
		return nil, fmt.Errorf("start agent subprocess: %w", err)
	}
	pid := cmd.Process.Pid
	go func() {
		cmd.Wait()
		output.Close()
	}()
	return &spawned{pid: pid}, nil
}

// terminateAndWait implements spec §4.5 step 6's rollback: SIGTERM the
// process group, give it claimGraceTimeout to exit, then SIGKILL.
func terminateAndWait(pid int) {
	procutil.KillProcessGroup(pid)
	deadline := time.Now().Add(claimGraceTimeout)
	for time.Now().Before(deadline) {
		if !procutil.IsRunning(pid) {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	procutil.ForceKillProcessGroup(pid)
}
