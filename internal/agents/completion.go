package agents

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/workspace"
)

// ProposalAcceptor folds a completed agent's proposal diff into its
// workspace, mirroring _auto_accept_proposal. The concrete implementation
// (AcceptFlow) lives in a separate package; this interface exists so the
// completion monitor does not need to import it directly.
type ProposalAcceptor interface {
	AutoAccept(ctx context.Context, pf *projectfile.ProjectFile, clName, proposalID, workspaceDir string) error
}

var proposalIDPattern = regexp.MustCompile(`^\d+[a-z]+$`)

func isProposalID(entryID string) bool {
	return proposalIDPattern.MatchString(entryID)
}

// shortenPath renders path with the caller's home directory collapsed to
// "~", for embedding a fix-hook's log location in a status-line summary
// without the full absolute path.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rel := strings.TrimPrefix(path, home); rel != path {
		return "~" + rel
	}
	return path
}

// ApplyCRSCompletion reconciles a finished CRS subprocess (spec §4.5's CRS
// completion bullet): on exit 0 with a proposal id, auto-accept into the
// workspace and clear the comment suffix; otherwise mark the comment with
// the "Unresolved Critique Comments" error suffix. The workspace claim is
// released either way.
func ApplyCRSCompletion(ctx context.Context, pf *projectfile.ProjectFile, accept ProposalAcceptor, clName, reviewer, workflowName, workspaceDir string, completion *Completion) (string, error) {
	defer releaseClaimFor(ctx, pf, workflowName, clName)

	if completion.ExitCode == 0 && completion.ProposalID != "" {
		acceptErr := accept.AutoAccept(ctx, pf, clName, completion.ProposalID, workspaceDir)
		err := pf.MutateChangeSpec(ctx, clName, fmt.Sprintf("CRS complete for %s", clName), func(cs *changespec.ChangeSpec) error {
			for i := range cs.Comments {
				if cs.Comments[i].Reviewer != reviewer {
					continue
				}
				if acceptErr == nil {
					cs.Comments[i].Suffix = ""
					cs.Comments[i].SuffixType = changespec.SuffixNone
				} else {
					cs.Comments[i].Suffix = "Unresolved Critique Comments"
					cs.Comments[i].SuffixType = changespec.SuffixError
				}
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		if acceptErr != nil {
			return fmt.Sprintf("CRS workflow [%s] -> FAILED to auto-accept", reviewer), nil
		}
		return fmt.Sprintf("CRS workflow [%s] -> COMPLETED, auto-accepted (%s)", reviewer, completion.ProposalID), nil
	}

	err := pf.MutateChangeSpec(ctx, clName, fmt.Sprintf("CRS failed for %s", clName), func(cs *changespec.ChangeSpec) error {
		for i := range cs.Comments {
			if cs.Comments[i].Reviewer == reviewer {
				cs.Comments[i].Suffix = "Unresolved Critique Comments"
				cs.Comments[i].SuffixType = changespec.SuffixError
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CRS workflow [%s] -> FAILED (exit %d)", reviewer, completion.ExitCode), nil
}

// ApplyFixHookCompletion reconciles a finished fix-hook subprocess (spec
// §4.5's fix-hook completion bullet). On exit 0 with a proposal id, the
// hook's status line suffix becomes that id (suffix_type=plain, summary
// preserved) and auto-accept is attempted; either outcome releases the
// workspace. On failure, the summary is preserved and the shortened output
// path is prepended to it.
func ApplyFixHookCompletion(ctx context.Context, pf *projectfile.ProjectFile, accept ProposalAcceptor, clName, hookCommand, entryID, workflowName, workspaceDir, outputPath string, completion *Completion) (string, error) {
	defer releaseClaimFor(ctx, pf, workflowName, clName)

	if completion.ExitCode == 0 && completion.ProposalID != "" {
		var acceptErr error
		err := pf.MergeHooks(ctx, clName, fmt.Sprintf("fix-hook complete for %s", clName), mergeStatusLineUpdate(clName, hookCommand, entryID, func(sl changespec.HookStatusLine) changespec.HookStatusLine {
			sl.Suffix = completion.ProposalID
			sl.SuffixType = changespec.SuffixPlain
			return sl
		}, pf))
		if err != nil {
			return "", err
		}
		acceptErr = accept.AutoAccept(ctx, pf, clName, completion.ProposalID, workspaceDir)
		if acceptErr != nil {
			return fmt.Sprintf("fix-hook workflow '%s' -> proposal (%s) created, auto-accept failed", hookCommand, completion.ProposalID), nil
		}
		return fmt.Sprintf("fix-hook workflow '%s' -> COMPLETED, auto-accepted (%s)", hookCommand, completion.ProposalID), nil
	}

	shortened := shortenPath(outputPath)
	err := pf.MergeHooks(ctx, clName, fmt.Sprintf("fix-hook failed for %s", clName), mergeStatusLineUpdate(clName, hookCommand, entryID, func(sl changespec.HookStatusLine) changespec.HookStatusLine {
		if sl.Summary != "" {
			sl.Summary = shortened + " | " + sl.Summary
		} else {
			sl.Summary = shortened
		}
		sl.Suffix = "fix-hook Failed"
		sl.SuffixType = changespec.SuffixError
		return sl
	}, pf))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("fix-hook workflow '%s' -> FAILED (exit %d)", hookCommand, completion.ExitCode), nil
}

// ApplySummarizeHookCompletion reconciles a finished summarize-hook
// subprocess. On failure it marks the line "Hook Command Failed". On
// success, chainFixHook reports whether the caller should immediately start
// a fix-hook for entryID: the source chains only non-proposal entries
// (spec §4.5's summarize-hook completion bullet), since a proposal's
// summary is consumed by the next scheduler tick's normal eligibility scan
// instead.
func ApplySummarizeHookCompletion(ctx context.Context, pf *projectfile.ProjectFile, clName, hookCommand, entryID string, completion *Completion) (message string, chainFixHook bool, err error) {
	if completion.ExitCode != 0 {
		err = pf.MergeHooks(ctx, clName, fmt.Sprintf("summarize-hook failed for %s", clName), mergeStatusLineUpdate(clName, hookCommand, entryID, func(sl changespec.HookStatusLine) changespec.HookStatusLine {
			sl.Suffix = "Hook Command Failed"
			sl.SuffixType = changespec.SuffixError
			return sl
		}, pf))
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("summarize-hook workflow '%s' -> FAILED (exit %d)", hookCommand, completion.ExitCode), false, nil
	}
	if isProposalID(entryID) {
		return fmt.Sprintf("summarize-hook workflow '%s' -> COMPLETED", hookCommand), false, nil
	}
	return fmt.Sprintf("summarize-hook workflow '%s' -> COMPLETED, chaining fix-hook", hookCommand), true, nil
}

// releaseClaimFor looks up the live RUNNING: row for (workflowName, clName)
// and releases it, swallowing ErrClaimNotFound (a workflow started in the
// same tick that already released itself, or a claim another process
// already swept). Errors here are intentionally not surfaced to the
// caller: completion bookkeeping on the hook/comment line has already
// succeeded and is the higher-value write.
func releaseClaimFor(ctx context.Context, pf *projectfile.ProjectFile, workflowName, clName string) {
	proj, err := pf.Read()
	if err != nil {
		return
	}
	for _, c := range proj.Running {
		if c.WorkflowName == workflowName && c.CLName == clName {
			_ = workspace.ReleaseWorkspace(ctx, pf, c.WorkspaceNum, workflowName, clName)
			return
		}
	}
}

// mergeStatusLineUpdate re-reads the live hook under the project file's
// lock and applies mutate to its entryID status line, returning a
// single-entry modifiedByCommand map ready for MergeHooks.
func mergeStatusLineUpdate(clName, hookCommand, entryID string, mutate func(changespec.HookStatusLine) changespec.HookStatusLine, pf *projectfile.ProjectFile) map[string]changespec.HookEntry {
	proj, err := pf.Read()
	if err != nil {
		return nil
	}
	cs := proj.ByName(clName)
	if cs == nil {
		return nil
	}
	for _, h := range cs.Hooks {
		if h.Command != hookCommand {
			continue
		}
		sl := h.StatusLineFor(entryID)
		if sl == nil {
			return nil
		}
		return map[string]changespec.HookEntry{
			hookCommand: h.WithStatusLine(mutate(*sl)),
		}
	}
	return nil
}
