package lifecycle

import (
	"context"
	"fmt"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/vcs"
)

// Deps bundles the dependencies Revert, Archive, and Restore share, mirroring
// internal/agents.LaunchParams's role for the launch family.
type Deps struct {
	PF *projectfile.ProjectFile
	// VCS is the already-directory-bound VcsProvider the scheduler/CLI
	// wires in for this CL's workspace, same convention as
	// internal/agents.LaunchParams and internal/acceptflow.AcceptProposal.
	VCS vcs.Provider
	// BaseDir is the workspace root (spec §4.2's get_workspace_directory_for_num
	// convention: <BaseDir>/workspaces/ws-<N>).
	BaseDir string
	// StashDir is the directory lifecycle diffs are saved under
	// (<StashDir>/reverted/<name>.diff, <StashDir>/archived/<name>.diff).
	// Callers default this to ~/.gai.
	StashDir string
	// PrimaryMax bounds the Primary pool's range, needed by Archive's
	// workspace claim (workspace.ClaimFirstAvailable).
	PrimaryMax int
}

// revertTerminalStatuses is the set of child statuses that do not block a
// Revert (operations.py's has_active_children default terminal_statuses).
var revertTerminalStatuses = map[changespec.Status]bool{changespec.StatusReverted: true}

// Revert implements spec §4.8's revert operation (revert.py): validate the
// CL is set, kill any running work, refuse if a non-Reverted child still
// names this CL as PARENT, stash the diff, prune the revision, rename with
// a "__<N>" suffix, and transition to Reverted with CL cleared.
func Revert(ctx context.Context, d Deps, clName string) (string, error) {
	proj, err := d.PF.Read()
	if err != nil {
		return "", err
	}
	cs := proj.ByName(clName)
	if cs == nil {
		return "", fmt.Errorf("%w: %s", changespec.ErrNotFound, clName)
	}
	if cs.CL == "" {
		return "", fmt.Errorf("%w: %s", ErrNoCL, clName)
	}

	if err := killAllRunningForCL(ctx, d.PF, clName, "Killed hook running on reverted CL."); err != nil {
		return "", err
	}

	proj, err = d.PF.Read()
	if err != nil {
		return "", err
	}
	cs = proj.ByName(clName)
	if cs == nil {
		return "", fmt.Errorf("%w: %s", changespec.ErrNotFound, clName)
	}
	if hasActiveChildren(cs, proj.ChangeSpecs, revertTerminalStatuses) {
		return "", ErrActiveChildren
	}

	workspaceDir := workspaceDirForCL(proj, d.BaseDir, clName)
	if workspaceDir == "" {
		return "", ErrNoWorkspace
	}

	newName := calculateLifecycleNewName(cs, proj.ChangeSpecs)

	if _, err := saveDiffToFile(ctx, d.VCS, clName, d.StashDir, "reverted", newName); err != nil {
		return "", err
	}

	if res := d.VCS.Prune(ctx, clName); !res.OK {
		return "", fmt.Errorf("prune %s: %s", clName, res.Detail)
	}

	if newName != clName {
		if err := renameChangeSpecWithReferences(ctx, d.PF, clName, newName); err != nil {
			return "", err
		}
	}

	err = d.PF.MutateChangeSpec(ctx, newName, fmt.Sprintf("Revert %s", newName), func(live *changespec.ChangeSpec) error {
		if err := changespec.Transition(live, changespec.StatusReverted, false); err != nil {
			return err
		}
		live.CL = ""
		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s reverted as %s", clName, newName), nil
}
