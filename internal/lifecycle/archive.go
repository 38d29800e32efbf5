package lifecycle

import (
	"context"
	"fmt"
	"os"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/workspace"
)

// archiveTerminalStatuses is the set of child statuses that do not block an
// Archive; unlike Revert, an Archived child also counts as settled
// (archive.py's has_active_children call).
var archiveTerminalStatuses = map[changespec.Status]bool{
	changespec.StatusArchived: true,
	changespec.StatusReverted: true,
}

// Archive implements spec §4.8's archive operation (archive.py): validate
// the CL is set, kill any running work, refuse if a non-terminal child
// still names this CL as PARENT, claim an Axe workspace and check the CL
// out into it, stash the diff, archive the revision, rename with a
// "__<N>" suffix, and transition to Archived. Unlike Revert, the CL field
// is preserved (the archived revision is still addressable) and the
// claimed workspace is always released before returning.
func Archive(ctx context.Context, d Deps, clName string) (string, error) {
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

	if err := killAllRunningForCL(ctx, d.PF, clName, "Killed hook running on archived CL."); err != nil {
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
	if hasActiveChildren(cs, proj.ChangeSpecs, archiveTerminalStatuses) {
		return "", ErrActiveChildren
	}

	workflowName := fmt.Sprintf("archive-%s", clName)
	ws, err := workspace.ClaimFirstAvailable(ctx, d.PF, workspace.Axe, d.PrimaryMax, workflowName, os.Getpid(), clName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoWorkspace, err)
	}
	claimName := clName
	defer func() {
		_ = workspace.ReleaseWorkspace(ctx, d.PF, ws, workflowName, claimName)
	}()

	if res := d.VCS.Checkout(ctx, clName); !res.OK {
		return "", fmt.Errorf("checkout %s into workspace %d: %s", clName, ws, res.Detail)
	}

	newName := calculateLifecycleNewName(cs, proj.ChangeSpecs)

	if _, err := saveDiffToFile(ctx, d.VCS, clName, d.StashDir, "archived", newName); err != nil {
		return "", err
	}

	if res := d.VCS.Archive(ctx, clName); !res.OK {
		return "", fmt.Errorf("archive %s: %s", clName, res.Detail)
	}

	if newName != clName {
		if err := renameChangeSpecWithReferences(ctx, d.PF, clName, newName); err != nil {
			return "", err
		}
		claimName = newName
	}

	err = d.PF.MutateChangeSpec(ctx, newName, fmt.Sprintf("Archive %s", newName), func(live *changespec.ChangeSpec) error {
		return changespec.Transition(live, changespec.StatusArchived, false)
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s archived as %s", clName, newName), nil
}
