package lifecycle

import (
	"context"
	"fmt"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
)

// Committer recommits a restored ChangeSpec, the in-process equivalent of
// restore.py's final `gai commit <base_name>` subprocess call. cmd/gai's
// commit subcommand has no importable entry point of its own yet (it is a
// CLI action, not a library function), so Restore takes this as an
// injected seam rather than shelling out to its own binary.
type Committer func(ctx context.Context, baseName string) error

// Restore implements spec §4.8's restore operation (restore.py): validate
// the CL is Reverted or Archived, strip the "__<N>" suffix, clear the last
// HISTORY entry's hook status lines so they rerun, check out the CL's
// parent (or the VcsProvider default), re-apply the stashed diff, and
// recommit under the restored base name.
func Restore(ctx context.Context, d Deps, clName string, commit Committer) (string, error) {
	proj, err := d.PF.Read()
	if err != nil {
		return "", err
	}
	cs := proj.ByName(clName)
	if cs == nil {
		return "", fmt.Errorf("%w: %s", changespec.ErrNotFound, clName)
	}
	status := changespec.Status(cs.Status)
	if status != changespec.StatusReverted && status != changespec.StatusArchived {
		return "", fmt.Errorf("%w: %s is %s", ErrWrongStatus, clName, cs.Status)
	}

	workspaceDir := workspaceDirForCL(proj, d.BaseDir, clName)
	if workspaceDir == "" {
		return "", ErrNoWorkspace
	}

	base := baseName(clName)
	if base != clName {
		if err := renameChangeSpecWithReferences(ctx, d.PF, clName, base); err != nil {
			return "", err
		}
	}

	if err := clearLastHistoryHookStatusLines(ctx, d.PF, base); err != nil {
		return "", err
	}

	parent := cs.Parent
	if parent == "" {
		res := d.VCS.GetDefaultParentRevision(ctx)
		if !res.OK {
			return "", fmt.Errorf("resolve default parent revision: %s", res.Detail)
		}
		parent = res.Detail
	}
	if res := d.VCS.Checkout(ctx, parent); !res.OK {
		return "", fmt.Errorf("checkout %s: %s", parent, res.Detail)
	}

	diffPath, err := findStashedDiff(d.StashDir, clName)
	if err != nil {
		return "", err
	}
	if res := d.VCS.ApplyPatch(ctx, diffPath); !res.OK {
		return "", fmt.Errorf("apply stashed diff %s: %s", diffPath, res.Detail)
	}

	if commit != nil {
		if err := commit(ctx, base); err != nil {
			return "", fmt.Errorf("recommit %s: %w", base, err)
		}
	}

	return fmt.Sprintf("%s restored as %s", clName, base), nil
}

// clearLastHistoryHookStatusLines implements restore.py's
// _clear_hook_status_lines_for_last_history: every hook's status line for
// the most recently appended HISTORY entry is dropped, so the next `gai
// loop` tick reruns it against the restored CL rather than reusing a
// pre-revert PASSED/FAILED verdict.
func clearLastHistoryHookStatusLines(ctx context.Context, pf *projectfile.ProjectFile, clName string) error {
	return pf.MutateChangeSpec(ctx, clName, fmt.Sprintf("Clear last-entry hook status for %s", clName), func(cs *changespec.ChangeSpec) error {
		if len(cs.Hooks) == 0 || len(cs.Commits) == 0 {
			return nil
		}
		lastEntryID := cs.Commits[len(cs.Commits)-1].DisplayNumber
		for hi := range cs.Hooks {
			kept := cs.Hooks[hi].StatusLines[:0]
			for _, sl := range cs.Hooks[hi].StatusLines {
				if sl.CommitEntryNum != lastEntryID {
					kept = append(kept, sl)
				}
			}
			cs.Hooks[hi].StatusLines = kept
		}
		return nil
	})
}
