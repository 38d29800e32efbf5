// Package workspace implements the WorkspaceRegistry: claim/release
// bookkeeping over the three disjoint numeric pools a project file's
// RUNNING: block tracks, plus the orphan sweep that reclaims dead claims.
//
// Grounded on internal/rpi/worktree.go's claim/collision-retry idiom
// (scan for a free slot, re-check under lock, retry on loss) and
// internal/pool/pool.go's claim/release-with-on-disk-index shape, adapted
// from a file-per-candidate directory layout to rows inside one project
// file guarded by internal/projectfile's lock.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/procutil"
	"github.com/gai-dev/gai/internal/projectfile"
)

// Pool identifies one of the three disjoint numeric ranges workspace
// numbers are drawn from (spec §4.2).
type Pool int

const (
	// Primary is used by foreground/tmux checkouts.
	Primary Pool = iota
	// Axe is the elevated scheduler pool used by hooks, mentors, and agents.
	Axe
	// Loop is the elevated agent-runner pool (CRS, fix-hook, summarize-hook,
	// mentor-runner, ad-hoc agents).
	Loop
)

// Range is the inclusive [Min, Max] bounds of a pool.
type Range struct {
	Min, Max int
}

// DefaultPrimaryMax is N_primary when the caller does not override it via
// config.
const DefaultPrimaryMax = 20

// Ranges returns the bounds for pool given a configured primary pool size.
func Ranges(primaryMax int) map[Pool]Range {
	if primaryMax <= 0 {
		primaryMax = DefaultPrimaryMax
	}
	return map[Pool]Range{
		Primary: {1, primaryMax},
		Axe:     {100, 199},
		Loop:    {200, 299},
	}
}

// PoolOf returns which pool num belongs to, using the default primary
// pool size, or ErrUnknownPool if it falls in none of them.
func PoolOf(num int) (Pool, error) {
	ranges := Ranges(DefaultPrimaryMax)
	for p, r := range ranges {
		if num >= r.Min && num <= r.Max {
			return p, nil
		}
	}
	return 0, ErrUnknownPool
}

// GetFirstAvailable scans proj's RUNNING: block and returns the lowest
// unused workspace number in pool's range.
func GetFirstAvailable(proj *changespec.ProjectSpec, pool Pool, primaryMax int) (int, error) {
	r := Ranges(primaryMax)[pool]
	taken := make(map[int]bool, len(proj.Running))
	for _, c := range proj.Running {
		taken[c.WorkspaceNum] = true
	}
	for n := r.Min; n <= r.Max; n++ {
		if !taken[n] {
			return n, nil
		}
	}
	return 0, ErrPoolExhausted
}

// ClaimWorkspace performs spec §4.2's claim_workspace: under the project
// file's exclusive lock, re-checks that ws is still free and appends the
// claim. Returns ErrSlotTaken if a concurrent writer claimed it first.
func ClaimWorkspace(ctx context.Context, pf *projectfile.ProjectFile, ws int, workflow string, pid int, clName string) error {
	message := fmt.Sprintf("Claim workspace %d for %s", ws, workflow)
	return pf.Mutate(ctx, message, func(proj *changespec.ProjectSpec) error {
		for _, c := range proj.Running {
			if c.WorkspaceNum == ws {
				return ErrSlotTaken
			}
		}
		proj.Running = append(proj.Running, changespec.WorkspaceClaim{
			WorkspaceNum: ws,
			WorkflowName: workflow,
			PID:          pid,
			CLName:       clName,
		})
		return nil
	})
}

// ClaimFirstAvailable combines GetFirstAvailable and ClaimWorkspace into one
// locked operation, retrying the scan+claim pair if a concurrent writer won
// the race for the slot this call picked (mirroring worktree.go's
// tryCreateWorktree collision-retry idiom).
func ClaimFirstAvailable(ctx context.Context, pf *projectfile.ProjectFile, pool Pool, primaryMax int, workflow string, pid int, clName string) (int, error) {
	const maxAttempts = 5
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var claimed int
		message := fmt.Sprintf("Claim workspace in pool for %s", workflow)
		err := pf.Mutate(ctx, message, func(proj *changespec.ProjectSpec) error {
			ws, err := GetFirstAvailable(proj, pool, primaryMax)
			if err != nil {
				return err
			}
			proj.Running = append(proj.Running, changespec.WorkspaceClaim{
				WorkspaceNum: ws,
				WorkflowName: workflow,
				PID:          pid,
				CLName:       clName,
			})
			claimed = ws
			return nil
		})
		if err == nil {
			return claimed, nil
		}
		lastErr = err
		if err == ErrPoolExhausted {
			return 0, err
		}
	}
	return 0, lastErr
}

// ReleaseWorkspace performs spec §4.2's release_workspace: under lock,
// remove the matching row.
func ReleaseWorkspace(ctx context.Context, pf *projectfile.ProjectFile, ws int, workflow, clName string) error {
	message := fmt.Sprintf("Release workspace %d from %s", ws, workflow)
	return pf.Mutate(ctx, message, func(proj *changespec.ProjectSpec) error {
		idx := -1
		for i, c := range proj.Running {
			if c.WorkspaceNum == ws && c.WorkflowName == workflow && c.CLName == clName {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrClaimNotFound
		}
		proj.Running = append(proj.Running[:idx], proj.Running[idx+1:]...)
		return nil
	})
}

// GetClaimedWorkspaces returns a read-only, workspace-number-sorted snapshot
// of the current RUNNING: block.
func GetClaimedWorkspaces(proj *changespec.ProjectSpec) []changespec.WorkspaceClaim {
	out := make([]changespec.WorkspaceClaim, len(proj.Running))
	copy(out, proj.Running)
	sort.Slice(out, func(i, j int) bool { return out[i].WorkspaceNum < out[j].WorkspaceNum })
	return out
}

// DirectoryForNum resolves the workspace_num -> directory convention
// (spec §4.2's get_workspace_directory_for_num) that a VcsProvider adapts
// to when creating or locating the physical checkout/worktree.
func DirectoryForNum(baseDir string, num int) string {
	return filepath.Join(baseDir, "workspaces", fmt.Sprintf("ws-%d", num))
}

// CleanupOrphanedWorkspaceClaimsLive sweeps using the real process-liveness
// check (procutil.IsRunning). Production callers (the scheduler) use this;
// tests use CleanupOrphanedWorkspaceClaims with a fake.
func CleanupOrphanedWorkspaceClaimsLive(ctx context.Context, pf *projectfile.ProjectFile) (int, error) {
	return CleanupOrphanedWorkspaceClaims(ctx, pf, procutil.IsRunning)
}

// CleanupOrphanedWorkspaceClaims implements spec §4.2's liveness invariant:
// a claim whose pid is not running and whose cl_name is a terminal-status CL
// is an orphan. isAlive is injected so callers outside Unix-like platforms
// or tests can substitute a fake.
func CleanupOrphanedWorkspaceClaims(ctx context.Context, pf *projectfile.ProjectFile, isAlive func(pid int) bool) (int, error) {
	removed := 0
	err := pf.Mutate(ctx, "Sweep orphaned workspace claims", func(proj *changespec.ProjectSpec) error {
		kept := proj.Running[:0]
		for _, c := range proj.Running {
			if isOrphan(c, proj, isAlive) {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		proj.Running = kept
		return nil
	})
	return removed, err
}

func isOrphan(c changespec.WorkspaceClaim, proj *changespec.ProjectSpec, isAlive func(pid int) bool) bool {
	if isAlive(c.PID) {
		return false
	}
	cs := proj.ByName(c.CLName)
	if cs == nil {
		return true
	}
	return changespec.IsTerminal(changespec.Status(cs.Status))
}
