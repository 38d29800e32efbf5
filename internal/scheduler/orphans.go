package scheduler

import (
	"context"

	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/workspace"
)

// sweepOrphans releases any RUNNING: claim whose process has exited without
// reaping its own claim, once per full cycle (spec §4.6's orphan sweep).
// Thin wrapper: the actual scan/release logic already lives in
// internal/workspace, ported directly from scheduler/orphan_cleanup.py.
func (s *Scheduler) sweepOrphans(ctx context.Context, pf *projectfile.ProjectFile) {
	n, err := workspace.CleanupOrphanedWorkspaceClaimsLive(ctx, pf)
	if err != nil {
		s.opts.Log.VerbosePrintf("orphan sweep: %v\n", err)
		return
	}
	if n > 0 {
		s.opts.Log.VerbosePrintf("orphan sweep: released %d claim(s)\n", n)
	}
}
