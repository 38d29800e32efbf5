package scheduler

import (
	"context"
	"time"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/worker"
)

// RunHookTick implements spec §4.6's fast cadence: read every project file
// once to size the shared global_running_count_on_disk budget, then walk
// each in-scope CL through reconciliation, starters, and suffix transforms
// in the priority order spec §4.6 lists (hook reconciliation/starts, comment
// reconciliation, mentor zombies/starts, workflow starters, suffix
// transforms).
//
// The read phase fans out across project files with internal/worker's Pool,
// since reading N independent files has no shared state to protect. The
// write phase stays sequential per CL: every launch shares one tickBudget
// value, and spec §4.6 defines that budget as a single process-wide counter,
// not one per project file.
func (s *Scheduler) RunHookTick(ctx context.Context) error {
	paths := make([]string, len(s.opts.ProjectFiles))
	byPath := make(map[string]*projectfile.ProjectFile, len(s.opts.ProjectFiles))
	for i, pf := range s.opts.ProjectFiles {
		paths[i] = pf.Path()
		byPath[pf.Path()] = pf
	}

	pool := worker.NewPool[*changespec.ProjectSpec](len(paths))
	results := pool.Process(paths, func(path string) (*changespec.ProjectSpec, error) {
		return byPath[path].Read()
	})

	projs := make([]*changespec.ProjectSpec, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			s.opts.Log.Printf("read project file %s: %v\n", paths[i], r.Err)
			continue
		}
		projs = append(projs, r.Value)
	}

	budget := &tickBudget{
		maxRunners: s.opts.MaxRunners,
		onDisk:     countRunningOnDisk(projs),
	}

	now := time.Now()
	for i, proj := range projs {
		pf := byPath[paths[i]]
		for _, cs := range s.targetsFor(proj) {
			s.runTickForCL(ctx, pf, proj, cs, budget, now)
		}
	}
	return nil
}

// runTickForCL walks a single CL through one hook tick's full priority
// order.
func (s *Scheduler) runTickForCL(ctx context.Context, pf *projectfile.ProjectFile, proj *changespec.ProjectSpec, cs *changespec.ChangeSpec, budget *tickBudget, now time.Time) {
	for _, msg := range s.reconcileHooks(ctx, pf, cs, now) {
		s.opts.Log.VerbosePrintf("%s: %s\n", cs.Name, msg)
	}
	for _, msg := range s.startEligibleHooks(ctx, pf, cs, budget) {
		s.opts.Log.VerbosePrintf("%s: %s\n", cs.Name, msg)
	}
	for _, msg := range s.reconcileComments(ctx, pf, proj, cs, now) {
		s.opts.Log.VerbosePrintf("%s: %s\n", cs.Name, msg)
	}
	for _, msg := range s.reconcileMentorZombies(ctx, pf, cs.Name, cs, now) {
		s.opts.Log.VerbosePrintf("%s: %s\n", cs.Name, msg)
	}
	for _, msg := range s.startDueMentors(ctx, pf, cs, budget) {
		s.opts.Log.VerbosePrintf("%s: %s\n", cs.Name, msg)
	}
	for _, msg := range s.startWorkflows(ctx, pf, cs, budget) {
		s.opts.Log.VerbosePrintf("%s: %s\n", cs.Name, msg)
	}
	s.applySuffixTransforms(ctx, pf, cs.Name, proj)
}
