// Package scheduler implements the Scheduler module (spec §4.6): a
// two-cadence loop (fast hook tick, slow full cycle) that discovers work
// across every project file, enforces the global concurrency cap, and
// reconciles on-disk state from spawned workers' completion markers.
//
// Grounded on original_source/.../ace/loop/core.py's LoopWorkflow class for
// the cadence/priority-order shape, hook_checks.py/suffix_transforms.py/
// mentor_checks.py for the per-CL eligibility steps, and
// scheduler/orphan_cleanup.py for the orphan sweep (the latter already
// fully implemented by internal/workspace). The teacher's cmd/ao/rpi_loop.go
// contributes the cycle/sleep/retry shape and its Printf-based narration.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gai-dev/gai/internal/agents"
	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/logging"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/vcs"
	"github.com/gai-dev/gai/internal/workspace"
)

// Query decides whether cs is in scope for this tick, given every
// ChangeSpec loaded from the same project file (for parent lookups).
// Spec §4.9 keeps this opaque; the only special-cased inspection is
// query.TargetsReverted, which gai loop uses to decide whether a --query
// keeps DefaultQuery's hiding of Reverted CLs.
type Query func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool

// DefaultQuery matches every non-Reverted CL, mirroring the loop's default
// behavior absent an explicit --query flag.
func DefaultQuery(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
	return changespec.Status(cs.Status) != changespec.StatusReverted
}

const (
	// DefaultHookInterval is spec §4.6's hook_interval_seconds default.
	DefaultHookInterval = 1 * time.Second
	// DefaultFullCycleInterval is spec §4.6's interval_seconds default.
	DefaultFullCycleInterval = 5 * time.Minute
	// DefaultMaxRunners is spec §5's max_runners default.
	DefaultMaxRunners = 5
	// DefaultZombieTimeout matches hooks.ZombieTimeout for agent/comment/
	// mentor running_agent lines, which have no separate config knob in
	// the source beyond the one shared zombie_timeout_seconds.
	DefaultZombieTimeout = 2 * time.Hour
)

// Options configures a Scheduler. Everything with a documented default may
// be left zero.
type Options struct {
	ProjectFiles []*projectfile.ProjectFile
	BaseDir      string
	PrimaryMax   int

	HookInterval      time.Duration
	FullCycleInterval time.Duration
	MaxRunners        int
	ZombieTimeout     time.Duration

	Query Query

	VCS     vcs.Provider
	Runner  agents.Runner
	Accept  agents.ProposalAcceptor
	Checks  BackgroundChecks
	Mentors MentorMatcher

	Log *logging.Logger
}

func (o *Options) setDefaults() {
	if o.HookInterval <= 0 {
		o.HookInterval = DefaultHookInterval
	}
	if o.FullCycleInterval <= 0 {
		o.FullCycleInterval = DefaultFullCycleInterval
	}
	if o.MaxRunners <= 0 {
		o.MaxRunners = DefaultMaxRunners
	}
	if o.ZombieTimeout <= 0 {
		o.ZombieTimeout = DefaultZombieTimeout
	}
	if o.PrimaryMax <= 0 {
		o.PrimaryMax = workspace.DefaultPrimaryMax
	}
	if o.Query == nil {
		o.Query = DefaultQuery
	}
	if o.Checks == nil {
		o.Checks = NoopBackgroundChecks{}
	}
	if o.Mentors == nil {
		o.Mentors = NoopMentorMatcher{}
	}
	if o.Log == nil {
		o.Log = logging.New(false)
	}
}

// Scheduler runs the loop described in spec §4.6. One instance owns one
// set of project files; it is not safe for two Schedulers to run
// concurrently against the same project file set (the project file's own
// lock protects individual writes, but the freshness cache below is
// in-process only).
type Scheduler struct {
	opts Options

	mu          sync.Mutex
	lastChecked map[string]time.Time
	firstCycle  bool
}

// New constructs a Scheduler, applying documented defaults for any zero
// field in opts.
func New(opts Options) *Scheduler {
	opts.setDefaults()
	return &Scheduler{
		opts:        opts,
		lastChecked: make(map[string]time.Time),
		firstCycle:  true,
	}
}

// Run executes the two-cadence loop until ctx is canceled, mirroring
// LoopWorkflow.run: a full cycle first, then hook ticks until the next
// full-cycle boundary, repeating.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.opts.ProjectFiles) == 0 {
		return ErrNoProjectFiles
	}
	s.opts.Log.Printf("gai loop: hook tick every %s, full cycle every %s, max_runners=%d\n",
		s.opts.HookInterval, s.opts.FullCycleInterval, s.opts.MaxRunners)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.RunFullCycle(ctx); err != nil {
			s.opts.Log.Printf("full cycle: %v\n", err)
		}
		s.firstCycle = false

		deadline := time.Now().Add(s.opts.FullCycleInterval)
		for time.Now().Before(deadline) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.opts.HookInterval):
			}
			if err := s.RunHookTick(ctx); err != nil {
				s.opts.Log.Printf("hook tick: %v\n", err)
			}
		}
	}
}

// targetsFor reads proj and returns the ChangeSpecs that pass opts.Query,
// as pointers into proj's own slice.
func (s *Scheduler) targetsFor(proj *changespec.ProjectSpec) []*changespec.ChangeSpec {
	var out []*changespec.ChangeSpec
	for i := range proj.ChangeSpecs {
		cs := &proj.ChangeSpecs[i]
		if s.opts.Query(cs, proj.ChangeSpecs) {
			out = append(out, cs)
		}
	}
	return out
}

// launchParams bundles this Scheduler's dependencies into the shape
// internal/agents.Launch* expects, bound to the project file the caller is
// currently operating against.
func (s *Scheduler) launchParams(pf *projectfile.ProjectFile) agents.LaunchParams {
	return agents.LaunchParams{
		PF:         pf,
		BaseDir:    s.opts.BaseDir,
		PrimaryMax: s.opts.PrimaryMax,
		Runner:     s.opts.Runner,
	}
}

// tickBudget tracks spec §4.6's single counter "runners_started_this_cycle"
// against the on-disk snapshot taken at the start of one tick, so every
// would-be launch across every CL in the tick shares one shrinking budget.
type tickBudget struct {
	maxRunners int
	onDisk     int
	started    int
}

// available returns how many more limited (non "!") runners this tick may
// still start.
func (b *tickBudget) available() int {
	avail := b.maxRunners - (b.onDisk + b.started)
	if avail < 0 {
		return 0
	}
	return avail
}

// consume records n newly started runners against the shared budget.
func (b *tickBudget) consume(n int) {
	b.started += n
}

// countRunningOnDisk implements the global concurrency cap's on-disk half
// of "global_running_count_on_disk + runners_started_this_cycle": every
// RUNNING hook status line on a hook that is not "!"-exempt, plus every
// running_agent comment/mentor line, across every loaded project file.
// Grounded on spec §5's definition of the cap ("running-process hooks +
// running-agent lines across hooks/comments/mentors"); the exact Python
// implementation (count_all_runners_global) was not present in the pruned
// source tree, so this count is reconstructed directly from spec.md rather
// than ported line-for-line.
func countRunningOnDisk(projs []*changespec.ProjectSpec) int {
	n := 0
	for _, proj := range projs {
		for _, cs := range proj.ChangeSpecs {
			for _, h := range cs.Hooks {
				if h.SkipFixHook() {
					continue
				}
				for _, sl := range h.StatusLines {
					if sl.Status == changespec.HookRunning {
						n++
					}
				}
			}
			for _, c := range cs.Comments {
				if c.SuffixType == changespec.SuffixRunningAgent {
					n++
				}
			}
			for _, m := range cs.Mentors {
				for _, sl := range m.StatusLines {
					if sl.Status == changespec.MentorRunning || sl.Status == changespec.MentorStarting {
						n++
					}
				}
			}
		}
	}
	return n
}
