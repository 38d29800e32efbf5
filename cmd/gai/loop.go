package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gai-dev/gai/internal/acceptflow"
	"github.com/gai-dev/gai/internal/agents"
	"github.com/gai-dev/gai/internal/config"
	"github.com/gai-dev/gai/internal/logging"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/query"
	"github.com/gai-dev/gai/internal/scheduler"
	"github.com/gai-dev/gai/internal/vcs"
)

var (
	loopInterval      int
	loopHookInterval  int
	loopZombieTimeout int
	loopMaxRunners    int
	loopQuery         string
)

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Run the scheduler's two-cadence loop",
	Long: `Start the scheduler described in spec §4.6: a fast hook tick and a
slow full cycle, running until interrupted. Every project file under
base_dir/projects/*/*.gp is loaded at startup; --query narrows which
ChangeSpecs are in scope each tick.

Examples:
  gai loop
  gai loop --interval 300 --hook-interval 1 --max-runners 5
  gai loop --query "status:drafted"`,
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(loopCmd)
	loopCmd.Flags().IntVar(&loopInterval, "interval", 0, "full cycle interval in seconds (default from config)")
	loopCmd.Flags().IntVar(&loopHookInterval, "hook-interval", 0, "hook tick interval in seconds (default from config)")
	loopCmd.Flags().IntVar(&loopZombieTimeout, "zombie-timeout", 0, "zombie timeout in seconds (default from config)")
	loopCmd.Flags().IntVar(&loopMaxRunners, "max-runners", 0, "global concurrency cap (default from config)")
	loopCmd.Flags().StringVar(&loopQuery, "query", "", "restrict which ChangeSpecs are scheduled this run")
}

// claudeRunner builds argv for the configured agent CLI. Each Kind maps to
// a subcommand the agent binary understands; the binary itself (and its
// flags beyond that) are gai's one genuinely new config knob, since the
// teacher's Runner equivalent has no configurable command name.
func claudeRunner(command string) agents.Runner {
	return func(kind agents.Kind, outputPath string, extra ...string) []string {
		argv := []string{command, "run", string(kind), "--output", outputPath}
		return append(argv, extra...)
	}
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pfs, err := discoverProjectFiles(cfg.BaseDir)
	if err != nil {
		return err
	}
	if len(pfs) == 0 {
		return fmt.Errorf("no project files found under %s/projects", cfg.BaseDir)
	}

	vcsProv, err := vcs.NewGitProvider(cfg.BaseDir)
	if err != nil {
		return fmt.Errorf("open vcs provider at %s: %w", cfg.BaseDir, err)
	}

	// Without --query, Options.Query stays nil and the scheduler applies
	// DefaultQuery; a query that does not name Reverted CLs keeps hiding them.
	var q scheduler.Query
	if loopQuery != "" {
		parsed, err := query.Parse(loopQuery)
		if err != nil {
			return fmt.Errorf("parse --query: %w", err)
		}
		if !query.TargetsReverted(loopQuery) {
			parsed = query.And(scheduler.DefaultQuery, parsed)
		}
		q = scheduler.Query(parsed)
	}

	opts := scheduler.Options{
		ProjectFiles:      pfs,
		BaseDir:           cfg.BaseDir,
		PrimaryMax:        cfg.Scheduler.PrimaryMax,
		HookInterval:      overrideDuration(loopHookInterval, cfg.Scheduler.HookIntervalSeconds),
		FullCycleInterval: overrideDuration(loopInterval, cfg.Scheduler.FullCycleIntervalSeconds),
		MaxRunners:        overrideInt(loopMaxRunners, cfg.Scheduler.MaxRunners),
		ZombieTimeout:     overrideDuration(loopZombieTimeout, cfg.Scheduler.ZombieTimeoutSeconds),
		Query:             q,
		VCS:               vcsProv,
		Runner:            claudeRunner(cfg.Agents.Command),
		Accept:            acceptor{vcs: vcsProv},
		Log:               logging.New(GetVerbose() || cfg.Verbose),
	}

	sched := scheduler.New(opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func overrideDuration(flagSeconds, configSeconds int) time.Duration {
	if flagSeconds > 0 {
		return time.Duration(flagSeconds) * time.Second
	}
	if configSeconds > 0 {
		return time.Duration(configSeconds) * time.Second
	}
	return 0
}

func overrideInt(flagVal, configVal int) int {
	if flagVal > 0 {
		return flagVal
	}
	return configVal
}

// acceptor wires agents.ProposalAcceptor to internal/acceptflow.AcceptProposal,
// binding the VcsProvider the completion monitor doesn't otherwise have a
// way to pass through (ProposalAcceptor.AutoAccept's signature is fixed by
// the agents package, which has no vcs import of its own here).
type acceptor struct {
	vcs vcs.Provider
}

func (a acceptor) AutoAccept(ctx context.Context, pf *projectfile.ProjectFile, clName, proposalID, workspaceDir string) error {
	_, err := acceptflow.AcceptProposal(ctx, pf, a.vcs, clName, proposalID, nil)
	return err
}
