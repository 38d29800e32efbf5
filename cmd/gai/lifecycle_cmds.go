package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gai-dev/gai/internal/config"
	"github.com/gai-dev/gai/internal/lifecycle"
	"github.com/gai-dev/gai/internal/vcs"
)

var revertCmd = &cobra.Command{
	Use:   "revert <name>",
	Short: "Revert a mailed CL",
	Long: `Kill any running work against the CL, refuse if a non-Reverted
child still cites it as PARENT, stash its diff under base_dir/reverted/,
prune the revision, and rename it with a "__N" suffix (spec §4.8).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := lifecycleDeps(args[0])
		if err != nil {
			return err
		}
		msg, err := lifecycle.Revert(cmd.Context(), d, args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <name>",
	Short: "Archive a CL whose children are already terminal",
	Long: `Identical to revert except children must already be in
{Archived, Reverted}, the diff is stashed under base_dir/archived/, the CL
revision is archived rather than pruned, and CL is preserved (spec §4.8).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := lifecycleDeps(args[0])
		if err != nil {
			return err
		}
		msg, err := lifecycle.Archive(cmd.Context(), d, args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Bring a Reverted/Archived CL back",
	Long: `Strips the "__N" suffix, clears the last HISTORY entry's hook
status lines so the loop reruns them, checks out the CL's parent (or the
VcsProvider default), reapplies the stashed diff, and recommits under the
restored base name via "gai commit" (spec §4.8).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := lifecycleDeps(args[0])
		if err != nil {
			return err
		}
		msg, err := lifecycle.Restore(cmd.Context(), d, args[0], commitChangeSpec)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revertCmd, archiveCmd, restoreCmd)
}

// lifecycleDeps resolves the project file owning clName and builds the
// lifecycle.Deps bundle every revert/archive/restore command shares.
func lifecycleDeps(clName string) (lifecycle.Deps, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return lifecycle.Deps{}, fmt.Errorf("load config: %w", err)
	}

	pfs, err := discoverProjectFiles(cfg.BaseDir)
	if err != nil {
		return lifecycle.Deps{}, err
	}
	pf, _, err := findChangeSpec(pfs, clName)
	if err != nil {
		return lifecycle.Deps{}, err
	}

	vcsProv, err := vcs.NewGitProvider(cfg.BaseDir)
	if err != nil {
		return lifecycle.Deps{}, fmt.Errorf("open vcs provider at %s: %w", cfg.BaseDir, err)
	}

	return lifecycle.Deps{
		PF:         pf,
		VCS:        vcsProv,
		BaseDir:    cfg.BaseDir,
		StashDir:   cfg.BaseDir,
		PrimaryMax: cfg.Scheduler.PrimaryMax,
	}, nil
}
