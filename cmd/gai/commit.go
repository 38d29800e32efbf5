package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gai-dev/gai/internal/config"
	"github.com/gai-dev/gai/internal/vcs"
)

var commitCmd = &cobra.Command{
	Use:   "commit <name>",
	Short: "Recommit a restored ChangeSpec under its base name",
	Long: `The glue spec §4.8's restore operation shells out to: once a
Reverted/Archived CL has been renamed back to its base name and its stashed
diff reapplied to the checked-out parent, this folds that working copy into
a commit carrying the CL's last HISTORY entry's note.

This is invoked automatically by "gai restore"; running it directly is only
useful to recover from a restore that was interrupted after the patch
applied but before the commit landed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)
}

func runCommit(cmd *cobra.Command, args []string) error {
	return commitChangeSpec(cmd.Context(), args[0])
}

// commitChangeSpec implements the body of "gai commit <name>", also used
// directly as internal/lifecycle.Committer from the restore command so
// Restore doesn't have to shell out to its own binary.
func commitChangeSpec(ctx context.Context, name string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pfs, err := discoverProjectFiles(cfg.BaseDir)
	if err != nil {
		return err
	}
	_, cs, err := findChangeSpec(pfs, name)
	if err != nil {
		return err
	}
	if len(cs.Commits) == 0 {
		return fmt.Errorf("commit %s: no HISTORY entries to recommit", name)
	}

	vcsProv, err := vcs.NewGitProvider(cfg.BaseDir)
	if err != nil {
		return fmt.Errorf("open vcs provider at %s: %w", cfg.BaseDir, err)
	}

	note := cs.Commits[len(cs.Commits)-1].Note
	if res := vcsProv.Reword(ctx, note); !res.OK {
		return fmt.Errorf("recommit %s: %s", name, res.Detail)
	}

	verbosePrintf("gai commit: %s recommitted with note %q\n", name, note)
	return nil
}
