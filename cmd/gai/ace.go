package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// aceCmd is a thin stub: the interactive TUI shell is out of scope (spec.md
// §1 names "TUI rendering" as a non-goal), but `gai ace` is still a real
// CLI surface per spec.md §6.8, so it must exist and fail loudly rather
// than silently doing nothing.
var aceCmd = &cobra.Command{
	Use:   "ace",
	Short: "Start the interactive shell (not implemented)",
	Long: `gai ace would start the interactive TUI the loop's agents and
mentors run underneath. TUI rendering is out of scope for this engine;
use "gai status" and "gai loop" for a non-interactive equivalent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("gai ace: interactive shell not implemented; see 'gai status' and 'gai loop'")
	},
}

func init() {
	rootCmd.AddCommand(aceCmd)
}
