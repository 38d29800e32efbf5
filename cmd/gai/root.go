package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dryRun  bool
	verbose bool
	output  string
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "gai",
	Short: "CL-lifecycle orchestration engine",
	Long: `gai drives a set of ChangeSpecs through hooks, review agents, and
mentors until they are ready to mail, without a human babysitting each tick.

Core Commands:
  loop    Run the scheduler's two-cadence loop
  ace     Start the interactive shell (stub; TUI is out of scope)
  commit  Recommit a restored ChangeSpec under its base name
  status  Show loaded project files and their ChangeSpecs
  revert  Revert a mailed CL
  archive Archive a CL whose children are already terminal
  restore Bring a Reverted/Archived CL back
  config  Show resolved configuration`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (json, or table for any other value)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "project config file (default: .gai/config.yaml in the current directory)")
}

func GetDryRun() bool       { return dryRun }
func GetVerbose() bool      { return verbose }
func GetOutput() string     { return output }
func GetConfigFile() string { return cfgFile }

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("GAI_CONFIG", path)
}

func verbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}
