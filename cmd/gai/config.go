package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gai-dev/gai/internal/config"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View gai's resolved configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (GAI_*)
  3. Project config (.gai/config.yaml)
  4. Home config (~/.gaiconfig/config.yaml)
  5. Defaults

Environment variables:
  GAI_CONFIG   - Explicit project config file path
  GAI_OUTPUT   - Default output format (json, or table for any other value)
  GAI_BASE_DIR - Data directory path
  GAI_VERBOSE  - Enable verbose output (true/1)
  GAI_AGENTS_COMMAND - Agent CLI binary name (default: claude)
  GAI_SCHEDULER_* / GAI_HOOKS_* / GAI_LOCK_* - numeric overrides of the scheduler, hooks and lock settings

Examples:
  gai config --show
  gai config --show -o json`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "show resolved configuration with sources")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		return cmd.Help()
	}

	resolved := config.Resolve(GetOutput(), "", GetVerbose())

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("gai Configuration")
	fmt.Println("=================")
	fmt.Println()

	fmt.Println("Config files:")
	home, _ := os.UserHomeDir()
	homeConfig := filepath.Join(home, ".gaiconfig", "config.yaml")
	if _, err := os.Stat(homeConfig); err == nil {
		fmt.Printf("  found Home:    %s\n", homeConfig)
	} else {
		fmt.Printf("  absent Home:    %s\n", homeConfig)
	}

	cwd, _ := os.Getwd()
	projectConfig := filepath.Join(cwd, ".gai", "config.yaml")
	if _, err := os.Stat(projectConfig); err == nil {
		fmt.Printf("  found Project: %s\n", projectConfig)
	} else {
		fmt.Printf("  absent Project: %s\n", projectConfig)
	}

	fmt.Println()
	fmt.Println("Resolved values:")
	fmt.Printf("  output:         %v  (from %s)\n", resolved.Output.Value, resolved.Output.Source)
	fmt.Printf("  base_dir:       %v  (from %s)\n", resolved.BaseDir.Value, resolved.BaseDir.Source)
	fmt.Printf("  verbose:        %v  (from %s)\n", resolved.Verbose.Value, resolved.Verbose.Source)
	fmt.Printf("  agents.command: %v  (from %s)\n", resolved.AgentsCommand.Value, resolved.AgentsCommand.Source)

	fmt.Println()
	fmt.Println("Environment variables (if set):")
	envVars := []string{
		"GAI_CONFIG", "GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND",
		"GAI_SCHEDULER_HOOK_INTERVAL_SECONDS", "GAI_SCHEDULER_FULL_CYCLE_INTERVAL_SECONDS",
		"GAI_SCHEDULER_MAX_RUNNERS", "GAI_SCHEDULER_ZOMBIE_TIMEOUT_SECONDS", "GAI_SCHEDULER_PRIMARY_MAX",
		"GAI_HOOKS_MAX_RETRY_ATTEMPTS", "GAI_HOOKS_RETRY_DELAY_SECONDS", "GAI_LOCK_TIMEOUT_SECONDS",
	}
	anySet := false
	for _, env := range envVars {
		if v := os.Getenv(env); v != "" {
			fmt.Printf("  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Println("  (none set)")
	}

	return nil
}
