package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/config"
	"github.com/gai-dev/gai/internal/formatter"
	"github.com/gai-dev/gai/internal/query"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show loaded project files and their ChangeSpecs",
	Long: `Display every ChangeSpec across every project file under
base_dir/projects/*/*.gp: its status, parent, and whether it currently has
a running agent or running process suffix. Error suffixes are not reported.

Examples:
  gai status
  gai status -o json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type clStatus struct {
	Project string `json:"project"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Parent  string `json:"parent,omitempty"`
	Running bool   `json:"running"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pfs, err := discoverProjectFiles(cfg.BaseDir)
	if err != nil {
		return err
	}

	var rows []clStatus
	for _, pf := range pfs {
		proj, err := pf.Read()
		if err != nil {
			verbosePrintf("skipping %s: %v\n", pf.Path(), err)
			continue
		}
		for i := range proj.ChangeSpecs {
			cs := &proj.ChangeSpecs[i]
			rows = append(rows, clStatus{
				Project: pf.Path(),
				Name:    cs.Name,
				Status:  cs.Status,
				Parent:  cs.Parent,
				Running: hasAnyRunningSuffix(cs),
			})
		}
	}

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	t := formatter.NewTable(os.Stdout, "NAME", "STATUS", "PARENT", "RUNNING")
	t.SetMaxWidth(0, 40)
	for _, r := range rows {
		running := ""
		if r.Running {
			running = "yes"
		}
		t.AddRow(r.Name, r.Status, r.Parent, running)
	}
	if len(rows) == 0 {
		fmt.Println("No ChangeSpecs found under", cfg.BaseDir)
		return nil
	}
	return t.Render()
}

// hasAnyRunningSuffix reports whether cs currently has a running agent or
// running process suffix anywhere in its hooks/comments/mentors/commits,
// reusing the same QueryFilter predicates the scheduler and --query flag do.
func hasAnyRunningSuffix(cs *changespec.ChangeSpec) bool {
	return query.HasRunningAgent()(cs, nil) || query.HasRunningProcess()(cs, nil)
}
