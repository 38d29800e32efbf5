package main

import (
	"fmt"
	"path/filepath"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
)

// discoverProjectFiles globs spec §6.1's on-disk layout
// (<baseDir>/projects/<project>/<project>.gp) and returns a ProjectFile
// handle for each match. Not library logic — internal/scheduler and
// internal/lifecycle both take an already-resolved *projectfile.ProjectFile,
// so the filesystem walk that finds them belongs to the CLI, the same way
// cmd/ao/status.go reaches for os.ReadDir directly rather than asking a
// library package to know about directory layout.
func discoverProjectFiles(baseDir string) ([]*projectfile.ProjectFile, error) {
	pattern := filepath.Join(baseDir, "projects", "*", "*.gp")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob project files: %w", err)
	}
	pfs := make([]*projectfile.ProjectFile, 0, len(matches))
	for _, m := range matches {
		pfs = append(pfs, projectfile.New(m))
	}
	return pfs, nil
}

// findChangeSpec scans every discovered project file for a ChangeSpec named
// name, returning the owning ProjectFile alongside it so lifecycle
// operations (which need the ProjectFile handle, not just the ChangeSpec
// value) can act on it directly.
func findChangeSpec(pfs []*projectfile.ProjectFile, name string) (*projectfile.ProjectFile, *changespec.ChangeSpec, error) {
	for _, pf := range pfs {
		proj, err := pf.Read()
		if err != nil {
			continue
		}
		if cs := proj.ByName(name); cs != nil {
			return pf, cs, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", changespec.ErrNotFound, name)
}
