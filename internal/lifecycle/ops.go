package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/vcs"
)

// suffixPattern matches the trailing "__<N>" a lifecycle rename appends,
// mirroring gai_utils.has_suffix/get_next_suffix_number's naming scheme.
var suffixPattern = regexp.MustCompile(`^(.*)__(\d+)$`)

// hasSuffix reports whether name already ends in "__<N>".
func hasSuffix(name string) bool {
	return suffixPattern.MatchString(name)
}

// baseName strips a trailing "__<N>" suffix, or returns name unchanged if
// it has none.
func baseName(name string) string {
	if m := suffixPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// nextSuffixNumber returns the lowest N>=1 such that "<base>__<N>" is not
// already one of existing.
func nextSuffixNumber(base string, existing map[string]bool) int {
	for n := 1; ; n++ {
		if !existing[fmt.Sprintf("%s__%d", base, n)] {
			return n
		}
	}
}

// calculateLifecycleNewName implements operations.py's
// calculate_lifecycle_new_name: append a "__<N>" suffix, skipping the
// rename entirely when cs is WIP and already carries one (so repeated
// revert/archive of a WIP CL converges instead of stacking suffixes).
func calculateLifecycleNewName(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) string {
	if changespec.Status(cs.Status) == changespec.StatusWIP && hasSuffix(cs.Name) {
		return cs.Name
	}
	existing := make(map[string]bool, len(all))
	for _, c := range all {
		existing[c.Name] = true
	}
	n := nextSuffixNumber(cs.Name, existing)
	return fmt.Sprintf("%s__%d", cs.Name, n)
}

// hasActiveChildren implements operations.py's has_active_children: true if
// any ChangeSpec other than cs names it as PARENT and is not yet in one of
// terminalStatuses. Revert passes {Reverted}; Archive passes
// {Archived, Reverted}.
func hasActiveChildren(cs *changespec.ChangeSpec, all []changespec.ChangeSpec, terminalStatuses map[changespec.Status]bool) bool {
	for _, c := range all {
		if c.Parent != cs.Name {
			continue
		}
		if terminalStatuses[changespec.Status(c.Status)] {
			continue
		}
		return true
	}
	return false
}

// workspaceDirForCL returns the directory of an existing RUNNING claim for
// clName, mirroring gai_utils.get_workspace_directory_for_changespec. It is
// "" if no claim is currently held for this CL.
func workspaceDirForCL(proj *changespec.ProjectSpec, baseDir, clName string) string {
	for _, c := range proj.Running {
		if c.CLName == clName {
			return filepath.Join(baseDir, "workspaces", fmt.Sprintf("ws-%d", c.WorkspaceNum))
		}
	}
	return ""
}

// renameChangeSpecWithReferences implements operations.py's
// rename_changespec_with_references as a single atomic mutation: the
// ChangeSpec's own NAME, every sibling's PARENT reference, and every
// RUNNING claim's CLName are rewritten together.
func renameChangeSpecWithReferences(ctx context.Context, pf *projectfile.ProjectFile, oldName, newName string) error {
	return pf.Mutate(ctx, fmt.Sprintf("Rename %s to %s", oldName, newName), func(proj *changespec.ProjectSpec) error {
		cs := proj.ByName(oldName)
		if cs == nil {
			return fmt.Errorf("%w: %s", changespec.ErrNotFound, oldName)
		}
		cs.Name = newName
		for i := range proj.ChangeSpecs {
			if proj.ChangeSpecs[i].Name != newName && proj.ChangeSpecs[i].Parent == oldName {
				proj.ChangeSpecs[i].Parent = newName
			}
		}
		for i := range proj.Running {
			if proj.Running[i].CLName == oldName {
				proj.Running[i].CLName = newName
			}
		}
		return nil
	})
}

// saveDiffToFile implements operations.py's save_diff_to_file: captures
// rev's diff through vcsProv and writes it to
// <baseDir>/.gai/<subdir>/<newName>.diff (the lifecycle stash used later by
// Restore), creating the directory if needed.
func saveDiffToFile(ctx context.Context, vcsProv vcs.Provider, rev, stashDir, subdir, newName string) (string, error) {
	dir := filepath.Join(stashDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	res := vcsProv.DiffRevision(ctx, rev)
	if !res.OK {
		return "", fmt.Errorf("diff revision %s: %s", rev, res.Detail)
	}
	path := filepath.Join(dir, newName+".diff")
	if err := os.WriteFile(path, []byte(res.Detail), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// findStashedDiff implements restore.py's reverted-then-archived fallback
// lookup for the diff file a prior Revert or Archive saved.
func findStashedDiff(stashDir, name string) (string, error) {
	for _, subdir := range []string{"reverted", "archived"} {
		path := filepath.Join(stashDir, subdir, name+".diff")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrDiffNotFound, name)
}
