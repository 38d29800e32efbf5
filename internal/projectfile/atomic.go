package projectfile

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// atomicReplace writes content to path by creating a temp file in the same
// directory, fsyncing it, and renaming it over path. Grounded on
// internal/storage.atomicWrite's CreateTemp+Sync+Rename shape and the
// source's write_changespec_atomic (tempfile.mkstemp prefix=".tmp_"
// suffix=".gp", os.replace). Same-directory placement keeps the rename on
// one filesystem so it is atomic on the platforms gai targets.
func atomicReplace(path, content string) (success bool, err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp_*"+filepath.Ext(path))
	if err != nil {
		return false, fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return false, fmt.Errorf("%w: write temp file: %v", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return false, fmt.Errorf("%w: fsync temp file: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("%w: close temp file: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return false, fmt.Errorf("%w: rename temp file over target: %v", ErrIO, err)
	}
	return true, nil
}

// ensureGitRepo makes dir a git repo on first use, with a .gitignore that
// excludes lock files and in-flight temp files from history. Best-effort:
// git is a side channel for human archaeology on the project file, never a
// correctness dependency, so failures here are swallowed by the caller.
func ensureGitRepo(dir string) error {
	gitDir := filepath.Join(dir, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := exec.Command("git", "-C", dir, "init").Run(); err != nil {
		return err
	}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(gitignorePath, []byte("*.lock\n.tmp_*\n"), 0644); err != nil {
			return err
		}
	}
	return nil
}

// commitBestEffort stages and commits path within the git repo rooted at
// dir, swallowing any failure: an uncommittable state (no git binary,
// detached identity, nothing changed) must never block the write that
// already succeeded on disk.
func commitBestEffort(dir, path, message string) {
	if err := ensureGitRepo(dir); err != nil {
		return
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}
	_ = exec.Command("git", "-C", dir, "add", rel).Run()
	_ = exec.Command("git", "-C", dir, "commit", "-m", message, "--allow-empty-message", "--quiet").Run()
}
