// Package projectfile implements the `.gp` project file's contract: lock,
// read, parse, mutate, serialize, atomic-replace, best-effort git commit.
// Every other package that touches a CL's on-disk state goes through here
// rather than reading or writing the file directly.
package projectfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gai-dev/gai/internal/changespec"
)

// DefaultLockTimeout matches spec §4.1's 30s default.
const DefaultLockTimeout = 30 * time.Second

// ProjectFile wraps one `.gp` file on disk.
type ProjectFile struct {
	path string
}

// New returns a handle for the `.gp` file at path. It does not touch disk.
func New(path string) *ProjectFile {
	return &ProjectFile{path: path}
}

// Path returns the on-disk path this handle operates on.
func (pf *ProjectFile) Path() string {
	return pf.path
}

// Read loads and parses the current contents without taking a lock. Callers
// that need a consistent read (e.g. before deciding whether to mutate) should
// prefer Mutate with a no-op mutator, or accept a racy snapshot for display
// purposes only.
func (pf *ProjectFile) Read() (*changespec.ProjectSpec, error) {
	raw, err := pf.readRaw()
	if err != nil {
		return nil, err
	}
	return changespec.ParseProjectSpec(raw)
}

func (pf *ProjectFile) readRaw() (string, error) {
	data, err := os.ReadFile(pf.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrIO, pf.path, err)
	}
	return string(data), nil
}

// Mutator is applied to the freshly parsed in-memory model under the lock.
// Returning an error aborts the mutation: nothing is written to disk.
type Mutator func(*changespec.ProjectSpec) error

// Mutate implements the full contract from spec §4.1: acquire the exclusive
// lock, read+parse the current file, run fn against the live model,
// serialize the result, atomically replace the file, and best-effort commit
// it to git — all before releasing the lock. message is used verbatim as
// the git commit message.
func (pf *ProjectFile) Mutate(ctx context.Context, message string, fn Mutator) error {
	lock, err := AcquireLock(ctx, pf.path, DefaultLockTimeout)
	if err != nil {
		return err
	}
	defer lock.Release()

	raw, err := pf.readRaw()
	if err != nil {
		return err
	}
	model, err := changespec.ParseProjectSpec(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", changespec.ErrParse, err)
	}

	if err := fn(model); err != nil {
		return err
	}

	newRaw := changespec.SerializeProjectSpec(model)
	if _, err := atomicReplace(pf.path, newRaw); err != nil {
		return err
	}

	commitBestEffort(filepath.Dir(pf.path), pf.path, message)
	return nil
}

// MutateChangeSpec is a convenience wrapper over Mutate for the very common
// case of editing exactly one named ChangeSpec in place.
func (pf *ProjectFile) MutateChangeSpec(ctx context.Context, name, message string, fn func(*changespec.ChangeSpec) error) error {
	return pf.Mutate(ctx, message, func(proj *changespec.ProjectSpec) error {
		cs := proj.ByName(name)
		if cs == nil {
			return fmt.Errorf("%w: %s", changespec.ErrNotFound, name)
		}
		return fn(cs)
	})
}

// MergeHooks applies the merge-based update path (spec §4.1) for a caller
// that computed modifiedByCommand from a possibly-stale read: under the
// lock, the on-disk hooks for name are re-read and merged with the caller's
// changes rather than overwritten wholesale.
func (pf *ProjectFile) MergeHooks(ctx context.Context, name, message string, modifiedByCommand map[string]changespec.HookEntry) error {
	return pf.MutateChangeSpec(ctx, name, message, func(cs *changespec.ChangeSpec) error {
		cs.Hooks = changespec.MergeHookUpdates(cs.Hooks, modifiedByCommand)
		return nil
	})
}
