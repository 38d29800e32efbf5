// Package vcs defines the VcsProvider capability (spec §6.7): the core
// orchestration packages never shell out to a version-control binary
// directly, they consume this interface. internal/vcs/git.go is the only
// concrete adapter shipped in this tree.
package vcs

import "context"

// Result is the (ok, detail) pair every VcsProvider operation returns: ok
// is the operation's success/failure, detail carries stdout/stderr or a
// human-readable explanation for logging and error surfacing.
type Result struct {
	OK     bool
	Detail string
}

// Provider is the ~10-method capability a workspace's VCS operations are
// performed through. Concrete adapters (git, hg, ...) live outside the core
// packages that consume this interface; this tree ships only Git.
type Provider interface {
	// Checkout updates the workspace to rev.
	Checkout(ctx context.Context, rev string) Result
	// ApplyPatch applies the patch file at path.
	ApplyPatch(ctx context.Context, path string) Result
	// ApplyDiff applies a diff given as literal text.
	ApplyDiff(ctx context.Context, text string) Result
	// Prune discards rev (used when rejecting a proposal).
	Prune(ctx context.Context, rev string) Result
	// Archive snapshots rev for later restore.
	Archive(ctx context.Context, rev string) Result
	// DiffRevision returns the diff text for rev.
	DiffRevision(ctx context.Context, rev string) Result
	// Reword replaces the current commit's description.
	Reword(ctx context.Context, desc string) Result
	// RewordAddTag appends a "key: value" trailer to the current
	// description without discarding the existing text.
	RewordAddTag(ctx context.Context, key, value string) Result
	// GetDescription returns rev's commit message; short requests a
	// single-line summary instead of the full body.
	GetDescription(ctx context.Context, rev string, short bool) Result
	// GetDefaultParentRevision resolves the revision new work should be
	// based on absent an explicit PARENT field.
	GetDefaultParentRevision(ctx context.Context) Result
	// PrepareDescriptionForReword normalizes free text (e.g. stripping
	// trailing whitespace, wrapping) before it is handed to Reword.
	PrepareDescriptionForReword(ctx context.Context, text string) Result
}
