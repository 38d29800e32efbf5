package vcs

import "errors"

// ErrTimeout is returned (wrapped into a Result.Detail, never surfaced as a
// Go error across the Provider interface) when a VCS subprocess exceeds its
// deadline. Kept as a sentinel so callers of the concrete adapters
// (construction, not the Provider methods) can classify failures the same
// way internal/rpi/worktree.go does.
var ErrTimeout = errors.New("vcs operation timed out")

// ErrNotGitRepo is returned by NewGitProvider when workspaceDir is not
// inside a git checkout.
var ErrNotGitRepo = errors.New("workspace is not a git repository")
