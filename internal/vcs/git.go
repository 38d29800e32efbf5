package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds every git subprocess this adapter spawns.
// Grounded on internal/rpi/worktree.go's exec.CommandContext +
// context.WithTimeout idiom.
const DefaultCommandTimeout = 30 * time.Second

// GitProvider is the Provider implementation backed by the `git` binary,
// operating against one workspace's working directory. It treats each CL's
// HISTORY entries as commits on a throwaway branch: "revisions" are git
// commit-ish refs (hashes, tags, HEAD~N).
type GitProvider struct {
	workspaceDir string
	timeout      time.Duration
}

// NewGitProvider returns a GitProvider rooted at workspaceDir, verifying it
// is inside a git checkout.
func NewGitProvider(workspaceDir string) (*GitProvider, error) {
	if _, err := os.Stat(filepath.Join(workspaceDir, ".git")); err != nil {
		out, rootErr := exec.Command("git", "-C", workspaceDir, "rev-parse", "--git-dir").CombinedOutput()
		if rootErr != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrNotGitRepo, workspaceDir, strings.TrimSpace(string(out)))
		}
	}
	return &GitProvider{workspaceDir: workspaceDir, timeout: DefaultCommandTimeout}, nil
}

func (g *GitProvider) run(ctx context.Context, args ...string) Result {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "git", append([]string{"-C", g.workspaceDir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return Result{OK: false, Detail: fmt.Sprintf("%v: git %s", ErrTimeout, strings.Join(args, " "))}
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return Result{OK: false, Detail: detail}
	}
	return Result{OK: true, Detail: strings.TrimRight(stdout.String(), "\n")}
}

func (g *GitProvider) Checkout(ctx context.Context, rev string) Result {
	return g.run(ctx, "checkout", rev)
}

func (g *GitProvider) ApplyPatch(ctx context.Context, path string) Result {
	return g.run(ctx, "apply", "--index", path)
}

func (g *GitProvider) ApplyDiff(ctx context.Context, text string) Result {
	tmp, err := os.CreateTemp("", "gai-diff-*.patch")
	if err != nil {
		return Result{OK: false, Detail: fmt.Sprintf("create temp patch file: %v", err)}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return Result{OK: false, Detail: fmt.Sprintf("write temp patch file: %v", err)}
	}
	tmp.Close()
	return g.ApplyPatch(ctx, tmp.Name())
}

func (g *GitProvider) Prune(ctx context.Context, rev string) Result {
	return g.run(ctx, "branch", "-D", rev)
}

func (g *GitProvider) Archive(ctx context.Context, rev string) Result {
	return g.run(ctx, "tag", "-f", "gai-archive-"+rev, rev)
}

func (g *GitProvider) DiffRevision(ctx context.Context, rev string) Result {
	return g.run(ctx, "show", "--format=", rev)
}

func (g *GitProvider) Reword(ctx context.Context, desc string) Result {
	return g.run(ctx, "commit", "--amend", "-m", desc)
}

func (g *GitProvider) RewordAddTag(ctx context.Context, key, value string) Result {
	current := g.GetDescription(ctx, "HEAD", false)
	if !current.OK {
		return current
	}
	newDesc := current.Detail + fmt.Sprintf("\n\n%s: %s", key, value)
	return g.Reword(ctx, newDesc)
}

func (g *GitProvider) GetDescription(ctx context.Context, rev string, short bool) Result {
	format := "%B"
	if short {
		format = "%s"
	}
	return g.run(ctx, "log", "-1", "--format="+format, rev)
}

func (g *GitProvider) GetDefaultParentRevision(ctx context.Context) Result {
	res := g.run(ctx, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if res.OK {
		return res
	}
	for _, candidate := range []string{"main", "master"} {
		res := g.run(ctx, "rev-parse", "--verify", candidate)
		if res.OK {
			return Result{OK: true, Detail: candidate}
		}
	}
	return Result{OK: false, Detail: "no default parent revision could be resolved"}
}

func (g *GitProvider) PrepareDescriptionForReword(ctx context.Context, text string) Result {
	trimmed := strings.TrimRight(text, " \t\n")
	lines := strings.Split(trimmed, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return Result{OK: true, Detail: strings.Join(lines, "\n")}
}
