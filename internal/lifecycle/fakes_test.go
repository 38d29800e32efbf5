package lifecycle

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/vcs"
)

type fakeVCS struct {
	pruneErr, archiveErr, applyPatchErr, checkoutErr string
	diffText                                         string
	defaultParent                                    string
}

func (f fakeVCS) Checkout(ctx context.Context, rev string) vcs.Result {
	if f.checkoutErr != "" {
		return vcs.Result{OK: false, Detail: f.checkoutErr}
	}
	return vcs.Result{OK: true}
}
func (f fakeVCS) ApplyPatch(ctx context.Context, path string) vcs.Result {
	if f.applyPatchErr != "" {
		return vcs.Result{OK: false, Detail: f.applyPatchErr}
	}
	return vcs.Result{OK: true}
}
func (f fakeVCS) ApplyDiff(ctx context.Context, text string) vcs.Result { return vcs.Result{OK: true} }
func (f fakeVCS) Prune(ctx context.Context, rev string) vcs.Result {
	if f.pruneErr != "" {
		return vcs.Result{OK: false, Detail: f.pruneErr}
	}
	return vcs.Result{OK: true}
}
func (f fakeVCS) Archive(ctx context.Context, rev string) vcs.Result {
	if f.archiveErr != "" {
		return vcs.Result{OK: false, Detail: f.archiveErr}
	}
	return vcs.Result{OK: true}
}
func (f fakeVCS) DiffRevision(ctx context.Context, rev string) vcs.Result {
	return vcs.Result{OK: true, Detail: f.diffText}
}
func (f fakeVCS) Reword(ctx context.Context, desc string) vcs.Result { return vcs.Result{OK: true} }
func (f fakeVCS) RewordAddTag(ctx context.Context, key, value string) vcs.Result {
	return vcs.Result{OK: true}
}
func (f fakeVCS) GetDescription(ctx context.Context, rev string, short bool) vcs.Result {
	return vcs.Result{OK: true}
}
func (f fakeVCS) GetDefaultParentRevision(ctx context.Context) vcs.Result {
	return vcs.Result{OK: true, Detail: f.defaultParent}
}
func (f fakeVCS) PrepareDescriptionForReword(ctx context.Context, text string) vcs.Result {
	return vcs.Result{OK: true, Detail: text}
}

// seedProjectFile writes a fresh project file seeded with cs and, when
// claim is non-nil, a matching RUNNING claim, mirroring
// internal/acceptflow's test helper of the same name.
func seedProjectFile(t *testing.T, cs changespec.ChangeSpec, claim *changespec.WorkspaceClaim) (*projectfile.ProjectFile, string) {
	t.Helper()
	dir := t.TempDir()
	pf := projectfile.New(filepath.Join(dir, "project.gp"))
	err := pf.Mutate(context.Background(), "seed", func(proj *changespec.ProjectSpec) error {
		proj.ChangeSpecs = append(proj.ChangeSpecs, cs)
		if claim != nil {
			proj.Running = append(proj.Running, *claim)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed Mutate: %v", err)
	}
	return pf, dir
}
