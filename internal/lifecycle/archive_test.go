package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/workspace"
)

func TestArchiveRequiresCL(t *testing.T) {
	pf, dir := seedProjectFile(t, changespec.ChangeSpec{Name: "cl1", Status: string(changespec.StatusWIP)}, nil)
	d := Deps{PF: pf, VCS: fakeVCS{}, BaseDir: dir, StashDir: filepath.Join(dir, "stash"), PrimaryMax: 20}
	_, err := Archive(context.Background(), d, "cl1")
	if !errors.Is(err, ErrNoCL) {
		t.Fatalf("expected ErrNoCL, got %v", err)
	}
}

func TestArchiveAllowsArchivedOrRevertedChildren(t *testing.T) {
	pf, dir := seedProjectFile(t, changespec.ChangeSpec{Name: "cl1", Status: string(changespec.StatusMailed), CL: "123"}, nil)
	err := pf.Mutate(context.Background(), "add child", func(proj *changespec.ProjectSpec) error {
		proj.ChangeSpecs = append(proj.ChangeSpecs, changespec.ChangeSpec{Name: "cl2", Parent: "cl1", Status: string(changespec.StatusArchived)})
		return nil
	})
	if err != nil {
		t.Fatalf("seed child: %v", err)
	}
	stashDir := filepath.Join(dir, "stash")
	d := Deps{PF: pf, VCS: fakeVCS{diffText: "diff"}, BaseDir: dir, StashDir: stashDir, PrimaryMax: 20}

	msg, err := Archive(context.Background(), d, "cl1")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected non-empty message")
	}
}

func TestArchiveRefusesNonTerminalChildren(t *testing.T) {
	pf, dir := seedProjectFile(t, changespec.ChangeSpec{Name: "cl1", Status: string(changespec.StatusMailed), CL: "123"}, nil)
	err := pf.Mutate(context.Background(), "add child", func(proj *changespec.ProjectSpec) error {
		proj.ChangeSpecs = append(proj.ChangeSpecs, changespec.ChangeSpec{Name: "cl2", Parent: "cl1", Status: string(changespec.StatusWIP)})
		return nil
	})
	if err != nil {
		t.Fatalf("seed child: %v", err)
	}
	d := Deps{PF: pf, VCS: fakeVCS{}, BaseDir: dir, StashDir: filepath.Join(dir, "stash"), PrimaryMax: 20}
	_, err = Archive(context.Background(), d, "cl1")
	if !errors.Is(err, ErrActiveChildren) {
		t.Fatalf("expected ErrActiveChildren, got %v", err)
	}
}

func TestArchivePreservesCLAndReleasesWorkspace(t *testing.T) {
	pf, dir := seedProjectFile(t, changespec.ChangeSpec{Name: "cl1", Status: string(changespec.StatusMailed), CL: "123"}, nil)
	stashDir := filepath.Join(dir, "stash")
	d := Deps{PF: pf, VCS: fakeVCS{diffText: "diff"}, BaseDir: dir, StashDir: stashDir, PrimaryMax: 20}

	_, err := Archive(context.Background(), d, "cl1")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	proj, _ := pf.Read()
	renamed := proj.ByName("cl1__1")
	if renamed == nil {
		t.Fatalf("expected cl1__1 to exist, got %+v", proj.ChangeSpecs)
	}
	if renamed.Status != string(changespec.StatusArchived) {
		t.Fatalf("Status = %q, want Archived", renamed.Status)
	}
	if renamed.CL != "123" {
		t.Fatalf("expected CL preserved, got %q", renamed.CL)
	}
	if claims := workspace.GetClaimedWorkspaces(proj); len(claims) != 0 {
		t.Fatalf("expected the claimed workspace to be released, got %+v", claims)
	}

	if _, err := os.Stat(filepath.Join(stashDir, "archived", "cl1__1.diff")); err != nil {
		t.Fatalf("expected stashed diff file: %v", err)
	}
}
