package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gai-dev/gai/internal/changespec"
)

func TestRevertRequiresCL(t *testing.T) {
	pf, dir := seedProjectFile(t, changespec.ChangeSpec{Name: "cl1", Status: string(changespec.StatusWIP)}, nil)
	d := Deps{PF: pf, VCS: fakeVCS{}, BaseDir: dir, StashDir: filepath.Join(dir, "stash")}
	_, err := Revert(context.Background(), d, "cl1")
	if !errors.Is(err, ErrNoCL) {
		t.Fatalf("expected ErrNoCL, got %v", err)
	}
}

func TestRevertRefusesActiveChildren(t *testing.T) {
	pf, dir := seedProjectFile(t, changespec.ChangeSpec{Name: "cl1", Status: string(changespec.StatusWIP), CL: "123"}, &changespec.WorkspaceClaim{
		WorkspaceNum: 5, WorkflowName: "primary", PID: os.Getpid(), CLName: "cl1",
	})
	err := pf.Mutate(context.Background(), "add child", func(proj *changespec.ProjectSpec) error {
		proj.ChangeSpecs = append(proj.ChangeSpecs, changespec.ChangeSpec{Name: "cl2", Parent: "cl1", Status: string(changespec.StatusWIP)})
		return nil
	})
	if err != nil {
		t.Fatalf("seed child: %v", err)
	}
	d := Deps{PF: pf, VCS: fakeVCS{}, BaseDir: dir, StashDir: filepath.Join(dir, "stash")}
	_, err = Revert(context.Background(), d, "cl1")
	if !errors.Is(err, ErrActiveChildren) {
		t.Fatalf("expected ErrActiveChildren, got %v", err)
	}
}

func TestRevertSucceeds(t *testing.T) {
	pf, dir := seedProjectFile(t, changespec.ChangeSpec{Name: "cl1", Status: string(changespec.StatusDrafted), CL: "123"}, &changespec.WorkspaceClaim{
		WorkspaceNum: 5, WorkflowName: "primary", PID: os.Getpid(), CLName: "cl1",
	})
	stashDir := filepath.Join(dir, "stash")
	d := Deps{PF: pf, VCS: fakeVCS{diffText: "diff --git a b\n"}, BaseDir: dir, StashDir: stashDir}

	msg, err := Revert(context.Background(), d, "cl1")
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected non-empty message")
	}

	proj, _ := pf.Read()
	if proj.ByName("cl1") != nil {
		t.Fatalf("expected cl1 to be renamed away")
	}
	renamed := proj.ByName("cl1__1")
	if renamed == nil {
		t.Fatalf("expected cl1__1 to exist, got %+v", proj.ChangeSpecs)
	}
	if renamed.Status != string(changespec.StatusReverted) {
		t.Fatalf("Status = %q, want Reverted", renamed.Status)
	}
	if renamed.CL != "" {
		t.Fatalf("expected CL cleared, got %q", renamed.CL)
	}

	if _, err := os.Stat(filepath.Join(stashDir, "reverted", "cl1__1.diff")); err != nil {
		t.Fatalf("expected stashed diff file: %v", err)
	}
}
