package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
)

type fakeAcceptor struct{ err error }

func (f fakeAcceptor) AutoAccept(ctx context.Context, pf *projectfile.ProjectFile, clName, proposalID, workspaceDir string) error {
	return f.err
}

func TestApplyCRSCompletionSuccess(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name: "cl1",
		Comments: []changespec.CommentEntry{
			{Reviewer: "critique", Suffix: "crs-111-260130_010000", SuffixType: changespec.SuffixRunningAgent},
		},
	})
	err := pf.Mutate(context.Background(), "claim", func(proj *changespec.ProjectSpec) error {
		proj.Running = append(proj.Running, changespec.WorkspaceClaim{WorkspaceNum: 200, WorkflowName: "loop(crs)-critique", PID: 111, CLName: "cl1"})
		return nil
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	msg, err := ApplyCRSCompletion(context.Background(), pf, fakeAcceptor{}, "cl1", "critique", "loop(crs)-critique", "/tmp/ws-200", &Completion{ProposalID: "2a", ExitCode: 0})
	if err != nil {
		t.Fatalf("ApplyCRSCompletion: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected message")
	}

	proj, _ := pf.Read()
	cs := proj.ByName("cl1")
	if cs.Comments[0].SuffixType != changespec.SuffixNone {
		t.Fatalf("expected cleared suffix, got %+v", cs.Comments[0])
	}
	if len(proj.Running) != 0 {
		t.Fatalf("expected workspace released, got %+v", proj.Running)
	}
}

func TestApplyCRSCompletionAutoAcceptFailure(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name:     "cl1",
		Comments: []changespec.CommentEntry{{Reviewer: "critique"}},
	})

	msg, err := ApplyCRSCompletion(context.Background(), pf, fakeAcceptor{err: errors.New("boom")}, "cl1", "critique", "loop(crs)-critique", "/tmp/ws-200", &Completion{ProposalID: "2a", ExitCode: 0})
	if err != nil {
		t.Fatalf("ApplyCRSCompletion: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected message")
	}

	proj, _ := pf.Read()
	cs := proj.ByName("cl1")
	if cs.Comments[0].SuffixType != changespec.SuffixError {
		t.Fatalf("expected error suffix, got %+v", cs.Comments[0])
	}
}

func TestApplyCRSCompletionFailedExit(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name:     "cl1",
		Comments: []changespec.CommentEntry{{Reviewer: "critique"}},
	})

	_, err := ApplyCRSCompletion(context.Background(), pf, fakeAcceptor{}, "cl1", "critique", "loop(crs)-critique", "/tmp/ws-200", &Completion{ExitCode: 1})
	if err != nil {
		t.Fatalf("ApplyCRSCompletion: %v", err)
	}

	proj, _ := pf.Read()
	cs := proj.ByName("cl1")
	if cs.Comments[0].Suffix != "Unresolved Critique Comments" {
		t.Fatalf("got %+v", cs.Comments[0])
	}
}

func TestApplyFixHookCompletionSuccess(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name: "cl1",
		Hooks: []changespec.HookEntry{
			{
				Command: "go test ./...",
				StatusLines: []changespec.HookStatusLine{
					{CommitEntryNum: "1", Status: changespec.HookRunning, SuffixType: changespec.SuffixRunningAgent, Summary: "tests broke"},
				},
			},
		},
	})

	msg, err := ApplyFixHookCompletion(context.Background(), pf, fakeAcceptor{}, "cl1", "go test ./...", "1", "loop(fix-hook)-ts", "/tmp/ws-200", "/tmp/out.txt", &Completion{ProposalID: "2a", ExitCode: 0})
	if err != nil {
		t.Fatalf("ApplyFixHookCompletion: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected message")
	}

	proj, _ := pf.Read()
	sl := proj.ByName("cl1").Hooks[0].StatusLineFor("1")
	if sl.Suffix != "2a" || sl.SuffixType != changespec.SuffixPlain {
		t.Fatalf("got %+v", sl)
	}
}

func TestApplyFixHookCompletionFailurePrependsOutputPath(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name: "cl1",
		Hooks: []changespec.HookEntry{
			{
				Command: "go test ./...",
				StatusLines: []changespec.HookStatusLine{
					{CommitEntryNum: "1", Status: changespec.HookRunning, SuffixType: changespec.SuffixRunningAgent, Summary: "tests broke"},
				},
			},
		},
	})

	_, err := ApplyFixHookCompletion(context.Background(), pf, fakeAcceptor{}, "cl1", "go test ./...", "1", "loop(fix-hook)-ts", "/tmp/ws-200", "/tmp/out.txt", &Completion{ExitCode: 1})
	if err != nil {
		t.Fatalf("ApplyFixHookCompletion: %v", err)
	}

	proj, _ := pf.Read()
	sl := proj.ByName("cl1").Hooks[0].StatusLineFor("1")
	if sl.SuffixType != changespec.SuffixError || sl.Suffix != "fix-hook Failed" {
		t.Fatalf("got %+v", sl)
	}
	if sl.Summary == "tests broke" {
		t.Fatalf("expected output path prepended to summary, got unchanged %q", sl.Summary)
	}
}

func TestApplySummarizeHookCompletionChainsForNonProposal(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name: "cl1",
		Hooks: []changespec.HookEntry{
			{
				Command: "go test ./...",
				StatusLines: []changespec.HookStatusLine{
					{CommitEntryNum: "1", Status: changespec.HookRunning},
				},
			},
		},
	})

	_, chain, err := ApplySummarizeHookCompletion(context.Background(), pf, "cl1", "go test ./...", "1", &Completion{ExitCode: 0})
	if err != nil {
		t.Fatalf("ApplySummarizeHookCompletion: %v", err)
	}
	if !chain {
		t.Fatalf("expected chainFixHook true for non-proposal entry")
	}
}

func TestApplySummarizeHookCompletionSkipsChainForProposal(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name: "cl1",
		Hooks: []changespec.HookEntry{
			{
				Command: "go test ./...",
				StatusLines: []changespec.HookStatusLine{
					{CommitEntryNum: "1a", Status: changespec.HookRunning},
				},
			},
		},
	})

	_, chain, err := ApplySummarizeHookCompletion(context.Background(), pf, "cl1", "go test ./...", "1a", &Completion{ExitCode: 0})
	if err != nil {
		t.Fatalf("ApplySummarizeHookCompletion: %v", err)
	}
	if chain {
		t.Fatalf("expected no chain for proposal entry")
	}
}

func TestApplySummarizeHookCompletionFailure(t *testing.T) {
	pf := seedProjectFile(t, changespec.ChangeSpec{
		Name: "cl1",
		Hooks: []changespec.HookEntry{
			{
				Command: "go test ./...",
				StatusLines: []changespec.HookStatusLine{
					{CommitEntryNum: "1", Status: changespec.HookRunning},
				},
			},
		},
	})

	_, chain, err := ApplySummarizeHookCompletion(context.Background(), pf, "cl1", "go test ./...", "1", &Completion{ExitCode: 1})
	if err != nil {
		t.Fatalf("ApplySummarizeHookCompletion: %v", err)
	}
	if chain {
		t.Fatalf("expected no chain on failure")
	}

	proj, _ := pf.Read()
	sl := proj.ByName("cl1").Hooks[0].StatusLineFor("1")
	if sl.Suffix != "Hook Command Failed" || sl.SuffixType != changespec.SuffixError {
		t.Fatalf("got %+v", sl)
	}
}
