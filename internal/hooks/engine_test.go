package hooks

import (
	"testing"
	"time"

	"github.com/gai-dev/gai/internal/changespec"
)

func mustTime(t *testing.T, ts string) time.Time {
	t.Helper()
	tm, err := ParseTimestamp(ts)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", ts, err)
	}
	return tm
}

func TestEvaluateRunningMarkerFoundPassed(t *testing.T) {
	sl := changespec.HookStatusLine{CommitEntryNum: "1", Timestamp: "260130_010000", Status: changespec.HookRunning, Suffix: "12345", SuffixType: changespec.SuffixRunningProcess}
	marker := &CompletionMarker{EndTimestamp: "260130_010030", ExitCode: 0}
	got := EvaluateRunning(sl, "260130_010000", true, marker, mustTime(t, "260130_010030"))
	if got.Status != changespec.HookPassed {
		t.Fatalf("Status = %v, want PASSED", got.Status)
	}
	if got.Duration != "30s" {
		t.Fatalf("Duration = %q, want 30s", got.Duration)
	}
}

func TestEvaluateRunningMarkerFoundFailed(t *testing.T) {
	sl := changespec.HookStatusLine{CommitEntryNum: "1", Timestamp: "260130_010000"}
	marker := &CompletionMarker{EndTimestamp: "260130_010010", ExitCode: 1}
	got := EvaluateRunning(sl, "260130_010000", true, marker, mustTime(t, "260130_010010"))
	if got.Status != changespec.HookFailed {
		t.Fatalf("Status = %v, want FAILED", got.Status)
	}
}

func TestEvaluateRunningStillAliveStaysRunning(t *testing.T) {
	sl := changespec.HookStatusLine{CommitEntryNum: "1", Timestamp: "260130_010000", Status: changespec.HookRunning, Suffix: "12345", SuffixType: changespec.SuffixRunningProcess}
	got := EvaluateRunning(sl, "260130_010000", true, nil, mustTime(t, "260130_010030"))
	if got.Status != changespec.HookRunning || got.SuffixType != changespec.SuffixRunningProcess {
		t.Fatalf("expected unchanged RUNNING state, got %+v", got)
	}
}

func TestEvaluateRunningZombieKilled(t *testing.T) {
	start := "260130_010000"
	sl := changespec.HookStatusLine{CommitEntryNum: "1", Timestamp: start, Status: changespec.HookRunning, Suffix: "12345", SuffixType: changespec.SuffixRunningProcess}
	later := mustTime(t, start).Add(3 * time.Hour)
	got := EvaluateRunning(sl, start, true, nil, later)
	if got.Status != changespec.HookDead || got.SuffixType != changespec.SuffixKilledProcess {
		t.Fatalf("expected zombie kill to DEAD/killed_process, got %+v", got)
	}
}

func TestEvaluateRunningEntersPendingDeadThenConfirmsAfterGrace(t *testing.T) {
	start := "260130_010000"
	sl := changespec.HookStatusLine{CommitEntryNum: "1", Timestamp: start, Status: changespec.HookRunning, Suffix: "12345", SuffixType: changespec.SuffixRunningProcess}

	t1 := mustTime(t, start).Add(5 * time.Second)
	pending := EvaluateRunning(sl, start, false, nil, t1)
	if pending.SuffixType != changespec.SuffixPendingDeadProcess || pending.Status != changespec.HookRunning {
		t.Fatalf("expected pending_dead_process RUNNING, got %+v", pending)
	}

	// Still within grace: no marker, still dead -> stays pending.
	t2 := t1.Add(10 * time.Second)
	stillPending := EvaluateRunning(pending, start, false, nil, t2)
	if stillPending.SuffixType != changespec.SuffixPendingDeadProcess {
		t.Fatalf("expected still pending within grace, got %+v", stillPending)
	}

	// Past the 60s grace: confirmed dead.
	t3 := t1.Add(61 * time.Second)
	dead := EvaluateRunning(stillPending, start, false, nil, t3)
	if dead.Status != changespec.HookDead || dead.SuffixType != changespec.SuffixKilledProcess {
		t.Fatalf("expected confirmed dead after grace, got %+v", dead)
	}
}

func TestEvaluateRunningMarkerFoundDuringGraceRecovers(t *testing.T) {
	start := "260130_010000"
	sl := changespec.HookStatusLine{CommitEntryNum: "1", Timestamp: start, SuffixType: changespec.SuffixPendingDeadProcess, Suffix: "12345", Summary: pendingDeadPrefix + "260130_010005"}
	marker := &CompletionMarker{EndTimestamp: "260130_010020", ExitCode: 0}
	got := EvaluateRunning(sl, start, false, marker, mustTime(t, "260130_010020"))
	if got.Status != changespec.HookPassed {
		t.Fatalf("expected recovery to PASSED, got %+v", got)
	}
	if got.Summary != recoveredFromPendingDeadMessage {
		t.Fatalf("Summary = %q, want %q", got.Summary, recoveredFromPendingDeadMessage)
	}
}

func TestEvaluateRunningMarkerFoundWithoutPendingDeadHasNoRecoveryMessage(t *testing.T) {
	sl := changespec.HookStatusLine{CommitEntryNum: "1", Timestamp: "260130_010000", Status: changespec.HookRunning, Suffix: "12345", SuffixType: changespec.SuffixRunningProcess}
	marker := &CompletionMarker{EndTimestamp: "260130_010030", ExitCode: 0}
	got := EvaluateRunning(sl, "260130_010000", true, marker, mustTime(t, "260130_010030"))
	if got.Summary != "" {
		t.Fatalf("expected no recovery message for a normal finish, got %q", got.Summary)
	}
}
