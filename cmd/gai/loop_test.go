package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gai-dev/gai/internal/agents"
)

func TestOverrideDuration(t *testing.T) {
	if got, want := overrideDuration(10, 5), 10*time.Second; got != want {
		t.Errorf("flag should win: got %v, want %v", got, want)
	}
	if got, want := overrideDuration(0, 5), 5*time.Second; got != want {
		t.Errorf("config should apply when flag unset: got %v, want %v", got, want)
	}
	if got, want := overrideDuration(0, 0), time.Duration(0); got != want {
		t.Errorf("both unset should yield zero (scheduler applies its own default): got %v, want %v", got, want)
	}
}

func TestOverrideInt(t *testing.T) {
	if got := overrideInt(7, 3); got != 7 {
		t.Errorf("flag should win: got %d, want 7", got)
	}
	if got := overrideInt(0, 3); got != 3 {
		t.Errorf("config should apply when flag unset: got %d, want 3", got)
	}
}

func TestClaudeRunnerBuildsArgv(t *testing.T) {
	runner := claudeRunner("claude")
	argv := runner(agents.KindFixHook, "/tmp/out.txt", "--extra")

	if argv[0] != "claude" {
		t.Errorf("argv[0] = %q, want %q", argv[0], "claude")
	}
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, string(agents.KindFixHook)) {
		t.Errorf("argv %v does not reference kind %q", argv, agents.KindFixHook)
	}
	if !strings.Contains(joined, "/tmp/out.txt") {
		t.Errorf("argv %v does not reference output path", argv)
	}
	if !strings.Contains(joined, "--extra") {
		t.Errorf("argv %v does not pass through extra args", argv)
	}
}
