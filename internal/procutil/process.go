// Package procutil ports the liveness and kill primitives
// original_source/.../ace/hooks/processes.py builds the two-phase
// dead-process protocol and the workspace orphan sweep on top of:
// os.kill(pid, 0) liveness checks and process-group termination. Shared by
// internal/workspace (claim liveness) and internal/hooks (hook/agent
// process lifecycle) so both use the exact same semantics.
package procutil

import (
	"errors"
	"os"
	"syscall"
)

// IsRunning reports whether pid is alive, mirroring the source's
// is_process_running: signal 0 performs no action but still reports
// ESRCH (no such process) vs EPERM (exists, not ours) vs success (exists,
// ours). A permission-denied result is treated as "running" since the
// process plainly exists.
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) {
		return false
	}
	if errors.Is(err, syscall.ESRCH) {
		return false
	}
	if errors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}

// KillProcessGroup sends SIGTERM to pid's process group, swallowing the
// "already gone" and "not permitted" cases the way
// _try_kill_process_group does (ProcessLookupError/PermissionError are not
// failures worth surfacing to a caller that is just trying to clean up).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGTERM)
}

// ForceKillProcessGroup sends SIGKILL to pid's process group, the escalation
// used once a grace period after KillProcessGroup has elapsed and the
// process is still alive. Never used by the scheduler's own cancellation
// path (spec §5: "Never SIGKILL from the scheduler") — reserved for
// AgentLauncher's post-spawn claim-failure rollback.
func ForceKillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
