package hooks

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/gai-dev/gai/internal/changespec"
)

// StartHookBackground implements spec §4.4's launching step: render the
// wrapper script to <workspaceDir>/.gai-hook-<command>.sh with mode 0755,
// and spawn it detached in
// its own process group (Setsid) with stdout/stderr already redirected
// inside the script itself. It returns the RUNNING status line the caller
// persists under the project file's lock.
func StartHookBackground(workspaceDir string, hook *changespec.HookEntry, entryID, outputPath string) (changespec.HookStatusLine, error) {
	scriptPath := filepath.Join(workspaceDir, fmt.Sprintf(".gai-hook-%s.sh", SafeName(hook.BareCommand())))
	script := GenerateWrapperScript(hook.BareCommand(), outputPath, DefaultRetryPatterns)
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		return changespec.HookStatusLine{}, fmt.Errorf("write hook wrapper script: %w", err)
	}

	cmd := exec.Command("/bin/sh", scriptPath)
	cmd.Dir = workspaceDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return changespec.HookStatusLine{}, fmt.Errorf("start hook subprocess: %w", err)
	}
	// The subprocess is detached (new session); the caller does not Wait on
	// it. Wait() is still called in a goroutine so the OS can reap the
	// process once it exits, without blocking the caller.
	go cmd.Wait()

	return changespec.HookStatusLine{
		CommitEntryNum: entryID,
		Timestamp:      Now(),
		Status:         changespec.HookRunning,
		SuffixType:     changespec.SuffixRunningProcess,
		Suffix:         fmt.Sprintf("%d", cmd.Process.Pid),
	}, nil
}
