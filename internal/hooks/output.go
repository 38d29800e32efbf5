package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CompletionMarker is the parsed tail of a hook output file (spec §6.4):
// `===HOOK_COMPLETE=== END_TIMESTAMP: <ts> EXIT_CODE: <n>`.
type CompletionMarker struct {
	EndTimestamp string
	ExitCode     int
}

var completionMarkerPattern = regexp.MustCompile(
	`===HOOK_COMPLETE=== END_TIMESTAMP: (\d{6}_\d{6}) EXIT_CODE: (-?\d+)`)

// ParseCompletion scans content for the last occurrence of the completion
// marker line (mirroring the source's rfind), since retried hooks may have
// earlier partial banners from failed attempts.
func ParseCompletion(content string) (*CompletionMarker, bool) {
	matches := completionMarkerPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil, false
	}
	last := matches[len(matches)-1]
	exitCode, err := strconv.Atoi(last[2])
	if err != nil {
		return nil, false
	}
	return &CompletionMarker{EndTimestamp: last[1], ExitCode: exitCode}, true
}

// DeadProcessRetryAttempts and DeadProcessRetryInterval implement spec
// §4.4's "retry reading marker ~3x x 200ms" step: when kill(pid, 0) first
// reports a hook's process gone, its completion marker may not have
// flushed to disk yet, so the caller re-reads the output file a few times
// before committing to pending_dead_process.
const (
	DeadProcessRetryAttempts = 3
	DeadProcessRetryInterval = 200 * time.Millisecond
)

// ReadMarkerWithRetry re-reads outputPath up to DeadProcessRetryAttempts
// times, sleeping DeadProcessRetryInterval between attempts, and returns as
// soon as a completion marker appears. Only meant to be called the moment a
// hook's process is first found gone, not on every tick of its grace
// period.
func ReadMarkerWithRetry(outputPath string) (*CompletionMarker, bool) {
	for attempt := 1; ; attempt++ {
		content, _ := os.ReadFile(outputPath)
		if marker, found := ParseCompletion(string(content)); found {
			return marker, true
		}
		if attempt >= DeadProcessRetryAttempts {
			return nil, false
		}
		time.Sleep(DeadProcessRetryInterval)
	}
}

// SafeName sanitizes a CL or workflow name for embedding in a filesystem
// path: everything outside [A-Za-z0-9._-] becomes an underscore.
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func SafeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// OutputPath resolves spec §6.4's hook output file location:
// ~/.gai/hooks/<safe_cl_name>-<ts>.txt.
func OutputPath(baseDir, clName, ts string) string {
	return filepath.Join(baseDir, "hooks", fmt.Sprintf("%s-%s.txt", SafeName(clName), ts))
}

// AgentOutputType is one of the four agent kinds whose output files share
// the ~/.gai/workflows/ convention (spec §6.5).
type AgentOutputType string

const (
	AgentCRS           AgentOutputType = "crs"
	AgentFixHook       AgentOutputType = "fix-hook"
	AgentSummarizeHook AgentOutputType = "summarize-hook"
	AgentAceRun        AgentOutputType = "ace-run"
)

// AgentOutputPath resolves spec §6.5's agent output file location:
// ~/.gai/workflows/<safe_cl_name>_<type>-<ts>.txt.
func AgentOutputPath(baseDir, clName string, kind AgentOutputType, ts string) string {
	return filepath.Join(baseDir, "workflows", fmt.Sprintf("%s_%s-%s.txt", SafeName(clName), kind, ts))
}

// ContainsAny reports whether content contains any of patterns, used for
// the wrapper's retry-trigger check and for driving tests without shelling
// out to grep.
func ContainsAny(content string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(content, p) {
			return true
		}
	}
	return false
}
