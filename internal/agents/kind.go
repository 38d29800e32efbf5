// Package agents implements AgentLauncher: the four detached-subprocess
// workflows a loop tick can start against a CL (CRS, fix-hook,
// summarize-hook, mentor), their shared claim/spawn/release launch pattern,
// and the completion monitor that reconciles a finished subprocess's output
// file back into the project file.
//
// Grounded on workflows_runner/starter.go and completer.go's split: starting
// a workflow is "spawn subprocess, then claim workspace with its real PID,
// terminating on claim failure"; completing one is "parse the output file's
// marker, then either auto-accept a proposal or mark the line failed".
package agents

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind is one of the four workflow types AgentLauncher spawns.
type Kind string

const (
	KindCRS           Kind = "crs"
	KindFixHook       Kind = "fix_hook"
	KindSummarizeHook Kind = "summarize_hook"
	KindMentor        Kind = "mentor"
)

var runningAgentSuffixPattern = regexp.MustCompile(`^([A-Za-z_]+)-(\d+)-(\d{6}_\d{6})$`)

// FormatSuffix renders the `<kind>-<pid>-<ts>` running_agent suffix spec
// §4.5 step 7 describes.
func FormatSuffix(kind Kind, pid int, ts string) string {
	return fmt.Sprintf("%s-%d-%s", kind, pid, ts)
}

// ParseSuffix recovers (kind, pid, ts) from a running_agent suffix, used by
// the completion monitor to classify which scan bucket a status line
// belongs to without consulting any other state.
func ParseSuffix(suffix string) (Kind, int, string, error) {
	m := runningAgentSuffixPattern.FindStringSubmatch(suffix)
	if m == nil {
		return "", 0, "", ErrUnrecognizedSuffix
	}
	pid, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, "", ErrUnrecognizedSuffix
	}
	return Kind(m[1]), pid, m[3], nil
}
