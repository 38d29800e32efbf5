// Package hooks implements the HookEngine: the two-phase dead-process
// protocol, zombie detection, wrapper-script launching, and eligibility
// rules described in spec §4.4. Grounded directly on
// original_source/.../ace/hooks/{execution,processes,timestamps}.py for
// exact semantics, and on internal/rpi/worktree.go's subprocess-spawning
// idiom (exec.CommandContext, timeout classification) for how this
// codebase talks to the OS.
package hooks

import (
	"fmt"
	"time"

	"github.com/gai-dev/gai/internal/changespec"
)

// ZombieTimeout is spec §4.4's default: a RUNNING hook older than this is
// presumed hung and killed.
const ZombieTimeout = 2 * time.Hour

// PendingDeadGrace is the 60s window after kill(pid,0) first reports the
// process gone but no completion marker has appeared yet.
const PendingDeadGrace = 60 * time.Second

// pendingDeadPrefix tags the Summary field of a pending_dead_process status
// line with the timestamp the grace period started, so a later tick can
// tell how long it has been waiting without a separate field.
const pendingDeadPrefix = "PENDING_DEAD:"

// EvaluateRunning advances one RUNNING hook status line by one scheduler
// tick, implementing the full diagram in spec §4.4: marker found wins
// outright; otherwise liveness and (for the already-pending-dead case) the
// grace-period clock decide the next state. isAlive is the result of a
// kill(pid, 0)-equivalent check performed by the caller (internal/procutil).
func EvaluateRunning(sl changespec.HookStatusLine, startTS string, isAlive bool, marker *CompletionMarker, now time.Time) changespec.HookStatusLine {
	nowTS := now.Format(TimestampLayout)

	if marker != nil {
		return finishFromMarker(sl, startTS, marker)
	}

	if isAlive {
		if start, err := ParseTimestamp(startTS); err == nil && now.Sub(start) >= ZombieTimeout {
			age := int(now.Sub(start).Seconds())
			return changespec.HookStatusLine{
				CommitEntryNum: sl.CommitEntryNum,
				Timestamp:      sl.Timestamp,
				Status:         changespec.HookDead,
				Duration:       FormatDuration(age),
				SuffixType:     changespec.SuffixKilledProcess,
				Suffix:         fmt.Sprintf("%s | zombie", sl.Suffix),
			}
		}
		return sl
	}

	// Process is gone but no marker yet: enter or continue the grace period.
	if sl.SuffixType != changespec.SuffixPendingDeadProcess {
		return changespec.HookStatusLine{
			CommitEntryNum: sl.CommitEntryNum,
			Timestamp:      sl.Timestamp,
			Status:         changespec.HookRunning,
			SuffixType:     changespec.SuffixPendingDeadProcess,
			Suffix:         sl.Suffix,
			Summary:        pendingDeadPrefix + nowTS,
		}
	}

	since := pendingDeadSince(sl.Summary)
	if since == "" {
		return sl
	}
	sinceT, err := ParseTimestamp(since)
	if err != nil {
		return sl
	}
	if now.Sub(sinceT) < PendingDeadGrace {
		return sl
	}

	return changespec.HookStatusLine{
		CommitEntryNum: sl.CommitEntryNum,
		Timestamp:      sl.Timestamp,
		Status:         changespec.HookDead,
		SuffixType:     changespec.SuffixKilledProcess,
		Suffix:         fmt.Sprintf("%s | %s Process confirmed dead after 60s timeout.", sl.Suffix, FormatTimestampDisplay(nowTS)),
	}
}

func pendingDeadSince(summary string) string {
	if len(summary) <= len(pendingDeadPrefix) {
		return ""
	}
	if summary[:len(pendingDeadPrefix)] != pendingDeadPrefix {
		return ""
	}
	return summary[len(pendingDeadPrefix):]
}

// recoveredFromPendingDeadMessage is appended to a hook's status line when
// its completion marker turns up after the engine already entered the
// pending-dead grace window for it (spec §4.4 scenario S2).
const recoveredFromPendingDeadMessage = "(recovered from pending dead)"

func finishFromMarker(sl changespec.HookStatusLine, startTS string, marker *CompletionMarker) changespec.HookStatusLine {
	duration, err := DurationBetween(startTS, marker.EndTimestamp)
	if err != nil {
		duration = 0
	}
	status := changespec.HookPassed
	if marker.ExitCode != 0 {
		status = changespec.HookFailed
	}
	result := changespec.HookStatusLine{
		CommitEntryNum: sl.CommitEntryNum,
		Timestamp:      sl.Timestamp,
		Status:         status,
		Duration:       FormatDuration(duration),
	}
	if sl.SuffixType == changespec.SuffixPendingDeadProcess {
		result.Summary = recoveredFromPendingDeadMessage
	}
	return result
}
