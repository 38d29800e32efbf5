package changespec

import "strings"

// SuffixType is the closed discriminator for how a status-line suffix is
// displayed and semantically interpreted. The source system represents this
// as an open string; per the design note on dynamic typing, this codebase
// encodes it as a tagged union with one variant per semantic kind, recovered
// from the (prefix, shape) pair on parse and total on serialize.
type SuffixType string

const (
	// SuffixNone means there is no suffix at all.
	SuffixNone SuffixType = ""
	// SuffixPlain is a bare informational suffix with no prefix.
	SuffixPlain SuffixType = "plain"
	// SuffixError is a human-visible failure attention marker ("!: ...").
	SuffixError SuffixType = "error"
	// SuffixRunningAgent marks an AI agent owning this line ("@" or "@: ...").
	SuffixRunningAgent SuffixType = "running_agent"
	// SuffixKilledAgent marks a terminated agent ("~@: ...").
	SuffixKilledAgent SuffixType = "killed_agent"
	// SuffixRunningProcess carries a PID of an expected-alive subprocess ("$: ...").
	SuffixRunningProcess SuffixType = "running_process"
	// SuffixPendingDeadProcess is the 60s grace state ("?$: ...").
	SuffixPendingDeadProcess SuffixType = "pending_dead_process"
	// SuffixKilledProcess is a confirmed-dead subprocess ("~$: ...").
	SuffixKilledProcess SuffixType = "killed_process"
	// SuffixSummarizeComplete carries a summarize-hook's natural-language
	// summary, later consumed as fix-hook input ("%" or "%: ...").
	SuffixSummarizeComplete SuffixType = "summarize_complete"
	// SuffixEntryRef carries the id of a proposal addressing this failure.
	SuffixEntryRef SuffixType = "entry_ref"
	// SuffixClaimingFix is the atomic handoff token between summarize-hook
	// output and fix-hook start.
	SuffixClaimingFix SuffixType = "claiming_fix"
	// SuffixBroken marks a rejected/invalidated proposal ("BROKEN PROPOSAL").
	SuffixBroken SuffixType = "broken"
)

// RunningTerminal reports whether a hook status with this suffix type is
// still considered "live" (P4: a terminal hook status must not carry a
// running/pending suffix type).
func (t SuffixType) RunningTerminal() bool {
	switch t {
	case SuffixRunningProcess, SuffixRunningAgent, SuffixPendingDeadProcess:
		return true
	default:
		return false
	}
}

// FormatSuffix renders the `(prefix: suffix)` content for a status-line
// suffix+summary pair, per the grammar in spec.md §4.1. It does not include
// the surrounding " - (...)" wrapper; callers add that only when
// HasRenderableSuffix reports true (which includes an empty running_agent
// suffix, rendered as the source's bare "@").
func FormatSuffix(t SuffixType, suffix, summary string) string {
	var content string
	switch t {
	case SuffixPlain, SuffixEntryRef, SuffixBroken, SuffixClaimingFix:
		content = suffix
	case SuffixSummarizeComplete:
		if suffix != "" {
			content = "%: " + suffix
		} else {
			content = "%"
		}
	case SuffixError:
		content = "!: " + suffix
	case SuffixRunningAgent:
		if suffix != "" {
			content = "@: " + suffix
		} else {
			content = "@"
		}
	case SuffixKilledAgent:
		content = "~@: " + suffix
	case SuffixRunningProcess:
		content = "$: " + suffix
	case SuffixPendingDeadProcess:
		content = "?$: " + suffix
	case SuffixKilledProcess:
		content = "~$: " + suffix
	default:
		content = suffix
	}

	if summary != "" {
		if content != "" {
			content = content + " | " + summary
		} else {
			content = summary
		}
	}
	return content
}

// HasRenderableSuffix reports whether the (type, suffix, summary) triple
// should produce a " - (...)" clause at all, mirroring the source's
// has_suffix/has_summary_only check (an empty running_agent suffix still
// renders as bare "@").
func HasRenderableSuffix(t SuffixType, suffix, summary string) bool {
	if suffix != "" || t == SuffixRunningAgent {
		return true
	}
	return summary != ""
}

// ParseSuffix recovers the (SuffixType, suffix, summary) triple from the
// raw content of a `(...)` clause, splitting off a trailing " | <summary>"
// compound segment first, then matching the prefix against the closed set
// of discriminators. A bare suffix starting with "claim-" (the shape of the
// tokens TryClaimHookForFix writes) is claiming_fix; other bare text is
// plain.
func ParseSuffix(content string) (SuffixType, string, string) {
	summary := ""
	if idx := strings.Index(content, " | "); idx >= 0 {
		summary = content[idx+3:]
		content = content[:idx]
	}

	switch {
	case content == "BROKEN PROPOSAL":
		return SuffixBroken, content, summary
	case content == "@":
		return SuffixRunningAgent, "", summary
	case content == "%":
		return SuffixSummarizeComplete, "", summary
	case strings.HasPrefix(content, "!: "):
		return SuffixError, strings.TrimPrefix(content, "!: "), summary
	case strings.HasPrefix(content, "~@: "):
		return SuffixKilledAgent, strings.TrimPrefix(content, "~@: "), summary
	case strings.HasPrefix(content, "@: "):
		return SuffixRunningAgent, strings.TrimPrefix(content, "@: "), summary
	case strings.HasPrefix(content, "%: "):
		return SuffixSummarizeComplete, strings.TrimPrefix(content, "%: "), summary
	case strings.HasPrefix(content, "?$: "):
		return SuffixPendingDeadProcess, strings.TrimPrefix(content, "?$: "), summary
	case strings.HasPrefix(content, "~$: "):
		return SuffixKilledProcess, strings.TrimPrefix(content, "~$: "), summary
	case strings.HasPrefix(content, "$: "):
		return SuffixRunningProcess, strings.TrimPrefix(content, "$: "), summary
	case strings.HasPrefix(content, "claim-"):
		return SuffixClaimingFix, content, summary
	default:
		return SuffixPlain, content, summary
	}
}

// IsErrorSuffix reports whether s looks like a human-written error marker
// (mirrors the source's is_error_suffix heuristic). ParseSuffix does not
// call it: parsed suffix types come from the prefix alone.
func IsErrorSuffix(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range []string{"failed", "error", "unresolved"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
