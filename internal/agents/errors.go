package agents

import "errors"

var (
	// ErrNoSummary means a fix-hook launch was attempted against a status
	// line that does not yet carry a summarize-hook summary.
	ErrNoSummary = errors.New("agents: fix-hook requires an existing summary")
	// ErrWorkspaceDirMissing means the claimed workspace number has no
	// physical directory on disk.
	ErrWorkspaceDirMissing = errors.New("agents: workspace directory not found")
	// ErrClaimFailed means the post-spawn workspace claim lost a race; the
	// caller's subprocess has already been terminated.
	ErrClaimFailed = errors.New("agents: failed to claim workspace for spawned agent")
	// ErrNotEligible means try_claim_hook_for_fix's eligibility recheck
	// failed: the status line moved on before this caller's lock acquisition.
	ErrNotEligible = errors.New("agents: hook status line is no longer eligible for fix-hook claim")
	// ErrUnrecognizedSuffix means a running_agent suffix did not match the
	// "<kind>-<pid>-<ts>" shape this package expects to parse.
	ErrUnrecognizedSuffix = errors.New("agents: unrecognized running_agent suffix")
)
