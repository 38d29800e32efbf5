package scheduler

import "context"

// BackgroundChecks represents the project-specific external tools spec
// §4.6 item 1 polls: `is_cl_submitted`, `critique_comments`, and
// `critique_comments --me`. These shell out to tooling outside this
// corpus's dependency surface (a forge/review-tool CLI the project
// configures), so this is an injected seam rather than a concrete adapter,
// the same pattern internal/agents uses for ProposalAcceptor and Runner.
type BackgroundChecks interface {
	// IsCLSubmitted reports whether the CL has landed upstream, the signal
	// that lets a Mailed CL transition to Submitted.
	IsCLSubmitted(ctx context.Context, clName string) (bool, error)
	// CritiqueComments reports whether unresolved review comments exist.
	// me scopes the query to the author's own (as opposed to reviewers')
	// comments, matching `critique_comments --me`.
	CritiqueComments(ctx context.Context, clName string, me bool) (bool, error)
}

// NoopBackgroundChecks is the zero-configuration default: every check
// reports "nothing to do" rather than erroring, so a Scheduler built
// without project-specific tooling wired in still runs its hook/agent
// reconciliation duties.
type NoopBackgroundChecks struct{}

func (NoopBackgroundChecks) IsCLSubmitted(ctx context.Context, clName string) (bool, error) {
	return false, nil
}

func (NoopBackgroundChecks) CritiqueComments(ctx context.Context, clName string, me bool) (bool, error) {
	return false, nil
}
