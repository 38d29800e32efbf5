package agents

import (
	"context"
	"fmt"

	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/projectfile"
)

// TryClaimHookForFix implements spec §4.5's try_claim_hook_for_fix: under
// the project file's lock, re-read the hook's current status line and
// confirm it is still FAILED with a summarize_complete suffix before
// rewriting it to claiming_fix. Returns the previous suffix (the summary
// text) so the caller can hand it to the fix-hook runner without a second
// read. This serializes the race between two scheduler processes (or two
// ticks of the same one) both deciding to start a fix-hook for the same
// failing entry.
func TryClaimHookForFix(ctx context.Context, pf *projectfile.ProjectFile, clName, hookCommand, entryID, claimToken string) (summary string, err error) {
	err = pf.MutateChangeSpec(ctx, clName, fmt.Sprintf("Claim hook %q for fix on %s", hookCommand, clName), func(cs *changespec.ChangeSpec) error {
		for hi := range cs.Hooks {
			h := &cs.Hooks[hi]
			if h.Command != hookCommand {
				continue
			}
			sl := h.StatusLineFor(entryID)
			if sl == nil {
				return ErrNotEligible
			}
			if sl.Status != changespec.HookFailed || sl.SuffixType != changespec.SuffixSummarizeComplete || sl.Suffix == "" {
				return ErrNotEligible
			}
			summary = sl.Suffix
			sl.SuffixType = changespec.SuffixClaimingFix
			sl.Suffix = claimToken
			sl.Summary = summary
			return nil
		}
		return ErrNotEligible
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}
