package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/gai-dev/gai/internal/agents"
	"github.com/gai-dev/gai/internal/changespec"
	"github.com/gai-dev/gai/internal/hooks"
	"github.com/gai-dev/gai/internal/procutil"
	"github.com/gai-dev/gai/internal/projectfile"
	"github.com/gai-dev/gai/internal/workspace"
)

// MentorMatcher decides which mentor profiles should run against entryID,
// grounded on mentor_checks.py's _get_mentor_profiles_to_run (file-glob/
// diff-regex/amend-note-regex matching against a project's configured
// mentor profiles). That profile-config loader has no analogue anywhere in
// this corpus's dependency surface, so profile matching is an injected
// seam: the caller supplies the already-matched profile names for the
// latest commit and its diff, rather than this package parsing a mentor
// config file itself.
type MentorMatcher interface {
	// ProfilesFor returns the profile names whose criteria match one of
	// commitsSinceLastMentors' diffs/notes, for entryID (the latest
	// all-numeric commit entry).
	ProfilesFor(cs *changespec.ChangeSpec, entryID string, commitsSinceLastMentors []changespec.CommitEntry) []string
}

// NoopMentorMatcher matches nothing, so a Scheduler configured without
// mentor profiles simply never starts mentor runs.
type NoopMentorMatcher struct{}

func (NoopMentorMatcher) ProfilesFor(cs *changespec.ChangeSpec, entryID string, commitsSinceLastMentors []changespec.CommitEntry) []string {
	return nil
}

// commitsSinceLastMentors returns every all-numeric commit at or after the
// highest entry_id any mentor has already been started for, mirroring
// mentor_checks.py's _get_commits_since_last_mentors.
func commitsSinceLastMentors(cs *changespec.ChangeSpec) []changespec.CommitEntry {
	lastMentorID := -1
	for _, me := range cs.Mentors {
		var n int
		if _, err := fmt.Sscanf(me.EntryID, "%d", &n); err != nil {
			continue
		}
		if n > lastMentorID {
			lastMentorID = n
		}
	}

	var out []changespec.CommitEntry
	for _, c := range cs.Commits {
		if c.IsProposal() {
			continue
		}
		if lastMentorID < 0 || c.Base >= lastMentorID {
			out = append(out, c)
		}
	}
	return out
}

// latestNumericEntry returns the highest-base non-proposal commit entry's
// display number, or "" if there is none.
func latestNumericEntry(cs *changespec.ChangeSpec) string {
	best := -1
	id := ""
	for _, c := range cs.Commits {
		if c.IsProposal() {
			continue
		}
		if c.Base > best {
			best = c.Base
			id = c.DisplayNumber
		}
	}
	return id
}

// allNonSkipHooksReady mirrors mentor_checks.py's _all_non_skip_hooks_ready:
// every hook without the "!" prefix must have PASSED for entryID, or FAILED
// with a fix-hook already attached (running_agent, or an entry_ref suffix).
func allNonSkipHooksReady(cs *changespec.ChangeSpec, entryID string) bool {
	if len(cs.Hooks) == 0 {
		return false
	}
	checkedAny := false
	for _, h := range cs.Hooks {
		if h.SkipFixHook() {
			continue
		}
		checkedAny = true
		sl := h.StatusLineFor(entryID)
		if sl == nil || sl.Status == changespec.HookRunning {
			return false
		}
		if sl.Status == changespec.HookFailed {
			if sl.SuffixType == changespec.SuffixRunningAgent {
				continue
			}
			if sl.SuffixType != changespec.SuffixEntryRef {
				return false
			}
		}
	}
	return checkedAny
}

// startedMentors returns the (profile, mentor) pairs already recorded for
// entryID.
func startedMentors(cs *changespec.ChangeSpec, entryID string) map[string]bool {
	started := make(map[string]bool)
	for _, me := range cs.Mentors {
		if me.EntryID != entryID {
			continue
		}
		for _, sl := range me.StatusLines {
			started[sl.ProfileName+"|"+sl.MentorName] = true
		}
	}
	return started
}

// startDueMentors implements mentor_checks.py's check_mentors phase 2: for
// the latest all-numeric commit, once its non-skip hooks are settled, start
// any matched profile's mentor that has not already been started,
// respecting the shared runner budget.
func (s *Scheduler) startDueMentors(ctx context.Context, pf *projectfile.ProjectFile, cs *changespec.ChangeSpec, budget *tickBudget) []string {
	var messages []string

	if changespec.IsTerminal(changespec.Status(cs.Status)) {
		return messages
	}
	entryID := latestNumericEntry(cs)
	if entryID == "" || !allNonSkipHooksReady(cs, entryID) {
		return messages
	}

	profiles := s.opts.Mentors.ProfilesFor(cs, entryID, commitsSinceLastMentors(cs))
	if len(profiles) == 0 {
		return messages
	}

	already := startedMentors(cs, entryID)
	for _, profile := range profiles {
		if already[profile+"|"+profile] {
			continue
		}
		if budget.available() <= 0 {
			s.opts.Log.VerbosePrintf("mentor start deferred for %s: runner limit reached\n", cs.Name)
			break
		}
		msg, err := agents.LaunchMentor(ctx, s.launchParams(pf), cs, entryID, profile, s.opts.VCS)
		if err != nil {
			s.opts.Log.VerbosePrintf("mentor launch failed for %s/%s: %v\n", cs.Name, profile, err)
			continue
		}
		budget.consume(1)
		messages = append(messages, msg)
	}
	return messages
}

// reconcileMentorZombies kills and marks DEAD any RUNNING mentor whose
// process has exceeded the zombie timeout or is confirmed gone, releasing
// its workspace claim. Spec §4.6 item 4's "detect comment zombies; detect
// hook zombies" extends by direct analogy to mentor running_agent lines;
// mentor_checks.py's own completion check is a stub ("handled by the
// background runner... could be extended"), so the zombie half here is
// this package's own addition, grounded on the same running_agent
// suffix-parsing machinery internal/agents already provides.
func (s *Scheduler) reconcileMentorZombies(ctx context.Context, pf *projectfile.ProjectFile, clName string, cs *changespec.ChangeSpec, now time.Time) []string {
	var messages []string
	type hit struct {
		entryID, profile, mentor, suffix string
	}
	var dead []hit

	for _, me := range cs.Mentors {
		for _, sl := range me.StatusLines {
			if sl.Status != changespec.MentorRunning || sl.SuffixType != changespec.SuffixRunningAgent {
				continue
			}
			_, pid, ts, err := agents.ParseSuffix(sl.Suffix)
			if err != nil {
				continue
			}
			alive := procutil.IsRunning(pid)
			age := time.Duration(0)
			if parsed, err := time.ParseInLocation(hooks.TimestampLayout, ts, time.Local); err == nil {
				age = now.Sub(parsed)
			}
			if alive && age < s.opts.ZombieTimeout {
				continue
			}
			if alive {
				procutil.KillProcessGroup(pid)
			}
			dead = append(dead, hit{entryID: me.EntryID, profile: sl.ProfileName, mentor: sl.MentorName, suffix: sl.Suffix})
		}
	}
	if len(dead) == 0 {
		return messages
	}

	err := pf.MutateChangeSpec(ctx, clName, fmt.Sprintf("Reap zombie mentors for %s", clName), func(live *changespec.ChangeSpec) error {
		for _, d := range dead {
			for mi := range live.Mentors {
				if live.Mentors[mi].EntryID != d.entryID {
					continue
				}
				for si := range live.Mentors[mi].StatusLines {
					sl := &live.Mentors[mi].StatusLines[si]
					if sl.ProfileName == d.profile && sl.MentorName == d.mentor && sl.Suffix == d.suffix {
						sl.Status = changespec.MentorDead
						sl.SuffixType = changespec.SuffixKilledAgent
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return messages
	}
	for _, d := range dead {
		messages = append(messages, fmt.Sprintf("mentor [%s:%s] -> DEAD (zombie)", d.profile, d.mentor))
		workflowName := fmt.Sprintf("loop(mentor)-%s-%s", d.profile, d.entryID)
		releaseClaimByWorkflow(ctx, pf, workflowName, clName)
	}
	return messages
}

// releaseClaimByWorkflow releases the RUNNING: row for (workflowName,
// clName) if one still exists, swallowing a not-found error the same way
// internal/agents.releaseClaimFor does.
func releaseClaimByWorkflow(ctx context.Context, pf *projectfile.ProjectFile, workflowName, clName string) {
	proj, err := pf.Read()
	if err != nil {
		return
	}
	for _, c := range proj.Running {
		if c.WorkflowName == workflowName && c.CLName == clName {
			_ = workspace.ReleaseWorkspace(ctx, pf, c.WorkspaceNum, workflowName, clName)
			return
		}
	}
}
