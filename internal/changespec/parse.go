package changespec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseProjectSpec parses the full `.gp` grammar (spec §6.1): an optional
// leading RUNNING: block, followed by ChangeSpec blocks separated by a
// single blank line, with two consecutive blank lines (or EOF) terminating
// the file. The parser is tolerant of trailing whitespace on every line.
func ParseProjectSpec(raw string) (*ProjectSpec, error) {
	lines := strings.Split(raw, "\n")
	for k := range lines {
		lines[k] = strings.TrimRight(lines[k], " \t")
	}
	proj := &ProjectSpec{}

	i := 0
	if i < len(lines) && strings.HasPrefix(strings.TrimRight(lines[i], " \t"), "RUNNING:") {
		claims, consumed, err := parseRunningBlock(lines[i:])
		if err != nil {
			return nil, err
		}
		proj.Running = claims
		i += consumed
	}

	for i < len(lines) {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}
		if !strings.HasPrefix(lines[i], "NAME:") {
			return nil, fmt.Errorf("%w: expected NAME: at line %d, got %q", ErrParse, i+1, lines[i])
		}
		cs, consumed, err := parseChangeSpecBlock(lines[i:])
		if err != nil {
			return nil, err
		}
		proj.ChangeSpecs = append(proj.ChangeSpecs, *cs)
		i += consumed
	}

	return proj, nil
}

func parseRunningBlock(lines []string) ([]WorkspaceClaim, int, error) {
	var claims []WorkspaceClaim
	i := 1 // skip "RUNNING:" header
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			i++
			break
		}
		if !strings.HasPrefix(line, "  ") {
			break
		}
		claim, err := parseClaimLine(trimmed)
		if err != nil {
			return nil, 0, err
		}
		claims = append(claims, claim)
		i++
	}
	return claims, i, nil
}

// claimLinePattern matches "#<num> <workflow> pid=<pid> cl=<name> [ts=<ts>]".
var claimLinePattern = regexp.MustCompile(`^#(\d+)\s+(\S+)\s+pid=(\d+)\s+cl=(\S+)(?:\s+ts=(\S+))?$`)

func parseClaimLine(line string) (WorkspaceClaim, error) {
	m := claimLinePattern.FindStringSubmatch(line)
	if m == nil {
		return WorkspaceClaim{}, fmt.Errorf("%w: malformed RUNNING claim %q", ErrParse, line)
	}
	num, _ := strconv.Atoi(m[1])
	pid, _ := strconv.Atoi(m[3])
	return WorkspaceClaim{
		WorkspaceNum:       num,
		WorkflowName:       m[2],
		PID:                pid,
		CLName:             m[4],
		ArtifactsTimestamp: m[5],
	}, nil
}

func parseChangeSpecBlock(lines []string) (*ChangeSpec, int, error) {
	cs := &ChangeSpec{}
	i := 0

	nameLine := strings.TrimPrefix(lines[0], "NAME:")
	cs.Name = strings.TrimSpace(nameLine)
	i++

	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimRight(line, " \t")

		if trimmed == "" {
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "" {
				i += 2
				break
			}
			i++
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "DESCRIPTION:"):
			text, consumed := parseIndentedBlock(lines[i+1:])
			cs.Description = text
			i += 1 + consumed
		case strings.HasPrefix(trimmed, "KICKSTART:"):
			text, consumed := parseIndentedBlock(lines[i+1:])
			cs.Kickstart = text
			i += 1 + consumed
		case strings.HasPrefix(trimmed, "CL:"):
			cs.CL = strings.TrimSpace(strings.TrimPrefix(trimmed, "CL:"))
			i++
		case strings.HasPrefix(trimmed, "BUG:"):
			cs.Bug = strings.TrimSpace(strings.TrimPrefix(trimmed, "BUG:"))
			i++
		case strings.HasPrefix(trimmed, "PARENT:"):
			cs.Parent = strings.TrimSpace(strings.TrimPrefix(trimmed, "PARENT:"))
			i++
		case strings.HasPrefix(trimmed, "STATUS:"):
			status, ready := parseStatusLine(strings.TrimPrefix(trimmed, "STATUS:"))
			cs.Status = status
			cs.ReadyToMail = ready
			i++
		case strings.HasPrefix(trimmed, "TEST TARGETS:"):
			targets, consumed := parseTestTargets(lines[i+1:])
			cs.TestTargets = targets
			i += 1 + consumed
		case strings.HasPrefix(trimmed, "HISTORY:"):
			commits, consumed, err := parseHistory(lines[i+1:])
			if err != nil {
				return nil, 0, err
			}
			cs.Commits = commits
			i += 1 + consumed
		case strings.HasPrefix(trimmed, "HOOKS:"):
			hooks, consumed, err := parseHooks(lines[i+1:])
			if err != nil {
				return nil, 0, err
			}
			cs.Hooks = hooks
			i += 1 + consumed
		case strings.HasPrefix(trimmed, "COMMENTS:"):
			comments, consumed := parseComments(lines[i+1:])
			cs.Comments = comments
			i += 1 + consumed
		case strings.HasPrefix(trimmed, "MENTORS:"):
			mentors, consumed, err := parseMentors(lines[i+1:])
			if err != nil {
				return nil, 0, err
			}
			cs.Mentors = mentors
			i += 1 + consumed
		case strings.HasPrefix(trimmed, "NAME:"):
			// Next ChangeSpec began without a full blank-line separator;
			// treat as end of this block.
			return cs, i, nil
		default:
			return nil, 0, fmt.Errorf("%w: unrecognized field at line %d: %q", ErrParse, i+1, line)
		}
	}

	return cs, i, nil
}

func parseIndentedBlock(lines []string) (string, int) {
	var buf []string
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			break
		}
		if !strings.HasPrefix(line, "  ") {
			break
		}
		buf = append(buf, strings.TrimPrefix(line, "  "))
		i++
	}
	return strings.Join(buf, "\n"), i
}

var readyToMailSuffix = regexp.MustCompile(`^(.*?)\s*-\s*\(!: READY TO MAIL\)$`)

func parseStatusLine(raw string) (status string, ready bool) {
	raw = strings.TrimSpace(raw)
	if m := readyToMailSuffix.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return raw, false
}

func parseTestTargets(lines []string) ([]TestTarget, int) {
	var targets []TestTarget
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" || !strings.HasPrefix(line, "  ") {
			break
		}
		text := strings.TrimPrefix(line, "  ")
		failed := false
		if strings.HasSuffix(text, " (FAILED)") {
			failed = true
			text = strings.TrimSuffix(text, " (FAILED)")
		}
		targets = append(targets, TestTarget{Name: text, Failed: failed})
		i++
	}
	return targets, i
}

var historyLinePattern = regexp.MustCompile(`^\((\d+)([a-z]*)\)\s*(.*)$`)

func parseHistory(lines []string) ([]CommitEntry, int, error) {
	var commits []CommitEntry
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" || !strings.HasPrefix(line, "  ") {
			break
		}
		trimmed := strings.TrimPrefix(line, "  ")
		m := historyLinePattern.FindStringSubmatch(trimmed)
		if m == nil {
			return nil, 0, fmt.Errorf("%w: malformed HISTORY line %q", ErrParse, line)
		}
		base, _ := strconv.Atoi(m[1])
		rest := m[3]

		entry := CommitEntry{
			DisplayNumber: m[1] + m[2],
			Base:          base,
			Letter:        m[2],
		}
		note, diff, suffix := splitHistoryRest(rest)
		entry.Note = note
		entry.Diff = diff
		if suffix != "" {
			entry.SuffixType, entry.Suffix, _ = ParseSuffix(suffix)
			if suffix == "BROKEN PROPOSAL" {
				entry.SuffixType = SuffixBroken
			}
		}
		commits = append(commits, entry)
		i++
	}
	return commits, i, nil
}

func splitHistoryRest(rest string) (note, diff, suffix string) {
	// Pad with a leading space so an empty note ("(1a)  - (...)") still
	// exposes its " - (" suffix separator.
	padded := " " + rest
	if idx := strings.LastIndex(padded, " - ("); idx >= 0 && strings.HasSuffix(padded, ")") {
		suffix = padded[idx+4 : len(padded)-1]
		rest = strings.TrimSpace(padded[:idx])
	}
	fields := strings.Fields(rest)
	if len(fields) > 0 && (strings.HasPrefix(fields[len(fields)-1], "/") || strings.Contains(fields[len(fields)-1], ".diff")) {
		diff = fields[len(fields)-1]
		rest = strings.TrimSpace(strings.TrimSuffix(rest, diff))
	}
	note = rest
	return
}

func parseHooks(lines []string) ([]HookEntry, int, error) {
	var hooks []HookEntry
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			break
		}
		if strings.HasPrefix(line, "      | ") {
			if len(hooks) == 0 {
				return nil, 0, fmt.Errorf("%w: hook status line with no command", ErrParse)
			}
			sl, err := parseHookStatusLine(strings.TrimPrefix(line, "      | "))
			if err != nil {
				return nil, 0, err
			}
			last := &hooks[len(hooks)-1]
			last.StatusLines = append(last.StatusLines, sl)
			i++
			continue
		}
		if strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "    ") {
			hooks = append(hooks, HookEntry{Command: strings.TrimPrefix(line, "  ")})
			i++
			continue
		}
		break
	}
	return hooks, i, nil
}

var hookStatusPattern = regexp.MustCompile(`^\(([^)]+)\)\s+\[([^\]]*)\]\s+(\S+)(?:\s+\(([^)]+)\))?(?:\s+-\s+\((.*)\))?$`)

func parseHookStatusLine(text string) (HookStatusLine, error) {
	m := hookStatusPattern.FindStringSubmatch(text)
	if m == nil {
		return HookStatusLine{}, fmt.Errorf("%w: malformed hook status line %q", ErrParse, text)
	}
	sl := HookStatusLine{
		CommitEntryNum: m[1],
		Timestamp:      m[2],
		Status:         HookStatus(m[3]),
		Duration:       m[4],
	}
	if m[5] != "" {
		t, suffix, summary := ParseSuffix(m[5])
		sl.SuffixType = t
		sl.Suffix = suffix
		sl.Summary = summary
	}
	return sl, nil
}

var commentLinePattern = regexp.MustCompile(`^\[([^\]]+)\]\s*(\S*)(?:\s+-\s+\((.*)\))?$`)

func parseComments(lines []string) ([]CommentEntry, int) {
	var comments []CommentEntry
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" || !strings.HasPrefix(line, "  ") {
			break
		}
		trimmed := strings.TrimPrefix(line, "  ")
		m := commentLinePattern.FindStringSubmatch(trimmed)
		if m == nil {
			i++
			continue
		}
		entry := CommentEntry{Reviewer: m[1], FilePath: m[2]}
		if m[3] != "" {
			entry.SuffixType, entry.Suffix, _ = ParseSuffix(m[3])
		}
		comments = append(comments, entry)
		i++
	}
	return comments, i
}

var mentorHeaderPattern = regexp.MustCompile(`^\(([^)]+)\)\s+(.*)$`)
var mentorStatusPattern = regexp.MustCompile(`^\[([^\]]+)\]\s+(\S+):(\S+)\s+-\s+(\S+)(?:\s+-\s+\((.*)\))?$`)

func parseMentors(lines []string) ([]MentorEntry, int, error) {
	var mentors []MentorEntry
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			break
		}
		if strings.HasPrefix(line, "      | ") {
			if len(mentors) == 0 {
				return nil, 0, fmt.Errorf("%w: mentor status line with no header", ErrParse)
			}
			sl, err := parseMentorStatusLine(strings.TrimPrefix(line, "      | "))
			if err != nil {
				return nil, 0, err
			}
			last := &mentors[len(mentors)-1]
			last.StatusLines = append(last.StatusLines, sl)
			i++
			continue
		}
		if strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "    ") {
			trimmed := strings.TrimPrefix(line, "  ")
			m := mentorHeaderPattern.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, 0, fmt.Errorf("%w: malformed MENTORS header %q", ErrParse, line)
			}
			isWIP := strings.Contains(m[2], "#WIP")
			rest := strings.TrimSpace(strings.Replace(m[2], "#WIP", "", 1))
			var profiles []string
			for _, f := range strings.Fields(rest) {
				profiles = append(profiles, f)
			}
			mentors = append(mentors, MentorEntry{EntryID: m[1], Profiles: profiles, IsWIP: isWIP})
			i++
			continue
		}
		break
	}
	return mentors, i, nil
}

func parseMentorStatusLine(text string) (MentorStatusLine, error) {
	m := mentorStatusPattern.FindStringSubmatch(text)
	if m == nil {
		return MentorStatusLine{}, fmt.Errorf("%w: malformed mentor status line %q", ErrParse, text)
	}
	sl := MentorStatusLine{
		Timestamp:   m[1],
		ProfileName: m[2],
		MentorName:  m[3],
		Status:      MentorStatus(m[4]),
	}
	if m[5] != "" {
		sl.SuffixType, sl.Suffix, _ = ParseSuffix(m[5])
	}
	return sl, nil
}
