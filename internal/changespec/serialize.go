package changespec

import (
	"fmt"
	"strings"
)

// SerializeProjectSpec renders a ProjectSpec back to the `.gp` text grammar.
// The baseline mutation path in this codebase always re-serializes the
// whole file under the lock (see internal/projectfile), matching the
// Contract pseudocode in spec §4.1 literally: parse, mutate the in-memory
// model, serialize, atomic-replace. The source's field-level partial
// rewrite is an optimization to keep git diffs small; skipping it trades a
// noisier commit history for a single, obviously-correct serialization
// path, recorded as a deliberate simplification in DESIGN.md.
func SerializeProjectSpec(proj *ProjectSpec) string {
	var b strings.Builder

	if len(proj.Running) > 0 {
		b.WriteString("RUNNING:\n")
		for _, c := range proj.Running {
			b.WriteString(formatClaimLine(c))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for i, cs := range proj.ChangeSpecs {
		writeChangeSpec(&b, cs)
		if i < len(proj.ChangeSpecs)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatClaimLine(c WorkspaceClaim) string {
	s := fmt.Sprintf("  #%d %s pid=%d cl=%s", c.WorkspaceNum, c.WorkflowName, c.PID, c.CLName)
	if c.ArtifactsTimestamp != "" {
		s += " ts=" + c.ArtifactsTimestamp
	}
	return s
}

func writeChangeSpec(b *strings.Builder, cs ChangeSpec) {
	fmt.Fprintf(b, "NAME: %s\n", cs.Name)

	if cs.Description != "" {
		b.WriteString("DESCRIPTION:\n")
		writeIndentedBlock(b, cs.Description)
	}
	if cs.Kickstart != "" {
		b.WriteString("KICKSTART:\n")
		writeIndentedBlock(b, cs.Kickstart)
	}
	if cs.CL != "" {
		fmt.Fprintf(b, "CL: %s\n", cs.CL)
	}
	if cs.Bug != "" {
		fmt.Fprintf(b, "BUG: %s\n", cs.Bug)
	}
	if cs.Parent != "" {
		fmt.Fprintf(b, "PARENT: %s\n", cs.Parent)
	}

	status := cs.Status
	if cs.ReadyToMail {
		status += " - (!: READY TO MAIL)"
	}
	fmt.Fprintf(b, "STATUS: %s\n", status)

	if len(cs.TestTargets) > 0 {
		b.WriteString("TEST TARGETS:\n")
		for _, t := range cs.TestTargets {
			line := t.Name
			if t.Failed {
				line += " (FAILED)"
			}
			fmt.Fprintf(b, "  %s\n", line)
		}
	}

	if len(cs.Commits) > 0 {
		b.WriteString("HISTORY:\n")
		for _, c := range cs.Commits {
			writeHistoryLine(b, c)
		}
	}

	if len(cs.Hooks) > 0 {
		b.WriteString("HOOKS:\n")
		for _, h := range cs.Hooks {
			fmt.Fprintf(b, "  %s\n", h.Command)
			for _, sl := range h.StatusLines {
				writeHookStatusLine(b, sl)
			}
		}
	}

	if len(cs.Comments) > 0 {
		b.WriteString("COMMENTS:\n")
		for _, c := range cs.Comments {
			line := fmt.Sprintf("  [%s] %s", c.Reviewer, c.FilePath)
			if HasRenderableSuffix(c.SuffixType, c.Suffix, "") {
				line += fmt.Sprintf(" - (%s)", FormatSuffix(c.SuffixType, c.Suffix, ""))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(cs.Mentors) > 0 {
		b.WriteString("MENTORS:\n")
		for _, m := range cs.Mentors {
			header := fmt.Sprintf("  (%s) %s", m.EntryID, strings.Join(m.Profiles, " "))
			if m.IsWIP {
				header += " #WIP"
			}
			b.WriteString(header)
			b.WriteString("\n")
			for _, sl := range m.StatusLines {
				writeMentorStatusLine(b, sl)
			}
		}
	}
}

func writeIndentedBlock(b *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(b, "  %s\n", line)
	}
}

func writeHistoryLine(b *strings.Builder, c CommitEntry) {
	line := fmt.Sprintf("  (%s) %s", c.DisplayNumber, c.Note)
	if c.Diff != "" {
		line += " " + c.Diff
	}
	if c.SuffixType == SuffixBroken {
		line += " - (BROKEN PROPOSAL)"
	} else if HasRenderableSuffix(c.SuffixType, c.Suffix, "") {
		line += fmt.Sprintf(" - (%s)", FormatSuffix(c.SuffixType, c.Suffix, ""))
	}
	b.WriteString(line)
	b.WriteString("\n")
}

func writeHookStatusLine(b *strings.Builder, sl HookStatusLine) {
	line := fmt.Sprintf("      | (%s) [%s] %s", sl.CommitEntryNum, sl.Timestamp, sl.Status)
	if sl.Duration != "" {
		line += fmt.Sprintf(" (%s)", sl.Duration)
	}
	if HasRenderableSuffix(sl.SuffixType, sl.Suffix, sl.Summary) {
		line += fmt.Sprintf(" - (%s)", FormatSuffix(sl.SuffixType, sl.Suffix, sl.Summary))
	}
	b.WriteString(line)
	b.WriteString("\n")
}

func writeMentorStatusLine(b *strings.Builder, sl MentorStatusLine) {
	line := fmt.Sprintf("      | [%s] %s:%s - %s", sl.Timestamp, sl.ProfileName, sl.MentorName, sl.Status)
	if HasRenderableSuffix(sl.SuffixType, sl.Suffix, "") {
		line += fmt.Sprintf(" - (%s)", FormatSuffix(sl.SuffixType, sl.Suffix, ""))
	}
	b.WriteString(line)
	b.WriteString("\n")
}
