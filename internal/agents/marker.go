package agents

import (
	"regexp"
	"strconv"
)

// Completion is the parsed tail of an agent output file (spec §6.5):
// `===WORKFLOW_COMPLETE=== PROPOSAL_ID: <id|-> EXIT_CODE: <n>`. ProposalID is
// empty when the agent did not produce a proposal (e.g. a failed run, or a
// mentor that reports status out of band).
type Completion struct {
	ProposalID string
	ExitCode   int
}

var completionPattern = regexp.MustCompile(
	`===WORKFLOW_COMPLETE=== PROPOSAL_ID: (\S+) EXIT_CODE: (-?\d+)`)

// ParseCompletion scans content for the last completion marker, mirroring
// hooks.ParseCompletion's rfind semantics for retried/appended output.
func ParseCompletion(content string) (*Completion, bool) {
	matches := completionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil, false
	}
	last := matches[len(matches)-1]
	exitCode, err := strconv.Atoi(last[2])
	if err != nil {
		return nil, false
	}
	proposalID := last[1]
	if proposalID == "-" {
		proposalID = ""
	}
	return &Completion{ProposalID: proposalID, ExitCode: exitCode}, true
}
