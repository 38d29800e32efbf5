package changespec

import "errors"

// Sentinel errors for the changespec package. Using sentinels instead of
// ad-hoc fmt.Errorf allows callers to match with errors.Is.
var (
	// ErrParse is returned when a project file's text cannot be parsed into
	// the ProjectSpec grammar.
	ErrParse = errors.New("parse error")

	// ErrNotFound is returned when a named ChangeSpec does not exist in a
	// ProjectSpec.
	ErrNotFound = errors.New("changespec not found")

	// ErrDuplicateName is returned when a mutation would create two
	// ChangeSpecs with the same name in one project file.
	ErrDuplicateName = errors.New("duplicate changespec name")

	// ErrInvalidTransition is returned when a validated status transition is
	// not present in the adjacency table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNonTerminalChild is returned when a revert/archive is refused
	// because a child ChangeSpec is not in an appropriate terminal status.
	ErrNonTerminalChild = errors.New("non-terminal child references this changespec as parent")

	// ErrNoCL is returned when revert is attempted on a ChangeSpec with no
	// mailed CL URL.
	ErrNoCL = errors.New("changespec has no CL to revert")
)
