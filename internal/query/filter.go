// Package query implements QueryFilter (spec §4.9): an opaque predicate
// over (ChangeSpec, allChangeSpecs) used by the scheduler and the CLI
// --query flag to scope which CLs are processed. The full query language
// and its TUI syntax highlighter are named out of scope in spec.md §1
// (grounded on the now-pruned original_source/.../ace/query/ package, of
// which only query/highlighting.py's tokenizer survived); Parse here
// implements the reduced, implicitly-ANDed subset of that tokenizer's
// vocabulary the scheduler and a non-TUI CLI actually need.
package query

import (
	"strings"

	"github.com/gai-dev/gai/internal/changespec"
)

// Filter is the opaque predicate itself. The scheduler and CLI only ever
// call it; they never inspect its internals (spec §4.9's "the scheduler
// treats it as opaque").
type Filter func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool

// All matches every ChangeSpec, the zero value for an absent --query flag.
func All(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
	return true
}

// And combines filters with short-circuiting conjunction.
func And(filters ...Filter) Filter {
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		for _, f := range filters {
			if !f(cs, all) {
				return false
			}
		}
		return true
	}
}

// Or combines filters with short-circuiting disjunction. An empty Or
// matches nothing, the dual of an empty And.
func Or(filters ...Filter) Filter {
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		for _, f := range filters {
			if f(cs, all) {
				return true
			}
		}
		return false
	}
}

// Not negates f.
func Not(f Filter) Filter {
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		return !f(cs, all)
	}
}

// ByStatus matches a ChangeSpec whose STATUS is one of statuses.
func ByStatus(statuses ...changespec.Status) Filter {
	want := make(map[changespec.Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		return want[changespec.Status(cs.Status)]
	}
}

// ByAncestor matches name itself or any ChangeSpec that transitively
// descends from it via PARENT references (the "^ancestor" shorthand).
func ByAncestor(name string) Filter {
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		return isDescendant(cs, all, name, make(map[string]bool))
	}
}

func isDescendant(cs *changespec.ChangeSpec, all []changespec.ChangeSpec, ancestor string, seen map[string]bool) bool {
	if cs.Name == ancestor {
		return true
	}
	if cs.Parent == "" || seen[cs.Name] {
		return false
	}
	seen[cs.Name] = true
	for i := range all {
		if all[i].Name == cs.Parent {
			return isDescendant(&all[i], all, ancestor, seen)
		}
	}
	return false
}

// ByTerm matches a ChangeSpec whose NAME, DESCRIPTION, KICKSTART, BUG, or
// any commit NOTE contains term (trimmed) as a case-insensitive substring.
// An empty term matches every ChangeSpec.
func ByTerm(term string) Filter {
	needle := strings.ToLower(strings.TrimSpace(term))
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		if needle == "" {
			return true
		}
		fields := []string{cs.Name, cs.Description, cs.Kickstart, cs.Bug}
		for _, c := range cs.Commits {
			fields = append(fields, c.Note)
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
}

// HasRunningAgent matches a ChangeSpec with at least one running_agent
// suffix anywhere (a commit, hook status line, comment, or mentor status
// line), the "@"/"@@@" shorthand.
func HasRunningAgent() Filter {
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		return hasSuffixType(cs, changespec.SuffixRunningAgent)
	}
}

// HasRunningProcess matches a ChangeSpec with at least one running_process
// suffix, the "$"/"$$$" shorthand.
func HasRunningProcess() Filter {
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		return hasSuffixType(cs, changespec.SuffixRunningProcess)
	}
}

// HasErrorSuffix matches a ChangeSpec with at least one error attention
// marker, the "!"/"!!!" shorthand.
func HasErrorSuffix() Filter {
	return func(cs *changespec.ChangeSpec, all []changespec.ChangeSpec) bool {
		return hasSuffixType(cs, changespec.SuffixError)
	}
}

func hasSuffixType(cs *changespec.ChangeSpec, want changespec.SuffixType) bool {
	for _, c := range cs.Commits {
		if c.SuffixType == want {
			return true
		}
	}
	for _, h := range cs.Hooks {
		for _, sl := range h.StatusLines {
			if sl.SuffixType == want {
				return true
			}
		}
	}
	for _, c := range cs.Comments {
		if c.SuffixType == want {
			return true
		}
	}
	for _, m := range cs.Mentors {
		for _, sl := range m.StatusLines {
			if sl.SuffixType == want {
				return true
			}
		}
	}
	return false
}
