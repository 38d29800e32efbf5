package query

import (
	"strings"

	"github.com/gai-dev/gai/internal/changespec"
)

// statusShorthand mirrors the %d/%m/%s/%r single-letter shorthand
// highlighting.py tokenizes (query/highlighting.py). %w (WIP) and %a
// (Archived) round the set out to cover every Status.
var statusShorthand = map[byte]changespec.Status{
	'w': changespec.StatusWIP,
	'd': changespec.StatusDrafted,
	'm': changespec.StatusMailed,
	's': changespec.StatusSubmitted,
	'r': changespec.StatusReverted,
	'a': changespec.StatusArchived,
}

// Parse builds a Filter from a reduced subset of the vocabulary
// query/highlighting.py tokenizes for the TUI: whitespace-separated terms,
// implicitly ANDed, where each term is one of:
//
//	status:<name>   explicit status property key
//	%d %m %s %r %w %a   single-letter status shorthand
//	^<name>         ancestor shorthand (ByAncestor)
//	@               has a running agent
//	$               has a running process
//	!               has an error suffix
//	!term           negated bare term
//	term            substring term
//
// The AND/OR keywords, parentheses, and quoting that make up the TUI's
// full query grammar are out of scope (spec.md §1 names the query parser
// and syntax highlighter out of scope); this is the minimal evaluator the
// scheduler and a non-TUI CLI --query flag need to scope a CL set.
func Parse(raw string) (Filter, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return All, nil
	}
	filters := make([]Filter, 0, len(fields))
	for _, tok := range fields {
		f, err := parseTerm(tok)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return And(filters...), nil
}

func parseTerm(tok string) (Filter, error) {
	switch {
	case tok == "@":
		return HasRunningAgent(), nil
	case tok == "$":
		return HasRunningProcess(), nil
	case tok == "!":
		return HasErrorSuffix(), nil
	case strings.HasPrefix(tok, "status:"):
		return statusFilter(strings.TrimPrefix(tok, "status:"))
	case strings.HasPrefix(tok, "ancestor:"):
		return ByAncestor(strings.TrimPrefix(tok, "ancestor:")), nil
	case strings.HasPrefix(tok, "^"):
		return ByAncestor(strings.TrimPrefix(tok, "^")), nil
	case len(tok) == 2 && tok[0] == '%':
		if st, ok := statusShorthand[tok[1]]; ok {
			return ByStatus(st), nil
		}
		return nil, &ParseError{Token: tok}
	case strings.HasPrefix(tok, "!") && len(tok) > 1:
		return Not(ByTerm(strings.TrimPrefix(tok, "!"))), nil
	default:
		return ByTerm(tok), nil
	}
}

func statusFilter(name string) (Filter, error) {
	for _, st := range []changespec.Status{
		changespec.StatusWIP, changespec.StatusDrafted, changespec.StatusMailed,
		changespec.StatusSubmitted, changespec.StatusReverted, changespec.StatusArchived,
	} {
		if strings.EqualFold(string(st), name) {
			return ByStatus(st), nil
		}
	}
	return nil, &ParseError{Token: "status:" + name}
}

// ParseError reports a query token Parse could not interpret.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return "query: unrecognized token " + e.Token
}
