package query

import "strings"

// TargetsReverted implements spec §4.9's one sanctioned inspection of an
// otherwise-opaque query: whether raw explicitly names Reverted CLs. The
// scheduler defaults to hiding Reverted CLs from its working set and lifts
// that default only when a query asks for them by name, via "status:",
// "%r", or the bare word "reverted".
func TargetsReverted(raw string) bool {
	lower := strings.ToLower(raw)
	for _, needle := range []string{"status:reverted", "%r", "reverted"} {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
