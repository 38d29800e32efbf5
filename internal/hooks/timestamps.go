package hooks

import (
	"fmt"
	"regexp"
	"time"
)

// TimestampLayout is the `.gp` grammar's on-disk timestamp format
// (YYmmdd_HHMMSS), ported verbatim from
// original_source/.../ace/hooks/timestamps.py::get_current_timestamp.
const TimestampLayout = "060102_150405"

// Now returns the current time formatted in TimestampLayout. A package-level
// var so tests can substitute a fixed clock.
var Now = func() string {
	return time.Now().Format(TimestampLayout)
}

// FormatDuration renders seconds as the source's compact XhYmZs style:
// hours only appear when >0, minutes only when hours or minutes are
// non-zero, seconds always appear.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

var timestampSuffixPattern = regexp.MustCompile(`^\d{6}_\d{6}$`)

// IsTimestampSuffix reports whether s has the exact shape of a
// TimestampLayout-formatted timestamp (13 chars, underscore at position 6).
func IsTimestampSuffix(s string) bool {
	return len(s) == 13 && timestampSuffixPattern.MatchString(s)
}

// ParseTimestamp parses a TimestampLayout string in the local timezone.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}

// AgeSeconds returns how many whole seconds have elapsed since ts (a
// TimestampLayout string), or an error if ts does not parse.
func AgeSeconds(ts string) (int, error) {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return 0, err
	}
	return int(time.Since(t).Seconds()), nil
}

// DurationBetween computes whole-second duration from a start timestamp to
// an end timestamp, both in TimestampLayout.
func DurationBetween(startTS, endTS string) (int, error) {
	start, err := ParseTimestamp(startTS)
	if err != nil {
		return 0, err
	}
	end, err := ParseTimestamp(endTS)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Seconds()), nil
}

// FormatTimestampDisplay wraps ts in the "[timestamp]" display convention
// used in status line rendering.
func FormatTimestampDisplay(ts string) string {
	return "[" + ts + "]"
}
