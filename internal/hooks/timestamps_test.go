package hooks

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{5, "5s"},
		{65, "1m5s"},
		{3661, "1h1m1s"},
		{0, "0s"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.seconds); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestIsTimestampSuffix(t *testing.T) {
	if !IsTimestampSuffix("260130_010101") {
		t.Errorf("expected valid timestamp to match")
	}
	if IsTimestampSuffix("notatimestamp") {
		t.Errorf("expected non-timestamp to not match")
	}
	if IsTimestampSuffix("2601300_10101") {
		t.Errorf("expected malformed underscore position to not match")
	}
}

func TestDurationBetween(t *testing.T) {
	d, err := DurationBetween("260130_010000", "260130_010130")
	if err != nil {
		t.Fatalf("DurationBetween: %v", err)
	}
	if d != 90 {
		t.Fatalf("DurationBetween = %d, want 90", d)
	}
}

func TestFormatTimestampDisplay(t *testing.T) {
	if got := FormatTimestampDisplay("260130_010101"); got != "[260130_010101]" {
		t.Fatalf("FormatTimestampDisplay = %q", got)
	}
}
