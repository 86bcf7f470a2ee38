package core

import (
	"testing"
	"time"
)

func TestParseMonthLabel(t *testing.T) {
	year, month, err := ParseMonthLabel("October 2023")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if year != 2023 || month != time.October {
		t.Fatalf("got %d %v", year, month)
	}

	if _, _, err := ParseMonthLabel("Octember 2023"); err == nil {
		t.Fatalf("expected error for bogus month")
	}
	if _, _, err := ParseMonthLabel(""); err == nil {
		t.Fatalf("expected error for empty label")
	}
}

func TestAbsoluteMonth(t *testing.T) {
	oct := AbsoluteMonth(2023, time.October)
	jan := AbsoluteMonth(2024, time.January)
	if jan-oct != 3 {
		t.Fatalf("Oct 2023 -> Jan 2024 should span 3 months, got %d", jan-oct)
	}
}

func TestPeriodDeadline(t *testing.T) {
	p := ReportingPeriod{MonthLabel: "February 2024"} // leap year
	want := time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.UTC)
	if got := p.Deadline(); !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
	if got := p.FirstDay(); !got.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first day = %v", got)
	}
}

func TestPeriodDeadlineMalformedLabel(t *testing.T) {
	p := ReportingPeriod{MonthLabel: "not a month"}
	if !p.Deadline().IsZero() {
		t.Fatalf("malformed label should yield zero deadline")
	}
	if IsLocked(p, time.Now()) {
		t.Fatalf("zero deadline must never lock")
	}
}

func TestNextMonthLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"October 2023", "November 2023"},
		{"December 2023", "January 2024"},
	}
	for _, tc := range cases {
		got, err := NextMonthLabel(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("next of %s = %s, want %s", tc.in, got, tc.want)
		}
	}
}
