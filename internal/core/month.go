// Month-label arithmetic for reporting periods.
//
// A period's calendar month is defined entirely by its MonthLabel (e.g.
// "October 2023"). Everything else about the calendar position, the absolute
// month index used by propagation, the first day, and the submission deadline,
// is derived here and never stored.
package core

import (
	"fmt"
	"strings"
	"time"
)

// MonthLabelFormat is the layout of a period's MonthLabel.
const MonthLabelFormat = "January 2006"

// ParseMonthLabel parses a label like "October 2023".
func ParseMonthLabel(label string) (year int, month time.Month, err error) {
	t, err := time.Parse(MonthLabelFormat, strings.TrimSpace(label))
	if err != nil {
		return 0, 0, fmt.Errorf("parse month label %q: %w", label, err)
	}
	return t.Year(), t.Month(), nil
}

// FormatMonthLabel returns the canonical label for a year and month.
func FormatMonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLabelFormat)
}

// AbsoluteMonth converts a year and month to a single monotonically
// increasing index (year*12 + month-1). Propagation diffs are computed on
// this index.
func AbsoluteMonth(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// MonthIndex returns the absolute month index of the period's label, or an
// error if the label is malformed.
func (p ReportingPeriod) MonthIndex() (int, error) {
	year, month, err := ParseMonthLabel(p.MonthLabel)
	if err != nil {
		return 0, err
	}
	return AbsoluteMonth(year, month), nil
}

// FirstDay returns midnight UTC on the first day of the period's month.
// A malformed label yields the zero time.
func (p ReportingPeriod) FirstDay() time.Time {
	year, month, err := ParseMonthLabel(p.MonthLabel)
	if err != nil {
		return time.Time{}
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// Deadline returns the submission deadline: the last instant of the period's
// month (23:59:59.999 UTC). A malformed label yields the zero time, which
// lifecycle evaluation treats as never locked.
func (p ReportingPeriod) Deadline() time.Time {
	first := p.FirstDay()
	if first.IsZero() {
		return time.Time{}
	}
	return first.AddDate(0, 1, 0).Add(-time.Millisecond)
}

// NextMonthLabel returns the label of the month after the given one.
func NextMonthLabel(label string) (string, error) {
	year, month, err := ParseMonthLabel(label)
	if err != nil {
		return "", err
	}
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return next.Format(MonthLabelFormat), nil
}
