package core

import "time"

// Display statuses derived from stored status and wall-clock time. They are
// never written back into ReportingPeriod.Status.
const (
	DisplayDraft         = "Draft"
	DisplayAutoSubmitted = "Auto-Submitted"
	DisplaySubmitted     = "Submitted"
	DisplayReviewed      = "Reviewed"
)

// IsLocked reports whether the period's submission deadline has passed.
// A period with a malformed label has a zero deadline and never locks.
func IsLocked(p ReportingPeriod, now time.Time) bool {
	deadline := p.Deadline()
	if deadline.IsZero() {
		return false
	}
	return now.After(deadline)
}

// IsFuture reports whether the period's month has not started yet. Future
// periods are read-only: opening one for editing is a disallowed transition,
// not an error state.
func IsFuture(p ReportingPeriod, now time.Time) bool {
	first := p.FirstDay()
	if first.IsZero() {
		return false
	}
	return now.Before(first)
}

// DisplayStatus computes the human-facing status:
//
//	Draft     + unlocked -> "Draft"
//	Draft     + locked   -> "Auto-Submitted"
//	Submitted + unlocked -> "Submitted"
//	Submitted + locked   -> "Reviewed"
func DisplayStatus(p ReportingPeriod, now time.Time) string {
	locked := IsLocked(p, now)
	if p.Status == StatusSubmitted {
		if locked {
			return DisplayReviewed
		}
		return DisplaySubmitted
	}
	if locked {
		return DisplayAutoSubmitted
	}
	return DisplayDraft
}
