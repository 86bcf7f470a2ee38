package amqp

import (
	"strings"
	"testing"
)

func TestNewReportEvent(t *testing.T) {
	msg := NewReportEvent(EventExpenseAdded, "p1", "October 2023")
	if msg.Type != EventExpenseAdded {
		t.Fatalf("unexpected type %q", msg.Type)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}

func TestReportEventJSONRoundTrip(t *testing.T) {
	msg := NewReportEvent(EventDeadlineNotice, "p1", "October 2023")
	msg.NoticeKind = DeadlineApproaching
	msg.DisplayStatus = "Draft"

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := ReportEventFromJSON(data)
	if err != nil {
		t.Fatalf("ReportEventFromJSON: %v", err)
	}
	if decoded.Type != msg.Type || decoded.NoticeKind != msg.NoticeKind || decoded.MonthLabel != msg.MonthLabel {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", decoded, msg)
	}
}

func TestReportEventOmitsEmptyFields(t *testing.T) {
	msg := NewReportEvent(EventSubmitted, "p1", "October 2023")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if strings.Contains(string(data), "entry_id") || strings.Contains(string(data), "notice_kind") {
		t.Fatalf("expected empty fields to be omitted: %s", data)
	}
}

func TestReportEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ReportEventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
