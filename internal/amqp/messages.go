package amqp

import (
	"encoding/json"
	"time"
)

// Report event types published on the reporting exchange.
const (
	EventSubmitted      = "report.submitted"
	EventExpenseAdded   = "report.expense_added"
	EventExpenseRemoved = "report.expense_removed"
	EventLedgerUpdated  = "report.ledger_updated"
	EventDeadlineNotice = "report.deadline_notice"
)

// Deadline notice kinds carried by EventDeadlineNotice messages.
const (
	DeadlineApproaching = "approaching"
	DeadlineClosed      = "closed"
)

// ReportEventMessage is the lightweight event published after every completed
// mutation and by the deadline worker. Consumers that need the full snapshot
// re-read it from storage; the message only identifies what happened where.
type ReportEventMessage struct {
	Type          string    `json:"type"`
	PeriodID      string    `json:"period_id"`
	MonthLabel    string    `json:"month_label"`
	EntryID       string    `json:"entry_id,omitempty"`
	CloneCount    int       `json:"clone_count,omitempty"`
	DisplayStatus string    `json:"display_status,omitempty"`
	NoticeKind    string    `json:"notice_kind,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewReportEvent creates a message of the given type with the timestamp set.
func NewReportEvent(eventType, periodID, monthLabel string) *ReportEventMessage {
	return &ReportEventMessage{
		Type:       eventType,
		PeriodID:   periodID,
		MonthLabel: monthLabel,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReportEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportEventFromJSON parses a message from JSON bytes.
func ReportEventFromJSON(data []byte) (*ReportEventMessage, error) {
	var msg ReportEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
