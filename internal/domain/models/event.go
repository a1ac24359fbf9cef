package models

import "time"

// RecordEventType names a change to a daily record.
type RecordEventType string

const (
	RecordCreated RecordEventType = "record.created"
	RecordUpdated RecordEventType = "record.updated"
	RecordDeleted RecordEventType = "record.deleted"
)

// RecordEvent is published after a record change has been committed. It
// carries identifiers only; consumers read the record back from the ledger.
type RecordEvent struct {
	Type       RecordEventType `json:"type"`
	RecordID   string          `json:"recordId"`
	UserID     string          `json:"userId"`
	Date       string          `json:"date,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}
