package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores an ordered list of strings as a JSON column, matching
// the legacy encoding of decision reasons.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported reasons column type %T", src)
	}
	return json.Unmarshal(raw, l)
}

// DecisionRecord is one append-only entry in an institution's decision log.
// RecordNo is a per-institution ordinal starting at 1; history is never
// mutated, corrections append a new record.
type DecisionRecord struct {
	ID            int64      `db:"id" json:"id"`
	InsID         int64      `db:"ins_id" json:"ins_id"`
	RecordNo      int        `db:"record_no" json:"record_no"`
	DecidedOn     time.Time  `db:"decided_on" json:"decided_on"`
	Accepted      bool       `db:"accepted" json:"accepted"`
	Reasons       StringList `db:"reasons" json:"reasons"`
	Finalized     bool       `db:"finalized" json:"finalized"`
	MeetingNumber *string    `db:"meeting_number" json:"meeting_number,omitempty"`
	Outcome       *string    `db:"outcome" json:"outcome,omitempty"`
}

// OutcomeRecognized is the terminal outcome that locks a record against
// further finalization through the system.
const OutcomeRecognized = "Recognized"

// IsRecognized reports whether the record was finalized as recognized.
func (r DecisionRecord) IsRecognized() bool {
	return r.Outcome != nil && *r.Outcome == OutcomeRecognized
}

// HistoryEntry is a finalized decision enriched with its meeting date for
// the institution-history view.
type HistoryEntry struct {
	DecisionRecord
	MeetingDate *time.Time `db:"meeting_date" json:"meeting_date,omitempty"`
}
