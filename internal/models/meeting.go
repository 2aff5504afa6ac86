package models

import "time"

// MeetingEntry snapshots one institution batched into a committee meeting.
// The supervisor fields capture the assignment at batching time; entries
// are unique per (meeting_number, ins_id) and never deleted.
type MeetingEntry struct {
	ID              string    `db:"id" json:"id"`
	MeetingNumber   string    `db:"meeting_number" json:"meeting_number"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	InsID           int64     `db:"ins_id" json:"ins_id"`
	InstitutionName string    `db:"institution_name" json:"institution_name"`
	Speciality      string    `db:"speciality" json:"speciality"`
	SubmittedAt     time.Time `db:"submitted_at" json:"submitted_at"`
	SupervisorID    *int64    `db:"supervisor_id" json:"supervisor_id,omitempty"`
	SupervisorName  *string   `db:"supervisor_name" json:"supervisor_name,omitempty"`
}

// MeetingInfo summarizes a meeting for listing: its "N/Year" number and
// when it was created.
type MeetingInfo struct {
	MeetingNumber string    `db:"meeting_number" json:"meeting_number"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
