package models

import "time"

// QueueEntry is a pending application awaiting committee review. Multiple
// entries per institution may exist; only the latest unprocessed one
// matters for batching.
type QueueEntry struct {
	ID              string    `db:"id" json:"id"`
	InsID           int64     `db:"ins_id" json:"ins_id"`
	InstitutionName string    `db:"institution_name" json:"institution_name"`
	Speciality      string    `db:"speciality" json:"speciality"`
	SubmittedAt     time.Time `db:"submitted_at" json:"submitted_at"`
	Processed       bool      `db:"processed" json:"processed"`
}

// PendingApplication is a queue entry decorated with the latest committee
// letter link, when one exists.
type PendingApplication struct {
	QueueEntry
	LetterAvailable bool   `json:"letter_available"`
	LetterLink      string `json:"letter_link,omitempty"`
}
