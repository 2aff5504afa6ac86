package models

// InterpretedStatus is the rendered reading of one decision record's
// reason list: which degrees the decision covers, which study system,
// and whether the recognized or the rejected letter block applies.
type InterpretedStatus struct {
	DegreePhrase   string   `json:"degree_phrase"`
	SystemPhrase   string   `json:"system_phrase"`
	ShowRecognized bool     `json:"show_recognized"`
	ShowRejected   bool     `json:"show_rejected"`
	Ambiguous      bool     `json:"ambiguous"`
	BulletReasons  []string `json:"bullet_reasons"`
}

// InstitutionStatus is the aggregate dashboard row summarizing every
// historical decision for one institution across both recognition tracks.
type InstitutionStatus struct {
	InsID                 int64            `json:"ins_id"`
	Name                  string           `json:"name"`
	Country               string           `json:"country"`
	Speciality            string           `json:"speciality"`
	SupervisorName        string           `json:"supervisor_name"`
	State                 ApplicationState `json:"state"`
	MeetingNumber         string           `json:"meeting_number"`
	ConventionalStatus    string           `json:"conventional_status"`
	NonConventionalStatus string           `json:"non_conventional_status"`
	FinalStatus           string           `json:"final_status"`
}

// LetterPayload is the ministry recommendation letter, ready for template
// rendering on the client.
type LetterPayload struct {
	RecordID        int64    `json:"record_id"`
	MeetingNumber   string   `json:"meeting_number"`
	MeetingDate     string   `json:"meeting_date"`
	InstitutionName string   `json:"institution_name"`
	Country         string   `json:"country"`
	DegreePhrase    string   `json:"degree_phrase"`
	SystemPhrase    string   `json:"system_phrase"`
	ShowRecognized  bool     `json:"show_recognized"`
	ShowRejected    bool     `json:"show_rejected"`
	BulletReasons   []string `json:"bullet_reasons"`
}
