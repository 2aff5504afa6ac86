package models

// Supervisor reviews institution applications. Speciality is a
// comma-joined category list matched by substring during assignment.
type Supervisor struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone"`
	Speciality   string `db:"speciality" json:"speciality"`
	PasswordHash string `db:"password_hash" json:"-"`
}

// SupervisorWorkload pairs a supervisor with the number of institutions
// currently assigned to them.
type SupervisorWorkload struct {
	Supervisor
	Workload int `db:"workload" json:"workload"`
}
