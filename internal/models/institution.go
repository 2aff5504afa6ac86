package models

// ApplicationState tracks an institution's position in the recognition
// workflow. The legacy system derived this implicitly from column checks;
// here it is an explicit field advanced by the workflow services.
type ApplicationState string

// Workflow states. ReturnToSupervisor re-opens a batched or finalized
// application back to QUEUED.
const (
	StateNoApplication ApplicationState = "NO_APPLICATION"
	StateQueued        ApplicationState = "QUEUED"
	StateBatched       ApplicationState = "BATCHED"
	StateDecided       ApplicationState = "DECIDED"
	StateFinalized     ApplicationState = "FINALIZED"
)

var stateTransitions = map[ApplicationState][]ApplicationState{
	StateNoApplication: {StateQueued},
	StateQueued:        {StateQueued, StateBatched},
	StateBatched:       {StateQueued, StateDecided},
	StateDecided:       {StateQueued, StateDecided, StateFinalized},
	StateFinalized:     {StateQueued},
}

// CanTransition reports whether moving from one workflow state to another
// is legal.
func (s ApplicationState) CanTransition(to ApplicationState) bool {
	for _, next := range stateTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Institution is a university or college applying for ministry recognition.
// SupervisorID and SupervisorName are denormalized together and must only
// ever change in the same statement.
type Institution struct {
	InsID          int64            `db:"ins_id" json:"ins_id"`
	Name           string           `db:"name" json:"name"`
	Country        string           `db:"country" json:"country"`
	Speciality     string           `db:"speciality" json:"speciality"`
	SupervisorID   *int64           `db:"supervisor_id" json:"supervisor_id,omitempty"`
	SupervisorName *string          `db:"supervisor_name" json:"supervisor_name,omitempty"`
	State          ApplicationState `db:"application_state" json:"application_state"`
}

// SupervisorAssigned reports whether the institution currently has a
// supervisor.
func (i Institution) SupervisorAssigned() bool {
	return i.SupervisorID != nil && *i.SupervisorID != 0
}
