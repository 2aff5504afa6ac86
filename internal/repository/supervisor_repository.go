package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ahmadayed22/University-Project/internal/models"
)

// SupervisorRepository handles persistence of supervisors.
type SupervisorRepository struct {
	db *sqlx.DB
}

// NewSupervisorRepository constructs the repository.
func NewSupervisorRepository(db *sqlx.DB) *SupervisorRepository {
	return &SupervisorRepository{db: db}
}

// Create persists a new supervisor.
func (r *SupervisorRepository) Create(ctx context.Context, supervisor *models.Supervisor) error {
	const query = `INSERT INTO supervisors (name, email, phone, speciality, password_hash)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &supervisor.ID, query,
		supervisor.Name, supervisor.Email, supervisor.Phone, supervisor.Speciality, supervisor.PasswordHash); err != nil {
		return fmt.Errorf("create supervisor: %w", err)
	}
	return nil
}

// FindByID returns a supervisor by ID.
func (r *SupervisorRepository) FindByID(ctx context.Context, id int64) (*models.Supervisor, error) {
	const query = `SELECT id, name, email, phone, speciality, password_hash FROM supervisors WHERE id = $1`
	var supervisor models.Supervisor
	if err := r.db.GetContext(ctx, &supervisor, query, id); err != nil {
		return nil, err
	}
	return &supervisor, nil
}

// ListWithWorkloads returns every supervisor with the count of currently
// assigned institutions, in stable ID order.
func (r *SupervisorRepository) ListWithWorkloads(ctx context.Context) ([]models.SupervisorWorkload, error) {
	const query = `SELECT s.id, s.name, s.email, s.phone, s.speciality, s.password_hash,
        COUNT(i.ins_id) AS workload
        FROM supervisors s
        LEFT JOIN institutions i ON i.supervisor_id = s.id
        GROUP BY s.id
        ORDER BY s.id`
	var supervisors []models.SupervisorWorkload
	if err := r.db.SelectContext(ctx, &supervisors, query); err != nil {
		return nil, fmt.Errorf("list supervisors: %w", err)
	}
	return supervisors, nil
}

// Reassignment moves one institution to a replacement supervisor.
type Reassignment struct {
	InsID          int64
	SupervisorID   int64
	SupervisorName string
}

// DeleteWithReassignments removes a supervisor after moving every assigned
// institution (and its meeting snapshots) to a replacement, all within one
// transaction.
func (r *SupervisorRepository) DeleteWithReassignments(ctx context.Context, id int64, reassignments []Reassignment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin supervisor delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateInstitution = `UPDATE institutions SET supervisor_id = $2, supervisor_name = $3 WHERE ins_id = $1`
	const updateMeetings = `UPDATE meetings SET supervisor_id = $2, supervisor_name = $3
        WHERE ins_id = $1 AND supervisor_id = $4`
	for _, move := range reassignments {
		if _, err = tx.ExecContext(ctx, updateInstitution, move.InsID, move.SupervisorID, move.SupervisorName); err != nil {
			return fmt.Errorf("reassign institution %d: %w", move.InsID, err)
		}
		if _, err = tx.ExecContext(ctx, updateMeetings, move.InsID, move.SupervisorID, move.SupervisorName, id); err != nil {
			return fmt.Errorf("restamp meeting entries for institution %d: %w", move.InsID, err)
		}
	}

	const deleteSupervisor = `DELETE FROM supervisors WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deleteSupervisor, id); err != nil {
		return fmt.Errorf("delete supervisor %d: %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit supervisor delete: %w", err)
	}
	return nil
}
