package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ahmadayed22/University-Project/internal/models"
)

// InstitutionRepository handles persistence of institutions.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository constructs the repository.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// FindByID returns an institution by its ID.
func (r *InstitutionRepository) FindByID(ctx context.Context, insID int64) (*models.Institution, error) {
	const query = `SELECT ins_id, name, country, speciality, supervisor_id, supervisor_name, application_state
        FROM institutions WHERE ins_id = $1`
	var institution models.Institution
	if err := r.db.GetContext(ctx, &institution, query, insID); err != nil {
		return nil, err
	}
	return &institution, nil
}

// Create registers a new institution with no application yet.
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	if institution.State == "" {
		institution.State = models.StateNoApplication
	}
	const query = `INSERT INTO institutions (name, country, speciality, application_state)
        VALUES ($1, $2, $3, $4) RETURNING ins_id`
	if err := r.db.GetContext(ctx, &institution.InsID, query,
		institution.Name, institution.Country, institution.Speciality, institution.State); err != nil {
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}

// List returns every institution ordered by ID.
func (r *InstitutionRepository) List(ctx context.Context) ([]models.Institution, error) {
	const query = `SELECT ins_id, name, country, speciality, supervisor_id, supervisor_name, application_state
        FROM institutions ORDER BY ins_id`
	var institutions []models.Institution
	if err := r.db.SelectContext(ctx, &institutions, query); err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return institutions, nil
}

// ListBySupervisor returns institutions currently assigned to a supervisor.
func (r *InstitutionRepository) ListBySupervisor(ctx context.Context, supervisorID int64) ([]models.Institution, error) {
	const query = `SELECT ins_id, name, country, speciality, supervisor_id, supervisor_name, application_state
        FROM institutions WHERE supervisor_id = $1 ORDER BY ins_id`
	var institutions []models.Institution
	if err := r.db.SelectContext(ctx, &institutions, query, supervisorID); err != nil {
		return nil, fmt.Errorf("list supervisor institutions: %w", err)
	}
	return institutions, nil
}

// UpdateSupervisor rewrites the denormalized supervisor pair in a single
// statement. The ID is never written without the name.
func (r *InstitutionRepository) UpdateSupervisor(ctx context.Context, insID, supervisorID int64, supervisorName string) error {
	const query = `UPDATE institutions SET supervisor_id = $2, supervisor_name = $3 WHERE ins_id = $1`
	result, err := r.db.ExecContext(ctx, query, insID, supervisorID, supervisorName)
	if err != nil {
		return fmt.Errorf("update institution supervisor: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update institution supervisor: institution %d not found", insID)
	}
	return nil
}

// UpdateState advances the workflow state.
func (r *InstitutionRepository) UpdateState(ctx context.Context, insID int64, state models.ApplicationState) error {
	const query = `UPDATE institutions SET application_state = $2 WHERE ins_id = $1`
	if _, err := r.db.ExecContext(ctx, query, insID, state); err != nil {
		return fmt.Errorf("update institution state: %w", err)
	}
	return nil
}
