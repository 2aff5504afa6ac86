package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ahmadayed22/University-Project/internal/models"
)

// QueueRepository handles the pending-application queue.
type QueueRepository struct {
	db *sqlx.DB
}

// NewQueueRepository constructs the repository.
func NewQueueRepository(db *sqlx.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// Insert adds an unprocessed queue entry. Re-submissions insert fresh
// entries; queue history is never rewritten.
func (r *QueueRepository) Insert(ctx context.Context, entry *models.QueueEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO queue_entries (id, ins_id, institution_name, speciality, submitted_at, processed)
        VALUES (:id, :ins_id, :institution_name, :speciality, :submitted_at, FALSE)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("enqueue application: %w", err)
	}
	return nil
}

// EnqueueWithAssignment enqueues a submission and stamps the chosen
// supervisor onto the institution in one transaction.
func (r *QueueRepository) EnqueueWithAssignment(ctx context.Context, entry *models.QueueEntry, supervisorID int64, supervisorName string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submission transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = time.Now().UTC()
	}
	const insertEntry = `INSERT INTO queue_entries (id, ins_id, institution_name, speciality, submitted_at, processed)
        VALUES ($1, $2, $3, $4, $5, FALSE)`
	if _, err = tx.ExecContext(ctx, insertEntry,
		entry.ID, entry.InsID, entry.InstitutionName, entry.Speciality, entry.SubmittedAt); err != nil {
		return fmt.Errorf("enqueue application: %w", err)
	}

	const assign = `UPDATE institutions SET supervisor_id = $2, supervisor_name = $3, application_state = $4
        WHERE ins_id = $1`
	if _, err = tx.ExecContext(ctx, assign, entry.InsID, supervisorID, supervisorName, models.StateQueued); err != nil {
		return fmt.Errorf("assign supervisor on submit: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit submission: %w", err)
	}
	return nil
}

// ListPending returns unprocessed entries oldest-first.
func (r *QueueRepository) ListPending(ctx context.Context) ([]models.QueueEntry, error) {
	const query = `SELECT id, ins_id, institution_name, speciality, submitted_at, processed
        FROM queue_entries WHERE NOT processed ORDER BY submitted_at ASC`
	var entries []models.QueueEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}
	return entries, nil
}

// CountPending returns the number of unprocessed entries.
func (r *QueueRepository) CountPending(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM queue_entries WHERE NOT processed`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count pending applications: %w", err)
	}
	return count, nil
}

// ReopenForInstitution restores the supervisor snapshot on the
// institution, drops any stray pending entry, and re-opens the workflow,
// all in one transaction. Decision history is untouched.
func (r *QueueRepository) ReopenForInstitution(ctx context.Context, insID, supervisorID int64, supervisorName string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin return transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const restamp = `UPDATE institutions SET supervisor_id = $2, supervisor_name = $3, application_state = $4
        WHERE ins_id = $1`
	if _, err = tx.ExecContext(ctx, restamp, insID, supervisorID, supervisorName, models.StateQueued); err != nil {
		return fmt.Errorf("restamp institution supervisor: %w", err)
	}

	const dropPending = `DELETE FROM queue_entries WHERE ins_id = $1 AND NOT processed`
	if _, err = tx.ExecContext(ctx, dropPending, insID); err != nil {
		return fmt.Errorf("drop pending entries: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit return: %w", err)
	}
	return nil
}
