package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ahmadayed22/University-Project/internal/models"
)

const uniqueViolation = "23505"

// DecisionRepository handles the append-only decision log.
type DecisionRepository struct {
	db *sqlx.DB
}

// NewDecisionRepository constructs the repository.
func NewDecisionRepository(db *sqlx.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// decisionColumns is the canonical select list for decision records.
const decisionColumns = `id, ins_id, record_no, decided_on, accepted, reasons, finalized, meeting_number, outcome`

// Append inserts a new decision record, assigning the next per-institution
// record number inside the insert itself. A unique (ins_id, record_no)
// constraint backs the subselect; concurrent appends that collide are
// retried once.
func (r *DecisionRepository) Append(ctx context.Context, record *models.DecisionRecord) error {
	const query = `INSERT INTO decision_records (ins_id, record_no, decided_on, accepted, reasons)
        SELECT $1, COALESCE(MAX(record_no), 0) + 1, $2, $3, $4
        FROM decision_records WHERE ins_id = $1
        RETURNING id, record_no`

	for attempt := 0; ; attempt++ {
		err := r.db.QueryRowxContext(ctx, query,
			record.InsID, record.DecidedOn, record.Accepted, record.Reasons).
			Scan(&record.ID, &record.RecordNo)
		if err == nil {
			return nil
		}
		var pqErr *pq.Error
		if attempt == 0 && errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			continue
		}
		return fmt.Errorf("append decision record: %w", err)
	}
}

// AppendWithRequeue appends a decision and, in the same transaction,
// re-enqueues the institution for the next committee meeting and marks it
// decided.
func (r *DecisionRepository) AppendWithRequeue(ctx context.Context, record *models.DecisionRecord, entry *models.QueueEntry) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The insert runs under a savepoint: a unique-violation aborts only
	// the savepoint, not the surrounding transaction, so the retry can
	// re-execute and the queue and state writes still commit with it.
	const insertDecision = `INSERT INTO decision_records (ins_id, record_no, decided_on, accepted, reasons)
        SELECT $1, COALESCE(MAX(record_no), 0) + 1, $2, $3, $4
        FROM decision_records WHERE ins_id = $1
        RETURNING id, record_no`
	for attempt := 0; ; attempt++ {
		if _, err = tx.ExecContext(ctx, `SAVEPOINT append_decision`); err != nil {
			return fmt.Errorf("set append savepoint: %w", err)
		}
		err = tx.QueryRowxContext(ctx, insertDecision,
			record.InsID, record.DecidedOn, record.Accepted, record.Reasons).
			Scan(&record.ID, &record.RecordNo)
		if err == nil {
			break
		}
		var pqErr *pq.Error
		if attempt == 0 && errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			if _, err = tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT append_decision`); err != nil {
				return fmt.Errorf("roll back append savepoint: %w", err)
			}
			continue
		}
		return fmt.Errorf("append decision record: %w", err)
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = time.Now().UTC()
	}
	const insertQueue = `INSERT INTO queue_entries (id, ins_id, institution_name, speciality, submitted_at, processed)
        VALUES ($1, $2, $3, $4, $5, FALSE)`
	if _, err = tx.ExecContext(ctx, insertQueue,
		entry.ID, entry.InsID, entry.InstitutionName, entry.Speciality, entry.SubmittedAt); err != nil {
		return fmt.Errorf("requeue institution %d: %w", entry.InsID, err)
	}

	const updateState = `UPDATE institutions SET application_state = $2 WHERE ins_id = $1`
	if _, err = tx.ExecContext(ctx, updateState, record.InsID, models.StateDecided); err != nil {
		return fmt.Errorf("mark institution decided: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}
	return nil
}

// Latest returns the most recent decision record for an institution.
func (r *DecisionRepository) Latest(ctx context.Context, insID int64) (*models.DecisionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM decision_records WHERE ins_id = $1 ORDER BY record_no DESC LIMIT 1`, decisionColumns)
	var record models.DecisionRecord
	if err := r.db.GetContext(ctx, &record, query, insID); err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns every decision record for an institution in creation
// order.
func (r *DecisionRepository) History(ctx context.Context, insID int64) ([]models.DecisionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM decision_records WHERE ins_id = $1 ORDER BY record_no ASC`, decisionColumns)
	var records []models.DecisionRecord
	if err := r.db.SelectContext(ctx, &records, query, insID); err != nil {
		return nil, fmt.Errorf("load decision history: %w", err)
	}
	return records, nil
}

// FinalizedHistory returns finalized records newest-first, each joined with
// the creation date of the meeting that finalized it.
func (r *DecisionRepository) FinalizedHistory(ctx context.Context, insID int64) ([]models.HistoryEntry, error) {
	const query = `SELECT d.id, d.ins_id, d.record_no, d.decided_on, d.accepted, d.reasons,
        d.finalized, d.meeting_number, d.outcome,
        (SELECT MAX(m.created_at) FROM meetings m WHERE m.meeting_number = d.meeting_number) AS meeting_date
        FROM decision_records d
        WHERE d.ins_id = $1 AND d.finalized
        ORDER BY d.record_no DESC`
	var entries []models.HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, insID); err != nil {
		return nil, fmt.Errorf("load finalized history: %w", err)
	}
	return entries, nil
}

// ListAll returns every decision record grouped by institution in record
// order, for the aggregate status dashboard.
func (r *DecisionRepository) ListAll(ctx context.Context) ([]models.DecisionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM decision_records ORDER BY ins_id, record_no ASC`, decisionColumns)
	var records []models.DecisionRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list decision records: %w", err)
	}
	return records, nil
}

// Finalize stamps a record with its meeting number and outcome and, in the
// same transaction, moves the institution to the finalized state.
func (r *DecisionRepository) Finalize(ctx context.Context, recordID int64, insID int64, meetingNumber, outcome string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finalize transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateRecord = `UPDATE decision_records
        SET finalized = TRUE, meeting_number = $2, outcome = $3
        WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateRecord, recordID, meetingNumber, outcome); err != nil {
		return fmt.Errorf("finalize decision record %d: %w", recordID, err)
	}

	const updateState = `UPDATE institutions SET application_state = $2 WHERE ins_id = $1`
	if _, err = tx.ExecContext(ctx, updateState, insID, models.StateFinalized); err != nil {
		return fmt.Errorf("mark institution finalized: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize: %w", err)
	}
	return nil
}
