package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ahmadayed22/University-Project/internal/models"
)

// MeetingRepository handles committee meetings and their entry snapshots.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs the repository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `id, meeting_number, created_at, ins_id, institution_name, speciality, submitted_at, supervisor_id, supervisor_name`

// NextSequence returns the next meeting sequence for the given year,
// parsed from the "N/Year" numbers already recorded.
func (r *MeetingRepository) NextSequence(ctx context.Context, year int) (int, error) {
	const query = `SELECT COALESCE(MAX(SPLIT_PART(meeting_number, '/', 1)::int), 0)
        FROM meetings WHERE EXTRACT(YEAR FROM created_at) = $1`
	var max int
	if err := r.db.GetContext(ctx, &max, query, year); err != nil {
		return 0, fmt.Errorf("compute next meeting sequence: %w", err)
	}
	return max + 1, nil
}

// Exists reports whether a meeting number is already taken.
func (r *MeetingRepository) Exists(ctx context.Context, meetingNumber string) (bool, error) {
	const query = `SELECT 1 FROM meetings WHERE meeting_number = $1 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, meetingNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check meeting number: %w", err)
	}
	return true, nil
}

// Batch snapshots every pending queue entry into the meeting in a single
// transaction, marking the entries processed and the institutions batched.
// Entries are idempotent per (meeting_number, ins_id): a retried batch
// silently skips institutions already in the meeting.
func (r *MeetingRepository) Batch(ctx context.Context, meetingNumber string, pending []models.QueueEntry) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin meeting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const insertEntry = `INSERT INTO meetings
        (id, meeting_number, created_at, ins_id, institution_name, speciality, submitted_at, supervisor_id, supervisor_name)
        SELECT $1, $2, $3, i.ins_id, $4, $5, $6, i.supervisor_id, i.supervisor_name
        FROM institutions i WHERE i.ins_id = $7
        ON CONFLICT (meeting_number, ins_id) DO NOTHING`
	const markProcessed = `UPDATE queue_entries SET processed = TRUE WHERE id = $1`
	const batchState = `UPDATE institutions SET application_state = $2 WHERE ins_id = $1`

	for _, entry := range pending {
		if _, err = tx.ExecContext(ctx, insertEntry,
			uuid.NewString(), meetingNumber, now,
			entry.InstitutionName, entry.Speciality, entry.SubmittedAt, entry.InsID); err != nil {
			return fmt.Errorf("snapshot institution %d into meeting: %w", entry.InsID, err)
		}
		if _, err = tx.ExecContext(ctx, markProcessed, entry.ID); err != nil {
			return fmt.Errorf("mark queue entry processed: %w", err)
		}
		if _, err = tx.ExecContext(ctx, batchState, entry.InsID, models.StateBatched); err != nil {
			return fmt.Errorf("mark institution batched: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit meeting: %w", err)
	}
	return nil
}

// ListEntries returns the institutions batched into one meeting.
func (r *MeetingRepository) ListEntries(ctx context.Context, meetingNumber string) ([]models.MeetingEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings WHERE meeting_number = $1 ORDER BY ins_id`, meetingColumns)
	var entries []models.MeetingEntry
	if err := r.db.SelectContext(ctx, &entries, query, meetingNumber); err != nil {
		return nil, fmt.Errorf("list meeting entries: %w", err)
	}
	return entries, nil
}

// ListAllEntries returns every meeting entry newest meeting first.
func (r *MeetingRepository) ListAllEntries(ctx context.Context) ([]models.MeetingEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings ORDER BY created_at DESC, ins_id`, meetingColumns)
	var entries []models.MeetingEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list meeting applications: %w", err)
	}
	return entries, nil
}

// ListNumbers returns each distinct meeting number with its creation date.
func (r *MeetingRepository) ListNumbers(ctx context.Context) ([]models.MeetingInfo, error) {
	const query = `SELECT meeting_number, MAX(created_at) AS created_at
        FROM meetings GROUP BY meeting_number ORDER BY MAX(created_at) DESC`
	var infos []models.MeetingInfo
	if err := r.db.SelectContext(ctx, &infos, query); err != nil {
		return nil, fmt.Errorf("list meeting numbers: %w", err)
	}
	return infos, nil
}

// LatestEntryFor returns the most recent meeting snapshot for an
// institution.
func (r *MeetingRepository) LatestEntryFor(ctx context.Context, insID int64) (*models.MeetingEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings WHERE ins_id = $1 ORDER BY created_at DESC LIMIT 1`, meetingColumns)
	var entry models.MeetingEntry
	if err := r.db.GetContext(ctx, &entry, query, insID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LatestNumberFor returns the most recent meeting number an institution
// was batched into, or empty when it never reached a meeting.
func (r *MeetingRepository) LatestNumberFor(ctx context.Context, insID int64) (string, error) {
	const query = `SELECT meeting_number FROM meetings WHERE ins_id = $1 ORDER BY created_at DESC LIMIT 1`
	var number string
	if err := r.db.GetContext(ctx, &number, query, insID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("load latest meeting number: %w", err)
	}
	return number, nil
}

// UpdateEntrySupervisor rewrites the supervisor snapshot on one meeting
// entry, ID and name together.
func (r *MeetingRepository) UpdateEntrySupervisor(ctx context.Context, entryID string, supervisorID int64, supervisorName string) error {
	const query = `UPDATE meetings SET supervisor_id = $2, supervisor_name = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, entryID, supervisorID, supervisorName); err != nil {
		return fmt.Errorf("update meeting supervisor: %w", err)
	}
	return nil
}

// MeetingDate returns the creation date of a meeting number.
func (r *MeetingRepository) MeetingDate(ctx context.Context, meetingNumber string) (*time.Time, error) {
	const query = `SELECT MAX(created_at) FROM meetings WHERE meeting_number = $1`
	var date sql.NullTime
	if err := r.db.GetContext(ctx, &date, query, meetingNumber); err != nil {
		return nil, fmt.Errorf("load meeting date: %w", err)
	}
	if !date.Valid {
		return nil, nil
	}
	return &date.Time, nil
}
