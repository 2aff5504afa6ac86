package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadayed22/University-Project/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestDecisionRepositoryAppendAssignsRecordNo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	mock.ExpectQuery("INSERT INTO decision_records").
		WithArgs(int64(10), sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_no"}).AddRow(int64(7), 3))

	record := &models.DecisionRecord{
		InsID:     10,
		DecidedOn: time.Now().UTC(),
		Accepted:  true,
		Reasons:   models.StringList{"Partial: Diplomas Recognized"},
	}
	require.NoError(t, repo.Append(context.Background(), record))
	assert.Equal(t, int64(7), record.ID)
	assert.Equal(t, 3, record.RecordNo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionRepositoryAppendRetriesOnCollision(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	// The first insert races another append and trips the unique
	// (ins_id, record_no) constraint; the retry lands.
	mock.ExpectQuery("INSERT INTO decision_records").
		WithArgs(int64(10), sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery("INSERT INTO decision_records").
		WithArgs(int64(10), sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_no"}).AddRow(int64(8), 4))

	record := &models.DecisionRecord{InsID: 10, DecidedOn: time.Now().UTC()}
	require.NoError(t, repo.Append(context.Background(), record))
	assert.Equal(t, 4, record.RecordNo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionRepositoryAppendGivesUpAfterOneRetry(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	mock.ExpectQuery("INSERT INTO decision_records").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery("INSERT INTO decision_records").
		WillReturnError(&pq.Error{Code: "23505"})

	record := &models.DecisionRecord{InsID: 10, DecidedOn: time.Now().UTC()}
	require.Error(t, repo.Append(context.Background(), record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionRepositoryAppendWithRequeueCommitsTogether(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT append_decision").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO decision_records").
		WithArgs(int64(10), sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_no"}).AddRow(int64(1), 1))
	mock.ExpectExec("INSERT INTO queue_entries").
		WithArgs(sqlmock.AnyArg(), int64(10), "Alpha University", "Engineering", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE institutions SET application_state").
		WithArgs(int64(10), string(models.StateDecided)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	record := &models.DecisionRecord{
		InsID:     10,
		DecidedOn: time.Now().UTC(),
		Accepted:  true,
		Reasons:   models.StringList{"Partial: Diplomas Recognized"},
	}
	entry := &models.QueueEntry{InsID: 10, InstitutionName: "Alpha University", Speciality: "Engineering"}
	require.NoError(t, repo.AppendWithRequeue(context.Background(), record, entry))
	assert.NotEmpty(t, entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionRepositoryAppendWithRequeueRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT append_decision").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO decision_records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_no"}).AddRow(int64(1), 1))
	mock.ExpectExec("INSERT INTO queue_entries").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	record := &models.DecisionRecord{InsID: 10, DecidedOn: time.Now().UTC()}
	entry := &models.QueueEntry{InsID: 10}
	require.Error(t, repo.AppendWithRequeue(context.Background(), record, entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionRepositoryAppendWithRequeueRetriesUnderSavepoint(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	// A colliding record number aborts only the savepoint; the retry
	// re-runs the insert and the rest of the transaction still commits.
	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT append_decision").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO decision_records").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec("ROLLBACK TO SAVEPOINT append_decision").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SAVEPOINT append_decision").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO decision_records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_no"}).AddRow(int64(2), 2))
	mock.ExpectExec("INSERT INTO queue_entries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE institutions SET application_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	record := &models.DecisionRecord{InsID: 10, DecidedOn: time.Now().UTC()}
	entry := &models.QueueEntry{InsID: 10, InstitutionName: "Alpha University", Speciality: "Engineering"}
	require.NoError(t, repo.AppendWithRequeue(context.Background(), record, entry))
	assert.Equal(t, 2, record.RecordNo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionRepositoryFinalizeStampsRecordAndState(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE decision_records").
		WithArgs(int64(5), "2/2026", models.OutcomeRecognized).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE institutions SET application_state").
		WithArgs(int64(10), string(models.StateFinalized)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Finalize(context.Background(), 5, 10, "2/2026", models.OutcomeRecognized))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionRepositoryHistoryOrdersByRecordNo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDecisionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "ins_id", "record_no", "decided_on", "accepted", "reasons", "finalized", "meeting_number", "outcome"}).
		AddRow(int64(1), int64(10), 1, time.Now(), true, []byte(`["Partial: Diplomas Recognized"]`), false, nil, nil).
		AddRow(int64(2), int64(10), 2, time.Now(), false, []byte(`["Quality audit pending"]`), false, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM decision_records WHERE ins_id").
		WithArgs(int64(10)).
		WillReturnRows(rows)

	records, err := repo.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.StringList{"Partial: Diplomas Recognized"}, records[0].Reasons)
	assert.Equal(t, 2, records[1].RecordNo)
	require.NoError(t, mock.ExpectationsWereMet())
}
