package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupervisorRepositoryDeleteWithReassignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupervisorRepository(db)

	moves := []Reassignment{
		{InsID: 10, SupervisorID: 3, SupervisorName: "Dr. Salem"},
		{InsID: 11, SupervisorID: 4, SupervisorName: "Dr. Huda"},
	}

	mock.ExpectBegin()
	for _, move := range moves {
		mock.ExpectExec("UPDATE institutions SET supervisor_id").
			WithArgs(move.InsID, move.SupervisorID, move.SupervisorName).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE meetings SET supervisor_id").
			WithArgs(move.InsID, move.SupervisorID, move.SupervisorName, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("DELETE FROM supervisors").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithReassignments(context.Background(), 2, moves))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSupervisorRepositoryDeleteRollsBackOnReassignFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupervisorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE institutions SET supervisor_id").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	moves := []Reassignment{{InsID: 10, SupervisorID: 3, SupervisorName: "Dr. Salem"}}
	require.Error(t, repo.DeleteWithReassignments(context.Background(), 2, moves))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSupervisorRepositoryDeleteWithoutAssignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupervisorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM supervisors").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithReassignments(context.Background(), 7, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
