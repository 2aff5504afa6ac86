package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

type meetingStoreStub struct {
	sequence    int
	existing    map[string]bool
	entries     map[string][]models.MeetingEntry
	latestEntry map[int64]*models.MeetingEntry
	allEntries  []models.MeetingEntry
	numbers     []models.MeetingInfo

	batched     []string
	batchedWith []models.QueueEntry
	sequenceErr error
	batchErr    error
}

func (s *meetingStoreStub) NextSequence(ctx context.Context, year int) (int, error) {
	return s.sequence, s.sequenceErr
}

func (s *meetingStoreStub) Exists(ctx context.Context, meetingNumber string) (bool, error) {
	return s.existing[meetingNumber], nil
}

func (s *meetingStoreStub) Batch(ctx context.Context, meetingNumber string, pending []models.QueueEntry) error {
	if s.batchErr != nil {
		return s.batchErr
	}
	s.batched = append(s.batched, meetingNumber)
	s.batchedWith = pending
	return nil
}

func (s *meetingStoreStub) LatestEntryFor(ctx context.Context, insID int64) (*models.MeetingEntry, error) {
	if entry, ok := s.latestEntry[insID]; ok {
		return entry, nil
	}
	return nil, sql.ErrNoRows
}

func (s *meetingStoreStub) ListEntries(ctx context.Context, meetingNumber string) ([]models.MeetingEntry, error) {
	return s.entries[meetingNumber], nil
}

func (s *meetingStoreStub) ListAllEntries(ctx context.Context) ([]models.MeetingEntry, error) {
	return s.allEntries, nil
}

func (s *meetingStoreStub) ListNumbers(ctx context.Context) ([]models.MeetingInfo, error) {
	return s.numbers, nil
}

type queueStoreStub struct {
	pending []models.QueueEntry
	reopens []struct {
		InsID          int64
		SupervisorID   int64
		SupervisorName string
	}
	reopenErr error
}

func (s *queueStoreStub) ListPending(ctx context.Context) ([]models.QueueEntry, error) {
	return s.pending, nil
}

func (s *queueStoreStub) CountPending(ctx context.Context) (int, error) {
	return len(s.pending), nil
}

func (s *queueStoreStub) ReopenForInstitution(ctx context.Context, insID, supervisorID int64, supervisorName string) error {
	if s.reopenErr != nil {
		return s.reopenErr
	}
	s.reopens = append(s.reopens, struct {
		InsID          int64
		SupervisorID   int64
		SupervisorName string
	}{insID, supervisorID, supervisorName})
	return nil
}

type latestDecisionStub struct {
	latest *models.DecisionRecord
}

func (s latestDecisionStub) Latest(ctx context.Context, insID int64) (*models.DecisionRecord, error) {
	if s.latest == nil {
		return nil, sql.ErrNoRows
	}
	return s.latest, nil
}

type letterLinkerStub struct {
	links map[int64]string
}

func (s letterLinkerStub) LatestLink(insID int64) (string, bool) {
	link, ok := s.links[insID]
	return link, ok
}

func newMeetingFixture(meetings *meetingStoreStub, queue *queueStoreStub, decisions latestDecisionStub) (*MeetingService, *statusInvalidatorStub) {
	statuses := &statusInvalidatorStub{}
	linker := letterLinkerStub{links: map[int64]string{10: "/api/v1/letters/download?token=abc"}}
	svc := NewMeetingService(meetings, queue, decisions, linker, statuses, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	}
	return svc, statuses
}

func TestCreateMeetingBatchesPending(t *testing.T) {
	meetings := &meetingStoreStub{
		sequence: 4,
		entries: map[string][]models.MeetingEntry{
			"4/2026": {{ID: "e1", MeetingNumber: "4/2026", InsID: 10}},
		},
	}
	queue := &queueStoreStub{pending: []models.QueueEntry{{ID: "q1", InsID: 10}}}
	svc, statuses := newMeetingFixture(meetings, queue, latestDecisionStub{})

	number, entries, err := svc.CreateMeeting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4/2026", number)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"4/2026"}, meetings.batched)
	assert.Equal(t, queue.pending, meetings.batchedWith)
	assert.Equal(t, 1, statuses.calls)
}

func TestCreateMeetingWithNothingPending(t *testing.T) {
	svc, _ := newMeetingFixture(&meetingStoreStub{sequence: 1}, &queueStoreStub{}, latestDecisionStub{})

	_, _, err := svc.CreateMeeting(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateMeetingDuplicateNumberConflicts(t *testing.T) {
	meetings := &meetingStoreStub{
		sequence: 2,
		existing: map[string]bool{"2/2026": true},
	}
	queue := &queueStoreStub{pending: []models.QueueEntry{{ID: "q1", InsID: 10}}}
	svc, _ := newMeetingFixture(meetings, queue, latestDecisionStub{})

	_, _, err := svc.CreateMeeting(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, meetings.batched)
}

func TestPendingApplicationsCarryLetterLinks(t *testing.T) {
	queue := &queueStoreStub{pending: []models.QueueEntry{
		{ID: "q1", InsID: 10},
		{ID: "q2", InsID: 11},
	}}
	svc, _ := newMeetingFixture(&meetingStoreStub{}, queue, latestDecisionStub{})

	pending, err := svc.PendingApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)

	assert.True(t, pending[0].LetterAvailable)
	assert.Equal(t, "/api/v1/letters/download?token=abc", pending[0].LetterLink)
	assert.False(t, pending[1].LetterAvailable)
	assert.Empty(t, pending[1].LetterLink)
}

func snapshotEntry(insID, supervisorID int64, supervisorName string) *models.MeetingEntry {
	return &models.MeetingEntry{
		ID:             "m1",
		MeetingNumber:  "1/2026",
		InsID:          insID,
		SupervisorID:   &supervisorID,
		SupervisorName: &supervisorName,
	}
}

func TestReturnRestampsSupervisorFromMeetingSnapshot(t *testing.T) {
	meetings := &meetingStoreStub{latestEntry: map[int64]*models.MeetingEntry{
		10: snapshotEntry(10, 7, "Dr. Salma"),
	}}
	queue := &queueStoreStub{}
	decisions := latestDecisionStub{latest: &models.DecisionRecord{ID: 1, InsID: 10}}
	svc, statuses := newMeetingFixture(meetings, queue, decisions)

	warned, err := svc.ReturnToSupervisor(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, warned)
	require.Len(t, queue.reopens, 1)
	assert.Equal(t, int64(7), queue.reopens[0].SupervisorID)
	assert.Equal(t, "Dr. Salma", queue.reopens[0].SupervisorName)
	assert.Equal(t, 1, statuses.calls)
}

func TestReturnToSupervisorWithoutDecision(t *testing.T) {
	meetings := &meetingStoreStub{latestEntry: map[int64]*models.MeetingEntry{
		10: snapshotEntry(10, 7, "Dr. Salma"),
	}}
	svc, _ := newMeetingFixture(meetings, &queueStoreStub{}, latestDecisionStub{})

	warned, err := svc.ReturnToSupervisor(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, warned)
}

func TestReturnWithoutMeetingEntry(t *testing.T) {
	queue := &queueStoreStub{}
	svc, _ := newMeetingFixture(&meetingStoreStub{}, queue, latestDecisionStub{})

	_, err := svc.ReturnToSupervisor(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, queue.reopens)
}

func TestReturnSnapshotWithoutSupervisor(t *testing.T) {
	meetings := &meetingStoreStub{latestEntry: map[int64]*models.MeetingEntry{
		10: {ID: "m1", MeetingNumber: "1/2026", InsID: 10},
	}}
	queue := &queueStoreStub{}
	svc, _ := newMeetingFixture(meetings, queue, latestDecisionStub{})

	_, err := svc.ReturnToSupervisor(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, queue.reopens)
}

func TestApplicationRoundTripThroughSecondMeeting(t *testing.T) {
	meetings := &meetingStoreStub{
		sequence: 1,
		entries: map[string][]models.MeetingEntry{
			"1/2026": {*snapshotEntry(10, 7, "Dr. Salma")},
			"2/2026": {{ID: "m2", MeetingNumber: "2/2026", InsID: 10}},
		},
	}
	queue := &queueStoreStub{pending: []models.QueueEntry{{ID: "q1", InsID: 10}}}
	svc, _ := newMeetingFixture(meetings, queue, latestDecisionStub{})

	number, _, err := svc.CreateMeeting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1/2026", number)

	// Batched: nothing pending, so a second meeting right away conflicts.
	queue.pending = nil
	meetings.sequence = 2
	_, _, err = svc.CreateMeeting(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Returning re-opens the application under the snapshot supervisor.
	meetings.latestEntry = map[int64]*models.MeetingEntry{10: snapshotEntry(10, 7, "Dr. Salma")}
	_, err = svc.ReturnToSupervisor(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, queue.reopens, 1)
	assert.Equal(t, int64(7), queue.reopens[0].SupervisorID)

	// The re-submitted application lands in the next meeting.
	queue.pending = []models.QueueEntry{{ID: "q2", InsID: 10}}
	number, entries, err := svc.CreateMeeting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2/2026", number)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(10), entries[0].InsID)
	assert.Equal(t, []string{"1/2026", "2/2026"}, meetings.batched)
}

func TestMeetingEntriesUnknownMeeting(t *testing.T) {
	svc, _ := newMeetingFixture(&meetingStoreStub{}, &queueStoreStub{}, latestDecisionStub{})

	_, err := svc.MeetingEntries(context.Background(), "9/2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
