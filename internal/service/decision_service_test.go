package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

type decisionStoreStub struct {
	latest    *models.DecisionRecord
	history   []models.DecisionRecord
	finalized []models.HistoryEntry

	appended      []*models.DecisionRecord
	appendedEntry *models.QueueEntry
	finalizeCalls []struct {
		RecordID      int64
		InsID         int64
		MeetingNumber string
		Outcome       string
	}
	appendErr   error
	finalizeErr error
}

func (s *decisionStoreStub) AppendWithRequeue(ctx context.Context, record *models.DecisionRecord, entry *models.QueueEntry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	record.ID = int64(len(s.appended) + 1)
	record.RecordNo = len(s.appended) + 1
	s.appended = append(s.appended, record)
	s.appendedEntry = entry
	return nil
}

func (s *decisionStoreStub) Latest(ctx context.Context, insID int64) (*models.DecisionRecord, error) {
	if s.latest == nil {
		return nil, sql.ErrNoRows
	}
	return s.latest, nil
}

func (s *decisionStoreStub) History(ctx context.Context, insID int64) ([]models.DecisionRecord, error) {
	return s.history, nil
}

func (s *decisionStoreStub) FinalizedHistory(ctx context.Context, insID int64) ([]models.HistoryEntry, error) {
	return s.finalized, nil
}

func (s *decisionStoreStub) Finalize(ctx context.Context, recordID int64, insID int64, meetingNumber, outcome string) error {
	if s.finalizeErr != nil {
		return s.finalizeErr
	}
	s.finalizeCalls = append(s.finalizeCalls, struct {
		RecordID      int64
		InsID         int64
		MeetingNumber string
		Outcome       string
	}{recordID, insID, meetingNumber, outcome})
	return nil
}

type institutionFinderStub struct {
	byID map[int64]*models.Institution
}

func (s institutionFinderStub) FindByID(ctx context.Context, insID int64) (*models.Institution, error) {
	if inst, ok := s.byID[insID]; ok {
		return inst, nil
	}
	return nil, sql.ErrNoRows
}

type meetingCheckerStub struct {
	existing map[string]bool
}

func (s meetingCheckerStub) Exists(ctx context.Context, meetingNumber string) (bool, error) {
	return s.existing[meetingNumber], nil
}

type letterSchedulerStub struct {
	scheduled []models.DecisionRecord
	err       error
}

func (s *letterSchedulerStub) Schedule(record models.DecisionRecord, institution models.Institution) error {
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, record)
	return nil
}

type statusInvalidatorStub struct {
	calls int
}

func (s *statusInvalidatorStub) InvalidateStatuses(ctx context.Context) { s.calls++ }

func newDecisionFixture(store *decisionStoreStub) (*DecisionService, *letterSchedulerStub, *statusInvalidatorStub) {
	letters := &letterSchedulerStub{}
	statuses := &statusInvalidatorStub{}
	institutions := institutionFinderStub{byID: map[int64]*models.Institution{
		10: {InsID: 10, Name: "Alpha University", Country: "Jordan", Speciality: "Engineering"},
	}}
	meetings := meetingCheckerStub{existing: map[string]bool{"1/2026": true}}
	svc := NewDecisionService(store, institutions, meetings, letters, statuses, validator.New(), zap.NewNop())
	return svc, letters, statuses
}

func TestAppendRecordsDecisionAndRequeues(t *testing.T) {
	store := &decisionStoreStub{}
	svc, _, statuses := newDecisionFixture(store)

	record, err := svc.Append(context.Background(), AppendDecisionRequest{
		InsID:    10,
		Accepted: true,
		Reasons:  []string{"Partial: Diplomas Recognized", "Quality audit pending"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, record.RecordNo)
	assert.False(t, record.DecidedOn.IsZero())

	require.NotNil(t, store.appendedEntry)
	assert.Equal(t, "Alpha University", store.appendedEntry.InstitutionName)
	assert.Equal(t, 1, statuses.calls)
}

func TestAppendRequiresReasons(t *testing.T) {
	svc, _, _ := newDecisionFixture(&decisionStoreStub{})

	_, err := svc.Append(context.Background(), AppendDecisionRequest{InsID: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppendUnknownInstitution(t *testing.T) {
	svc, _, _ := newDecisionFixture(&decisionStoreStub{})

	_, err := svc.Append(context.Background(), AppendDecisionRequest{
		InsID:   99,
		Reasons: []string{"Partial: Diplomas Recognized"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAppendNonConventionalMergesPriorReasons(t *testing.T) {
	store := &decisionStoreStub{latest: &models.DecisionRecord{
		InsID:    10,
		RecordNo: 1,
		Reasons: models.StringList{
			"Non-Conventional Status: Rejected",
			"Partial: Diplomas Recognized",
			"  Campus visit outstanding  ",
		},
	}}
	svc, _, _ := newDecisionFixture(store)

	record, err := svc.Append(context.Background(), AppendDecisionRequest{
		InsID:    10,
		Accepted: true,
		Reasons:  []string{"Non-Conventional Status: Recognized"},
	})
	require.NoError(t, err)

	// The new verdict replaces the old non-conventional token while the
	// conventional reasons survive byte for byte, spacing included.
	assert.Equal(t, models.StringList{
		"Non-Conventional Status: Recognized",
		"Partial: Diplomas Recognized",
		"  Campus visit outstanding  ",
	}, record.Reasons)
}

func TestAppendNonConventionalWithoutPrior(t *testing.T) {
	svc, _, _ := newDecisionFixture(&decisionStoreStub{})

	record, err := svc.Append(context.Background(), AppendDecisionRequest{
		InsID:   10,
		Reasons: []string{"Non-Conventional Status: Recognized"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"Non-Conventional Status: Recognized"}, record.Reasons)
}

func TestFinalizeStampsLatestRecord(t *testing.T) {
	store := &decisionStoreStub{latest: &models.DecisionRecord{ID: 5, InsID: 10, RecordNo: 2}}
	svc, letters, statuses := newDecisionFixture(store)

	record, err := svc.Finalize(context.Background(), FinalizeRequest{
		InsID:         10,
		MeetingNumber: "1/2026",
		Outcome:       models.OutcomeRecognized,
	})
	require.NoError(t, err)
	assert.True(t, record.Finalized)
	require.Len(t, store.finalizeCalls, 1)
	assert.Equal(t, int64(5), store.finalizeCalls[0].RecordID)
	assert.Equal(t, "1/2026", store.finalizeCalls[0].MeetingNumber)

	require.Len(t, letters.scheduled, 1)
	assert.Equal(t, 1, statuses.calls)
}

func TestFinalizeRecognizedRecordAlwaysConflicts(t *testing.T) {
	outcome := models.OutcomeRecognized
	store := &decisionStoreStub{latest: &models.DecisionRecord{
		ID: 5, InsID: 10, Finalized: true, Outcome: &outcome,
	}}
	svc, _, _ := newDecisionFixture(store)

	for _, next := range []string{models.OutcomeRecognized, "Rejected"} {
		_, err := svc.Finalize(context.Background(), FinalizeRequest{
			InsID:         10,
			MeetingNumber: "1/2026",
			Outcome:       next,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrFinalized.Code, appErrors.FromError(err).Code)
	}
	assert.Empty(t, store.finalizeCalls)
}

func TestFinalizeRejectedRecordCanBeSuperseded(t *testing.T) {
	outcome := "Rejected"
	store := &decisionStoreStub{latest: &models.DecisionRecord{
		ID: 5, InsID: 10, Finalized: true, Outcome: &outcome,
	}}
	svc, _, _ := newDecisionFixture(store)

	_, err := svc.Finalize(context.Background(), FinalizeRequest{
		InsID:         10,
		MeetingNumber: "1/2026",
		Outcome:       models.OutcomeRecognized,
	})
	require.NoError(t, err)
	require.Len(t, store.finalizeCalls, 1)
}

func TestFinalizeUnknownMeeting(t *testing.T) {
	store := &decisionStoreStub{latest: &models.DecisionRecord{ID: 5, InsID: 10}}
	svc, _, _ := newDecisionFixture(store)

	_, err := svc.Finalize(context.Background(), FinalizeRequest{
		InsID:         10,
		MeetingNumber: "9/2026",
		Outcome:       models.OutcomeRecognized,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFinalizeInvalidOutcome(t *testing.T) {
	svc, _, _ := newDecisionFixture(&decisionStoreStub{})

	_, err := svc.Finalize(context.Background(), FinalizeRequest{
		InsID:         10,
		MeetingNumber: "1/2026",
		Outcome:       "Maybe",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFinalizeSurvivesLetterFailure(t *testing.T) {
	store := &decisionStoreStub{latest: &models.DecisionRecord{ID: 5, InsID: 10}}
	svc, letters, _ := newDecisionFixture(store)
	letters.err = context.DeadlineExceeded

	record, err := svc.Finalize(context.Background(), FinalizeRequest{
		InsID:         10,
		MeetingNumber: "1/2026",
		Outcome:       models.OutcomeRecognized,
	})
	require.NoError(t, err)
	assert.True(t, record.Finalized)
}

func TestAppendUsesProvidedDecisionDate(t *testing.T) {
	store := &decisionStoreStub{}
	svc, _, _ := newDecisionFixture(store)

	decidedOn := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	record, err := svc.Append(context.Background(), AppendDecisionRequest{
		InsID:     10,
		Reasons:   []string{"Partial: Diplomas Recognized"},
		DecidedOn: decidedOn,
	})
	require.NoError(t, err)
	assert.Equal(t, decidedOn, record.DecidedOn)
}
