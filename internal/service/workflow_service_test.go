package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

type workflowInstitutionStub struct {
	byID    map[int64]*models.Institution
	created []*models.Institution
}

func (s *workflowInstitutionStub) Create(ctx context.Context, institution *models.Institution) error {
	institution.InsID = int64(len(s.created) + 1)
	s.created = append(s.created, institution)
	return nil
}

func (s *workflowInstitutionStub) FindByID(ctx context.Context, insID int64) (*models.Institution, error) {
	if inst, ok := s.byID[insID]; ok {
		return inst, nil
	}
	return nil, sql.ErrNoRows
}

func (s *workflowInstitutionStub) List(ctx context.Context) ([]models.Institution, error) {
	institutions := make([]models.Institution, 0, len(s.byID))
	for _, inst := range s.byID {
		institutions = append(institutions, *inst)
	}
	return institutions, nil
}

func (s *workflowInstitutionStub) ListBySupervisor(ctx context.Context, supervisorID int64) ([]models.Institution, error) {
	return nil, nil
}

type workflowQueueStub struct {
	entries    []*models.QueueEntry
	assignedTo []int64
	err        error
}

func (s *workflowQueueStub) EnqueueWithAssignment(ctx context.Context, entry *models.QueueEntry, supervisorID int64, supervisorName string) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	s.assignedTo = append(s.assignedTo, supervisorID)
	return nil
}

type pickerStub struct {
	supervisor *models.Supervisor
	err        error
	speciality string
}

func (s *pickerStub) PickSupervisor(ctx context.Context, speciality string, exclude *int64) (*models.Supervisor, error) {
	s.speciality = speciality
	return s.supervisor, s.err
}

func TestSubmitEnqueuesWithAssignment(t *testing.T) {
	institutions := &workflowInstitutionStub{byID: map[int64]*models.Institution{
		10: {InsID: 10, Name: "Alpha University", Speciality: "Engineering", State: models.StateNoApplication},
	}}
	queue := &workflowQueueStub{}
	picker := &pickerStub{supervisor: &models.Supervisor{ID: 7, Name: "Dr. Salma"}}
	svc := NewWorkflowService(institutions, queue, picker, validator.New(), zap.NewNop())

	entry, err := svc.Submit(context.Background(), 10)
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Alpha University", entry.InstitutionName)
	assert.False(t, entry.SubmittedAt.IsZero())
	assert.Equal(t, "Engineering", picker.speciality)
	assert.Equal(t, []int64{7}, queue.assignedTo)
}

func TestSubmitUnknownInstitution(t *testing.T) {
	svc := NewWorkflowService(&workflowInstitutionStub{}, &workflowQueueStub{}, &pickerStub{}, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmitWithoutSupervisors(t *testing.T) {
	institutions := &workflowInstitutionStub{byID: map[int64]*models.Institution{
		10: {InsID: 10, Speciality: "Engineering", State: models.StateNoApplication},
	}}
	picker := &pickerStub{err: appErrors.Clone(appErrors.ErrNotFound, "no supervisor available for assignment")}
	svc := NewWorkflowService(institutions, &workflowQueueStub{}, picker, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateInstitutionStartsUnqueued(t *testing.T) {
	institutions := &workflowInstitutionStub{byID: map[int64]*models.Institution{}}
	svc := NewWorkflowService(institutions, &workflowQueueStub{}, &pickerStub{}, validator.New(), zap.NewNop())

	created, err := svc.CreateInstitution(context.Background(), CreateInstitutionRequest{
		Name:       "Beta College",
		Country:    "Jordan",
		Speciality: "Medicine",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateNoApplication, created.State)
	assert.NotZero(t, created.InsID)
}

func TestCreateInstitutionRequiresAllFields(t *testing.T) {
	institutions := &workflowInstitutionStub{byID: map[int64]*models.Institution{}}
	svc := NewWorkflowService(institutions, &workflowQueueStub{}, &pickerStub{}, validator.New(), zap.NewNop())

	_, err := svc.CreateInstitution(context.Background(), CreateInstitutionRequest{
		Name: "Beta College",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, institutions.created)
}
