package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

// WorkflowInstitutionStore is the institution persistence the orchestrator needs.
type WorkflowInstitutionStore interface {
	Create(ctx context.Context, institution *models.Institution) error
	FindByID(ctx context.Context, insID int64) (*models.Institution, error)
	List(ctx context.Context) ([]models.Institution, error)
	ListBySupervisor(ctx context.Context, supervisorID int64) ([]models.Institution, error)
}

// WorkflowQueueStore enqueues applications atomically with their assignment.
type WorkflowQueueStore interface {
	EnqueueWithAssignment(ctx context.Context, entry *models.QueueEntry, supervisorID int64, supervisorName string) error
}

// SupervisorPicker selects a supervisor for an incoming application.
type SupervisorPicker interface {
	PickSupervisor(ctx context.Context, speciality string, exclude *int64) (*models.Supervisor, error)
}

// WorkflowService drives an application through the submission workflow.
type WorkflowService struct {
	institutions WorkflowInstitutionStore
	queue        WorkflowQueueStore
	picker       SupervisorPicker
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewWorkflowService constructs the workflow service.
func NewWorkflowService(
	institutions WorkflowInstitutionStore,
	queue WorkflowQueueStore,
	picker SupervisorPicker,
	validate *validator.Validate,
	logger *zap.Logger,
) *WorkflowService {
	if validate == nil {
		validate = validator.New()
	}
	return &WorkflowService{
		institutions: institutions,
		queue:        queue,
		picker:       picker,
		validator:    validate,
		logger:       logger,
	}
}

// CreateInstitutionRequest carries the fields for registering an institution.
type CreateInstitutionRequest struct {
	Name       string `json:"name" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Speciality string `json:"speciality" validate:"required"`
}

// CreateInstitution registers an institution with no application yet.
func (s *WorkflowService) CreateInstitution(ctx context.Context, req CreateInstitutionRequest) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid institution payload")
	}

	institution := &models.Institution{
		Name:       req.Name,
		Country:    req.Country,
		Speciality: req.Speciality,
		State:      models.StateNoApplication,
	}
	if err := s.institutions.Create(ctx, institution); err != nil {
		return nil, appErrors.Internal(err, "failed to create institution")
	}

	s.logger.Info("institution created", zap.Int64("ins_id", institution.InsID))
	return institution, nil
}

// GetInstitution returns one institution.
func (s *WorkflowService) GetInstitution(ctx context.Context, insID int64) (*models.Institution, error) {
	institution, err := s.institutions.FindByID(ctx, insID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Internal(err, "failed to load institution")
	}
	return institution, nil
}

// ListInstitutions returns every registered institution.
func (s *WorkflowService) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list institutions")
	}
	return institutions, nil
}

// ListBySupervisor returns the institutions currently assigned to one
// supervisor, the working set of the supervisor dashboard.
func (s *WorkflowService) ListBySupervisor(ctx context.Context, supervisorID int64) ([]models.Institution, error) {
	institutions, err := s.institutions.ListBySupervisor(ctx, supervisorID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list institutions for supervisor")
	}
	return institutions, nil
}

// Submit files an application for the institution: a supervisor is picked
// by workload, and the queue entry plus the assignment commit together so
// an application can never sit in the queue unassigned.
func (s *WorkflowService) Submit(ctx context.Context, insID int64) (*models.QueueEntry, error) {
	institution, err := s.GetInstitution(ctx, insID)
	if err != nil {
		return nil, err
	}

	if !institution.State.CanTransition(models.StateQueued) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application cannot be re-queued from its current state")
	}

	supervisor, err := s.picker.PickSupervisor(ctx, institution.Speciality, nil)
	if err != nil {
		return nil, err
	}

	entry := &models.QueueEntry{
		ID:              uuid.NewString(),
		InsID:           institution.InsID,
		InstitutionName: institution.Name,
		Speciality:      institution.Speciality,
		SubmittedAt:     time.Now().UTC(),
	}
	if err := s.queue.EnqueueWithAssignment(ctx, entry, supervisor.ID, supervisor.Name); err != nil {
		return nil, appErrors.Internal(err, "failed to enqueue application")
	}

	s.logger.Info("application submitted",
		zap.Int64("ins_id", institution.InsID),
		zap.Int64("supervisor_id", supervisor.ID))
	return entry, nil
}
