package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ahmadayed22/University-Project/internal/models"
	"github.com/Ahmadayed22/University-Project/internal/repository"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

// AssignmentSupervisorStore is the supervisor persistence the balancer needs.
type AssignmentSupervisorStore interface {
	Create(ctx context.Context, supervisor *models.Supervisor) error
	FindByID(ctx context.Context, id int64) (*models.Supervisor, error)
	ListWithWorkloads(ctx context.Context) ([]models.SupervisorWorkload, error)
	DeleteWithReassignments(ctx context.Context, id int64, reassignments []repository.Reassignment) error
}

// AssignmentInstitutionStore is the institution persistence the balancer needs.
type AssignmentInstitutionStore interface {
	FindByID(ctx context.Context, insID int64) (*models.Institution, error)
	ListBySupervisor(ctx context.Context, supervisorID int64) ([]models.Institution, error)
	UpdateSupervisor(ctx context.Context, insID, supervisorID int64, supervisorName string) error
}

// AssignmentMeetingStore restamps meeting snapshots when an assignment
// changes after batching.
type AssignmentMeetingStore interface {
	LatestEntryFor(ctx context.Context, insID int64) (*models.MeetingEntry, error)
	UpdateEntrySupervisor(ctx context.Context, entryID string, supervisorID int64, supervisorName string) error
}

// AssignmentService distributes institutions across supervisors by current
// workload and speciality.
type AssignmentService struct {
	supervisors  AssignmentSupervisorStore
	institutions AssignmentInstitutionStore
	meetings     AssignmentMeetingStore
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(
	supervisors AssignmentSupervisorStore,
	institutions AssignmentInstitutionStore,
	meetings AssignmentMeetingStore,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		supervisors:  supervisors,
		institutions: institutions,
		meetings:     meetings,
		validator:    validate,
		logger:       logger,
	}
}

// CreateSupervisorRequest carries the fields for registering a supervisor.
type CreateSupervisorRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Speciality string `json:"speciality" validate:"required"`
	Password   string `json:"password" validate:"required,min=8"`
}

// CreateSupervisor registers a new supervisor with a hashed credential.
func (s *AssignmentService) CreateSupervisor(ctx context.Context, req CreateSupervisorRequest) (*models.Supervisor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid supervisor payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	supervisor := &models.Supervisor{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Speciality:   req.Speciality,
		PasswordHash: string(hash),
	}
	if err := s.supervisors.Create(ctx, supervisor); err != nil {
		return nil, appErrors.Internal(err, "failed to create supervisor")
	}

	s.logger.Info("supervisor created",
		zap.Int64("supervisor_id", supervisor.ID),
		zap.String("speciality", supervisor.Speciality))
	return supervisor, nil
}

// ListSupervisors returns every supervisor with their current workload.
func (s *AssignmentService) ListSupervisors(ctx context.Context) ([]models.SupervisorWorkload, error) {
	supervisors, err := s.supervisors.ListWithWorkloads(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list supervisors")
	}
	return supervisors, nil
}

// GetSupervisor returns one supervisor.
func (s *AssignmentService) GetSupervisor(ctx context.Context, id int64) (*models.Supervisor, error) {
	supervisor, err := s.supervisors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supervisor not found")
		}
		return nil, appErrors.Internal(err, "failed to load supervisor")
	}
	return supervisor, nil
}

// PickSupervisor selects the least-loaded supervisor whose speciality list
// covers the given speciality, falling back to the least-loaded supervisor
// overall when nobody matches. Ties break toward the lowest ID. The
// excluded supervisor, when set, is never picked.
func (s *AssignmentService) PickSupervisor(ctx context.Context, speciality string, exclude *int64) (*models.Supervisor, error) {
	workloads, err := s.supervisors.ListWithWorkloads(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load supervisor workloads")
	}

	candidates := workloads[:0:0]
	for _, w := range workloads {
		if exclude != nil && w.ID == *exclude {
			continue
		}
		candidates = append(candidates, w)
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no supervisor available for assignment")
	}

	matching := candidates[:0:0]
	for _, w := range candidates {
		if specialityMatches(w.Speciality, speciality) {
			matching = append(matching, w)
		}
	}
	pool := matching
	if len(pool) == 0 {
		pool = candidates
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Workload != pool[j].Workload {
			return pool[i].Workload < pool[j].Workload
		}
		return pool[i].ID < pool[j].ID
	})

	picked := pool[0].Supervisor
	return &picked, nil
}

// specialityMatches reports whether a supervisor's comma-joined speciality
// list covers the institution's speciality, case-insensitively.
func specialityMatches(supervisorSpecialities, speciality string) bool {
	target := strings.ToLower(strings.TrimSpace(speciality))
	if target == "" {
		return false
	}
	for _, category := range strings.Split(supervisorSpecialities, ",") {
		if strings.Contains(strings.ToLower(strings.TrimSpace(category)), target) {
			return true
		}
	}
	return false
}

// ChangeSupervisor reassigns an institution to the given supervisor,
// restamping both the institution and its latest meeting snapshot so the
// two denormalized copies never diverge.
func (s *AssignmentService) ChangeSupervisor(ctx context.Context, insID, supervisorID int64) error {
	if _, err := s.institutions.FindByID(ctx, insID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return appErrors.Internal(err, "failed to load institution")
	}

	supervisor, err := s.GetSupervisor(ctx, supervisorID)
	if err != nil {
		return err
	}

	if err := s.institutions.UpdateSupervisor(ctx, insID, supervisor.ID, supervisor.Name); err != nil {
		return appErrors.Internal(err, "failed to reassign institution")
	}

	entry, err := s.meetings.LatestEntryFor(ctx, insID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Internal(err, "failed to load meeting entry")
	}
	if entry != nil {
		if err := s.meetings.UpdateEntrySupervisor(ctx, entry.ID, supervisor.ID, supervisor.Name); err != nil {
			return appErrors.Internal(err, "failed to restamp meeting entry")
		}
	}

	s.logger.Info("institution reassigned",
		zap.Int64("ins_id", insID),
		zap.Int64("supervisor_id", supervisor.ID))
	return nil
}

// DeleteSupervisor removes a supervisor after redistributing every
// institution they carry to the remaining supervisors, least-loaded first.
// The redistribution and the delete commit together.
func (s *AssignmentService) DeleteSupervisor(ctx context.Context, id int64) error {
	if _, err := s.GetSupervisor(ctx, id); err != nil {
		return err
	}

	assigned, err := s.institutions.ListBySupervisor(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to list assigned institutions")
	}

	workloads, err := s.supervisors.ListWithWorkloads(ctx)
	if err != nil {
		return appErrors.Internal(err, "failed to load supervisor workloads")
	}
	remaining := workloads[:0:0]
	for _, w := range workloads {
		if w.ID != id {
			remaining = append(remaining, w)
		}
	}
	if len(assigned) > 0 && len(remaining) == 0 {
		return appErrors.Clone(appErrors.ErrConflict, "cannot delete the last supervisor while institutions are assigned")
	}

	// Plan the redistribution in memory so each pick sees the workload
	// added by the previous one.
	reassignments := make([]repository.Reassignment, 0, len(assigned))
	for _, institution := range assigned {
		target := pickFromWorkloads(remaining, institution.Speciality)
		target.Workload++
		reassignments = append(reassignments, repository.Reassignment{
			InsID:          institution.InsID,
			SupervisorID:   target.ID,
			SupervisorName: target.Name,
		})
	}

	if err := s.supervisors.DeleteWithReassignments(ctx, id, reassignments); err != nil {
		return appErrors.Internal(err, "failed to delete supervisor")
	}

	s.logger.Info("supervisor deleted",
		zap.Int64("supervisor_id", id),
		zap.Int("reassigned", len(reassignments)))
	return nil
}

// pickFromWorkloads applies the balancer rule to an in-memory pool.
func pickFromWorkloads(pool []models.SupervisorWorkload, speciality string) *models.SupervisorWorkload {
	var best *models.SupervisorWorkload
	for i := range pool {
		if !specialityMatches(pool[i].Speciality, speciality) {
			continue
		}
		if best == nil || pool[i].Workload < best.Workload {
			best = &pool[i]
		}
	}
	if best != nil {
		return best
	}
	for i := range pool {
		if best == nil || pool[i].Workload < best.Workload {
			best = &pool[i]
		}
	}
	return best
}
