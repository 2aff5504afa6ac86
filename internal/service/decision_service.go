package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

// DecisionStore is the decision-log persistence the service needs.
type DecisionStore interface {
	AppendWithRequeue(ctx context.Context, record *models.DecisionRecord, entry *models.QueueEntry) error
	Latest(ctx context.Context, insID int64) (*models.DecisionRecord, error)
	History(ctx context.Context, insID int64) ([]models.DecisionRecord, error)
	FinalizedHistory(ctx context.Context, insID int64) ([]models.HistoryEntry, error)
	Finalize(ctx context.Context, recordID int64, insID int64, meetingNumber, outcome string) error
}

// DecisionInstitutionStore looks up the institution a decision belongs to.
type DecisionInstitutionStore interface {
	FindByID(ctx context.Context, insID int64) (*models.Institution, error)
}

// MeetingChecker verifies that a meeting number refers to a real meeting.
type MeetingChecker interface {
	Exists(ctx context.Context, meetingNumber string) (bool, error)
}

// LetterScheduler queues recommendation-letter rendering after a decision
// is finalized.
type LetterScheduler interface {
	Schedule(record models.DecisionRecord, institution models.Institution) error
}

// StatusInvalidator drops the cached status dashboard after a write.
type StatusInvalidator interface {
	InvalidateStatuses(ctx context.Context)
}

// DecisionService owns the append-only decision log: committee members
// append corrections, the ministry finalizes records in meetings. History
// is never rewritten.
type DecisionService struct {
	decisions    DecisionStore
	institutions DecisionInstitutionStore
	meetings     MeetingChecker
	letters      LetterScheduler
	statuses     StatusInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewDecisionService constructs the decision service.
func NewDecisionService(
	decisions DecisionStore,
	institutions DecisionInstitutionStore,
	meetings MeetingChecker,
	letters LetterScheduler,
	statuses StatusInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *DecisionService {
	if validate == nil {
		validate = validator.New()
	}
	return &DecisionService{
		decisions:    decisions,
		institutions: institutions,
		meetings:     meetings,
		letters:      letters,
		statuses:     statuses,
		validator:    validate,
		logger:       logger,
	}
}

// AppendDecisionRequest carries a committee decision to record.
type AppendDecisionRequest struct {
	InsID     int64     `json:"ins_id" validate:"required"`
	Accepted  bool      `json:"accepted"`
	Reasons   []string  `json:"reasons" validate:"required,min=1"`
	DecidedOn time.Time `json:"decided_on"`
}

// Append records a new decision for the institution and re-enqueues it for
// the next committee meeting, in one transaction. Non-conventional verdicts
// merge with the latest prior record: the new non-conventional token is
// prepended to the prior record's conventional reasons, preserved verbatim,
// so switching tracks never erases conventional history.
func (s *DecisionService) Append(ctx context.Context, req AppendDecisionRequest) (*models.DecisionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	institution, err := s.institutions.FindByID(ctx, req.InsID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Internal(err, "failed to load institution")
	}

	reasons := req.Reasons
	if containsNonConventional(reasons) {
		merged, err := s.mergeNonConventional(ctx, req.InsID, reasons)
		if err != nil {
			return nil, err
		}
		reasons = merged
	}

	decidedOn := req.DecidedOn
	if decidedOn.IsZero() {
		decidedOn = time.Now().UTC()
	}

	record := &models.DecisionRecord{
		InsID:     req.InsID,
		DecidedOn: decidedOn,
		Accepted:  req.Accepted,
		Reasons:   reasons,
	}
	entry := &models.QueueEntry{
		InsID:           institution.InsID,
		InstitutionName: institution.Name,
		Speciality:      institution.Speciality,
	}
	if err := s.decisions.AppendWithRequeue(ctx, record, entry); err != nil {
		return nil, appErrors.Internal(err, "failed to append decision")
	}

	s.statuses.InvalidateStatuses(ctx)
	s.logger.Info("decision appended",
		zap.Int64("ins_id", record.InsID),
		zap.Int("record_no", record.RecordNo),
		zap.Bool("accepted", record.Accepted))
	return record, nil
}

// mergeNonConventional builds the reason list for a non-conventional
// decision: new non-conventional tokens first, then the latest prior
// record's conventional reasons unchanged.
func (s *DecisionService) mergeNonConventional(ctx context.Context, insID int64, reasons []string) ([]string, error) {
	prior, err := s.decisions.Latest(ctx, insID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reasons, nil
		}
		return nil, appErrors.Internal(err, "failed to load prior decision")
	}

	merged := make([]string, 0, len(reasons)+len(prior.Reasons))
	for _, reason := range reasons {
		if models.IsNonConventionalReason(reason) {
			merged = append(merged, reason)
		}
	}
	for _, reason := range prior.Reasons {
		if !models.IsNonConventionalReason(reason) {
			merged = append(merged, reason)
		}
	}
	for _, reason := range reasons {
		if !models.IsNonConventionalReason(reason) {
			merged = append(merged, reason)
		}
	}
	return merged, nil
}

func containsNonConventional(reasons []string) bool {
	for _, reason := range reasons {
		if models.IsNonConventionalReason(reason) {
			return true
		}
	}
	return false
}

// Latest returns the most recent decision record for an institution.
func (s *DecisionService) Latest(ctx context.Context, insID int64) (*models.DecisionRecord, error) {
	record, err := s.decisions.Latest(ctx, insID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no decision recorded for institution")
		}
		return nil, appErrors.Internal(err, "failed to load decision")
	}
	return record, nil
}

// History returns the full decision log for an institution, oldest first.
func (s *DecisionService) History(ctx context.Context, insID int64) ([]models.DecisionRecord, error) {
	records, err := s.decisions.History(ctx, insID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load decision history")
	}
	return records, nil
}

// FinalizedHistory returns finalized decisions newest first with their
// meeting dates.
func (s *DecisionService) FinalizedHistory(ctx context.Context, insID int64) ([]models.HistoryEntry, error) {
	entries, err := s.decisions.FinalizedHistory(ctx, insID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load finalized history")
	}
	return entries, nil
}

// FinalizeRequest stamps the latest decision with a meeting verdict.
type FinalizeRequest struct {
	InsID         int64  `json:"ins_id" validate:"required"`
	MeetingNumber string `json:"meeting_number" validate:"required"`
	Outcome       string `json:"outcome" validate:"required,oneof=Recognized Rejected"`
}

// Finalize stamps the institution's latest decision with its meeting and
// outcome. A record already finalized as recognized is terminal: any
// further attempt conflicts, the committee must append a new record
// instead.
func (s *DecisionService) Finalize(ctx context.Context, req FinalizeRequest) (*models.DecisionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid finalize payload")
	}

	institution, err := s.institutions.FindByID(ctx, req.InsID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Internal(err, "failed to load institution")
	}

	exists, err := s.meetings.Exists(ctx, req.MeetingNumber)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check meeting")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}

	record, err := s.Latest(ctx, req.InsID)
	if err != nil {
		return nil, err
	}
	if record.IsRecognized() {
		return nil, appErrors.ErrFinalized
	}

	if err := s.decisions.Finalize(ctx, record.ID, req.InsID, req.MeetingNumber, req.Outcome); err != nil {
		return nil, appErrors.Internal(err, "failed to finalize decision")
	}
	record.Finalized = true
	record.MeetingNumber = &req.MeetingNumber
	record.Outcome = &req.Outcome

	if err := s.letters.Schedule(*record, *institution); err != nil {
		// The decision is committed; a letter that failed to queue can be
		// regenerated from the history endpoint.
		s.logger.Warn("letter scheduling failed",
			zap.Int64("ins_id", req.InsID),
			zap.Error(err))
	}

	s.statuses.InvalidateStatuses(ctx)
	s.logger.Info("decision finalized",
		zap.Int64("ins_id", req.InsID),
		zap.String("meeting_number", req.MeetingNumber),
		zap.String("outcome", req.Outcome))
	return record, nil
}
