package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

// MeetingStore is the meeting persistence the batcher needs.
type MeetingStore interface {
	NextSequence(ctx context.Context, year int) (int, error)
	Exists(ctx context.Context, meetingNumber string) (bool, error)
	Batch(ctx context.Context, meetingNumber string, pending []models.QueueEntry) error
	LatestEntryFor(ctx context.Context, insID int64) (*models.MeetingEntry, error)
	ListEntries(ctx context.Context, meetingNumber string) ([]models.MeetingEntry, error)
	ListAllEntries(ctx context.Context) ([]models.MeetingEntry, error)
	ListNumbers(ctx context.Context) ([]models.MeetingInfo, error)
}

// MeetingQueueStore is the pending-queue persistence the batcher needs.
type MeetingQueueStore interface {
	ListPending(ctx context.Context) ([]models.QueueEntry, error)
	CountPending(ctx context.Context) (int, error)
	ReopenForInstitution(ctx context.Context, insID, supervisorID int64, supervisorName string) error
}

// MeetingDecisionStore answers whether an institution already carries a
// decision, used to warn on return-to-supervisor.
type MeetingDecisionStore interface {
	Latest(ctx context.Context, insID int64) (*models.DecisionRecord, error)
}

// LetterLinker decorates pending applications with their latest committee
// letter link, when one has been rendered.
type LetterLinker interface {
	LatestLink(insID int64) (link string, ok bool)
}

// MeetingService batches queued applications into numbered committee
// meetings and routes applications back to supervisors.
type MeetingService struct {
	meetings  MeetingStore
	queue     MeetingQueueStore
	decisions MeetingDecisionStore
	letters   LetterLinker
	statuses  StatusInvalidator
	logger    *zap.Logger

	now func() time.Time
}

// NewMeetingService constructs the meeting service.
func NewMeetingService(
	meetings MeetingStore,
	queue MeetingQueueStore,
	decisions MeetingDecisionStore,
	letters LetterLinker,
	statuses StatusInvalidator,
	logger *zap.Logger,
) *MeetingService {
	return &MeetingService{
		meetings:  meetings,
		queue:     queue,
		decisions: decisions,
		letters:   letters,
		statuses:  statuses,
		logger:    logger,
		now:       time.Now,
	}
}

// PendingApplications returns the queue awaiting the next meeting, oldest
// first, each decorated with the latest letter link when one exists.
func (s *MeetingService) PendingApplications(ctx context.Context) ([]models.PendingApplication, error) {
	entries, err := s.queue.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list pending applications")
	}

	pending := make([]models.PendingApplication, 0, len(entries))
	for _, entry := range entries {
		application := models.PendingApplication{QueueEntry: entry}
		if link, ok := s.letters.LatestLink(entry.InsID); ok {
			application.LetterAvailable = true
			application.LetterLink = link
		}
		pending = append(pending, application)
	}
	return pending, nil
}

// CreateMeeting batches every pending application into a new meeting
// numbered "N/Year", where N restarts at 1 each calendar year. With
// nothing pending the call conflicts rather than minting an empty meeting.
// Re-batching an institution already in the meeting is a no-op, so a
// retried create never duplicates entries.
func (s *MeetingService) CreateMeeting(ctx context.Context) (string, []models.MeetingEntry, error) {
	pending, err := s.queue.ListPending(ctx)
	if err != nil {
		return "", nil, appErrors.Internal(err, "failed to list pending applications")
	}
	if len(pending) == 0 {
		return "", nil, appErrors.Clone(appErrors.ErrConflict, "no pending applications to batch")
	}

	year := s.now().UTC().Year()
	sequence, err := s.meetings.NextSequence(ctx, year)
	if err != nil {
		return "", nil, appErrors.Internal(err, "failed to compute meeting number")
	}
	meetingNumber := fmt.Sprintf("%d/%d", sequence, year)

	exists, err := s.meetings.Exists(ctx, meetingNumber)
	if err != nil {
		return "", nil, appErrors.Internal(err, "failed to check meeting number")
	}
	if exists {
		return "", nil, appErrors.Clone(appErrors.ErrConflict, "meeting number already exists")
	}

	if err := s.meetings.Batch(ctx, meetingNumber, pending); err != nil {
		return "", nil, appErrors.Internal(err, "failed to batch meeting")
	}

	entries, err := s.meetings.ListEntries(ctx, meetingNumber)
	if err != nil {
		return "", nil, appErrors.Internal(err, "failed to load meeting entries")
	}

	s.statuses.InvalidateStatuses(ctx)
	s.logger.Info("meeting created",
		zap.String("meeting_number", meetingNumber),
		zap.Int("entries", len(entries)))
	return meetingNumber, entries, nil
}

// ListMeetings returns every meeting number with its creation date.
func (s *MeetingService) ListMeetings(ctx context.Context) ([]models.MeetingInfo, error) {
	meetings, err := s.meetings.ListNumbers(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list meetings")
	}
	return meetings, nil
}

// MeetingEntries returns the institutions batched into one meeting.
func (s *MeetingService) MeetingEntries(ctx context.Context, meetingNumber string) ([]models.MeetingEntry, error) {
	exists, err := s.meetings.Exists(ctx, meetingNumber)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check meeting number")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}

	entries, err := s.meetings.ListEntries(ctx, meetingNumber)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load meeting entries")
	}
	return entries, nil
}

// AllEntries returns every meeting entry across all meetings.
func (s *MeetingService) AllEntries(ctx context.Context) ([]models.MeetingEntry, error) {
	entries, err := s.meetings.ListAllEntries(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load meeting entries")
	}
	return entries, nil
}

// ReturnToSupervisor re-opens a batched application back to the queue
// under the supervisor captured on the institution's latest meeting
// snapshot. An institution that never reached a meeting has nothing to
// return; a snapshot without a supervisor cannot say who reviews next.
// The returned warning is true when the institution already carries a
// decision that a new review will supersede.
func (s *MeetingService) ReturnToSupervisor(ctx context.Context, insID int64) (bool, error) {
	entry, err := s.meetings.LatestEntryFor(ctx, insID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "institution has no meeting entry")
		}
		return false, appErrors.Internal(err, "failed to load meeting entry")
	}
	if entry.SupervisorID == nil || entry.SupervisorName == nil {
		return false, appErrors.Clone(appErrors.ErrConflict, "meeting entry carries no supervisor")
	}

	hadDecision := false
	if _, err := s.decisions.Latest(ctx, insID); err == nil {
		hadDecision = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, appErrors.Internal(err, "failed to load decision")
	}

	if err := s.queue.ReopenForInstitution(ctx, insID, *entry.SupervisorID, *entry.SupervisorName); err != nil {
		return false, appErrors.Internal(err, "failed to return application")
	}

	s.statuses.InvalidateStatuses(ctx)
	s.logger.Info("application returned to supervisor",
		zap.Int64("ins_id", insID),
		zap.Int64("supervisor_id", *entry.SupervisorID),
		zap.Bool("had_decision", hadDecision))
	return hadDecision, nil
}
