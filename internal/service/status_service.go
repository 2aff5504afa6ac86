package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
)

// statusCacheKey stores the aggregate dashboard; every workflow write
// invalidates it.
const statusCacheKey = "statuses:dashboard"

// StatusInstitutionStore is the institution persistence the interpreter needs.
type StatusInstitutionStore interface {
	FindByID(ctx context.Context, insID int64) (*models.Institution, error)
	List(ctx context.Context) ([]models.Institution, error)
}

// StatusDecisionStore is the decision persistence the interpreter needs.
type StatusDecisionStore interface {
	ListAll(ctx context.Context) ([]models.DecisionRecord, error)
	FinalizedHistory(ctx context.Context, insID int64) ([]models.HistoryEntry, error)
}

// StatusMeetingStore resolves the meetings institutions were batched into.
type StatusMeetingStore interface {
	ListAllEntries(ctx context.Context) ([]models.MeetingEntry, error)
}

// StatusCache is the cache surface for the dashboard.
type StatusCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string)
}

// StatusService renders decision records into display statuses: per-record
// interpretations for letters and the cached aggregate dashboard.
type StatusService struct {
	institutions StatusInstitutionStore
	decisions    StatusDecisionStore
	meetings     StatusMeetingStore
	cache        StatusCache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewStatusService constructs the status service.
func NewStatusService(
	institutions StatusInstitutionStore,
	decisions StatusDecisionStore,
	meetings StatusMeetingStore,
	cache StatusCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		institutions: institutions,
		decisions:    decisions,
		meetings:     meetings,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// InstitutionStatuses returns the aggregate dashboard row for every
// institution, served from cache when fresh.
func (s *StatusService) InstitutionStatuses(ctx context.Context) ([]models.InstitutionStatus, error) {
	var cached []models.InstitutionStatus
	if err := s.cache.Get(ctx, statusCacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("status cache read failed", zap.Error(err))
	}

	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list institutions")
	}

	records, err := s.decisions.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list decision records")
	}
	historyByInstitution := make(map[int64][]models.DecisionRecord, len(institutions))
	for _, record := range records {
		historyByInstitution[record.InsID] = append(historyByInstitution[record.InsID], record)
	}

	entries, err := s.meetings.ListAllEntries(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list meeting entries")
	}
	latestMeeting := make(map[int64]models.MeetingEntry, len(entries))
	for _, entry := range entries {
		if current, ok := latestMeeting[entry.InsID]; !ok || entry.CreatedAt.After(current.CreatedAt) {
			latestMeeting[entry.InsID] = entry
		}
	}

	statuses := make([]models.InstitutionStatus, 0, len(institutions))
	for _, institution := range institutions {
		meetingNumber := ""
		if entry, ok := latestMeeting[institution.InsID]; ok {
			meetingNumber = entry.MeetingNumber
		}
		statuses = append(statuses, Summarize(institution, historyByInstitution[institution.InsID], meetingNumber))
	}

	if err := s.cache.Set(ctx, statusCacheKey, statuses, s.cacheTTL); err != nil {
		s.logger.Warn("status cache write failed", zap.Error(err))
	}
	return statuses, nil
}

// InvalidateStatuses drops the cached dashboard.
func (s *StatusService) InvalidateStatuses(ctx context.Context) {
	s.cache.Delete(ctx, statusCacheKey)
}

// Letter builds the recommendation-letter payload from the institution's
// latest finalized decision, with phrases localized for the requested
// language ("en" or "ar").
func (s *StatusService) Letter(ctx context.Context, insID int64, lang string) (*models.LetterPayload, error) {
	institution, err := s.institutions.FindByID(ctx, insID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Internal(err, "failed to load institution")
	}

	history, err := s.decisions.FinalizedHistory(ctx, insID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load finalized history")
	}
	if len(history) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no finalized decision for institution")
	}
	latest := history[0]

	interpreted := Localize(Interpret(latest.Reasons), lang)

	payload := &models.LetterPayload{
		RecordID:        latest.ID,
		InstitutionName: institution.Name,
		Country:         institution.Country,
		DegreePhrase:    interpreted.DegreePhrase,
		SystemPhrase:    interpreted.SystemPhrase,
		ShowRecognized:  interpreted.ShowRecognized,
		ShowRejected:    interpreted.ShowRejected,
		BulletReasons:   interpreted.BulletReasons,
	}
	if latest.MeetingNumber != nil {
		payload.MeetingNumber = *latest.MeetingNumber
	}
	if latest.MeetingDate != nil {
		payload.MeetingDate = latest.MeetingDate.Format("2006-01-02")
	}
	return payload, nil
}
