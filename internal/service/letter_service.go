package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ahmadayed22/University-Project/internal/models"
	"github.com/Ahmadayed22/University-Project/pkg/export"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
	"github.com/Ahmadayed22/University-Project/pkg/jobs"
	"github.com/Ahmadayed22/University-Project/pkg/storage"
)

const jobTypeRenderLetter = "letter.render"

// letterJob is the payload queued per finalized decision.
type letterJob struct {
	Record      models.DecisionRecord
	Institution models.Institution
}

// LetterService renders recommendation letters to PDF in the background
// and hands out signed download links for them.
type LetterService struct {
	renderer *export.LetterRenderer
	store    *storage.LetterStore
	signer   *storage.SignedURLSigner
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewLetterService constructs the letter service with its worker queue.
func NewLetterService(
	renderer *export.LetterRenderer,
	store *storage.LetterStore,
	signer *storage.SignedURLSigner,
	workers, retries int,
	logger *zap.Logger,
) *LetterService {
	s := &LetterService{
		renderer: renderer,
		store:    store,
		signer:   signer,
		logger:   logger,
	}
	s.queue = jobs.NewQueue("letters", s.handle, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// Start launches the background workers.
func (s *LetterService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue and waits for in-flight renders.
func (s *LetterService) Stop() {
	s.queue.Stop()
}

// Schedule queues PDF rendering for a finalized decision.
func (s *LetterService) Schedule(record models.DecisionRecord, institution models.Institution) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeRenderLetter,
		Payload: letterJob{Record: record, Institution: institution},
	})
}

// handle renders one letter and stores it under the institution's
// directory.
func (s *LetterService) handle(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(letterJob)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", job.Payload, job.Type)
	}

	interpreted := Interpret(payload.Record.Reasons)
	data := export.LetterData{
		RecordID:        payload.Record.ID,
		InstitutionName: payload.Institution.Name,
		Country:         payload.Institution.Country,
		Date:            payload.Record.DecidedOn.Format("2006-01-02"),
		DegreePhrase:    interpreted.DegreePhrase,
		SystemPhrase:    interpreted.SystemPhrase,
		Recognized:      interpreted.ShowRecognized,
		Rejected:        interpreted.ShowRejected,
		BulletReasons:   interpreted.BulletReasons,
	}

	pdf, err := s.renderer.Render(data)
	if err != nil {
		return fmt.Errorf("render letter for record %d: %w", payload.Record.ID, err)
	}

	fileName := fmt.Sprintf("letter-%d-%d.pdf", payload.Record.ID, time.Now().UTC().Unix())
	if _, err := s.store.Save(payload.Institution.InsID, fileName, pdf); err != nil {
		return fmt.Errorf("store letter for record %d: %w", payload.Record.ID, err)
	}

	s.logger.Info("letter rendered",
		zap.Int64("record_id", payload.Record.ID),
		zap.Int64("ins_id", payload.Institution.InsID),
		zap.String("file", fileName))
	return nil
}

// LatestLink returns a signed download link for the institution's newest
// letter, if one has been rendered.
func (s *LetterService) LatestLink(insID int64) (string, bool) {
	info, err := s.store.Latest(insID)
	if err != nil {
		s.logger.Warn("letter lookup failed", zap.Int64("ins_id", insID), zap.Error(err))
		return "", false
	}
	if info == nil {
		return "", false
	}

	token, _, err := s.signer.Generate(strconv.FormatInt(insID, 10), info.RelPath)
	if err != nil {
		s.logger.Warn("letter link signing failed", zap.Int64("ins_id", insID), zap.Error(err))
		return "", false
	}
	return "/api/v1/letters/download?token=" + token, true
}

// Open validates a signed token and opens the letter file it refers to.
func (s *LetterService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid or expired letter link")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found")
	}
	return file, nil
}
