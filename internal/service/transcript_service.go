// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
)

// TranscriptService acquires and parses transcripts. Each FetchTranscript
// call is exactly one acquisition attempt; retry scheduling lives in the
// retry queue, not here.
type TranscriptService struct {
	transcriptRepository domain.TranscriptRepository
	platformRegistry     domain.PlatformRegistry
	config               ServiceConfig
}

// NewTranscriptService creates a new TranscriptService
func NewTranscriptService(
	transcriptRepository domain.TranscriptRepository,
	platformRegistry domain.PlatformRegistry,
	serviceConfig ServiceConfig,
) *TranscriptService {
	return &TranscriptService{
		transcriptRepository: transcriptRepository,
		platformRegistry:     platformRegistry,
		config:               serviceConfig,
	}
}

// ServiceReady checks if the service is ready to serve requests
func (s *TranscriptService) ServiceReady() bool {
	return s.transcriptRepository != nil && s.platformRegistry != nil
}

// GetByMeetingUID returns the meeting's transcript, at most one per meeting.
func (s *TranscriptService) GetByMeetingUID(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	return s.transcriptRepository.GetByMeetingUID(ctx, meetingUID)
}

// FetchTranscript makes one acquisition attempt for the meeting's
// transcript. The attempt count is persisted before the network call so a
// crash mid-download still shows up in the accounting. A transcript only
// reaches ready with non-empty parsed content.
func (s *TranscriptService) FetchTranscript(ctx context.Context, meeting *models.Meeting, event *models.RawEvent) (*models.Transcript, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	transcript, revision, err := s.ensureTranscript(ctx, meeting)
	if err != nil {
		return nil, err
	}

	if transcript.IsReady() {
		slog.InfoContext(ctx, "transcript already ready, skipping fetch",
			"transcript_uid", transcript.UID,
		)
		return transcript, nil
	}

	// Persist the attempt before touching the network.
	now := time.Now().UTC()
	transcript.FetchAttempts++
	transcript.Status = models.TranscriptStatusFetching
	transcript.UpdatedAt = now
	if err := s.transcriptRepository.Update(ctx, transcript, revision); err != nil {
		slog.ErrorContext(ctx, "failed to record transcript fetch attempt", logging.ErrKey, err,
			"transcript_uid", transcript.UID,
		)
		return nil, err
	}

	provider, err := s.platformRegistry.GetProvider(meeting.Platform)
	if err != nil {
		return nil, s.recordFetchError(ctx, transcript.UID, err)
	}

	download, err := provider.FetchTranscript(ctx, meeting, event)
	if err != nil {
		slog.ErrorContext(ctx, "transcript download failed", logging.ErrKey, err,
			"transcript_uid", transcript.UID,
			"fetch_attempts", transcript.FetchAttempts,
		)
		return nil, s.recordFetchError(ctx, transcript.UID, err)
	}

	segments, err := ParseTranscript(download.Format, download.Content)
	if err != nil {
		slog.ErrorContext(ctx, "transcript parse failed", logging.ErrKey, err,
			"transcript_uid", transcript.UID,
			"format", download.Format,
		)
		return nil, s.recordFetchError(ctx, transcript.UID, err)
	}
	if len(segments) == 0 {
		err := domain.NewValidationError("transcript parsed to zero segments")
		return nil, s.recordFetchError(ctx, transcript.UID, err)
	}

	transcript, revision, err = s.transcriptRepository.GetWithRevision(ctx, transcript.UID)
	if err != nil {
		return nil, err
	}

	transcript.Status = models.TranscriptStatusReady
	transcript.Format = download.Format
	transcript.RawContent = string(download.Content)
	transcript.Segments = segments
	transcript.WordCount = CountWords(segments)
	transcript.LastFetchError = ""
	transcript.UpdatedAt = time.Now().UTC()
	if err := s.transcriptRepository.Update(ctx, transcript, revision); err != nil {
		slog.ErrorContext(ctx, "failed to store ready transcript", logging.ErrKey, err,
			"transcript_uid", transcript.UID,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "transcript ready",
		"transcript_uid", transcript.UID,
		"segments", len(segments),
		"word_count", transcript.WordCount,
		"fetch_attempts", transcript.FetchAttempts,
	)

	return transcript, nil
}

// ensureTranscript loads the meeting's transcript record, creating the
// pending record on first fetch.
func (s *TranscriptService) ensureTranscript(ctx context.Context, meeting *models.Meeting) (*models.Transcript, uint64, error) {
	existing, err := s.transcriptRepository.GetByMeetingUID(ctx, meeting.UID)
	if err == nil {
		return s.transcriptRepository.GetWithRevision(ctx, existing.UID)
	}
	if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return nil, 0, err
	}

	now := time.Now().UTC()
	transcript := &models.Transcript{
		UID:        uuid.New().String(),
		MeetingUID: meeting.UID,
		Status:     models.TranscriptStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.transcriptRepository.Create(ctx, transcript); err != nil {
		slog.ErrorContext(ctx, "failed to create transcript record", logging.ErrKey, err,
			"meeting_uid", meeting.UID,
		)
		return nil, 0, err
	}

	return s.transcriptRepository.GetWithRevision(ctx, transcript.UID)
}

// recordFetchError stores the failure on the transcript and hands the
// original error back for the retry queue to schedule. The accounting write
// is detached from cancellation so an interrupted fetch is still recorded.
func (s *TranscriptService) recordFetchError(ctx context.Context, transcriptUID string, fetchErr error) error {
	ctx = context.WithoutCancel(ctx)
	transcript, revision, err := s.transcriptRepository.GetWithRevision(ctx, transcriptUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load transcript for error accounting", logging.ErrKey, err,
			"transcript_uid", transcriptUID,
		)
		return fetchErr
	}

	transcript.Status = models.TranscriptStatusFailed
	transcript.LastFetchError = fetchErr.Error()
	transcript.UpdatedAt = time.Now().UTC()
	if err := s.transcriptRepository.Update(ctx, transcript, revision); err != nil {
		slog.ErrorContext(ctx, "failed to record transcript fetch error", logging.ErrKey, err,
			"transcript_uid", transcriptUID,
		)
	}

	return fetchErr
}
