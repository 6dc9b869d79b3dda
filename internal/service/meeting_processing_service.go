// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/pkg/utils"
)

// MeetingProcessingService owns the per-meeting processing state machine.
// Steps only move forward; a regression is logged and rejected without
// touching the store.
type MeetingProcessingService struct {
	meetingRepository domain.MeetingRepository
	config            ServiceConfig
}

// NewMeetingProcessingService creates a new MeetingProcessingService
func NewMeetingProcessingService(
	meetingRepository domain.MeetingRepository,
	serviceConfig ServiceConfig,
) *MeetingProcessingService {
	return &MeetingProcessingService{
		meetingRepository: meetingRepository,
		config:            serviceConfig,
	}
}

// ServiceReady checks if the service is ready to serve requests
func (s *MeetingProcessingService) ServiceReady() bool {
	return s.meetingRepository != nil
}

// EnsureMeeting correlates a raw event to its meeting, creating the meeting
// on first sight of the platform meeting ID.
func (s *MeetingProcessingService) EnsureMeeting(ctx context.Context, event *models.RawEvent) (*models.Meeting, error) {
	if event.PlatformMeetingID == "" {
		return nil, domain.NewValidationError("raw event has no platform meeting ID to correlate on")
	}

	meeting, err := s.meetingRepository.GetByPlatformMeetingID(ctx, event.Platform, event.PlatformMeetingID)
	if err == nil {
		return meeting, nil
	}
	if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		slog.ErrorContext(ctx, "failed to correlate raw event to meeting", logging.ErrKey, err,
			"platform_meeting_id", event.PlatformMeetingID,
		)
		return nil, err
	}

	now := time.Now().UTC()
	meeting = &models.Meeting{
		UID:                 uuid.New().String(),
		Platform:            event.Platform,
		PlatformMeetingID:   event.PlatformMeetingID,
		HostEmail:           event.HostEmail,
		RawEventUID:         event.UID,
		Status:              models.MeetingStatusPending,
		ProcessingStep:      models.StepWebhookReceived,
		ProcessingProgress:  models.StepWebhookReceived.Progress(),
		ProcessingStartedAt: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	meeting.AppendLog(models.StepWebhookReceived, "webhook received", 0)

	if err := s.meetingRepository.Create(ctx, meeting); err != nil {
		// A concurrent event for the same platform meeting won the create;
		// use the meeting it stored.
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			slog.DebugContext(ctx, "meeting already created concurrently",
				"platform_meeting_id", event.PlatformMeetingID,
			)
			return s.meetingRepository.GetByPlatformMeetingID(ctx, event.Platform, event.PlatformMeetingID)
		}
		slog.ErrorContext(ctx, "failed to create meeting", logging.ErrKey, err,
			"platform_meeting_id", event.PlatformMeetingID,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "meeting created",
		"meeting_uid", meeting.UID,
		"platform", meeting.Platform,
		"platform_meeting_id", meeting.PlatformMeetingID,
		"tags", meeting.Tags(),
	)

	return meeting, nil
}

// Advance moves the meeting forward to the given step, recording progress
// and a processing-log entry. An out-of-order advance is rejected: nothing
// is stored and a validation error tells the caller why.
func (s *MeetingProcessingService) Advance(ctx context.Context, meetingUID string, toStep models.ProcessingStep, message string, durationMs int64) (*models.Meeting, error) {
	meeting, revision, err := s.meetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get meeting for advance", logging.ErrKey, err,
			"meeting_uid", meetingUID,
		)
		return nil, err
	}

	if meeting.IsTerminal() {
		slog.WarnContext(ctx, "ignoring step advance on terminal meeting",
			"meeting_uid", meetingUID,
			"current_step", meeting.ProcessingStep,
			"requested_step", toStep,
		)
		return nil, domain.NewValidationError(
			fmt.Sprintf("meeting %s already reached terminal state %s", meetingUID, meeting.Status))
	}

	if !toStep.After(meeting.ProcessingStep) {
		slog.WarnContext(ctx, "ignoring out-of-order step advance",
			"meeting_uid", meetingUID,
			"current_step", meeting.ProcessingStep,
			"requested_step", toStep,
		)
		return nil, domain.NewValidationError(
			fmt.Sprintf("step %s does not advance past %s", toStep, meeting.ProcessingStep))
	}

	now := time.Now().UTC()
	meeting.ProcessingStep = toStep
	meeting.ProcessingProgress = toStep.Progress()
	meeting.AppendLog(toStep, message, durationMs)

	if meeting.ProcessingStartedAt == nil {
		meeting.ProcessingStartedAt = utils.TimePtr(now)
	}
	if toStep == models.StepCompleted {
		meeting.Status = models.MeetingStatusCompleted
		meeting.ProcessingCompletedAt = utils.TimePtr(now)
	} else {
		meeting.Status = models.MeetingStatusProcessing
	}

	if err := s.meetingRepository.Update(ctx, meeting, revision); err != nil {
		slog.ErrorContext(ctx, "failed to update meeting step", logging.ErrKey, err,
			"meeting_uid", meetingUID,
			"step", toStep,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "meeting advanced",
		"meeting_uid", meetingUID,
		"step", toStep,
		"progress", meeting.ProcessingProgress,
	)

	return meeting, nil
}

// Fail marks the meeting's pipeline run failed. The failure step sits
// outside the ordered sequence and is reachable from any non-terminal step.
func (s *MeetingProcessingService) Fail(ctx context.Context, meetingUID string, processingErr error) (*models.Meeting, error) {
	meeting, revision, err := s.meetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get meeting for failure", logging.ErrKey, err,
			"meeting_uid", meetingUID,
		)
		return nil, err
	}

	if meeting.IsTerminal() {
		slog.WarnContext(ctx, "ignoring failure on terminal meeting",
			"meeting_uid", meetingUID,
			"status", meeting.Status,
		)
		return meeting, nil
	}

	meeting.Status = models.MeetingStatusFailed
	meeting.ProcessingStep = models.StepFailed
	meeting.ProcessingError = processingErr.Error()
	meeting.ProcessingCompletedAt = utils.TimePtr(time.Now().UTC())
	meeting.AppendLog(models.StepFailed, processingErr.Error(), 0)

	if err := s.meetingRepository.Update(ctx, meeting, revision); err != nil {
		slog.ErrorContext(ctx, "failed to mark meeting failed", logging.ErrKey, err,
			"meeting_uid", meetingUID,
		)
		return nil, err
	}

	slog.ErrorContext(ctx, "meeting processing failed",
		logging.PriorityCritical(),
		logging.ErrKey, processingErr,
		"meeting_uid", meetingUID,
	)

	return meeting, nil
}
