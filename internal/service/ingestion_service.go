// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
)

// IngestResult reports the outcome of an ingestion attempt. Created is false
// when the delivery was a duplicate of an already-stored event.
type IngestResult struct {
	Created     bool
	RawEventUID string
}

// IngestionService persists inbound webhook deliveries. The request path
// does exactly one thing: store the event durably (or detect the duplicate)
// and return. All downstream work happens in the background worker.
type IngestionService struct {
	rawEventRepository domain.RawEventRepository
	config             ServiceConfig
}

// NewIngestionService creates a new IngestionService
func NewIngestionService(
	rawEventRepository domain.RawEventRepository,
	serviceConfig ServiceConfig,
) *IngestionService {
	return &IngestionService{
		rawEventRepository: rawEventRepository,
		config:             serviceConfig,
	}
}

// ServiceReady checks if the service is ready to serve requests
func (s *IngestionService) ServiceReady() bool {
	return s.rawEventRepository != nil
}

// Ingest stores one webhook delivery. The store key is derived from the
// platform and external event ID, so a redelivered event hits a conflict on
// create and is reported back as a duplicate rather than an error.
func (s *IngestionService) Ingest(ctx context.Context, platform models.Platform, eventType, externalEventID string, payload []byte) (*IngestResult, error) {
	if !platform.IsValid() {
		return nil, domain.NewValidationError("unsupported platform: " + platform.String())
	}
	if eventType == "" {
		return nil, domain.NewValidationError("event type is required")
	}
	if externalEventID == "" {
		return nil, domain.NewValidationError("external event ID is required")
	}
	if len(payload) == 0 {
		return nil, domain.NewValidationError("payload is required")
	}

	event := &models.RawEvent{
		UID:             uuid.New().String(),
		Platform:        platform,
		EventType:       eventType,
		ExternalEventID: externalEventID,
		Payload:         json.RawMessage(payload),
		Status:          models.RawEventStatusReceived,
		ReceivedAt:      time.Now().UTC(),
	}
	s.extractHints(ctx, event)

	err := s.rawEventRepository.Create(ctx, event)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			existing, getErr := s.rawEventRepository.Get(ctx, platform, externalEventID)
			if getErr != nil {
				slog.ErrorContext(ctx, "failed to load duplicate raw event", logging.ErrKey, getErr,
					"external_event_id", externalEventID,
					"platform", platform,
				)
				return nil, getErr
			}
			slog.InfoContext(ctx, "duplicate webhook delivery ignored",
				"raw_event_uid", existing.UID,
				"external_event_id", externalEventID,
				"platform", platform,
			)
			return &IngestResult{Created: false, RawEventUID: existing.UID}, nil
		}
		slog.ErrorContext(ctx, "failed to store raw event", logging.ErrKey, err,
			"external_event_id", externalEventID,
			"platform", platform,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "raw event stored",
		"raw_event_uid", event.UID,
		"external_event_id", externalEventID,
		"platform", platform,
		"event_type", eventType,
	)

	return &IngestResult{Created: true, RawEventUID: event.UID}, nil
}

// Replay re-submits a preserved payload through ingestion. The original raw
// event already exists, so the exclusive create conflicts; replay then
// resets the existing record to received so the worker picks it up again.
func (s *IngestionService) Replay(ctx context.Context, platform models.Platform, eventType, externalEventID string, payload []byte) (*IngestResult, error) {
	result, err := s.Ingest(ctx, platform, eventType, externalEventID, payload)
	if err != nil {
		return nil, err
	}
	if result.Created {
		return result, nil
	}

	existing, revision, err := s.rawEventRepository.GetWithRevision(ctx, platform, externalEventID)
	if err != nil {
		return nil, err
	}

	// An event the worker still owns must not be reset underneath it.
	if !existing.IsTerminal() {
		slog.InfoContext(ctx, "raw event still in flight, skipping replay reset",
			"raw_event_uid", existing.UID,
			"status", existing.Status,
		)
		return &IngestResult{Created: false, RawEventUID: existing.UID}, nil
	}

	existing.Status = models.RawEventStatusReceived
	existing.ErrorMessage = ""
	existing.ProcessedAt = nil
	if err := s.rawEventRepository.Update(ctx, existing, revision); err != nil {
		slog.ErrorContext(ctx, "failed to reset raw event for replay", logging.ErrKey, err,
			"raw_event_uid", existing.UID,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "raw event reset for replay",
		"raw_event_uid", existing.UID,
		"platform", platform,
		"event_type", eventType,
	)

	return &IngestResult{Created: false, RawEventUID: existing.UID}, nil
}

// extractHints pulls lightweight correlation fields out of the payload
// without deep parsing. A payload that doesn't match the expected shape is
// stored anyway; hints are best-effort.
func (s *IngestionService) extractHints(ctx context.Context, event *models.RawEvent) {
	switch event.Platform {
	case models.PlatformZoom:
		s.extractZoomHints(ctx, event)
	case models.PlatformGoogleMeet:
		s.extractMeetHints(ctx, event)
	case models.PlatformMicrosoftTeams:
		s.extractTeamsHints(ctx, event)
	}
}

func (s *IngestionService) extractZoomHints(ctx context.Context, event *models.RawEvent) {
	var envelope models.ZoomWebhookEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		slog.DebugContext(ctx, "skipping hint extraction for unparseable Zoom payload", logging.ErrKey, err)
		return
	}

	switch event.EventType {
	case models.ZoomEventMeetingEnded:
		var payload models.ZoomMeetingEndedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return
		}
		event.PlatformMeetingID = payload.Object.ID
		event.HostEmail = payload.Object.HostEmail
		if !payload.Object.EndTime.IsZero() {
			endTime := payload.Object.EndTime
			event.EndTime = &endTime
		}
	case models.ZoomEventRecordingCompleted:
		var payload models.ZoomRecordingCompletedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return
		}
		event.PlatformMeetingID = strconv.FormatInt(payload.Object.ID, 10)
		event.HostEmail = payload.Object.HostEmail
		event.HasRecording = len(payload.Object.RecordingFiles) > 0
	case models.ZoomEventTranscriptCompleted:
		var payload models.ZoomTranscriptCompletedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return
		}
		event.PlatformMeetingID = strconv.FormatInt(payload.Object.ID, 10)
		event.HostEmail = payload.Object.HostEmail
		event.HasRecording = len(payload.Object.RecordingFiles) > 0
		if _, err := payload.TranscriptFile(); err == nil {
			event.HasTranscript = true
		}
		if !payload.Object.EndTime.IsZero() {
			endTime := payload.Object.EndTime
			event.EndTime = &endTime
		}
	}
}

func (s *IngestionService) extractMeetHints(ctx context.Context, event *models.RawEvent) {
	var envelope models.MeetWebhookEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		slog.DebugContext(ctx, "skipping hint extraction for unparseable Meet payload", logging.ErrKey, err)
		return
	}

	event.PlatformMeetingID = envelope.Payload.ConferenceRecord.Name
	event.HostEmail = envelope.Payload.Organizer.Email
	if !envelope.Payload.ConferenceRecord.EndTime.IsZero() {
		endTime := envelope.Payload.ConferenceRecord.EndTime
		event.EndTime = &endTime
	}
	if event.EventType == models.MeetEventTranscriptFileReady {
		event.HasTranscript = envelope.Payload.Transcript.Name != ""
	}
	if event.EventType == models.MeetEventRecordingFileReady {
		event.HasRecording = true
	}
}

func (s *IngestionService) extractTeamsHints(ctx context.Context, event *models.RawEvent) {
	var envelope models.TeamsWebhookEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		slog.DebugContext(ctx, "skipping hint extraction for unparseable Teams payload", logging.ErrKey, err)
		return
	}
	if len(envelope.Value) == 0 {
		return
	}

	notification := envelope.Value[0]
	event.PlatformMeetingID = notification.ResourceData.MeetingID
	event.HostEmail = notification.ResourceData.OrganizerEmail
	if notification.ResourceData.CallEndTime != nil {
		event.EndTime = notification.ResourceData.CallEndTime
	}
	if notification.ResourceData.TranscriptURL != "" {
		event.HasTranscript = true
	}
}
