// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/mocks"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

func setupIngestionService() (*IngestionService, *mocks.MockRawEventRepository) {
	repo := &mocks.MockRawEventRepository{}
	return NewIngestionService(repo, ServiceConfig{}), repo
}

func TestIngestionServiceReady(t *testing.T) {
	service, _ := setupIngestionService()
	assert.True(t, service.ServiceReady())

	assert.False(t, NewIngestionService(nil, ServiceConfig{}).ServiceReady())
}

func TestIngest(t *testing.T) {
	payload := []byte(`{"event":"meeting.ended","event_ts":1714000000,"payload":{"object":{"id":"987654","host_email":"host@example.org"}}}`)

	t.Run("stores new event", func(t *testing.T) {
		service, repo := setupIngestionService()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(event *models.RawEvent) bool {
			return event.Platform == models.PlatformZoom &&
				event.EventType == models.ZoomEventMeetingEnded &&
				event.ExternalEventID == "evt-1" &&
				event.Status == models.RawEventStatusReceived
		})).Return(nil)

		result, err := service.Ingest(context.Background(), models.PlatformZoom, models.ZoomEventMeetingEnded, "evt-1", payload)

		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.NotEmpty(t, result.RawEventUID)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate delivery is reported not errored", func(t *testing.T) {
		service, repo := setupIngestionService()
		existing := &models.RawEvent{UID: "existing-uid", Status: models.RawEventStatusProcessed}
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.NewConflictError("raw event already exists"))
		repo.On("Get", mock.Anything, models.PlatformZoom, "evt-1").Return(existing, nil)

		result, err := service.Ingest(context.Background(), models.PlatformZoom, models.ZoomEventMeetingEnded, "evt-1", payload)

		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, "existing-uid", result.RawEventUID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		service, _ := setupIngestionService()
		ctx := context.Background()

		_, err := service.Ingest(ctx, models.Platform("webex"), "meeting.ended", "evt-1", payload)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

		_, err = service.Ingest(ctx, models.PlatformZoom, "", "evt-1", payload)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

		_, err = service.Ingest(ctx, models.PlatformZoom, "meeting.ended", "", payload)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

		_, err = service.Ingest(ctx, models.PlatformZoom, "meeting.ended", "evt-1", nil)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("extracts zoom hints", func(t *testing.T) {
		service, repo := setupIngestionService()
		var stored *models.RawEvent
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.RawEvent)
		}).Return(nil)

		_, err := service.Ingest(context.Background(), models.PlatformZoom, models.ZoomEventMeetingEnded, "evt-1", payload)

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "987654", stored.PlatformMeetingID)
		assert.Equal(t, "host@example.org", stored.HostEmail)
	})

	t.Run("transcript completed sets transcript hint", func(t *testing.T) {
		service, repo := setupIngestionService()
		transcriptPayload := []byte(`{"event":"recording.transcript_completed","payload":{"object":{"id":123456,"host_email":"host@example.org","recording_files":[{"file_type":"TRANSCRIPT","download_url":"https://zoom.us/rec/download/abc"}]}}}`)
		var stored *models.RawEvent
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.RawEvent)
		}).Return(nil)

		_, err := service.Ingest(context.Background(), models.PlatformZoom, models.ZoomEventTranscriptCompleted, "evt-2", transcriptPayload)

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "123456", stored.PlatformMeetingID)
		assert.True(t, stored.HasTranscript)
		assert.True(t, stored.HasRecording)
	})

	t.Run("unparseable payload is stored without hints", func(t *testing.T) {
		service, repo := setupIngestionService()
		var stored *models.RawEvent
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.RawEvent)
		}).Return(nil)

		result, err := service.Ingest(context.Background(), models.PlatformZoom, models.ZoomEventMeetingEnded, "evt-3", []byte(`not json at all`))

		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.Empty(t, stored.PlatformMeetingID)
	})
}

func TestIngestReplay(t *testing.T) {
	payload := []byte(`{"event":"meeting.ended","payload":{"object":{"id":"987654"}}}`)

	t.Run("resets existing event to received", func(t *testing.T) {
		service, repo := setupIngestionService()
		now := time.Now().UTC()
		existing := &models.RawEvent{
			UID:          "existing-uid",
			Platform:     models.PlatformZoom,
			Status:       models.RawEventStatusFailed,
			ErrorMessage: "download failed",
			ProcessedAt:  &now,
		}
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.NewConflictError("raw event already exists"))
		repo.On("Get", mock.Anything, models.PlatformZoom, "evt-1").Return(existing, nil)
		repo.On("GetWithRevision", mock.Anything, models.PlatformZoom, "evt-1").Return(existing, uint64(7), nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(event *models.RawEvent) bool {
			return event.Status == models.RawEventStatusReceived &&
				event.ErrorMessage == "" &&
				event.ProcessedAt == nil
		}), uint64(7)).Return(nil)

		result, err := service.Replay(context.Background(), models.PlatformZoom, models.ZoomEventMeetingEnded, "evt-1", payload)

		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, "existing-uid", result.RawEventUID)
		repo.AssertExpectations(t)
	})

	t.Run("in-flight event is left untouched", func(t *testing.T) {
		service, repo := setupIngestionService()
		existing := &models.RawEvent{
			UID:      "existing-uid",
			Platform: models.PlatformZoom,
			Status:   models.RawEventStatusProcessing,
		}
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.NewConflictError("raw event already exists"))
		repo.On("Get", mock.Anything, models.PlatformZoom, "evt-1").Return(existing, nil)
		repo.On("GetWithRevision", mock.Anything, models.PlatformZoom, "evt-1").Return(existing, uint64(7), nil)

		result, err := service.Replay(context.Background(), models.PlatformZoom, models.ZoomEventMeetingEnded, "evt-1", payload)

		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, "existing-uid", result.RawEventUID)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing original is stored fresh", func(t *testing.T) {
		service, repo := setupIngestionService()
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		result, err := service.Replay(context.Background(), models.PlatformZoom, models.ZoomEventMeetingEnded, "evt-9", payload)

		require.NoError(t, err)
		assert.True(t, result.Created)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}
