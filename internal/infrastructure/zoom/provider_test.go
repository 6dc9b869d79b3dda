// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// mockClient implements api.ClientAPI for testing
type mockClient struct {
	mock.Mock
}

func (m *mockClient) DownloadTranscript(ctx context.Context, downloadURL, downloadToken string) ([]byte, error) {
	args := m.Called(ctx, downloadURL, downloadToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func transcriptCompletedEvent() *models.RawEvent {
	return &models.RawEvent{
		UID:       "event-1",
		Platform:  models.PlatformZoom,
		EventType: models.ZoomEventTranscriptCompleted,
		Payload: []byte(`{
			"event": "recording.transcript_completed",
			"payload": {
				"object": {
					"uuid": "u8oJ+Zz3S/a+b==",
					"id": 987654,
					"recording_files": [
						{"file_type": "MP4", "download_url": "https://zoom.example/rec/video"},
						{"file_type": "TRANSCRIPT", "download_url": "https://zoom.example/rec/transcript"}
					]
				},
				"download_token": "delivery-token"
			}
		}`),
	}
}

func TestFetchTranscript(t *testing.T) {
	meeting := &models.Meeting{UID: "meeting-1", Platform: models.PlatformZoom}

	t.Run("downloads the transcript file with the delivery token", func(t *testing.T) {
		client := &mockClient{}
		client.On("DownloadTranscript", mock.Anything, "https://zoom.example/rec/transcript", "delivery-token").
			Return([]byte("WEBVTT\n"), nil)

		download, err := NewProvider(client).FetchTranscript(context.Background(), meeting, transcriptCompletedEvent())

		require.NoError(t, err)
		assert.Equal(t, models.TranscriptFormatVTT, download.Format)
		assert.Equal(t, "WEBVTT\n", string(download.Content))
		client.AssertExpectations(t)
	})

	t.Run("rejects events without transcript content", func(t *testing.T) {
		client := &mockClient{}
		event := transcriptCompletedEvent()
		event.EventType = models.ZoomEventMeetingEnded

		_, err := NewProvider(client).FetchTranscript(context.Background(), meeting, event)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
		client.AssertNotCalled(t, "DownloadTranscript", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payload without a transcript file is rejected", func(t *testing.T) {
		client := &mockClient{}
		event := transcriptCompletedEvent()
		event.Payload = []byte(`{
			"event": "recording.transcript_completed",
			"payload": {"object": {"id": 987654, "recording_files": [{"file_type": "MP4"}]}}
		}`)

		_, err := NewProvider(client).FetchTranscript(context.Background(), meeting, event)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("download failure surfaces as internal error", func(t *testing.T) {
		client := &mockClient{}
		client.On("DownloadTranscript", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("download request failed with status 401"))

		_, err := NewProvider(client).FetchTranscript(context.Background(), meeting, transcriptCompletedEvent())

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}
