// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

func testRawEvent(externalEventID string, status models.RawEventStatus) *models.RawEvent {
	return &models.RawEvent{
		UID:             "event-" + externalEventID,
		Platform:        models.PlatformZoom,
		EventType:       "recording.transcript_completed",
		ExternalEventID: externalEventID,
		Payload:         []byte(`{"event":"recording.transcript_completed"}`),
		Status:          status,
		ReceivedAt:      time.Now().UTC(),
	}
}

func TestRawEventRepositoryCreate(t *testing.T) {
	t.Run("stores the event", func(t *testing.T) {
		repo := NewNatsRawEventRepository(NewMockNatsKeyValue())
		event := testRawEvent("ext-1", models.RawEventStatusReceived)

		require.NoError(t, repo.Create(context.Background(), event))

		stored, err := repo.Get(context.Background(), models.PlatformZoom, "ext-1")
		require.NoError(t, err)
		assert.Equal(t, event.UID, stored.UID)
		assert.Equal(t, models.RawEventStatusReceived, stored.Status)
	})

	t.Run("duplicate delivery is a conflict", func(t *testing.T) {
		repo := NewNatsRawEventRepository(NewMockNatsKeyValue())
		require.NoError(t, repo.Create(context.Background(), testRawEvent("ext-1", models.RawEventStatusReceived)))

		err := repo.Create(context.Background(), testRawEvent("ext-1", models.RawEventStatusReceived))

		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	})

	t.Run("event IDs with slashes and plus signs are safe keys", func(t *testing.T) {
		repo := NewNatsRawEventRepository(NewMockNatsKeyValue())
		event := testRawEvent("recording.transcript_completed/u8oJ+Zz3S/a+b==/1700000000", models.RawEventStatusReceived)

		require.NoError(t, repo.Create(context.Background(), event))

		stored, err := repo.Get(context.Background(), models.PlatformZoom, event.ExternalEventID)
		require.NoError(t, err)
		assert.Equal(t, event.ExternalEventID, stored.ExternalEventID)
	})
}

func TestRawEventRepositoryGet(t *testing.T) {
	repo := NewNatsRawEventRepository(NewMockNatsKeyValue())

	_, err := repo.Get(context.Background(), models.PlatformZoom, "missing")
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))

	exists, err := repo.Exists(context.Background(), models.PlatformZoom, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRawEventRepositoryUpdate(t *testing.T) {
	t.Run("CAS update succeeds with the current revision", func(t *testing.T) {
		repo := NewNatsRawEventRepository(NewMockNatsKeyValue())
		require.NoError(t, repo.Create(context.Background(), testRawEvent("ext-1", models.RawEventStatusReceived)))

		event, revision, err := repo.GetWithRevision(context.Background(), models.PlatformZoom, "ext-1")
		require.NoError(t, err)

		event.Status = models.RawEventStatusProcessing
		require.NoError(t, repo.Update(context.Background(), event, revision))

		stored, err := repo.Get(context.Background(), models.PlatformZoom, "ext-1")
		require.NoError(t, err)
		assert.Equal(t, models.RawEventStatusProcessing, stored.Status)
	})

	t.Run("stale revision is a conflict", func(t *testing.T) {
		repo := NewNatsRawEventRepository(NewMockNatsKeyValue())
		require.NoError(t, repo.Create(context.Background(), testRawEvent("ext-1", models.RawEventStatusReceived)))

		event, revision, err := repo.GetWithRevision(context.Background(), models.PlatformZoom, "ext-1")
		require.NoError(t, err)

		event.Status = models.RawEventStatusProcessing
		require.NoError(t, repo.Update(context.Background(), event, revision))

		// Second writer still holds the old revision.
		err = repo.Update(context.Background(), event, revision)
		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	})

	t.Run("event without key fields is rejected", func(t *testing.T) {
		repo := NewNatsRawEventRepository(NewMockNatsKeyValue())

		err := repo.Update(context.Background(), &models.RawEvent{UID: "event-1"}, 1)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestRawEventRepositoryListByStatus(t *testing.T) {
	repo := NewNatsRawEventRepository(NewMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testRawEvent("ext-1", models.RawEventStatusReceived)))
	require.NoError(t, repo.Create(ctx, testRawEvent("ext-2", models.RawEventStatusProcessed)))
	require.NoError(t, repo.Create(ctx, testRawEvent("ext-3", models.RawEventStatusReceived)))

	received, err := repo.ListByStatus(ctx, models.RawEventStatusReceived)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	failed, err := repo.ListByStatus(ctx, models.RawEventStatusFailed)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestRawEventRepositoryNotReady(t *testing.T) {
	repo := NewNatsRawEventRepository(nil)

	assert.False(t, repo.IsReady())

	err := repo.Create(context.Background(), testRawEvent("ext-1", models.RawEventStatusReceived))
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
