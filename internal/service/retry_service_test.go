// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recapio/transcript-pipeline-service/internal/domain/mocks"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

type retryServiceFixture struct {
	service        *RetryService
	failureRepo    *mocks.MockWebhookFailureRepository
	deadLetterRepo *mocks.MockDeadLetterRepository
	messageSender  *mocks.MockMessageSender
}

func setupRetryService(config ServiceConfig) retryServiceFixture {
	failureRepo := &mocks.MockWebhookFailureRepository{}
	deadLetterRepo := &mocks.MockDeadLetterRepository{}
	messageSender := &mocks.MockMessageSender{}
	rawEventRepo := &mocks.MockRawEventRepository{}

	deadLetterService := NewDeadLetterService(deadLetterRepo, messageSender, NewIngestionService(rawEventRepo, config), config)

	return retryServiceFixture{
		service:        NewRetryService(failureRepo, deadLetterService, config),
		failureRepo:    failureRepo,
		deadLetterRepo: deadLetterRepo,
		messageSender:  messageSender,
	}
}

func retryTestEvent() *models.RawEvent {
	return &models.RawEvent{
		UID:             "event-1",
		Platform:        models.PlatformZoom,
		EventType:       "recording.transcript_completed",
		ExternalEventID: "recording.transcript_completed/abc/1700000000",
		Payload:         []byte(`{"event":"recording.transcript_completed"}`),
	}
}

func TestRecordFailure(t *testing.T) {
	replay := models.StepReplay{RawEventUID: "event-1", MeetingUID: "meeting-1", Step: models.StepTranscriptDownload}

	t.Run("schedules first retry", func(t *testing.T) {
		fixture := setupRetryService(ServiceConfig{RetryBaseDelay: time.Second})

		var stored *models.WebhookFailure
		fixture.failureRepo.On("Create", mock.Anything, mock.MatchedBy(func(failure *models.WebhookFailure) bool {
			stored = failure
			return failure.Status == models.WebhookFailureStatusPending
		})).Return(nil)

		failure, err := fixture.service.RecordFailure(context.Background(), retryTestEvent(), replay, errors.New("download timed out"))

		require.NoError(t, err)
		assert.Equal(t, 1, failure.Attempts)
		assert.Equal(t, models.DefaultMaxAttempts, failure.MaxAttempts)
		assert.Equal(t, "recording.transcript_completed/abc/1700000000", failure.ExternalEventID)
		require.NotNil(t, stored)
		require.NotNil(t, stored.LastAttempt)
		assert.Equal(t, stored.LastAttempt.Add(time.Second), stored.NextRetryAt)
		require.Len(t, failure.History, 1)
		assert.Equal(t, "download timed out", failure.History[0].Error)
		fixture.deadLetterRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("budget of one promotes immediately", func(t *testing.T) {
		fixture := setupRetryService(ServiceConfig{RetryMaxAttempts: 1})

		fixture.failureRepo.On("Create", mock.Anything, mock.MatchedBy(func(failure *models.WebhookFailure) bool {
			return failure.Status == models.WebhookFailureStatusDeadLetter
		})).Return(nil)
		fixture.deadLetterRepo.On("Create", mock.Anything, mock.MatchedBy(func(deadLetter *models.DeadLetter) bool {
			return deadLetter.TotalAttempts == 1 && deadLetter.Error == "download timed out"
		})).Return(nil)
		fixture.messageSender.On("SendDeadLetterAlert", mock.Anything, mock.Anything).
			Return(errors.New("broker unavailable"))

		failure, err := fixture.service.RecordFailure(context.Background(), retryTestEvent(), replay, errors.New("download timed out"))

		require.NoError(t, err)
		assert.Equal(t, models.WebhookFailureStatusDeadLetter, failure.Status)
		fixture.deadLetterRepo.AssertExpectations(t)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		fixture := setupRetryService(ServiceConfig{})

		fixture.failureRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("kv unavailable"))

		_, err := fixture.service.RecordFailure(context.Background(), retryTestEvent(), replay, errors.New("download timed out"))

		require.Error(t, err)
	})
}

func TestRecordRetryOutcome(t *testing.T) {
	t.Run("success completes the failure", func(t *testing.T) {
		fixture := setupRetryService(ServiceConfig{})

		failure := &models.WebhookFailure{
			UID:         "failure-1",
			Status:      models.WebhookFailureStatusRetrying,
			Attempts:    1,
			MaxAttempts: 3,
		}
		fixture.failureRepo.On("GetWithRevision", mock.Anything, "failure-1").Return(failure, uint64(2), nil)
		fixture.failureRepo.On("Update", mock.Anything, mock.MatchedBy(func(f *models.WebhookFailure) bool {
			return f.Status == models.WebhookFailureStatusCompleted
		}), uint64(2)).Return(nil)

		updated, err := fixture.service.RecordRetryOutcome(context.Background(), "failure-1", nil)

		require.NoError(t, err)
		assert.Equal(t, models.WebhookFailureStatusCompleted, updated.Status)
		assert.Equal(t, 1, updated.Attempts)
	})

	t.Run("failed attempt schedules the next retry", func(t *testing.T) {
		fixture := setupRetryService(ServiceConfig{RetryBaseDelay: time.Second})

		failure := &models.WebhookFailure{
			UID:         "failure-1",
			Status:      models.WebhookFailureStatusRetrying,
			Attempts:    1,
			MaxAttempts: 3,
		}
		fixture.failureRepo.On("GetWithRevision", mock.Anything, "failure-1").Return(failure, uint64(2), nil)
		fixture.failureRepo.On("Update", mock.Anything, mock.MatchedBy(func(f *models.WebhookFailure) bool {
			return f.Status == models.WebhookFailureStatusRetrying && f.Attempts == 2
		}), uint64(2)).Return(nil)

		updated, err := fixture.service.RecordRetryOutcome(context.Background(), "failure-1", errors.New("still failing"))

		require.NoError(t, err)
		require.NotNil(t, updated.LastAttempt)
		// Second attempt waits twice the base delay.
		assert.Equal(t, updated.LastAttempt.Add(2*time.Second), updated.NextRetryAt)
		assert.Len(t, updated.History, 1)
		fixture.deadLetterRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("exhausted budget promotes to dead letter", func(t *testing.T) {
		fixture := setupRetryService(ServiceConfig{})

		failure := &models.WebhookFailure{
			UID:         "failure-1",
			Platform:    models.PlatformZoom,
			EventType:   "recording.transcript_completed",
			Status:      models.WebhookFailureStatusRetrying,
			Attempts:    2,
			MaxAttempts: 3,
		}
		fixture.failureRepo.On("GetWithRevision", mock.Anything, "failure-1").Return(failure, uint64(4), nil)
		fixture.failureRepo.On("Update", mock.Anything, mock.MatchedBy(func(f *models.WebhookFailure) bool {
			return f.Status == models.WebhookFailureStatusDeadLetter && f.Attempts == 3
		}), uint64(4)).Return(nil)
		fixture.deadLetterRepo.On("Create", mock.Anything, mock.MatchedBy(func(deadLetter *models.DeadLetter) bool {
			return deadLetter.WebhookFailureUID == "failure-1" && deadLetter.TotalAttempts == 3
		})).Return(nil)
		fixture.messageSender.On("SendDeadLetterAlert", mock.Anything, mock.Anything).
			Return(errors.New("broker unavailable"))

		updated, err := fixture.service.RecordRetryOutcome(context.Background(), "failure-1", errors.New("final failure"))

		require.NoError(t, err)
		assert.Equal(t, models.WebhookFailureStatusDeadLetter, updated.Status)
		fixture.deadLetterRepo.AssertExpectations(t)
	})

	t.Run("settled failure ignores late outcome", func(t *testing.T) {
		fixture := setupRetryService(ServiceConfig{})

		failure := &models.WebhookFailure{
			UID:    "failure-1",
			Status: models.WebhookFailureStatusCompleted,
		}
		fixture.failureRepo.On("GetWithRevision", mock.Anything, "failure-1").Return(failure, uint64(5), nil)

		updated, err := fixture.service.RecordRetryOutcome(context.Background(), "failure-1", errors.New("late failure"))

		require.NoError(t, err)
		assert.Equal(t, models.WebhookFailureStatusCompleted, updated.Status)
		fixture.failureRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDueForRetry(t *testing.T) {
	fixture := setupRetryService(ServiceConfig{})
	now := time.Now().UTC()

	due := []*models.WebhookFailure{{UID: "failure-1"}, {UID: "failure-2"}}
	fixture.failureRepo.On("ListDue", mock.Anything, now).Return(due, nil)

	failures, err := fixture.service.DueForRetry(context.Background(), now)

	require.NoError(t, err)
	assert.Len(t, failures, 2)
}
