// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
)

// RetryService owns the retry queue for failed pipeline steps. Failures
// schedule retries on a linear backoff; the attempt that exhausts the budget
// promotes the record to the dead-letter store in the same operation.
type RetryService struct {
	webhookFailureRepository domain.WebhookFailureRepository
	deadLetterService        *DeadLetterService
	config                   ServiceConfig
}

// NewRetryService creates a new RetryService
func NewRetryService(
	webhookFailureRepository domain.WebhookFailureRepository,
	deadLetterService *DeadLetterService,
	serviceConfig ServiceConfig,
) *RetryService {
	return &RetryService{
		webhookFailureRepository: webhookFailureRepository,
		deadLetterService:        deadLetterService,
		config:                   serviceConfig,
	}
}

// ServiceReady checks if the service is ready to serve requests
func (s *RetryService) ServiceReady() bool {
	return s.webhookFailureRepository != nil && s.deadLetterService != nil
}

// RecordFailure stores a new retryable failure for a pipeline step that
// threw. The initial failure counts as attempt one. With a budget of one the
// record promotes straight to the dead-letter store.
func (s *RetryService) RecordFailure(ctx context.Context, event *models.RawEvent, replay models.StepReplay, stepErr error) (*models.WebhookFailure, error) {
	now := time.Now().UTC()
	failure := &models.WebhookFailure{
		UID:             uuid.New().String(),
		Platform:        event.Platform,
		EventType:       event.EventType,
		ExternalEventID: event.ExternalEventID,
		Payload:         json.RawMessage(event.Payload),
		Replay:          replay,
		Error:           stepErr.Error(),
		MaxAttempts:     s.config.MaxAttempts(),
		Status:          models.WebhookFailureStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	failure.RecordAttempt(stepErr.Error(), now)
	failure.NextRetryAt = models.NextRetrySchedule(now, failure.Attempts, s.config.BaseDelay())

	if failure.Exhausted() {
		failure.Status = models.WebhookFailureStatusDeadLetter
	}

	if err := s.webhookFailureRepository.Create(ctx, failure); err != nil {
		slog.ErrorContext(ctx, "failed to record webhook failure", logging.ErrKey, err,
			"raw_event_uid", replay.RawEventUID,
			"step", replay.Step,
		)
		return nil, err
	}

	slog.WarnContext(ctx, "webhook processing failure recorded",
		"webhook_failure_uid", failure.UID,
		"raw_event_uid", replay.RawEventUID,
		"step", replay.Step,
		"attempts", failure.Attempts,
		"max_attempts", failure.MaxAttempts,
		"next_retry_at", failure.NextRetryAt,
	)

	if failure.Status == models.WebhookFailureStatusDeadLetter {
		if _, err := s.deadLetterService.Promote(ctx, failure); err != nil {
			return nil, err
		}
	}

	return failure, nil
}

// DueForRetry returns the failures eligible for a retry at the given time,
// oldest due first.
func (s *RetryService) DueForRetry(ctx context.Context, now time.Time) ([]*models.WebhookFailure, error) {
	return s.webhookFailureRepository.ListDue(ctx, now)
}

// RecordRetryOutcome records the result of one retry attempt. A success
// completes the failure record. A failed attempt either schedules the next
// retry or, when the budget is spent, promotes the record to the dead-letter
// store. Promotion rides on the CAS update of the failure record: the loser
// of a concurrent update gets a conflict and cannot double-promote.
func (s *RetryService) RecordRetryOutcome(ctx context.Context, failureUID string, attemptErr error) (*models.WebhookFailure, error) {
	failure, revision, err := s.webhookFailureRepository.GetWithRevision(ctx, failureUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get webhook failure for outcome", logging.ErrKey, err,
			"webhook_failure_uid", failureUID,
		)
		return nil, err
	}

	if failure.Status == models.WebhookFailureStatusCompleted || failure.Status == models.WebhookFailureStatusDeadLetter {
		slog.WarnContext(ctx, "ignoring retry outcome for settled failure",
			"webhook_failure_uid", failureUID,
			"status", failure.Status,
		)
		return failure, nil
	}

	now := time.Now().UTC()

	if attemptErr == nil {
		failure.Status = models.WebhookFailureStatusCompleted
		failure.UpdatedAt = now
		if err := s.webhookFailureRepository.Update(ctx, failure, revision); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "webhook failure retried successfully",
			"webhook_failure_uid", failureUID,
			"attempts", failure.Attempts,
		)
		return failure, nil
	}

	failure.RecordAttempt(attemptErr.Error(), now)
	failure.Error = attemptErr.Error()

	if failure.Exhausted() {
		failure.Status = models.WebhookFailureStatusDeadLetter
		if err := s.webhookFailureRepository.Update(ctx, failure, revision); err != nil {
			slog.ErrorContext(ctx, "failed to settle exhausted failure", logging.ErrKey, err,
				"webhook_failure_uid", failureUID,
			)
			return nil, err
		}
		if _, err := s.deadLetterService.Promote(ctx, failure); err != nil {
			return nil, err
		}
		return failure, nil
	}

	failure.Status = models.WebhookFailureStatusRetrying
	failure.NextRetryAt = models.NextRetrySchedule(now, failure.Attempts, s.config.BaseDelay())
	if err := s.webhookFailureRepository.Update(ctx, failure, revision); err != nil {
		slog.ErrorContext(ctx, "failed to schedule next retry", logging.ErrKey, err,
			"webhook_failure_uid", failureUID,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "webhook failure retry scheduled",
		"webhook_failure_uid", failureUID,
		"attempts", failure.Attempts,
		"next_retry_at", failure.NextRetryAt,
	)

	return failure, nil
}
