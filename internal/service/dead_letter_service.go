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

// DeadLetterService owns the permanent record of failures that exhausted
// their retry budget. Nothing in here deletes records; resolution is a
// manual operator action and replay goes back through ingestion.
type DeadLetterService struct {
	deadLetterRepository domain.DeadLetterRepository
	messageSender        domain.MessageSender
	ingestionService     *IngestionService
	config               ServiceConfig
}

// NewDeadLetterService creates a new DeadLetterService
func NewDeadLetterService(
	deadLetterRepository domain.DeadLetterRepository,
	messageSender domain.MessageSender,
	ingestionService *IngestionService,
	serviceConfig ServiceConfig,
) *DeadLetterService {
	return &DeadLetterService{
		deadLetterRepository: deadLetterRepository,
		messageSender:        messageSender,
		ingestionService:     ingestionService,
		config:               serviceConfig,
	}
}

// ServiceReady checks if the service is ready to serve requests
func (s *DeadLetterService) ServiceReady() bool {
	return s.deadLetterRepository != nil && s.messageSender != nil && s.ingestionService != nil
}

// Promote records an exhausted failure as a dead letter and publishes the
// operator alert. Records are keyed by the originating failure UID, so a
// second promotion of the same failure finds the existing record instead of
// creating another. A failed alert publish never fails the promotion.
func (s *DeadLetterService) Promote(ctx context.Context, failure *models.WebhookFailure) (*models.DeadLetter, error) {
	now := time.Now().UTC()
	deadLetter := models.NewDeadLetterFromFailure(uuid.New().String(), failure, now)

	err := s.deadLetterRepository.Create(ctx, deadLetter)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			existing, getErr := s.deadLetterRepository.Get(ctx, failure.UID)
			if getErr != nil {
				return nil, getErr
			}
			slog.InfoContext(ctx, "failure already promoted to dead letter",
				"dead_letter_uid", existing.UID,
				"webhook_failure_uid", failure.UID,
			)
			return existing, nil
		}
		slog.ErrorContext(ctx, "failed to create dead letter", logging.ErrKey, err,
			logging.PriorityCritical(),
			"webhook_failure_uid", failure.UID,
		)
		return nil, err
	}

	slog.ErrorContext(ctx, "failure promoted to dead letter",
		logging.PriorityCritical(),
		"dead_letter_uid", deadLetter.UID,
		"webhook_failure_uid", failure.UID,
		"platform", failure.Platform,
		"event_type", failure.EventType,
		"total_attempts", deadLetter.TotalAttempts,
	)

	s.sendAlert(ctx, deadLetter)

	return deadLetter, nil
}

// sendAlert publishes the operator notification and records that it went
// out. Alert failures are logged and swallowed; the dead letter itself is
// already durable.
func (s *DeadLetterService) sendAlert(ctx context.Context, deadLetter *models.DeadLetter) {
	alert := models.DeadLetterAlert{
		DeadLetterUID: deadLetter.UID,
		Platform:      deadLetter.Platform,
		EventType:     deadLetter.EventType,
		Error:         deadLetter.Error,
		TotalAttempts: deadLetter.TotalAttempts,
		CreatedAt:     deadLetter.CreatedAt,
	}
	if err := s.messageSender.SendDeadLetterAlert(ctx, alert); err != nil {
		slog.WarnContext(ctx, "failed to publish dead letter alert", logging.ErrKey, err,
			"dead_letter_uid", deadLetter.UID,
		)
		return
	}

	stored, revision, err := s.deadLetterRepository.GetWithRevision(ctx, deadLetter.WebhookFailureUID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load dead letter for alert accounting", logging.ErrKey, err,
			"dead_letter_uid", deadLetter.UID,
		)
		return
	}
	stored.AlertSent = true
	stored.UpdatedAt = time.Now().UTC()
	if err := s.deadLetterRepository.Update(ctx, stored, revision); err != nil {
		slog.WarnContext(ctx, "failed to record dead letter alert", logging.ErrKey, err,
			"dead_letter_uid", deadLetter.UID,
		)
		return
	}
	deadLetter.AlertSent = true
}

// Resolve marks the dead letter resolved with the operator's notes.
// Resolving an already-resolved record is a no-op.
func (s *DeadLetterService) Resolve(ctx context.Context, webhookFailureUID, notes string) (*models.DeadLetter, error) {
	deadLetter, revision, err := s.deadLetterRepository.GetWithRevision(ctx, webhookFailureUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get dead letter for resolution", logging.ErrKey, err,
			"webhook_failure_uid", webhookFailureUID,
		)
		return nil, err
	}

	if deadLetter.Resolved {
		slog.InfoContext(ctx, "dead letter already resolved",
			"dead_letter_uid", deadLetter.UID,
		)
		return deadLetter, nil
	}

	deadLetter.Resolve(notes, time.Now().UTC())
	if err := s.deadLetterRepository.Update(ctx, deadLetter, revision); err != nil {
		slog.ErrorContext(ctx, "failed to resolve dead letter", logging.ErrKey, err,
			"dead_letter_uid", deadLetter.UID,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "dead letter resolved",
		"dead_letter_uid", deadLetter.UID,
		"webhook_failure_uid", webhookFailureUID,
	)

	return deadLetter, nil
}

// Replay re-submits the dead letter's preserved payload through ingestion,
// resetting the original raw event so the worker reprocesses it. Replay does
// not resolve the record; that stays with the operator.
func (s *DeadLetterService) Replay(ctx context.Context, webhookFailureUID string) (*IngestResult, error) {
	deadLetter, err := s.deadLetterRepository.Get(ctx, webhookFailureUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get dead letter for replay", logging.ErrKey, err,
			"webhook_failure_uid", webhookFailureUID,
		)
		return nil, err
	}

	result, err := s.ingestionService.Replay(ctx, deadLetter.Platform, deadLetter.EventType, deadLetter.ExternalEventID, deadLetter.Payload)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "dead letter payload replayed",
		"dead_letter_uid", deadLetter.UID,
		"raw_event_uid", result.RawEventUID,
	)

	return result, nil
}

// ListUnresolved returns the dead letters still waiting on an operator.
func (s *DeadLetterService) ListUnresolved(ctx context.Context) ([]*models.DeadLetter, error) {
	return s.deadLetterRepository.ListUnresolved(ctx)
}

// ListAll returns every dead letter, resolved or not.
func (s *DeadLetterService) ListAll(ctx context.Context) ([]*models.DeadLetter, error) {
	return s.deadLetterRepository.ListAll(ctx)
}
