// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// NatsDeadLetterRepository implements DeadLetterRepository using the NATS KV
// store. Records are keyed by the originating webhook failure UID, which
// makes promotion idempotent: a concurrent or replayed promotion of the same
// failure surfaces as a conflict instead of a second record.
type NatsDeadLetterRepository struct {
	*NatsBaseRepository[models.DeadLetter]
}

// NewNatsDeadLetterRepository creates a new dead letter repository
func NewNatsDeadLetterRepository(kvStore INatsKeyValue) *NatsDeadLetterRepository {
	return &NatsDeadLetterRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.DeadLetter](kvStore, "dead letter"),
	}
}

// Create creates a new dead letter record
func (r *NatsDeadLetterRepository) Create(ctx context.Context, deadLetter *models.DeadLetter) error {
	return r.CreateExclusive(ctx, deadLetter.WebhookFailureUID, deadLetter)
}

// Get retrieves a dead letter by its originating webhook failure UID
func (r *NatsDeadLetterRepository) Get(ctx context.Context, webhookFailureUID string) (*models.DeadLetter, error) {
	return r.NatsBaseRepository.Get(ctx, webhookFailureUID)
}

// GetWithRevision retrieves a dead letter with its revision
func (r *NatsDeadLetterRepository) GetWithRevision(ctx context.Context, webhookFailureUID string) (*models.DeadLetter, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, webhookFailureUID)
}

// Update updates the mutable fields of a dead letter (alert flag, resolution)
func (r *NatsDeadLetterRepository) Update(ctx context.Context, deadLetter *models.DeadLetter, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, deadLetter.WebhookFailureUID, deadLetter, revision)
}

// ListUnresolved retrieves all dead letters awaiting operator attention
func (r *NatsDeadLetterRepository) ListUnresolved(ctx context.Context) ([]*models.DeadLetter, error) {
	all, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var unresolved []*models.DeadLetter
	for _, deadLetter := range all {
		if !deadLetter.Resolved {
			unresolved = append(unresolved, deadLetter)
		}
	}

	return unresolved, nil
}

// ListAll retrieves every dead letter record
func (r *NatsDeadLetterRepository) ListAll(ctx context.Context) ([]*models.DeadLetter, error) {
	return r.ListEntities(ctx)
}
