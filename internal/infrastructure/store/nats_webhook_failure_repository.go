// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"
	"time"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// NatsWebhookFailureRepository implements WebhookFailureRepository using the
// NATS KV store
type NatsWebhookFailureRepository struct {
	*NatsBaseRepository[models.WebhookFailure]
}

// NewNatsWebhookFailureRepository creates a new webhook failure repository
func NewNatsWebhookFailureRepository(kvStore INatsKeyValue) *NatsWebhookFailureRepository {
	return &NatsWebhookFailureRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.WebhookFailure](kvStore, "webhook failure"),
	}
}

// Create creates a new webhook failure keyed by UID
func (r *NatsWebhookFailureRepository) Create(ctx context.Context, failure *models.WebhookFailure) error {
	return r.CreateExclusive(ctx, failure.UID, failure)
}

// Get retrieves a webhook failure by UID
func (r *NatsWebhookFailureRepository) Get(ctx context.Context, failureUID string) (*models.WebhookFailure, error) {
	return r.NatsBaseRepository.Get(ctx, failureUID)
}

// GetWithRevision retrieves a webhook failure with its revision
func (r *NatsWebhookFailureRepository) GetWithRevision(ctx context.Context, failureUID string) (*models.WebhookFailure, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, failureUID)
}

// Update updates an existing webhook failure with optimistic concurrency control
func (r *NatsWebhookFailureRepository) Update(ctx context.Context, failure *models.WebhookFailure, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, failure.UID, failure, revision)
}

// ListDue retrieves failures eligible for retry at the given time, ordered
// oldest-due-first so stale failures are not starved by new ones.
func (r *NatsWebhookFailureRepository) ListDue(ctx context.Context, now time.Time) ([]*models.WebhookFailure, error) {
	all, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var due []*models.WebhookFailure
	for _, failure := range all {
		if failure.IsDue(now) {
			due = append(due, failure)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRetryAt.Before(due[j].NextRetryAt)
	})

	return due, nil
}
