// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// NatsRawEventRepository implements RawEventRepository using the NATS KV
// store. Events are keyed by platform + external event ID, so the exclusive
// create is the idempotency boundary for duplicate webhook deliveries.
type NatsRawEventRepository struct {
	*NatsBaseRepository[models.RawEvent]
}

// NewNatsRawEventRepository creates a new raw event repository
func NewNatsRawEventRepository(kvStore INatsKeyValue) *NatsRawEventRepository {
	return &NatsRawEventRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.RawEvent](kvStore, "raw event"),
	}
}

// Create persists a new raw event, failing with a conflict error when the
// same delivery was already ingested.
func (r *NatsRawEventRepository) Create(ctx context.Context, event *models.RawEvent) error {
	return r.CreateExclusive(ctx, RawEventKey(event.Platform, event.ExternalEventID), event)
}

// Get retrieves a raw event by its idempotency key
func (r *NatsRawEventRepository) Get(ctx context.Context, platform models.Platform, externalEventID string) (*models.RawEvent, error) {
	return r.NatsBaseRepository.Get(ctx, RawEventKey(platform, externalEventID))
}

// GetWithRevision retrieves a raw event with its revision
func (r *NatsRawEventRepository) GetWithRevision(ctx context.Context, platform models.Platform, externalEventID string) (*models.RawEvent, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, RawEventKey(platform, externalEventID))
}

// Exists checks if a delivery was already ingested
func (r *NatsRawEventRepository) Exists(ctx context.Context, platform models.Platform, externalEventID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, RawEventKey(platform, externalEventID))
}

// Update updates an existing raw event with optimistic concurrency control
func (r *NatsRawEventRepository) Update(ctx context.Context, event *models.RawEvent, revision uint64) error {
	if !event.Platform.IsValid() || event.ExternalEventID == "" {
		return domain.NewValidationError(
			fmt.Sprintf("raw event %q is missing its idempotency key fields", event.UID))
	}
	return r.NatsBaseRepository.Update(ctx, RawEventKey(event.Platform, event.ExternalEventID), event, revision)
}

// ListByStatus retrieves all raw events in the given status
func (r *NatsRawEventRepository) ListByStatus(ctx context.Context, status models.RawEventStatus) ([]*models.RawEvent, error) {
	all, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var events []*models.RawEvent
	for _, event := range all {
		if event.Status == status {
			events = append(events, event)
		}
	}

	return events, nil
}
