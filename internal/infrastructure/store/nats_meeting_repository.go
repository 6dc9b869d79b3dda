// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// NatsMeetingRepository implements MeetingRepository using the NATS KV store.
// Meetings are keyed by platform + platform meeting ID so that creation is
// exclusive per platform meeting; lookups by UID scan the bucket.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
}

// NewNatsMeetingRepository creates a new meeting repository
func NewNatsMeetingRepository(kvStore INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](kvStore, "meeting"),
	}
}

// Create creates a new meeting keyed by its platform meeting identity.
// Returns a conflict error if a meeting for the same platform meeting
// already exists, which callers resolve by re-reading.
func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	return r.CreateExclusive(ctx, MeetingKey(meeting.Platform, meeting.PlatformMeetingID), meeting)
}

// Get retrieves a meeting by UID
func (r *NatsMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	meeting, _, err := r.GetWithRevision(ctx, meetingUID)
	return meeting, err
}

// GetWithRevision retrieves a meeting by UID with its store revision
func (r *NatsMeetingRepository) GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, 0, err
	}

	for _, key := range keys {
		meeting, revision, err := r.NatsBaseRepository.GetWithRevision(ctx, key)
		if err != nil {
			continue
		}
		if meeting.UID == meetingUID {
			return meeting, revision, nil
		}
	}

	return nil, 0, domain.NewNotFoundError(fmt.Sprintf("meeting with UID '%s' not found", meetingUID))
}

// Update updates an existing meeting with optimistic concurrency control
func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, MeetingKey(meeting.Platform, meeting.PlatformMeetingID), meeting, revision)
}

// GetByPlatformMeetingID retrieves the meeting correlated to a platform
// meeting ID. This is a direct key lookup.
func (r *NatsMeetingRepository) GetByPlatformMeetingID(ctx context.Context, platform models.Platform, platformMeetingID string) (*models.Meeting, error) {
	meeting, err := r.NatsBaseRepository.Get(ctx, MeetingKey(platform, platformMeetingID))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, domain.NewNotFoundError(
				fmt.Sprintf("meeting for %s meeting ID '%s' not found", platform, platformMeetingID))
		}
		return nil, err
	}
	return meeting, nil
}
