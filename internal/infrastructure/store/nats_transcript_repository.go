// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// NatsTranscriptRepository implements TranscriptRepository using the NATS KV store
type NatsTranscriptRepository struct {
	*NatsBaseRepository[models.Transcript]
}

// NewNatsTranscriptRepository creates a new transcript repository
func NewNatsTranscriptRepository(kvStore INatsKeyValue) *NatsTranscriptRepository {
	return &NatsTranscriptRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Transcript](kvStore, "transcript"),
	}
}

// Create creates a new transcript keyed by UID
func (r *NatsTranscriptRepository) Create(ctx context.Context, transcript *models.Transcript) error {
	return r.CreateExclusive(ctx, transcript.UID, transcript)
}

// Get retrieves a transcript by UID
func (r *NatsTranscriptRepository) Get(ctx context.Context, transcriptUID string) (*models.Transcript, error) {
	return r.NatsBaseRepository.Get(ctx, transcriptUID)
}

// GetWithRevision retrieves a transcript with its revision
func (r *NatsTranscriptRepository) GetWithRevision(ctx context.Context, transcriptUID string) (*models.Transcript, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, transcriptUID)
}

// Update updates an existing transcript with optimistic concurrency control
func (r *NatsTranscriptRepository) Update(ctx context.Context, transcript *models.Transcript, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, transcript.UID, transcript, revision)
}

// GetByMeetingUID retrieves the transcript for a specific meeting
func (r *NatsTranscriptRepository) GetByMeetingUID(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	transcripts, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	for _, transcript := range transcripts {
		if transcript.MeetingUID == meetingUID {
			return transcript, nil
		}
	}

	return nil, domain.NewNotFoundError(
		fmt.Sprintf("transcript for meeting UID '%s' not found", meetingUID))
}
