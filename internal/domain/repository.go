// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package domain holds the pipeline's entities, repository contracts, and
// error taxonomy. Infrastructure packages implement these interfaces;
// services depend only on them.
package domain

import (
	"context"
	"time"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// RawEventRepository persists inbound webhook deliveries. The store keys raw
// events by platform + external event ID, so Create doubles as the
// idempotency check: a duplicate delivery surfaces as a conflict error.
type RawEventRepository interface {
	// Create persists a new raw event. Returns a conflict error if an event
	// with the same platform and external event ID already exists.
	Create(ctx context.Context, event *models.RawEvent) error

	Get(ctx context.Context, platform models.Platform, externalEventID string) (*models.RawEvent, error)
	GetWithRevision(ctx context.Context, platform models.Platform, externalEventID string) (*models.RawEvent, uint64, error)
	Exists(ctx context.Context, platform models.Platform, externalEventID string) (bool, error)

	// Update applies optimistic concurrency control via the store revision.
	Update(ctx context.Context, event *models.RawEvent, revision uint64) error

	// ListByStatus returns all raw events in the given status. The worker
	// polls this with status=received to discover new work.
	ListByStatus(ctx context.Context, status models.RawEventStatus) ([]*models.RawEvent, error)
}

// MeetingRepository persists the pipeline's units of work. The store keys
// meetings by platform + platform meeting ID, so Create doubles as the
// correlation idempotency check.
type MeetingRepository interface {
	// Create persists a new meeting. Returns a conflict error if a meeting
	// for the same platform meeting already exists.
	Create(ctx context.Context, meeting *models.Meeting) error
	Get(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error

	// GetByPlatformMeetingID correlates a webhook to an existing meeting.
	// Returns a not-found error when no meeting matches.
	GetByPlatformMeetingID(ctx context.Context, platform models.Platform, platformMeetingID string) (*models.Meeting, error)
}

// TranscriptRepository persists transcripts, keyed by UID, at most one per
// meeting.
type TranscriptRepository interface {
	Create(ctx context.Context, transcript *models.Transcript) error
	Get(ctx context.Context, transcriptUID string) (*models.Transcript, error)
	GetWithRevision(ctx context.Context, transcriptUID string) (*models.Transcript, uint64, error)
	Update(ctx context.Context, transcript *models.Transcript, revision uint64) error
	GetByMeetingUID(ctx context.Context, meetingUID string) (*models.Transcript, error)
}

// WebhookFailureRepository persists retryable step failures.
type WebhookFailureRepository interface {
	Create(ctx context.Context, failure *models.WebhookFailure) error
	Get(ctx context.Context, failureUID string) (*models.WebhookFailure, error)
	GetWithRevision(ctx context.Context, failureUID string) (*models.WebhookFailure, uint64, error)
	Update(ctx context.Context, failure *models.WebhookFailure, revision uint64) error

	// ListDue returns failures in pending or retrying status whose
	// next-retry time has passed, ordered oldest-due-first.
	ListDue(ctx context.Context, now time.Time) ([]*models.WebhookFailure, error)
}

// DeadLetterRepository persists exhausted failures. The store must never
// silently drop a promoted failure; records are keyed by the originating
// webhook failure UID so promotion is idempotent.
type DeadLetterRepository interface {
	// Create persists a new dead letter. Returns a conflict error if the
	// originating failure was already promoted.
	Create(ctx context.Context, deadLetter *models.DeadLetter) error

	Get(ctx context.Context, webhookFailureUID string) (*models.DeadLetter, error)
	GetWithRevision(ctx context.Context, webhookFailureUID string) (*models.DeadLetter, uint64, error)
	Update(ctx context.Context, deadLetter *models.DeadLetter, revision uint64) error
	ListUnresolved(ctx context.Context) ([]*models.DeadLetter, error)
	ListAll(ctx context.Context) ([]*models.DeadLetter, error)
}
