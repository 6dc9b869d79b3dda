// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// TranscriptDownload is raw transcript content fetched from a platform,
// before parsing.
type TranscriptDownload struct {
	Format  models.TranscriptFormat
	Content []byte
}

// TranscriptProvider downloads a meeting's transcript from the external
// platform. Implementations make exactly one attempt per call: retry policy
// is owned by the retry queue, not the provider.
type TranscriptProvider interface {
	FetchTranscript(ctx context.Context, meeting *models.Meeting, event *models.RawEvent) (*TranscriptDownload, error)
}

// PlatformRegistry manages transcript providers per platform.
type PlatformRegistry interface {
	// GetProvider returns the provider for the specified platform.
	GetProvider(platform models.Platform) (TranscriptProvider, error)

	// RegisterProvider registers a provider for a platform.
	RegisterProvider(platform models.Platform, provider TranscriptProvider)
}

// WebhookValidator authenticates an inbound webhook request before it is
// ingested.
type WebhookValidator interface {
	// ValidateSignature verifies the request body against the
	// platform-provided signature material.
	ValidateSignature(body []byte, signature, timestamp string) error

	// IsValidEvent reports whether the event type is one the pipeline
	// consumes.
	IsValidEvent(eventType string) bool
}
