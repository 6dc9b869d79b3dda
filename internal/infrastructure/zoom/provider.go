// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package zoom implements the Zoom transcript provider.
package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/zoom/api"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
)

// Ensure Provider implements TranscriptProvider
var _ domain.TranscriptProvider = (*Provider)(nil)

// Provider downloads Zoom cloud recording transcripts (WebVTT).
type Provider struct {
	client api.ClientAPI
}

// NewProvider creates a Zoom transcript provider backed by the given client.
func NewProvider(client api.ClientAPI) *Provider {
	return &Provider{
		client: client,
	}
}

// FetchTranscript makes a single download attempt for the transcript file
// referenced by the meeting's originating webhook payload.
func (p *Provider) FetchTranscript(ctx context.Context, meeting *models.Meeting, event *models.RawEvent) (*domain.TranscriptDownload, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "fetch_transcript"))

	if event.EventType != models.ZoomEventTranscriptCompleted {
		return nil, domain.NewValidationError(
			fmt.Sprintf("cannot fetch transcript from %q event", event.EventType))
	}

	var envelope models.ZoomWebhookEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, domain.NewValidationError("invalid Zoom webhook payload", err)
	}

	var payload models.ZoomTranscriptCompletedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return nil, domain.NewValidationError("invalid Zoom transcript payload", err)
	}

	file, err := payload.TranscriptFile()
	if err != nil {
		return nil, domain.NewValidationError("transcript file missing from payload", err)
	}

	content, err := p.client.DownloadTranscript(ctx, file.DownloadURL, payload.DownloadToken)
	if err != nil {
		return nil, domain.NewInternalError("failed to download Zoom transcript", err)
	}

	return &domain.TranscriptDownload{
		Format:  models.TranscriptFormatVTT,
		Content: content,
	}, nil
}
