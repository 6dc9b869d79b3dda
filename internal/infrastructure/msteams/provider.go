// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package msteams implements the Microsoft Teams transcript provider.
package msteams

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
)

// DefaultTimeout bounds a single transcript download attempt.
const DefaultTimeout = 20 * time.Second

// Ensure Provider implements TranscriptProvider
var _ domain.TranscriptProvider = (*Provider)(nil)

// Provider downloads Microsoft Teams meeting transcripts through the Graph
// transcript content URL delivered in the change notification.
type Provider struct {
	timeout     time.Duration
	tokenSource oauth2.TokenSource
}

// NewProvider creates a Microsoft Teams transcript provider. The token
// source supplies Graph credentials; token refresh is owned by the caller.
func NewProvider(tokenSource oauth2.TokenSource) *Provider {
	return &Provider{
		timeout:     DefaultTimeout,
		tokenSource: tokenSource,
	}
}

// FetchTranscript makes a single attempt to download the transcript content
// referenced by the originating change notification.
func (p *Provider) FetchTranscript(ctx context.Context, meeting *models.Meeting, event *models.RawEvent) (*domain.TranscriptDownload, error) {
	ctx = logging.AppendCtx(ctx, slog.String("teams_operation", "fetch_transcript"))

	if event.EventType != models.TeamsEventTranscriptAvailable {
		return nil, domain.NewValidationError(
			fmt.Sprintf("cannot fetch transcript from %q event", event.EventType))
	}

	var envelope models.TeamsWebhookEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, domain.NewValidationError("invalid Microsoft Teams webhook payload", err)
	}

	contentURL := ""
	for _, notification := range envelope.Value {
		if notification.ResourceData.TranscriptURL != "" {
			contentURL = notification.ResourceData.TranscriptURL
			break
		}
	}
	if contentURL == "" {
		return nil, domain.NewValidationError("transcript content URL missing from payload")
	}

	content, err := p.downloadContent(ctx, contentURL)
	if err != nil {
		return nil, domain.NewInternalError("failed to download Microsoft Teams transcript", err)
	}

	return &domain.TranscriptDownload{
		Format:  models.TranscriptFormatJSONSegments,
		Content: content,
	}, nil
}

// downloadContent fetches the transcript content URL with Graph credentials.
func (p *Provider) downloadContent(ctx context.Context, contentURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := oauth2.NewClient(ctx, p.tokenSource)
	client.Timeout = p.timeout

	slog.DebugContext(ctx, "downloading Microsoft Teams transcript",
		"content_url", contentURL,
	)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close response body", logging.ErrKey, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("transcript request failed with status %d: %s", resp.StatusCode, string(body))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript response: %w", err)
	}

	slog.DebugContext(ctx, "Microsoft Teams transcript downloaded",
		"content_size", len(content),
	)

	return content, nil
}
