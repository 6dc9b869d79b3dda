// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package gmeet implements the Google Meet transcript provider.
package gmeet

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

const (
	// DefaultBaseURL is the Google Meet REST API base URL.
	DefaultBaseURL = "https://meet.googleapis.com/v2"

	// DefaultTimeout bounds a single transcript download attempt.
	DefaultTimeout = 20 * time.Second
)

// Ensure Provider implements TranscriptProvider
var _ domain.TranscriptProvider = (*Provider)(nil)

// Provider downloads Google Meet conference transcripts through the Meet
// REST API as timed speaker segments.
type Provider struct {
	baseURL     string
	timeout     time.Duration
	tokenSource oauth2.TokenSource
}

// NewProvider creates a Google Meet transcript provider. The token source
// supplies Workspace credentials; token refresh is owned by the caller.
func NewProvider(tokenSource oauth2.TokenSource) *Provider {
	return &Provider{
		baseURL:     DefaultBaseURL,
		timeout:     DefaultTimeout,
		tokenSource: tokenSource,
	}
}

// WithBaseURL overrides the Meet API base URL, used in tests.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	return p
}

// FetchTranscript makes a single attempt to list the transcript entries for
// the conference referenced by the originating webhook payload.
func (p *Provider) FetchTranscript(ctx context.Context, meeting *models.Meeting, event *models.RawEvent) (*domain.TranscriptDownload, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meet_operation", "fetch_transcript"))

	if event.EventType != models.MeetEventTranscriptFileReady {
		return nil, domain.NewValidationError(
			fmt.Sprintf("cannot fetch transcript from %q event", event.EventType))
	}

	var envelope models.MeetWebhookEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, domain.NewValidationError("invalid Google Meet webhook payload", err)
	}

	transcriptName := envelope.Payload.Transcript.Name
	if transcriptName == "" {
		return nil, domain.NewValidationError("transcript name missing from payload")
	}

	content, err := p.listEntries(ctx, transcriptName)
	if err != nil {
		return nil, domain.NewInternalError("failed to download Google Meet transcript", err)
	}

	return &domain.TranscriptDownload{
		Format:  models.TranscriptFormatJSONSegments,
		Content: content,
	}, nil
}

// listEntries downloads the transcript entries resource as raw JSON.
func (p *Provider) listEntries(ctx context.Context, transcriptName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/entries", p.baseURL, transcriptName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript request: %w", err)
	}

	client := oauth2.NewClient(ctx, p.tokenSource)
	client.Timeout = p.timeout

	slog.DebugContext(ctx, "downloading Google Meet transcript entries",
		"transcript_name", transcriptName,
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

	slog.DebugContext(ctx, "Google Meet transcript downloaded",
		"transcript_name", transcriptName,
		"content_size", len(content),
	)

	return content, nil
}
