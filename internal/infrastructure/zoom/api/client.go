// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package api is the Zoom HTTP client used to download cloud recording
// transcripts. The client makes exactly one attempt per call; redoing failed
// work is the retry queue's job, not the transport's.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/recapio/transcript-pipeline-service/internal/logging"
)

// ClientAPI defines the interface for Zoom API operations.
// This allows for easy mocking and testing of the Zoom client.
type ClientAPI interface {
	DownloadTranscript(ctx context.Context, downloadURL, downloadToken string) ([]byte, error)
}

const (
	// AuthURL is the OAuth token endpoint
	AuthURL = "https://zoom.us/oauth/token"
	// DefaultClientTimeout bounds every transcript download request
	DefaultClientTimeout = 20 * time.Second
)

// Client represents a Zoom API client
type Client struct {
	httpClient  *http.Client
	config      Config
	oauthConfig *clientcredentials.Config
}

// Config holds the configuration for the Zoom client
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// Optional: override auth URL for testing
	AuthURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Zoom API client
func NewClient(config Config) *Client {
	if config.AuthURL == "" {
		config.AuthURL = AuthURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}

	// Zoom Server-to-Server OAuth requires the account_credentials grant
	// with the account ID as a form parameter.
	oauthConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.AuthURL,
		EndpointParams: url.Values{
			"grant_type": []string{"account_credentials"},
			"account_id": []string{config.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		oauthConfig: oauthConfig,
	}
}

// getAuthenticatedClient returns an HTTP client that automatically handles
// OAuth2 authentication
func (c *Client) getAuthenticatedClient(ctx context.Context) *http.Client {
	return &http.Client{
		Timeout: c.config.Timeout,
		Transport: &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: c.oauthConfig.TokenSource(ctx),
		},
	}
}

// DownloadTranscript fetches a transcript file from a Zoom download URL.
// When the webhook carried a download_token, it is used directly; otherwise
// the request goes through the Server-to-Server OAuth client.
func (c *Client) DownloadTranscript(ctx context.Context, downloadURL, downloadToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := c.httpClient
	if downloadToken != "" {
		req.Header.Set("Authorization", "Bearer "+downloadToken)
	} else {
		client = c.getAuthenticatedClient(ctx)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "Zoom transcript download failed",
			logging.ErrKey, err,
			"url", downloadURL,
			"duration", time.Since(start).String(),
		)
		return nil, fmt.Errorf("transcript download failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.ErrorContext(ctx, "Zoom transcript download returned non-OK status",
			"status", resp.StatusCode,
			"url", downloadURL,
			"body", string(body),
		)
		return nil, fmt.Errorf("transcript download returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript body: %w", err)
	}

	slog.DebugContext(ctx, "Zoom transcript downloaded",
		"url", downloadURL,
		"bytes", len(content),
		"duration", time.Since(start).String(),
	)

	return content, nil
}
