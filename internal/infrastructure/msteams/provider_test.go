// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package msteams

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

func testTokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "graph-access-token"})
}

func TestFetchTranscript(t *testing.T) {
	meeting := &models.Meeting{UID: "meeting-1", Platform: models.PlatformMicrosoftTeams}

	t.Run("downloads the transcript content URL", func(t *testing.T) {
		content := `[{"speaker":"Alice","text":"Good morning.","start_secs":1}]`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transcripts/t1/content", r.URL.Path)
			assert.Equal(t, "Bearer graph-access-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(content))
		}))
		defer server.Close()

		provider := NewProvider(testTokenSource())
		event := &models.RawEvent{
			UID:       "event-1",
			Platform:  models.PlatformMicrosoftTeams,
			EventType: models.TeamsEventTranscriptAvailable,
			Payload: []byte(fmt.Sprintf(`{"value":[{
				"resource": "communications/onlineMeetings('m1')/transcripts('t1')",
				"resourceData": {"id": "t1", "transcriptContentUrl": "%s/transcripts/t1/content"}
			}]}`, server.URL)),
		}

		download, err := provider.FetchTranscript(context.Background(), meeting, event)

		require.NoError(t, err)
		assert.Equal(t, models.TranscriptFormatJSONSegments, download.Format)
		assert.JSONEq(t, content, string(download.Content))
	})

	t.Run("rejects events without transcript content", func(t *testing.T) {
		provider := NewProvider(testTokenSource())
		event := &models.RawEvent{
			EventType: models.TeamsEventCallEnded,
			Payload:   []byte(`{"value":[{"resourceData":{"id":"c1"}}]}`),
		}

		_, err := provider.FetchTranscript(context.Background(), meeting, event)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("missing content URL is rejected", func(t *testing.T) {
		provider := NewProvider(testTokenSource())
		event := &models.RawEvent{
			EventType: models.TeamsEventTranscriptAvailable,
			Payload:   []byte(`{"value":[{"resourceData":{"id":"t1"}}]}`),
		}

		_, err := provider.FetchTranscript(context.Background(), meeting, event)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("Graph error surfaces as internal error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		provider := NewProvider(testTokenSource())
		event := &models.RawEvent{
			EventType: models.TeamsEventTranscriptAvailable,
			Payload: []byte(fmt.Sprintf(`{"value":[{
				"resourceData": {"id": "t1", "transcriptContentUrl": "%s/transcripts/t1/content"}
			}]}`, server.URL)),
		}

		_, err := provider.FetchTranscript(context.Background(), meeting, event)

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}
