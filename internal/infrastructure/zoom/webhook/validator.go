// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package webhook validates inbound Zoom webhook requests.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// ZoomWebhookValidator handles validation of Zoom webhook signatures
type ZoomWebhookValidator struct {
	SecretToken string
}

// NewZoomWebhookValidator creates a new Zoom webhook validator
func NewZoomWebhookValidator(secretToken string) *ZoomWebhookValidator {
	return &ZoomWebhookValidator{
		SecretToken: secretToken,
	}
}

// ValidateSignature validates the Zoom webhook signature
func (v *ZoomWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	if v.SecretToken == "" {
		return fmt.Errorf("webhook secret token not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	if timestamp == "" {
		return fmt.Errorf("missing webhook timestamp")
	}

	// Create the message to sign: v0:timestamp:body
	message := fmt.Sprintf("v0:%s:%s", timestamp, body)

	h := hmac.New(sha256.New, []byte(v.SecretToken))
	h.Write([]byte(message))
	expectedSignature := "v0=" + hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return fmt.Errorf("zoom webhook signature does not match expected signature")
	}

	return nil
}

// IsValidEvent checks if the event type is one the pipeline consumes
func (v *ZoomWebhookValidator) IsValidEvent(eventType string) bool {
	validEvents := map[string]bool{
		models.ZoomEventMeetingEnded:          true,
		models.ZoomEventRecordingCompleted:    true,
		models.ZoomEventTranscriptCompleted:   true,
		models.ZoomEventEndpointURLValidation: true,
	}

	return validEvents[eventType]
}

// ChallengeResponse computes the encrypted token Zoom expects back from an
// endpoint.url_validation challenge.
func (v *ZoomWebhookValidator) ChallengeResponse(plainToken string) string {
	h := hmac.New(sha256.New, []byte(v.SecretToken))
	h.Write([]byte(plainToken))
	return hex.EncodeToString(h.Sum(nil))
}
