// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package gmeet

import (
	"crypto/subtle"
	"fmt"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// WebhookValidator authenticates Google Meet push notifications with a
// shared token carried in a request header.
type WebhookValidator struct {
	Token string
}

// NewWebhookValidator creates a new Google Meet webhook validator
func NewWebhookValidator(token string) *WebhookValidator {
	return &WebhookValidator{
		Token: token,
	}
}

// ValidateSignature compares the header-supplied token against the
// configured one. The timestamp argument is unused for Meet.
func (v *WebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	if v.Token == "" {
		return fmt.Errorf("webhook token not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook token")
	}

	if subtle.ConstantTimeCompare([]byte(signature), []byte(v.Token)) != 1 {
		return fmt.Errorf("google meet webhook token does not match configured token")
	}

	return nil
}

// IsValidEvent checks if the event type is one the pipeline consumes
func (v *WebhookValidator) IsValidEvent(eventType string) bool {
	switch eventType {
	case models.MeetEventConferenceEnded,
		models.MeetEventTranscriptFileReady,
		models.MeetEventRecordingFileReady:
		return true
	}
	return false
}
