// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package msteams

import (
	"crypto/subtle"
	"fmt"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// WebhookValidator authenticates Microsoft Graph change notifications with
// the clientState token echoed back in each notification batch.
type WebhookValidator struct {
	Token string
}

// NewWebhookValidator creates a new Microsoft Teams webhook validator
func NewWebhookValidator(token string) *WebhookValidator {
	return &WebhookValidator{
		Token: token,
	}
}

// ValidateSignature compares the header-supplied token against the
// configured one. The timestamp argument is unused for Teams.
func (v *WebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	if v.Token == "" {
		return fmt.Errorf("webhook token not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook token")
	}

	if subtle.ConstantTimeCompare([]byte(signature), []byte(v.Token)) != 1 {
		return fmt.Errorf("microsoft teams webhook token does not match configured token")
	}

	return nil
}

// IsValidEvent checks if the notification resource is one the pipeline
// consumes.
func (v *WebhookValidator) IsValidEvent(eventType string) bool {
	switch eventType {
	case models.TeamsEventCallEnded, models.TeamsEventTranscriptAvailable:
		return true
	}
	return false
}
