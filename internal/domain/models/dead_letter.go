// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"time"
)

// DeadLetter is the permanent record of a failure that exhausted its retry
// budget. It is immutable except for the resolution fields, which an operator
// sets manually. Resolving a dead letter does not requeue work; re-processing
// requires replaying the preserved payload through ingestion.
type DeadLetter struct {
	UID               string          `json:"uid"`
	WebhookFailureUID string          `json:"webhook_failure_uid"`
	Platform          Platform        `json:"platform"`
	EventType         string          `json:"event_type"`
	ExternalEventID   string          `json:"external_event_id"`
	Payload           json.RawMessage `json:"payload"`
	Replay            StepReplay      `json:"replay"`
	Error             string          `json:"error"`

	TotalAttempts  int             `json:"total_attempts"`
	FailureHistory []FailureRecord `json:"failure_history"`

	AlertSent bool `json:"alert_sent"`

	Resolved        bool       `json:"resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDeadLetterFromFailure copies the full failure context into a dead-letter
// record. The failure history length always equals the total attempt count.
func NewDeadLetterFromFailure(uid string, failure *WebhookFailure, now time.Time) *DeadLetter {
	history := make([]FailureRecord, len(failure.History))
	copy(history, failure.History)

	return &DeadLetter{
		UID:               uid,
		WebhookFailureUID: failure.UID,
		Platform:          failure.Platform,
		EventType:         failure.EventType,
		ExternalEventID:   failure.ExternalEventID,
		Payload:           failure.Payload,
		Replay:            failure.Replay,
		Error:             failure.Error,
		TotalAttempts:     failure.Attempts,
		FailureHistory:    history,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Resolve marks the dead letter resolved. It is the only mutation path after
// creation besides the alert flag.
func (d *DeadLetter) Resolve(notes string, at time.Time) {
	d.Resolved = true
	d.ResolvedAt = &at
	d.ResolutionNotes = notes
	d.UpdatedAt = at
}
