// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"time"
)

// WebhookFailureStatus is the lifecycle status of a retryable failure.
type WebhookFailureStatus string

const (
	WebhookFailureStatusPending    WebhookFailureStatus = "pending"
	WebhookFailureStatusRetrying   WebhookFailureStatus = "retrying"
	WebhookFailureStatusCompleted  WebhookFailureStatus = "completed"
	WebhookFailureStatusDeadLetter WebhookFailureStatus = "dead_letter"
)

// DefaultMaxAttempts is the default retry budget for a failed pipeline step.
const DefaultMaxAttempts = 3

// DefaultRetryBaseDelay is the default base delay of the backoff schedule.
const DefaultRetryBaseDelay = time.Second

// StepReplay is the replay context stored alongside a failure's payload: it
// identifies exactly which step of which work item failed, so the worker can
// re-execute that step rather than the whole pipeline.
type StepReplay struct {
	RawEventUID string         `json:"raw_event_uid"`
	MeetingUID  string         `json:"meeting_uid,omitempty"`
	Step        ProcessingStep `json:"step"`
}

// FailureRecord is one attempt's outcome, kept so the full history survives
// promotion to the dead-letter store.
type FailureRecord struct {
	Attempt   int       `json:"attempt"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// WebhookFailure holds a pipeline step that threw, with its attempt count and
// next-retry schedule. While status is not dead_letter, attempts never
// exceeds MaxAttempts; the attempt that would exceed the budget promotes the
// record to the dead-letter store in the same operation.
type WebhookFailure struct {
	UID             string          `json:"uid"`
	Platform        Platform        `json:"platform"`
	EventType       string          `json:"event_type"`
	ExternalEventID string          `json:"external_event_id"`
	Payload         json.RawMessage `json:"payload"`
	Replay          StepReplay      `json:"replay"`
	Error           string          `json:"error"`

	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	NextRetryAt time.Time  `json:"next_retry_at"`
	LastAttempt *time.Time `json:"last_attempt_at,omitempty"`

	// History records every attempt made, ordered, so the dead-letter record
	// can preserve the complete failure history at promotion time.
	History []FailureRecord `json:"history,omitempty"`

	Status    WebhookFailureStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NextRetrySchedule computes when the next retry is due. The schedule is
// linear in the attempt count (baseDelay * attempts), which keeps delays
// monotonically increasing: 1s, 2s, 3s... with the default base.
func NextRetrySchedule(lastAttempt time.Time, attempts int, baseDelay time.Duration) time.Time {
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}
	if attempts < 1 {
		attempts = 1
	}
	return lastAttempt.Add(baseDelay * time.Duration(attempts)).UTC()
}

// IsDue reports whether the failure is eligible for a retry at the given time.
func (f *WebhookFailure) IsDue(now time.Time) bool {
	if f.Status != WebhookFailureStatusPending && f.Status != WebhookFailureStatusRetrying {
		return false
	}
	return !f.NextRetryAt.After(now)
}

// Exhausted reports whether the retry budget is spent.
func (f *WebhookFailure) Exhausted() bool {
	return f.Attempts >= f.MaxAttempts
}

// RecordAttempt appends the attempt outcome to the history and updates the
// attempt accounting. It does not decide completion or promotion; that is
// the retry service's call.
func (f *WebhookFailure) RecordAttempt(attemptErr string, at time.Time) {
	f.Attempts++
	f.LastAttempt = &at
	f.History = append(f.History, FailureRecord{
		Attempt:   f.Attempts,
		Error:     attemptErr,
		Timestamp: at,
	})
	f.UpdatedAt = at
}
