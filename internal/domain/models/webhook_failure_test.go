// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRetrySchedule(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(time.Second), NextRetrySchedule(base, 1, time.Second))
	assert.Equal(t, base.Add(2*time.Second), NextRetrySchedule(base, 2, time.Second))
	assert.Equal(t, base.Add(3*time.Second), NextRetrySchedule(base, 3, time.Second))

	// Delays grow monotonically with the attempt count.
	previous := base
	for attempts := 1; attempts <= 5; attempts++ {
		next := NextRetrySchedule(base, attempts, time.Second)
		assert.True(t, next.After(previous), "delay must grow at attempt %d", attempts)
		previous = next
	}
}

func TestNextRetryScheduleDefaults(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Zero and negative base delays fall back to the default.
	assert.Equal(t, base.Add(DefaultRetryBaseDelay), NextRetrySchedule(base, 1, 0))
	// Attempt counts below one are clamped.
	assert.Equal(t, base.Add(time.Second), NextRetrySchedule(base, 0, time.Second))
}

func TestWebhookFailureIsDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		failure WebhookFailure
		want    bool
	}{
		{
			name:    "pending and due",
			failure: WebhookFailure{Status: WebhookFailureStatusPending, NextRetryAt: now.Add(-time.Second)},
			want:    true,
		},
		{
			name:    "retrying and due exactly now",
			failure: WebhookFailure{Status: WebhookFailureStatusRetrying, NextRetryAt: now},
			want:    true,
		},
		{
			name:    "pending but not yet due",
			failure: WebhookFailure{Status: WebhookFailureStatusPending, NextRetryAt: now.Add(time.Second)},
			want:    false,
		},
		{
			name:    "completed is never due",
			failure: WebhookFailure{Status: WebhookFailureStatusCompleted, NextRetryAt: now.Add(-time.Hour)},
			want:    false,
		},
		{
			name:    "dead letter is never due",
			failure: WebhookFailure{Status: WebhookFailureStatusDeadLetter, NextRetryAt: now.Add(-time.Hour)},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.failure.IsDue(now))
		})
	}
}

func TestWebhookFailureRecordAttempt(t *testing.T) {
	failure := &WebhookFailure{MaxAttempts: 3}
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	failure.RecordAttempt("connection refused", at)
	assert.Equal(t, 1, failure.Attempts)
	assert.False(t, failure.Exhausted())

	failure.RecordAttempt("connection refused", at.Add(time.Second))
	failure.RecordAttempt("connection refused", at.Add(3*time.Second))
	assert.Equal(t, 3, failure.Attempts)
	assert.True(t, failure.Exhausted())

	// Each attempt is preserved in order with its error.
	assert.Len(t, failure.History, 3)
	for i, record := range failure.History {
		assert.Equal(t, i+1, record.Attempt)
		assert.Equal(t, "connection refused", record.Error)
	}
	assert.Equal(t, at.Add(3*time.Second), *failure.LastAttempt)
}
