// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeadLetterFromFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	failure := &WebhookFailure{
		UID:             "failure-1",
		Platform:        PlatformZoom,
		EventType:       ZoomEventTranscriptCompleted,
		ExternalEventID: "recording.transcript_completed/uuid-1/100",
		Payload:         json.RawMessage(`{"event":"recording.transcript_completed"}`),
		Replay: StepReplay{
			RawEventUID: "event-1",
			MeetingUID:  "meeting-1",
			Step:        StepTranscriptDownload,
		},
		Error:       "download failed",
		MaxAttempts: 3,
	}
	failure.RecordAttempt("download failed", now)
	failure.RecordAttempt("download failed", now.Add(time.Second))
	failure.RecordAttempt("download failed", now.Add(3*time.Second))

	deadLetter := NewDeadLetterFromFailure("dl-1", failure, now.Add(3*time.Second))

	assert.Equal(t, "dl-1", deadLetter.UID)
	assert.Equal(t, "failure-1", deadLetter.WebhookFailureUID)
	assert.Equal(t, PlatformZoom, deadLetter.Platform)
	assert.Equal(t, failure.ExternalEventID, deadLetter.ExternalEventID)
	assert.Equal(t, failure.Replay, deadLetter.Replay)

	// The history length always equals the total attempt count.
	require.Len(t, deadLetter.FailureHistory, failure.Attempts)
	assert.Equal(t, failure.Attempts, deadLetter.TotalAttempts)

	// The history is a copy, not a shared slice.
	failure.History[0].Error = "mutated"
	assert.Equal(t, "download failed", deadLetter.FailureHistory[0].Error)

	assert.False(t, deadLetter.Resolved)
	assert.Nil(t, deadLetter.ResolvedAt)
}

func TestDeadLetterResolve(t *testing.T) {
	deadLetter := &DeadLetter{UID: "dl-1"}
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	deadLetter.Resolve("replayed manually after credential fix", at)

	assert.True(t, deadLetter.Resolved)
	require.NotNil(t, deadLetter.ResolvedAt)
	assert.Equal(t, at, *deadLetter.ResolvedAt)
	assert.Equal(t, "replayed manually after credential fix", deadLetter.ResolutionNotes)
}
