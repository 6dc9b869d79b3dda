// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessingStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepWebhookReceived.Index())
	assert.Equal(t, 7, StepCompleted.Index())
	assert.Equal(t, -1, StepFailed.Index())
	assert.Equal(t, -1, ProcessingStep("bogus").Index())
}

func TestProcessingStepAfter(t *testing.T) {
	tests := []struct {
		name  string
		step  ProcessingStep
		other ProcessingStep
		want  bool
	}{
		{
			name:  "next step is after previous",
			step:  StepMeetingFetched,
			other: StepWebhookReceived,
			want:  true,
		},
		{
			name:  "previous step is not after next",
			step:  StepWebhookReceived,
			other: StepMeetingFetched,
			want:  false,
		},
		{
			name:  "step is not after itself",
			step:  StepTranscriptParse,
			other: StepTranscriptParse,
			want:  false,
		},
		{
			name:  "completed is after every ordered step",
			step:  StepCompleted,
			other: StepDraftGeneration,
			want:  true,
		},
		{
			name:  "failed is never after anything",
			step:  StepFailed,
			other: StepWebhookReceived,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.step.After(tt.other))
		})
	}
}

func TestProcessingStepProgress(t *testing.T) {
	// Progress must be monotonically increasing across the pipeline order
	// and pinned at 100 for completed.
	previous := 0
	for _, step := range ProcessingSteps() {
		progress := step.Progress()
		assert.Greater(t, progress, previous, "progress must increase at step %s", step)
		previous = progress
	}
	assert.Equal(t, 100, StepCompleted.Progress())
	assert.Equal(t, 0, StepFailed.Progress())
}

func TestMeetingIsTerminal(t *testing.T) {
	assert.False(t, (&Meeting{Status: MeetingStatusProcessing}).IsTerminal())
	assert.True(t, (&Meeting{Status: MeetingStatusCompleted}).IsTerminal())
	assert.True(t, (&Meeting{Status: MeetingStatusFailed}).IsTerminal())
}

func TestMeetingAppendLog(t *testing.T) {
	meeting := &Meeting{}

	meeting.AppendLog(StepWebhookReceived, "webhook received", 0)
	meeting.AppendLog(StepMeetingFetched, "meeting details extracted", 12)

	assert.Len(t, meeting.ProcessingLogs, 2)
	assert.Equal(t, StepWebhookReceived, meeting.ProcessingLogs[0].Step)
	assert.Equal(t, StepMeetingFetched, meeting.ProcessingLogs[1].Step)
	assert.Equal(t, int64(12), meeting.ProcessingLogs[1].DurationMs)
	assert.False(t, meeting.UpdatedAt.IsZero())
}

func TestMeetingTags(t *testing.T) {
	meeting := &Meeting{
		UID:               "meeting-123",
		Platform:          PlatformZoom,
		PlatformMeetingID: "987654",
	}

	tags := meeting.Tags()

	assert.Contains(t, tags, "meeting-123")
	assert.Contains(t, tags, "meeting_uid:meeting-123")
	assert.Contains(t, tags, "platform:zoom")
	assert.Contains(t, tags, "platform_meeting_id:987654")

	var nilMeeting *Meeting
	assert.Nil(t, nilMeeting.Tags())
}
