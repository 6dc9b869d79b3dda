// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus is the overall status of a meeting's pipeline run.
type MeetingStatus string

const (
	MeetingStatusPending    MeetingStatus = "pending"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusReady      MeetingStatus = "ready"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusFailed     MeetingStatus = "failed"
)

// ProcessingStep is one stage in the fixed, ordered pipeline a meeting passes
// through from webhook receipt to completion.
type ProcessingStep string

const (
	StepWebhookReceived    ProcessingStep = "webhook_received"
	StepMeetingFetched     ProcessingStep = "meeting_fetched"
	StepMeetingCreated     ProcessingStep = "meeting_created"
	StepTranscriptDownload ProcessingStep = "transcript_download"
	StepTranscriptParse    ProcessingStep = "transcript_parse"
	StepTranscriptStored   ProcessingStep = "transcript_stored"
	StepDraftGeneration    ProcessingStep = "draft_generation"
	StepCompleted          ProcessingStep = "completed"

	// StepFailed is terminal and outside the ordered sequence; a meeting can
	// reach it from any non-terminal step.
	StepFailed ProcessingStep = "failed"
)

// processingStepOrder is the canonical forward-only ordering of the pipeline.
var processingStepOrder = []ProcessingStep{
	StepWebhookReceived,
	StepMeetingFetched,
	StepMeetingCreated,
	StepTranscriptDownload,
	StepTranscriptParse,
	StepTranscriptStored,
	StepDraftGeneration,
	StepCompleted,
}

// Index returns the zero-based position of the step in the pipeline order,
// or -1 for failed/unknown steps.
func (s ProcessingStep) Index() int {
	for i, step := range processingStepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// After reports whether s is strictly after other in the pipeline order.
// StepFailed is never after anything; the failure transition is handled
// separately from ordered advancement.
func (s ProcessingStep) After(other ProcessingStep) bool {
	si, oi := s.Index(), other.Index()
	if si < 0 || oi < 0 {
		return false
	}
	return si > oi
}

// Progress maps the step to a percent-complete value. Steps are evenly
// spaced across the pipeline with completed pinned at 100.
func (s ProcessingStep) Progress() int {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return (idx + 1) * 100 / len(processingStepOrder)
}

// ProcessingSteps returns the ordered pipeline steps.
func ProcessingSteps() []ProcessingStep {
	steps := make([]ProcessingStep, len(processingStepOrder))
	copy(steps, processingStepOrder)
	return steps
}

// ProcessingLogEntry is one line of the append-only processing log kept on a
// meeting for audit and operator triage.
type ProcessingLogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Step       ProcessingStep `json:"step"`
	Message    string         `json:"message"`
	DurationMs int64          `json:"duration_ms"`
}

// Meeting is the unit of work the pipeline advances. One meeting correlates a
// webhook delivery to the transcript work item and carries the resumable
// state machine's position, progress, and log.
type Meeting struct {
	UID               string   `json:"uid"`
	Platform          Platform `json:"platform"`
	PlatformMeetingID string   `json:"platform_meeting_id"`
	Topic             string   `json:"topic,omitempty"`
	HostEmail         string   `json:"host_email,omitempty"`
	RawEventUID       string   `json:"raw_event_uid"`

	Status             MeetingStatus        `json:"status"`
	ProcessingStep     ProcessingStep       `json:"processing_step"`
	ProcessingProgress int                  `json:"processing_progress"`
	ProcessingLogs     []ProcessingLogEntry `json:"processing_logs,omitempty"`

	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	ProcessingError       string     `json:"processing_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the meeting's pipeline run has finished.
func (m *Meeting) IsTerminal() bool {
	return m.Status == MeetingStatusCompleted || m.Status == MeetingStatusFailed
}

// AppendLog appends an entry to the processing log and bumps UpdatedAt.
func (m *Meeting) AppendLog(step ProcessingStep, message string, durationMs int64) {
	now := time.Now().UTC()
	m.ProcessingLogs = append(m.ProcessingLogs, ProcessingLogEntry{
		Timestamp:  now,
		Step:       step,
		Message:    message,
		DurationMs: durationMs,
	})
	m.UpdatedAt = now
}

// Tags generates a consistent set of tags for the meeting, used in logs.
func (m *Meeting) Tags() []string {
	if m == nil {
		return nil
	}

	tags := []string{}
	if m.UID != "" {
		tags = append(tags, m.UID, "meeting_uid:"+m.UID)
	}
	if m.Platform != "" {
		tags = append(tags, "platform:"+m.Platform.String())
	}
	if m.PlatformMeetingID != "" {
		tags = append(tags, "platform_meeting_id:"+m.PlatformMeetingID)
	}
	return tags
}
