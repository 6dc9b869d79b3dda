// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Zoom webhook event types consumed by the pipeline.
const (
	ZoomEventMeetingEnded          = "meeting.ended"
	ZoomEventRecordingCompleted    = "recording.completed"
	ZoomEventTranscriptCompleted   = "recording.transcript_completed"
	ZoomEventEndpointURLValidation = "endpoint.url_validation"
)

// ZoomWebhookEnvelope is the outer shape of every Zoom webhook request.
type ZoomWebhookEnvelope struct {
	Event   string          `json:"event"`
	EventTS int64           `json:"event_ts"`
	Payload json.RawMessage `json:"payload"`
}

// ZoomMeetingEndedPayload represents the payload for meeting.ended webhook events
type ZoomMeetingEndedPayload struct {
	AccountID string `json:"account_id"`
	Object    struct {
		UUID      string    `json:"uuid"`
		ID        string    `json:"id"` // Zoom sends as string in webhook events
		HostID    string    `json:"host_id"`
		HostEmail string    `json:"host_email"`
		Topic     string    `json:"topic"`
		Type      int       `json:"type"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		Duration  int       `json:"duration"`
		Timezone  string    `json:"timezone"`
	} `json:"object"`
}

// ZoomRecordingFile represents a single file in a recording payload.
type ZoomRecordingFile struct {
	ID             string    `json:"id"`
	MeetingID      string    `json:"meeting_id"`
	RecordingStart time.Time `json:"recording_start"`
	RecordingEnd   time.Time `json:"recording_end"`
	FileType       string    `json:"file_type"` // "TRANSCRIPT", "MP4", etc.
	FileSize       int64     `json:"file_size"`
	PlayURL        string    `json:"play_url"`
	DownloadURL    string    `json:"download_url"`
	Status         string    `json:"status"`
	RecordingType  string    `json:"recording_type"`
}

// ZoomRecordingCompletedPayload represents the payload for recording.completed webhook events
type ZoomRecordingCompletedPayload struct {
	AccountID string `json:"account_id"`
	Object    struct {
		UUID           string              `json:"uuid"`
		ID             int64               `json:"id"`
		HostID         string              `json:"host_id"`
		HostEmail      string              `json:"host_email"`
		Topic          string              `json:"topic"`
		Type           int                 `json:"type"`
		StartTime      time.Time           `json:"start_time"`
		Timezone       string              `json:"timezone"`
		Duration       int                 `json:"duration"`
		TotalSize      int64               `json:"total_size"`
		RecordingCount int                 `json:"recording_count"`
		RecordingFiles []ZoomRecordingFile `json:"recording_files"`
	} `json:"object"`
	DownloadToken string `json:"download_token,omitempty"`
}

// ZoomTranscriptCompletedPayload represents the payload for
// recording.transcript_completed webhook events
type ZoomTranscriptCompletedPayload struct {
	AccountID string `json:"account_id"`
	Object    struct {
		UUID           string              `json:"uuid"`
		ID             int64               `json:"id"`
		HostID         string              `json:"host_id"`
		HostEmail      string              `json:"host_email"`
		Topic          string              `json:"topic"`
		Type           int                 `json:"type"`
		StartTime      time.Time           `json:"start_time"`
		EndTime        time.Time           `json:"end_time"`
		Timezone       string              `json:"timezone"`
		Duration       int                 `json:"duration"`
		RecordingFiles []ZoomRecordingFile `json:"recording_files"`
	} `json:"object"`
	DownloadToken string `json:"download_token,omitempty"`
}

// ZoomURLValidationPayload represents the payload for endpoint.url_validation
// challenge events sent by Zoom when a webhook endpoint is registered.
type ZoomURLValidationPayload struct {
	PlainToken string `json:"plainToken"`
}

// TranscriptFile returns the first TRANSCRIPT-type recording file, which is
// the one the pipeline downloads.
func (p *ZoomTranscriptCompletedPayload) TranscriptFile() (*ZoomRecordingFile, error) {
	for i := range p.Object.RecordingFiles {
		if p.Object.RecordingFiles[i].FileType == "TRANSCRIPT" {
			return &p.Object.RecordingFiles[i], nil
		}
	}
	return nil, fmt.Errorf("no transcript file in recording payload for meeting %d", p.Object.ID)
}
