// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import "time"

// Google Meet notification event types consumed by the pipeline. These are
// the Workspace Events API event names delivered to the webhook subscription.
const (
	MeetEventConferenceEnded     = "google.workspace.meet.conference.v2.ended"
	MeetEventTranscriptFileReady = "google.workspace.meet.transcript.v2.fileGenerated"
	MeetEventRecordingFileReady  = "google.workspace.meet.recording.v2.fileGenerated"
)

// MeetWebhookEnvelope is the outer shape of a Google Meet push notification.
type MeetWebhookEnvelope struct {
	EventType   string    `json:"eventType"`
	EventID     string    `json:"eventId"`
	PublishTime time.Time `json:"publishTime"`
	Payload     struct {
		ConferenceRecord struct {
			Name      string    `json:"name"` // "conferenceRecords/{id}"
			StartTime time.Time `json:"startTime"`
			EndTime   time.Time `json:"endTime"`
			Space     string    `json:"space"`
		} `json:"conferenceRecord"`
		Transcript struct {
			Name             string `json:"name"` // "conferenceRecords/{id}/transcripts/{id}"
			DriveDestination struct {
				File      string `json:"file"`
				ExportURI string `json:"exportUri"`
			} `json:"docsDestination"`
		} `json:"transcript"`
		Organizer struct {
			Email string `json:"email"`
		} `json:"organizer"`
	} `json:"payload"`
}
