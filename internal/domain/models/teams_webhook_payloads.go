// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import "time"

// Microsoft Teams change notification resource types consumed by the
// pipeline, delivered through a Microsoft Graph subscription.
const (
	TeamsEventCallEnded           = "communications/callRecords"
	TeamsEventTranscriptAvailable = "communications/onlineMeetings/transcripts"
)

// TeamsWebhookEnvelope is the outer shape of a Microsoft Graph change
// notification batch. Graph delivers one envelope per POST with one or more
// notifications inside.
type TeamsWebhookEnvelope struct {
	Value []TeamsChangeNotification `json:"value"`
}

// TeamsChangeNotification is a single Graph change notification.
type TeamsChangeNotification struct {
	SubscriptionID  string    `json:"subscriptionId"`
	ChangeType      string    `json:"changeType"`
	ClientState     string    `json:"clientState"`
	Resource        string    `json:"resource"`
	TenantID        string    `json:"tenantId"`
	EventID         string    `json:"id"`
	SubscriptionExp time.Time `json:"subscriptionExpirationDateTime"`
	ResourceData    struct {
		ID             string     `json:"id"`
		MeetingID      string     `json:"meetingId"`
		OrganizerID    string     `json:"organizerId"`
		TranscriptURL  string     `json:"transcriptContentUrl"`
		CallEndTime    *time.Time `json:"callEndDateTime,omitempty"`
		OrganizerEmail string     `json:"organizerEmail,omitempty"`
	} `json:"resourceData"`
}
