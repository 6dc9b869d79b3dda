// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"time"
)

// RawEventStatus is the lifecycle status of an ingested webhook delivery.
// Status only moves forward: received -> processing -> processed or failed.
type RawEventStatus string

const (
	RawEventStatusReceived   RawEventStatus = "received"
	RawEventStatusProcessing RawEventStatus = "processing"
	RawEventStatusProcessed  RawEventStatus = "processed"
	RawEventStatusFailed     RawEventStatus = "failed"
)

// RawEvent is the durable record of one inbound webhook delivery. Records are
// never deleted; they are the audit trail and the idempotency boundary for
// at-least-once webhook delivery. The KV key is derived from the platform and
// the platform-issued external event ID, so a second delivery of the same
// event cannot create a second record.
type RawEvent struct {
	UID             string          `json:"uid"`
	Platform        Platform        `json:"platform"`
	EventType       string          `json:"event_type"`
	ExternalEventID string          `json:"external_event_id"`
	Payload         json.RawMessage `json:"payload"`
	Status          RawEventStatus  `json:"status"`

	// Lightweight hints extracted at ingestion time without deep parsing.
	PlatformMeetingID string     `json:"platform_meeting_id,omitempty"`
	HostEmail         string     `json:"host_email,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	HasRecording      bool       `json:"has_recording"`
	HasTranscript     bool       `json:"has_transcript"`

	ErrorMessage string     `json:"error_message,omitempty"`
	ReceivedAt   time.Time  `json:"received_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// rawEventStatusOrder defines the forward-only ordering of statuses.
var rawEventStatusOrder = map[RawEventStatus]int{
	RawEventStatusReceived:   0,
	RawEventStatusProcessing: 1,
	RawEventStatusProcessed:  2,
	RawEventStatusFailed:     2,
}

// CanTransitionTo reports whether the status may advance to the target.
// Terminal statuses (processed, failed) accept no further transitions.
func (s RawEventStatus) CanTransitionTo(target RawEventStatus) bool {
	from, ok := rawEventStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := rawEventStatusOrder[target]
	if !ok {
		return false
	}
	if s == RawEventStatusProcessed || s == RawEventStatusFailed {
		return false
	}
	return to > from
}

// IsTerminal reports whether the raw event needs no further processing.
func (e *RawEvent) IsTerminal() bool {
	return e.Status == RawEventStatusProcessed || e.Status == RawEventStatusFailed
}

// Tags generates a consistent set of tags for the raw event, used in logs.
func (e *RawEvent) Tags() []string {
	if e == nil {
		return nil
	}

	tags := []string{}
	if e.UID != "" {
		tags = append(tags, e.UID, "raw_event_uid:"+e.UID)
	}
	if e.ExternalEventID != "" {
		tags = append(tags, "external_event_id:"+e.ExternalEventID)
	}
	if e.Platform != "" {
		tags = append(tags, "platform:"+e.Platform.String())
	}
	if e.EventType != "" {
		tags = append(tags, "event_type:"+e.EventType)
	}
	return tags
}
