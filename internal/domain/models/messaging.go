// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import "time"

// DraftGenerationRequest is the message published when a transcript reaches
// ready. Draft generation itself is an external collaborator; the meeting UID
// plus step form the idempotency key consumers are expected to honor.
type DraftGenerationRequest struct {
	MeetingUID     string         `json:"meeting_uid"`
	TranscriptUID  string         `json:"transcript_uid"`
	Platform       Platform       `json:"platform"`
	Step           ProcessingStep `json:"step"`
	IdempotencyKey string         `json:"idempotency_key"` // meeting_uid + ":" + step
	RequestedAt    time.Time      `json:"requested_at"`
}

// DeadLetterAlert is the operator notification published when a dead-letter
// record is created.
type DeadLetterAlert struct {
	DeadLetterUID string    `json:"dead_letter_uid"`
	Platform      Platform  `json:"platform"`
	EventType     string    `json:"event_type"`
	Error         string    `json:"error"`
	TotalAttempts int       `json:"total_attempts"`
	CreatedAt     time.Time `json:"created_at"`
}
