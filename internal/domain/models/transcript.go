// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// TranscriptStatus is the lifecycle status of transcript acquisition.
type TranscriptStatus string

const (
	TranscriptStatusPending  TranscriptStatus = "pending"
	TranscriptStatusFetching TranscriptStatus = "fetching"
	TranscriptStatusReady    TranscriptStatus = "ready"
	TranscriptStatusFailed   TranscriptStatus = "failed"
)

// TranscriptFormat identifies the wire format the platform delivers
// transcripts in.
type TranscriptFormat string

const (
	// TranscriptFormatVTT is WebVTT, used by Zoom cloud recordings.
	TranscriptFormatVTT TranscriptFormat = "vtt"
	// TranscriptFormatJSONSegments is an array of timed speaker segments,
	// used by Google Meet and Microsoft Teams.
	TranscriptFormatJSONSegments TranscriptFormat = "json_segments"
)

// TranscriptSegment is one parsed utterance of a transcript.
type TranscriptSegment struct {
	Speaker   string  `json:"speaker,omitempty"`
	Text      string  `json:"text"`
	StartSecs float64 `json:"start_secs"`
	EndSecs   float64 `json:"end_secs"`
}

// Transcript is the content associated with exactly one meeting. Fetch
// attempt accounting lives here, independent of the meeting-level state
// machine, so repeated meeting retries never lose visibility into why the
// transcript fetch specifically keeps failing. A ready transcript is
// immutable.
type Transcript struct {
	UID        string           `json:"uid"`
	MeetingUID string           `json:"meeting_uid"`
	Status     TranscriptStatus `json:"status"`
	Format     TranscriptFormat `json:"format,omitempty"`

	// FetchAttempts increments on every acquisition attempt regardless of
	// outcome, and is persisted before the network call so a crash mid-fetch
	// still reflects the attempt.
	FetchAttempts  int    `json:"fetch_attempts"`
	LastFetchError string `json:"last_fetch_error,omitempty"`

	RawContent string              `json:"raw_content,omitempty"`
	Segments   []TranscriptSegment `json:"segments,omitempty"`
	WordCount  int                 `json:"word_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReady reports whether the transcript has non-empty parsed content.
func (t *Transcript) IsReady() bool {
	return t.Status == TranscriptStatusReady && len(t.Segments) > 0
}
