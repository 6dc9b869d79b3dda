// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

func TestParseVTT(t *testing.T) {
	t.Run("parses cues with speakers and timings", func(t *testing.T) {
		content := "WEBVTT\n" +
			"\n" +
			"1\n" +
			"00:00:01.000 --> 00:00:04.500\n" +
			"Alice Johnson: Good morning everyone, let's get started.\n" +
			"\n" +
			"2\n" +
			"00:01:02.250 --> 00:01:05.000\n" +
			"Bob: Sounds good.\n"

		segments, err := ParseVTT(content)

		require.NoError(t, err)
		require.Len(t, segments, 2)
		assert.Equal(t, "Alice Johnson", segments[0].Speaker)
		assert.Equal(t, "Good morning everyone, let's get started.", segments[0].Text)
		assert.Equal(t, 1.0, segments[0].StartSecs)
		assert.Equal(t, 4.5, segments[0].EndSecs)
		assert.Equal(t, 62.25, segments[1].StartSecs)
	})

	t.Run("cue without identifier line", func(t *testing.T) {
		content := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHello there.\n"

		segments, err := ParseVTT(content)

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Empty(t, segments[0].Speaker)
		assert.Equal(t, "Hello there.", segments[0].Text)
	})

	t.Run("multi-line cue text joins lines", func(t *testing.T) {
		content := "WEBVTT\n\n00:00:01.000 --> 00:00:04.000\nAlice: This sentence continues\nonto the next line.\n"

		segments, err := ParseVTT(content)

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, "This sentence continues onto the next line.", segments[0].Text)
	})

	t.Run("handles CRLF line endings", func(t *testing.T) {
		content := "WEBVTT\r\n\r\n00:00:01.000 --> 00:00:02.000\r\nBob: Hi.\r\n"

		segments, err := ParseVTT(content)

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, "Bob", segments[0].Speaker)
	})

	t.Run("mm:ss timestamps", func(t *testing.T) {
		content := "WEBVTT\n\n01:30.500 --> 01:32.000\nAlice: Short clock.\n"

		segments, err := ParseVTT(content)

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, 90.5, segments[0].StartSecs)
	})

	t.Run("rejects non-VTT content", func(t *testing.T) {
		_, err := ParseVTT("{\"not\":\"vtt\"}")

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("rejects malformed timing line", func(t *testing.T) {
		content := "WEBVTT\n\n1\nnot-a-time --> also-not\nText.\n"

		_, err := ParseVTT(content)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("empty document yields no segments", func(t *testing.T) {
		segments, err := ParseVTT("WEBVTT\n")

		require.NoError(t, err)
		assert.Empty(t, segments)
	})
}

func TestParseJSONSegments(t *testing.T) {
	t.Run("bare array with explicit seconds", func(t *testing.T) {
		content := []byte(`[
			{"speaker":"Alice","text":"Good morning.","start_secs":1.5,"end_secs":3},
			{"speaker":"Bob","text":"Morning.","start_secs":3.5,"end_secs":4}
		]`)

		segments, err := ParseJSONSegments(content)

		require.NoError(t, err)
		require.Len(t, segments, 2)
		assert.Equal(t, "Alice", segments[0].Speaker)
		assert.Equal(t, 1.5, segments[0].StartSecs)
	})

	t.Run("entries document with Google-style offsets", func(t *testing.T) {
		content := []byte(`{"entries":[
			{"participant":"users/12345","text":"Let us begin.","startTime":"3.500s","endTime":"5s"}
		]}`)

		segments, err := ParseJSONSegments(content)

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, "users/12345", segments[0].Speaker)
		assert.Equal(t, 3.5, segments[0].StartSecs)
		assert.Equal(t, 5.0, segments[0].EndSecs)
	})

	t.Run("segments document with clock offsets", func(t *testing.T) {
		content := []byte(`{"segments":[
			{"speaker":"Bob","text":"Hello.","startTime":"00:01:02.500","endTime":"00:01:04.000"}
		]}`)

		segments, err := ParseJSONSegments(content)

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, 62.5, segments[0].StartSecs)
	})

	t.Run("entries without text are dropped", func(t *testing.T) {
		content := []byte(`[
			{"speaker":"Alice","text":"Kept."},
			{"speaker":"Bob","text":"   "}
		]`)

		segments, err := ParseJSONSegments(content)

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, "Kept.", segments[0].Text)
	})

	t.Run("rejects non-JSON content", func(t *testing.T) {
		_, err := ParseJSONSegments([]byte("WEBVTT\n"))

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestParseTranscript(t *testing.T) {
	t.Run("dispatches on format", func(t *testing.T) {
		segments, err := ParseTranscript(models.TranscriptFormatVTT, []byte("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHi.\n"))
		require.NoError(t, err)
		assert.Len(t, segments, 1)

		segments, err = ParseTranscript(models.TranscriptFormatJSONSegments, []byte(`[{"text":"Hi."}]`))
		require.NoError(t, err)
		assert.Len(t, segments, 1)
	})

	t.Run("unknown format is rejected", func(t *testing.T) {
		_, err := ParseTranscript(models.TranscriptFormat("srt"), []byte("1\n00:00:01,000 --> 00:00:02,000\nHi.\n"))

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestCountWords(t *testing.T) {
	segments := []models.TranscriptSegment{
		{Text: "Good morning everyone, let's get started."},
		{Text: "Sounds good."},
		{Text: ""},
	}

	assert.Equal(t, 8, CountWords(segments))
	assert.Equal(t, 0, CountWords(nil))
}
