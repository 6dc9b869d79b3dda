// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// ParseTranscript converts raw downloaded content into segments for the
// given format.
func ParseTranscript(format models.TranscriptFormat, content []byte) ([]models.TranscriptSegment, error) {
	switch format {
	case models.TranscriptFormatVTT:
		return ParseVTT(string(content))
	case models.TranscriptFormatJSONSegments:
		return ParseJSONSegments(content)
	}
	return nil, domain.NewValidationError(fmt.Sprintf("unsupported transcript format: %q", format))
}

// ParseVTT parses a WebVTT transcript into timed speaker segments. Cue text
// of the form "Speaker: text" is split into the speaker and text fields.
func ParseVTT(content string) ([]models.TranscriptSegment, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
		return nil, domain.NewValidationError("content is not a WebVTT document")
	}

	var segments []models.TranscriptSegment
	i := 1
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		// A cue may start with an optional identifier line before the timing.
		if !strings.Contains(line, "-->") {
			i++
			if i >= len(lines) {
				break
			}
			line = strings.TrimSpace(lines[i])
			if !strings.Contains(line, "-->") {
				continue
			}
		}

		start, end, err := parseVTTTiming(line)
		if err != nil {
			return nil, domain.NewValidationError("invalid WebVTT timing line", err)
		}

		var textLines []string
		for i++; i < len(lines); i++ {
			text := strings.TrimSpace(lines[i])
			if text == "" {
				break
			}
			textLines = append(textLines, text)
		}

		text := strings.Join(textLines, " ")
		if text == "" {
			continue
		}

		speaker := ""
		if idx := strings.Index(text, ": "); idx > 0 {
			speaker = text[:idx]
			text = strings.TrimSpace(text[idx+2:])
		}

		segments = append(segments, models.TranscriptSegment{
			Speaker:   speaker,
			Text:      text,
			StartSecs: start,
			EndSecs:   end,
		})
	}

	return segments, nil
}

// parseVTTTiming parses "00:00:01.000 --> 00:00:04.500" into start and end
// seconds. Cue settings after the end timestamp are ignored.
func parseVTTTiming(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("missing arrow in timing line %q", line)
	}

	start, err := parseVTTTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}

	endField := strings.Fields(strings.TrimSpace(parts[1]))
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("missing end timestamp in timing line %q", line)
	}
	end, err := parseVTTTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}

	return start, end, nil
}

// parseVTTTimestamp parses "hh:mm:ss.mmm" or "mm:ss.mmm" into seconds.
func parseVTTTimestamp(ts string) (float64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}

	var total float64
	for _, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
		total = total*60 + value
	}
	return total, nil
}

// jsonSegmentsDocument covers the two shapes Meet and Teams deliver: either
// a bare array of entries or an object wrapping one.
type jsonSegmentsDocument struct {
	Entries  []jsonSegmentEntry `json:"entries"`
	Segments []jsonSegmentEntry `json:"segments"`
}

type jsonSegmentEntry struct {
	Speaker     string  `json:"speaker"`
	Participant string  `json:"participant"`
	Text        string  `json:"text"`
	StartSecs   float64 `json:"start_secs"`
	EndSecs     float64 `json:"end_secs"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
}

// ParseJSONSegments parses a JSON transcript of timed speaker segments.
func ParseJSONSegments(content []byte) ([]models.TranscriptSegment, error) {
	var entries []jsonSegmentEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		var doc jsonSegmentsDocument
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, domain.NewValidationError("content is not a JSON segments document", err)
		}
		entries = doc.Entries
		if len(entries) == 0 {
			entries = doc.Segments
		}
	}

	segments := make([]models.TranscriptSegment, 0, len(entries))
	for _, entry := range entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}

		speaker := entry.Speaker
		if speaker == "" {
			speaker = entry.Participant
		}

		start := entry.StartSecs
		end := entry.EndSecs
		if start == 0 && entry.StartTime != "" {
			if parsed, err := parseDurationSeconds(entry.StartTime); err == nil {
				start = parsed
			}
		}
		if end == 0 && entry.EndTime != "" {
			if parsed, err := parseDurationSeconds(entry.EndTime); err == nil {
				end = parsed
			}
		}

		segments = append(segments, models.TranscriptSegment{
			Speaker:   speaker,
			Text:      text,
			StartSecs: start,
			EndSecs:   end,
		})
	}

	return segments, nil
}

// parseDurationSeconds parses Google-style offsets like "3.500s" and
// clock-style offsets like "00:00:03.500".
func parseDurationSeconds(value string) (float64, error) {
	if strings.Contains(value, ":") {
		return parseVTTTimestamp(value)
	}
	return strconv.ParseFloat(strings.TrimSuffix(value, "s"), 64)
}

// CountWords counts whitespace-delimited words across all segments.
func CountWords(segments []models.TranscriptSegment) int {
	count := 0
	for _, segment := range segments {
		count += len(strings.Fields(segment.Text))
	}
	return count
}
