// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/base64"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// RawEventKey builds the KV key for a raw event. The platform plus the
// platform-issued external event ID form the idempotency key, so the external
// ID is part of the key itself. Platform event IDs can contain characters
// NATS KV keys do not allow (Zoom meeting UUIDs are base64 with '/' and '+'),
// so each part is encoded.
func RawEventKey(platform models.Platform, externalEventID string) string {
	key, err := EncodeKey(platform.String() + "/" + externalEventID)
	if err != nil {
		// Unreachable with non-empty parts; fall back to the raw id.
		return platform.String() + "." + externalEventID
	}
	return key
}

// MeetingKey builds the KV key for a meeting. The platform plus the platform
// meeting ID identify a meeting, so keying on them makes meeting creation the
// correlation idempotency check: two events for the same platform meeting can
// only ever create one record.
func MeetingKey(platform models.Platform, platformMeetingID string) string {
	key, err := EncodeKey(platform.String() + "/" + platformMeetingID)
	if err != nil {
		return platform.String() + "." + platformMeetingID
	}
	return key
}

// EncodeKey encodes a key for NATS KV store.
// From https://github.com/ripienaar/encodedkv
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
func EncodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(strings.TrimPrefix(key, "/"), "/") {
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}

		dst := make([]byte, base64.StdEncoding.EncodedLen(len(part)))
		base64.StdEncoding.Encode(dst, []byte(part))
		res = append(res, string(dst))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "."), nil
}

// DecodeKey decodes a key for NATS KV store.
// From https://github.com/ripienaar/encodedkv
func DecodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(key, ".") {
		k, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return "", err
		}

		res = append(res, string(k))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "/"), nil
}
