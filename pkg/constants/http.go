// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package constants holds the wire-level constants shared between the
// ingestion API and the background worker.
package constants

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ZoomSignatureHeader carries the Zoom webhook HMAC signature
	ZoomSignatureHeader string = "x-zm-signature"

	// ZoomTimestampHeader carries the Zoom webhook request timestamp
	ZoomTimestampHeader string = "x-zm-request-timestamp"

	// WebhookTokenHeader carries the shared-secret bearer token used by the
	// Google Meet and Microsoft Teams webhook subscriptions
	WebhookTokenHeader string = "x-webhook-token"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"
