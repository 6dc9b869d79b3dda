// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/zoom/webhook"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/internal/middleware"
	"github.com/recapio/transcript-pipeline-service/internal/service"
	"github.com/recapio/transcript-pipeline-service/pkg/constants"
)

// WebhookHandler handles inbound webhook deliveries from all platforms.
// Validation happens here, at the edge; everything past the handler assumes
// an authenticated request.
type WebhookHandler struct {
	ingestionService *service.IngestionService
	zoomValidator    *webhook.ZoomWebhookValidator
	meetValidator    domain.WebhookValidator
	teamsValidator   domain.WebhookValidator
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(
	ingestionService *service.IngestionService,
	zoomValidator *webhook.ZoomWebhookValidator,
	meetValidator domain.WebhookValidator,
	teamsValidator domain.WebhookValidator,
) *WebhookHandler {
	return &WebhookHandler{
		ingestionService: ingestionService,
		zoomValidator:    zoomValidator,
		meetValidator:    meetValidator,
		teamsValidator:   teamsValidator,
	}
}

// HandlerReady checks if the handler's services are ready.
func (h *WebhookHandler) HandlerReady() bool {
	return h.ingestionService.ServiceReady()
}

// ingestResponse is the JSON body returned for an accepted delivery.
type ingestResponse struct {
	Status      string `json:"status"`
	RawEventUID string `json:"raw_event_uid,omitempty"`
	Duplicate   bool   `json:"duplicate,omitempty"`
}

// rawBody returns the request body captured by the webhook middleware,
// falling back to reading the request directly.
func rawBody(r *http.Request) ([]byte, error) {
	if body, ok := middleware.GetRawBodyFromContext(r.Context()); ok {
		return body, nil
	}
	return io.ReadAll(r.Body)
}

// HandleZoomWebhook handles POST /webhooks/zoom.
func (h *WebhookHandler) HandleZoomWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("platform", models.PlatformZoom.String()))

	body, err := rawBody(r)
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("failed to read request body", err))
		return
	}

	signature := r.Header.Get(constants.ZoomSignatureHeader)
	timestamp := r.Header.Get(constants.ZoomTimestampHeader)
	if err := h.zoomValidator.ValidateSignature(body, signature, timestamp); err != nil {
		slog.WarnContext(ctx, "rejected Zoom webhook with invalid signature", logging.ErrKey, err)
		writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "invalid webhook signature"})
		return
	}

	var envelope models.ZoomWebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid webhook payload", err))
		return
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_type", envelope.Event))

	// Zoom sends a challenge when the endpoint is registered; answer it
	// without storing anything.
	if envelope.Event == models.ZoomEventEndpointURLValidation {
		h.handleZoomURLValidation(ctx, w, envelope)
		return
	}

	if !h.zoomValidator.IsValidEvent(envelope.Event) {
		slog.DebugContext(ctx, "ignoring unsupported Zoom event")
		writeJSON(ctx, w, http.StatusOK, ingestResponse{Status: "ignored"})
		return
	}

	result, err := h.ingestionService.Ingest(ctx, models.PlatformZoom, envelope.Event, zoomExternalEventID(envelope), body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, ingestResponse{
		Status:      "accepted",
		RawEventUID: result.RawEventUID,
		Duplicate:   !result.Created,
	})
}

// handleZoomURLValidation answers the endpoint.url_validation challenge with
// the HMAC of the plain token.
func (h *WebhookHandler) handleZoomURLValidation(ctx context.Context, w http.ResponseWriter, envelope models.ZoomWebhookEnvelope) {
	var payload models.ZoomURLValidationPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil || payload.PlainToken == "" {
		writeError(ctx, w, domain.NewValidationError("invalid URL validation payload", err))
		return
	}

	slog.InfoContext(ctx, "answering Zoom URL validation challenge")
	writeJSON(ctx, w, http.StatusOK, map[string]string{
		"plainToken":     payload.PlainToken,
		"encryptedToken": h.zoomValidator.ChallengeResponse(payload.PlainToken),
	})
}

// zoomExternalEventID derives the dedup key for a Zoom delivery. Zoom does
// not send a delivery ID, but retransmissions repeat the event, timestamp,
// and meeting UUID exactly.
func zoomExternalEventID(envelope models.ZoomWebhookEnvelope) string {
	var object struct {
		Object struct {
			UUID string `json:"uuid"`
		} `json:"object"`
	}
	_ = json.Unmarshal(envelope.Payload, &object)
	return fmt.Sprintf("%s/%s/%d", envelope.Event, object.Object.UUID, envelope.EventTS)
}

// HandleMeetWebhook handles POST /webhooks/google-meet.
func (h *WebhookHandler) HandleMeetWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("platform", models.PlatformGoogleMeet.String()))

	body, err := rawBody(r)
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("failed to read request body", err))
		return
	}

	token := r.Header.Get(constants.WebhookTokenHeader)
	if err := h.meetValidator.ValidateSignature(body, token, ""); err != nil {
		slog.WarnContext(ctx, "rejected Google Meet webhook with invalid token", logging.ErrKey, err)
		writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "invalid webhook token"})
		return
	}

	var envelope models.MeetWebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid webhook payload", err))
		return
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_type", envelope.EventType))

	if !h.meetValidator.IsValidEvent(envelope.EventType) {
		slog.DebugContext(ctx, "ignoring unsupported Google Meet event")
		writeJSON(ctx, w, http.StatusOK, ingestResponse{Status: "ignored"})
		return
	}

	externalEventID := envelope.EventID
	if externalEventID == "" {
		externalEventID = fmt.Sprintf("%s/%s", envelope.EventType, envelope.Payload.ConferenceRecord.Name)
	}

	result, err := h.ingestionService.Ingest(ctx, models.PlatformGoogleMeet, envelope.EventType, externalEventID, body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, ingestResponse{
		Status:      "accepted",
		RawEventUID: result.RawEventUID,
		Duplicate:   !result.Created,
	})
}

// HandleTeamsWebhook handles POST /webhooks/microsoft-teams.
func (h *WebhookHandler) HandleTeamsWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("platform", models.PlatformMicrosoftTeams.String()))

	// Graph validates new subscriptions by expecting the validation token
	// echoed back as plain text.
	if validationToken := r.URL.Query().Get("validationToken"); validationToken != "" {
		slog.InfoContext(ctx, "answering Microsoft Graph subscription validation")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(validationToken))
		return
	}

	body, err := rawBody(r)
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("failed to read request body", err))
		return
	}

	var envelope models.TeamsWebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid webhook payload", err))
		return
	}
	if len(envelope.Value) == 0 {
		writeError(ctx, w, domain.NewValidationError("notification batch is empty"))
		return
	}

	// Graph carries the shared secret as clientState inside each
	// notification rather than a header.
	notification := envelope.Value[0]
	if err := h.teamsValidator.ValidateSignature(body, notification.ClientState, ""); err != nil {
		slog.WarnContext(ctx, "rejected Microsoft Teams webhook with invalid client state", logging.ErrKey, err)
		writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "invalid client state"})
		return
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_type", notification.Resource))

	if !h.teamsValidator.IsValidEvent(eventTypeForTeamsResource(notification.Resource)) {
		slog.DebugContext(ctx, "ignoring unsupported Microsoft Teams notification")
		writeJSON(ctx, w, http.StatusAccepted, ingestResponse{Status: "ignored"})
		return
	}

	externalEventID := notification.EventID
	if externalEventID == "" {
		externalEventID = fmt.Sprintf("%s/%s", notification.Resource, notification.ResourceData.ID)
	}

	result, err := h.ingestionService.Ingest(ctx, models.PlatformMicrosoftTeams, eventTypeForTeamsResource(notification.Resource), externalEventID, body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	// Graph expects 202 within 3 seconds or it redelivers.
	writeJSON(ctx, w, http.StatusAccepted, ingestResponse{
		Status:      "accepted",
		RawEventUID: result.RawEventUID,
		Duplicate:   !result.Created,
	})
}

// eventTypeForTeamsResource normalizes a Graph resource path to the event
// type the pipeline keys on.
func eventTypeForTeamsResource(resource string) string {
	if strings.Contains(resource, "transcripts") {
		return models.TeamsEventTranscriptAvailable
	}
	return models.TeamsEventCallEnded
}
