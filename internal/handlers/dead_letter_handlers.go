// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/internal/service"
)

// DeadLetterHandler exposes the operator interface over the dead-letter
// store: listing, manual resolution, and payload replay.
type DeadLetterHandler struct {
	deadLetterService *service.DeadLetterService
}

// NewDeadLetterHandler creates a new DeadLetterHandler
func NewDeadLetterHandler(deadLetterService *service.DeadLetterService) *DeadLetterHandler {
	return &DeadLetterHandler{
		deadLetterService: deadLetterService,
	}
}

// HandlerReady checks if the handler's services are ready.
func (h *DeadLetterHandler) HandlerReady() bool {
	return h.deadLetterService.ServiceReady()
}

// deadLetterListResponse is the JSON body for dead-letter listings.
type deadLetterListResponse struct {
	DeadLetters []*models.DeadLetter `json:"dead_letters"`
	Count       int                  `json:"count"`
}

// HandleList handles GET /dead-letters. The resolved=false query filters to
// the records still waiting on an operator.
func (h *DeadLetterHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		deadLetters []*models.DeadLetter
		err         error
	)
	if r.URL.Query().Get("resolved") == "false" {
		deadLetters, err = h.deadLetterService.ListUnresolved(ctx)
	} else {
		deadLetters, err = h.deadLetterService.ListAll(ctx)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, deadLetterListResponse{
		DeadLetters: deadLetters,
		Count:       len(deadLetters),
	})
}

// resolveRequest is the JSON body for POST /dead-letters/{uid}/resolve.
type resolveRequest struct {
	Notes string `json:"notes"`
}

// HandleResolve handles POST /dead-letters/{uid}/resolve.
func (h *DeadLetterHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := r.PathValue("uid")
	if uid == "" {
		writeError(ctx, w, domain.NewValidationError("dead letter UID is required"))
		return
	}
	ctx = logging.AppendCtx(ctx, slog.String("webhook_failure_uid", uid))

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, domain.NewValidationError("invalid request body", err))
		return
	}

	deadLetter, err := h.deadLetterService.Resolve(ctx, uid, req.Notes)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, deadLetter)
}

// replayResponse is the JSON body for POST /dead-letters/{uid}/replay.
type replayResponse struct {
	Status      string `json:"status"`
	RawEventUID string `json:"raw_event_uid"`
}

// HandleReplay handles POST /dead-letters/{uid}/replay.
func (h *DeadLetterHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := r.PathValue("uid")
	if uid == "" {
		writeError(ctx, w, domain.NewValidationError("dead letter UID is required"))
		return
	}
	ctx = logging.AppendCtx(ctx, slog.String("webhook_failure_uid", uid))

	result, err := h.deadLetterService.Replay(ctx, uid)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, replayResponse{
		Status:      "replayed",
		RawEventUID: result.RawEventUID,
	})
}
