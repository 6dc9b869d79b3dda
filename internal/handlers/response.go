// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package handlers exposes the service's HTTP surface: the per-platform
// webhook endpoints and the dead-letter operator endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", logging.ErrKey, err)
	}
}

// errorResponse is the JSON body for error responses.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps a domain error to its HTTP status code.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}
