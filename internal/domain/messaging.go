// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// DraftGenerationSender publishes the downstream draft-generation trigger.
// The publish is fire-and-forget from the pipeline's perspective; generation
// completion is reported back out-of-band.
type DraftGenerationSender interface {
	SendDraftGenerationRequest(ctx context.Context, data models.DraftGenerationRequest) error
}

// DeadLetterAlertSender publishes the operator notification owed whenever a
// dead-letter record is created.
type DeadLetterAlertSender interface {
	SendDeadLetterAlert(ctx context.Context, data models.DeadLetterAlert) error
}

// MessageSender composes all messaging capabilities the pipeline produces.
type MessageSender interface {
	DraftGenerationSender
	DeadLetterAlertSender
}
