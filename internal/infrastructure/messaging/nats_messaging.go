// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package messaging publishes the pipeline's outbound NATS messages: the
// draft-generation trigger and dead-letter operator alerts.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/pkg/constants"
)

// INatsConn is the NATS connection interface the message builder needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds outbound messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// SendDraftGenerationRequest publishes the downstream draft-generation
// trigger for a meeting whose transcript reached ready.
func (m *MessageBuilder) SendDraftGenerationRequest(ctx context.Context, data models.DraftGenerationRequest) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "publishing draft generation request",
		"meeting_uid", data.MeetingUID,
		"idempotency_key", data.IdempotencyKey,
	)

	return m.sendMessage(ctx, constants.DraftGenerationRequestSubject, dataBytes)
}

// SendDeadLetterAlert publishes the operator notification for a newly
// created dead-letter record.
func (m *MessageBuilder) SendDeadLetterAlert(ctx context.Context, data models.DeadLetterAlert) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, constants.DeadLetterAlertSubject, dataBytes)
}
