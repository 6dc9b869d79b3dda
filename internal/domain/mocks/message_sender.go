// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// MockMessageSender implements MessageSender for testing
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) SendDraftGenerationRequest(ctx context.Context, data models.DraftGenerationRequest) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageSender) SendDeadLetterAlert(ctx context.Context, data models.DeadLetterAlert) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}
