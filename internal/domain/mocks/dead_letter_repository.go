// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// MockDeadLetterRepository implements DeadLetterRepository for testing
type MockDeadLetterRepository struct {
	mock.Mock
}

func (m *MockDeadLetterRepository) Create(ctx context.Context, deadLetter *models.DeadLetter) error {
	args := m.Called(ctx, deadLetter)
	return args.Error(0)
}

func (m *MockDeadLetterRepository) Get(ctx context.Context, webhookFailureUID string) (*models.DeadLetter, error) {
	args := m.Called(ctx, webhookFailureUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeadLetter), args.Error(1)
}

func (m *MockDeadLetterRepository) GetWithRevision(ctx context.Context, webhookFailureUID string) (*models.DeadLetter, uint64, error) {
	args := m.Called(ctx, webhookFailureUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.DeadLetter), args.Get(1).(uint64), args.Error(2)
}

func (m *MockDeadLetterRepository) Update(ctx context.Context, deadLetter *models.DeadLetter, revision uint64) error {
	args := m.Called(ctx, deadLetter, revision)
	return args.Error(0)
}

func (m *MockDeadLetterRepository) ListUnresolved(ctx context.Context) ([]*models.DeadLetter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeadLetter), args.Error(1)
}

func (m *MockDeadLetterRepository) ListAll(ctx context.Context) ([]*models.DeadLetter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeadLetter), args.Error(1)
}
