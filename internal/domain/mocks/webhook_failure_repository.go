// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// MockWebhookFailureRepository implements WebhookFailureRepository for testing
type MockWebhookFailureRepository struct {
	mock.Mock
}

func (m *MockWebhookFailureRepository) Create(ctx context.Context, failure *models.WebhookFailure) error {
	args := m.Called(ctx, failure)
	return args.Error(0)
}

func (m *MockWebhookFailureRepository) Get(ctx context.Context, failureUID string) (*models.WebhookFailure, error) {
	args := m.Called(ctx, failureUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookFailure), args.Error(1)
}

func (m *MockWebhookFailureRepository) GetWithRevision(ctx context.Context, failureUID string) (*models.WebhookFailure, uint64, error) {
	args := m.Called(ctx, failureUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.WebhookFailure), args.Get(1).(uint64), args.Error(2)
}

func (m *MockWebhookFailureRepository) Update(ctx context.Context, failure *models.WebhookFailure, revision uint64) error {
	args := m.Called(ctx, failure, revision)
	return args.Error(0)
}

func (m *MockWebhookFailureRepository) ListDue(ctx context.Context, now time.Time) ([]*models.WebhookFailure, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WebhookFailure), args.Error(1)
}
