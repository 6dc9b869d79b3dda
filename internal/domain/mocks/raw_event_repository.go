// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// MockRawEventRepository implements RawEventRepository for testing
type MockRawEventRepository struct {
	mock.Mock
}

func (m *MockRawEventRepository) Create(ctx context.Context, event *models.RawEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRawEventRepository) Get(ctx context.Context, platform models.Platform, externalEventID string) (*models.RawEvent, error) {
	args := m.Called(ctx, platform, externalEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RawEvent), args.Error(1)
}

func (m *MockRawEventRepository) GetWithRevision(ctx context.Context, platform models.Platform, externalEventID string) (*models.RawEvent, uint64, error) {
	args := m.Called(ctx, platform, externalEventID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.RawEvent), args.Get(1).(uint64), args.Error(2)
}

func (m *MockRawEventRepository) Exists(ctx context.Context, platform models.Platform, externalEventID string) (bool, error) {
	args := m.Called(ctx, platform, externalEventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRawEventRepository) Update(ctx context.Context, event *models.RawEvent, revision uint64) error {
	args := m.Called(ctx, event, revision)
	return args.Error(0)
}

func (m *MockRawEventRepository) ListByStatus(ctx context.Context, status models.RawEventStatus) ([]*models.RawEvent, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RawEvent), args.Error(1)
}
