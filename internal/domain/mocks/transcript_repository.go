// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// MockTranscriptRepository implements TranscriptRepository for testing
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Create(ctx context.Context, transcript *models.Transcript) error {
	args := m.Called(ctx, transcript)
	return args.Error(0)
}

func (m *MockTranscriptRepository) Get(ctx context.Context, transcriptUID string) (*models.Transcript, error) {
	args := m.Called(ctx, transcriptUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}

func (m *MockTranscriptRepository) GetWithRevision(ctx context.Context, transcriptUID string) (*models.Transcript, uint64, error) {
	args := m.Called(ctx, transcriptUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Transcript), args.Get(1).(uint64), args.Error(2)
}

func (m *MockTranscriptRepository) Update(ctx context.Context, transcript *models.Transcript, revision uint64) error {
	args := m.Called(ctx, transcript, revision)
	return args.Error(0)
}

func (m *MockTranscriptRepository) GetByMeetingUID(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}
