// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// MockTranscriptProvider implements TranscriptProvider for testing
type MockTranscriptProvider struct {
	mock.Mock
}

func (m *MockTranscriptProvider) FetchTranscript(ctx context.Context, meeting *models.Meeting, event *models.RawEvent) (*domain.TranscriptDownload, error) {
	args := m.Called(ctx, meeting, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TranscriptDownload), args.Error(1)
}

// MockPlatformRegistry implements PlatformRegistry for testing
type MockPlatformRegistry struct {
	mock.Mock
}

func (m *MockPlatformRegistry) GetProvider(platform models.Platform) (domain.TranscriptProvider, error) {
	args := m.Called(platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.TranscriptProvider), args.Error(1)
}

func (m *MockPlatformRegistry) RegisterProvider(platform models.Platform, provider domain.TranscriptProvider) {
	m.Called(platform, provider)
}

// MockWebhookValidator implements WebhookValidator for testing
type MockWebhookValidator struct {
	mock.Mock
}

func (m *MockWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	args := m.Called(body, signature, timestamp)
	return args.Error(0)
}

func (m *MockWebhookValidator) IsValidEvent(eventType string) bool {
	args := m.Called(eventType)
	return args.Bool(0)
}
