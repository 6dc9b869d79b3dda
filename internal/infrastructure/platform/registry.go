// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package platform holds the registry of per-platform transcript providers.
package platform

import (
	"fmt"
	"sync"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

// Registry implements the PlatformRegistry interface
type Registry struct {
	providers map[models.Platform]domain.TranscriptProvider
	mu        sync.RWMutex
}

// NewRegistry creates a new platform registry
func NewRegistry() domain.PlatformRegistry {
	return &Registry{
		providers: make(map[models.Platform]domain.TranscriptProvider),
	}
}

// GetProvider returns the transcript provider for the specified platform
func (r *Registry) GetProvider(platform models.Platform) (domain.TranscriptProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[platform]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.NewNotFoundError("transcript provider not found", nil), platform)
	}

	return provider, nil
}

// RegisterProvider registers a transcript provider
func (r *Registry) RegisterProvider(platform models.Platform, provider domain.TranscriptProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[platform] = provider
}
