// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package service holds the pipeline's business logic, layered on the domain
// repositories and messaging contracts.
package service

import (
	"time"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
)

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// RetryMaxAttempts is the retry budget for a failed pipeline step before
	// promotion to the dead-letter store.
	RetryMaxAttempts int
	// RetryBaseDelay is the base delay of the linear backoff schedule.
	RetryBaseDelay time.Duration
}

// MaxAttempts returns the configured retry budget, or the default.
func (c ServiceConfig) MaxAttempts() int {
	if c.RetryMaxAttempts > 0 {
		return c.RetryMaxAttempts
	}
	return models.DefaultMaxAttempts
}

// BaseDelay returns the configured backoff base delay, or the default.
func (c ServiceConfig) BaseDelay() time.Duration {
	if c.RetryBaseDelay > 0 {
		return c.RetryBaseDelay
	}
	return models.DefaultRetryBaseDelay
}
