// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package main is the pipeline API: it receives webhook deliveries from the
// meeting platforms, stores them durably, and exposes the dead-letter
// operator endpoints. All downstream processing runs in the pipeline worker.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/recapio/transcript-pipeline-service/internal/handlers"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/gmeet"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/messaging"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/msteams"
	zoomwebhook "github.com/recapio/transcript-pipeline-service/internal/infrastructure/zoom/webhook"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/internal/service"
	"github.com/recapio/transcript-pipeline-service/internal/tracing"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	shutdownTracing, err := tracing.InitTracerProvider(ctx, "pipeline-api")
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up tracing")
		return
	}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env.NatsURL, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		RetryMaxAttempts: env.RetryMaxAttempts,
		RetryBaseDelay:   env.RetryBaseDelay,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	ingestionService := service.NewIngestionService(repos.RawEvent, serviceConfig)
	deadLetterService := service.NewDeadLetterService(
		repos.DeadLetter,
		messageBuilder,
		ingestionService,
		serviceConfig,
	)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(
		ingestionService,
		zoomwebhook.NewZoomWebhookValidator(env.ZoomWebhookSecretToken),
		gmeet.NewWebhookValidator(env.MeetWebhookToken),
		msteams.NewWebhookValidator(env.TeamsWebhookToken),
	)
	deadLetterHandler := handlers.NewDeadLetterHandler(deadLetterService)

	httpServer := setupHTTPServer(flags, webhookHandler, deadLetterHandler, natsConn, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)

	if err := shutdownTracing(context.Background()); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down tracing")
	}
}
