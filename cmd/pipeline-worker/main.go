// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package main is the pipeline worker: it polls the store for ingested
// webhook events and due retries, drives meetings through the processing
// steps, and downloads transcripts from the meeting platforms.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/oauth2"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/gmeet"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/messaging"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/msteams"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/platform"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/zoom"
	zoomapi "github.com/recapio/transcript-pipeline-service/internal/infrastructure/zoom/api"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/internal/service"
	"github.com/recapio/transcript-pipeline-service/internal/tracing"
	"github.com/recapio/transcript-pipeline-service/internal/worker"
)

func main() {
	env := parseEnv()
	parseFlags()

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	shutdownTracing, err := tracing.InitTracerProvider(ctx, "pipeline-worker")
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

	// Initialize transcript providers
	platformRegistry := platform.NewRegistry()
	platformRegistry.RegisterProvider(models.PlatformZoom, zoom.NewProvider(zoomapi.NewClient(zoomapi.Config{
		AccountID:    env.ZoomAccountID,
		ClientID:     env.ZoomClientID,
		ClientSecret: env.ZoomClientSecret,
	})))
	platformRegistry.RegisterProvider(models.PlatformGoogleMeet, gmeet.NewProvider(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: env.MeetAccessToken})))
	platformRegistry.RegisterProvider(models.PlatformMicrosoftTeams, msteams.NewProvider(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: env.TeamsAccessToken})))

	// Initialize services
	serviceConfig := service.ServiceConfig{
		RetryMaxAttempts: env.RetryMaxAttempts,
		RetryBaseDelay:   env.RetryBaseDelay,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	ingestionService := service.NewIngestionService(repos.RawEvent, serviceConfig)
	meetingProcessingService := service.NewMeetingProcessingService(repos.Meeting, serviceConfig)
	transcriptService := service.NewTranscriptService(repos.Transcript, platformRegistry, serviceConfig)
	deadLetterService := service.NewDeadLetterService(
		repos.DeadLetter,
		messageBuilder,
		ingestionService,
		serviceConfig,
	)
	retryService := service.NewRetryService(repos.WebhookFailure, deadLetterService, serviceConfig)

	pipelineWorker := worker.NewWorker(
		repos.RawEvent,
		meetingProcessingService,
		transcriptService,
		retryService,
		messageBuilder,
		worker.Config{
			PollInterval: env.PollInterval,
			Concurrency:  env.Concurrency,
		},
	)
	if !pipelineWorker.ServiceReady() {
		slog.Error("worker dependencies not ready")
		return
	}

	workerWG := sync.WaitGroup{}
	workerWG.Add(1)
	go func() {
		defer workerWG.Done()
		if err := pipelineWorker.Run(ctx); err != nil {
			slog.With(logging.ErrKey, err).Error("worker loop error")
		}
	}()

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	slog.Info("shutting down")
	cancel()

	// Interrupted items record their failures over the NATS connection, so
	// the worker loop must finish before the connection drains.
	workerWG.Wait()

	if !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	gracefulCloseWG.Wait()

	if err := shutdownTracing(context.Background()); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down tracing")
	}

	slog.Info("shutdown complete")
}
