// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/internal/worker"
)

// flags are the command line flags for the pipeline worker.
type flags struct {
	Debug bool
}

// environment are the environment variables for the pipeline worker.
type environment struct {
	NatsURL string

	ZoomAccountID    string
	ZoomClientID     string
	ZoomClientSecret string

	MeetAccessToken  string
	TeamsAccessToken string

	PollInterval time.Duration
	Concurrency  int

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
}

// parseFlags parses command line flags for the pipeline worker
func parseFlags() flags {
	var debug = flag.Bool("d", false, "enable debug logging")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
	}
}

// parseEnv parses environment variables for the pipeline worker
func parseEnv() environment {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return environment{
		NatsURL:          natsURL,
		ZoomAccountID:    os.Getenv("ZOOM_ACCOUNT_ID"),
		ZoomClientID:     os.Getenv("ZOOM_CLIENT_ID"),
		ZoomClientSecret: os.Getenv("ZOOM_CLIENT_SECRET"),
		MeetAccessToken:  os.Getenv("GOOGLE_MEET_ACCESS_TOKEN"),
		TeamsAccessToken: os.Getenv("TEAMS_GRAPH_ACCESS_TOKEN"),
		PollInterval:     parseDurationEnv("WORKER_POLL_INTERVAL", worker.DefaultPollInterval),
		Concurrency:      parseIntEnv("WORKER_CONCURRENCY", worker.DefaultConcurrency),
		RetryMaxAttempts: parseIntEnv("RETRY_MAX_ATTEMPTS", models.DefaultMaxAttempts),
		RetryBaseDelay:   parseDurationEnv("RETRY_BASE_DELAY", models.DefaultRetryBaseDelay),
	}
}

// parseIntEnv reads an integer environment variable with a fallback.
func parseIntEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		slog.With("name", name, "value", raw).Warn("invalid integer environment variable, using default")
		return fallback
	}
	return value
}

// parseDurationEnv reads a duration environment variable with a fallback.
func parseDurationEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		slog.With("name", name, "value", raw).Warn("invalid duration environment variable, using default")
		return fallback
	}
	return value
}
