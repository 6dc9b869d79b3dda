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
)

// flags are the command line flags for the pipeline API.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the pipeline API.
type environment struct {
	Port    string
	NatsURL string

	ZoomWebhookSecretToken string
	ZoomAccountID          string
	ZoomClientID           string
	ZoomClientSecret       string

	MeetWebhookToken  string
	TeamsWebhookToken string

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
}

// parseFlags parses command line flags for the pipeline API
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

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
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the pipeline API
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return environment{
		Port:                   port,
		NatsURL:                natsURL,
		ZoomWebhookSecretToken: os.Getenv("ZOOM_WEBHOOK_SECRET_TOKEN"),
		ZoomAccountID:          os.Getenv("ZOOM_ACCOUNT_ID"),
		ZoomClientID:           os.Getenv("ZOOM_CLIENT_ID"),
		ZoomClientSecret:       os.Getenv("ZOOM_CLIENT_SECRET"),
		MeetWebhookToken:       os.Getenv("GOOGLE_MEET_WEBHOOK_TOKEN"),
		TeamsWebhookToken:      os.Getenv("TEAMS_WEBHOOK_TOKEN"),
		RetryMaxAttempts:       parseIntEnv("RETRY_MAX_ATTEMPTS", models.DefaultMaxAttempts),
		RetryBaseDelay:         parseDurationEnv("RETRY_BASE_DELAY", models.DefaultRetryBaseDelay),
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
