// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/infrastructure/store"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/pkg/constants"
)

// setupNATS establishes the NATS connection with graceful-drain handling.
// The connection's closed handler keeps the shutdown wait group held until
// the drain completes.
func setupNATS(ctx context.Context, natsURL string, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	slog.InfoContext(ctx, "connecting to NATS", "url", natsURL)

	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		natsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.ErrorContext(ctx, "async NATS error inside subscription", logging.ErrKey, err, "subject", s.Subject)
				return
			}
			slog.ErrorContext(ctx, "async NATS error", logging.ErrKey, err)
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			if err := conn.LastError(); err != nil {
				slog.ErrorContext(ctx, "NATS connection closed with error", logging.ErrKey, err)
			} else {
				slog.InfoContext(ctx, "NATS connection closed")
			}
			gracefulCloseWG.Done()
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}

	return natsConn, nil
}

// repositories bundles the KV-backed repositories for wiring.
type repositories struct {
	RawEvent       *store.NatsRawEventRepository
	Meeting        *store.NatsMeetingRepository
	Transcript     *store.NatsTranscriptRepository
	WebhookFailure *store.NatsWebhookFailureRepository
	DeadLetter     *store.NatsDeadLetterRepository
}

// getKeyValueStores binds the service's KV buckets, creating any that do not
// exist yet.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, domain.NewUnavailableError("failed to create JetStream context", err)
	}

	buckets := map[string]jetstream.KeyValue{}
	for _, bucket := range []string{
		constants.KVBucketRawEvents,
		constants.KVBucketMeetings,
		constants.KVBucketTranscripts,
		constants.KVBucketWebhookFailures,
		constants.KVBucketDeadLetters,
	} {
		kv, err := js.KeyValue(ctx, bucket)
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
		}
		if err != nil {
			return nil, domain.NewUnavailableError("failed to bind KV bucket "+bucket, err)
		}
		buckets[bucket] = kv
	}

	return &repositories{
		RawEvent:       store.NewNatsRawEventRepository(buckets[constants.KVBucketRawEvents]),
		Meeting:        store.NewNatsMeetingRepository(buckets[constants.KVBucketMeetings]),
		Transcript:     store.NewNatsTranscriptRepository(buckets[constants.KVBucketTranscripts]),
		WebhookFailure: store.NewNatsWebhookFailureRepository(buckets[constants.KVBucketWebhookFailures]),
		DeadLetter:     store.NewNatsDeadLetterRepository(buckets[constants.KVBucketDeadLetters]),
	}, nil
}
