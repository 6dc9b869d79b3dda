// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package constants

// NATS subjects produced by the pipeline.
const (
	// DraftGenerationRequestSubject is published once a transcript reaches
	// the ready state. Consumers own draft generation; the pipeline treats
	// the publish as fire-and-forget.
	DraftGenerationRequestSubject = "pipeline.draft_generation.request"

	// DeadLetterAlertSubject is published whenever a dead-letter record is
	// created so operators are notified of exhausted retries.
	DeadLetterAlertSubject = "pipeline.dead_letter.alert"
)

// NATS KV bucket names for the pipeline's persisted collections.
const (
	KVBucketRawEvents       = "pipeline-raw-events"
	KVBucketMeetings        = "pipeline-meetings"
	KVBucketTranscripts     = "pipeline-transcripts"
	KVBucketWebhookFailures = "pipeline-webhook-failures"
	KVBucketDeadLetters     = "pipeline-dead-letters"
)
