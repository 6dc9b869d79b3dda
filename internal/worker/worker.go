// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package worker runs the background pipeline loop: it polls the store for
// newly ingested webhook events and due retries, and drives each meeting
// through the ordered processing steps.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/recapio/transcript-pipeline-service/internal/domain"
	"github.com/recapio/transcript-pipeline-service/internal/domain/models"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/internal/service"
	"github.com/recapio/transcript-pipeline-service/pkg/concurrent"
	"github.com/recapio/transcript-pipeline-service/pkg/utils"
)

const (
	// DefaultPollInterval is how often the worker scans for new work.
	DefaultPollInterval = 5 * time.Second

	// DefaultConcurrency bounds how many pipeline items run in parallel.
	DefaultConcurrency = 4
)

// Config is the worker loop configuration.
type Config struct {
	PollInterval time.Duration
	Concurrency  int
}

// Worker polls for work and drives the pipeline. There is no push path:
// ingestion stores events and returns, everything downstream happens here.
type Worker struct {
	rawEventRepository       domain.RawEventRepository
	meetingProcessingService *service.MeetingProcessingService
	transcriptService        *service.TranscriptService
	retryService             *service.RetryService
	messageSender            domain.MessageSender
	pool                     *concurrent.WorkerPool
	config                   Config
}

// NewWorker creates a new Worker
func NewWorker(
	rawEventRepository domain.RawEventRepository,
	meetingProcessingService *service.MeetingProcessingService,
	transcriptService *service.TranscriptService,
	retryService *service.RetryService,
	messageSender domain.MessageSender,
	config Config,
) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	return &Worker{
		rawEventRepository:       rawEventRepository,
		meetingProcessingService: meetingProcessingService,
		transcriptService:        transcriptService,
		retryService:             retryService,
		messageSender:            messageSender,
		pool:                     concurrent.NewWorkerPool(config.Concurrency),
		config:                   config,
	}
}

// ServiceReady checks if the worker has all its dependencies.
func (w *Worker) ServiceReady() bool {
	return w.rawEventRepository != nil &&
		w.meetingProcessingService != nil &&
		w.transcriptService != nil &&
		w.retryService != nil &&
		w.messageSender != nil
}

// Run polls until the context is canceled. In-flight items drain before Run
// returns; items interrupted mid-step are recorded as retryable failures so
// the next run picks them up.
func (w *Worker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "worker started",
		"poll_interval", w.config.PollInterval.String(),
		"concurrency", w.config.Concurrency,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// First tick immediately rather than waiting a full interval.
	w.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "worker stopping")
			return nil
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one polling pass: new events first, then due retries.
func (w *Worker) Tick(ctx context.Context) {
	events, err := w.rawEventRepository.ListByStatus(ctx, models.RawEventStatusReceived)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list received events", logging.ErrKey, err)
	}

	failures, err := w.retryService.DueForRetry(ctx, time.Now().UTC())
	if err != nil {
		slog.ErrorContext(ctx, "failed to list due retries", logging.ErrKey, err)
	}

	if len(events) == 0 && len(failures) == 0 {
		return
	}

	slog.DebugContext(ctx, "worker tick",
		"new_events", len(events),
		"due_retries", len(failures),
	)

	functions := make([]func() error, 0, len(events)+len(failures))
	for _, event := range events {
		functions = append(functions, func() error {
			return w.processNewEvent(ctx, event)
		})
	}
	for _, failure := range failures {
		functions = append(functions, func() error {
			return w.processRetry(ctx, failure)
		})
	}

	for _, err := range w.pool.RunAll(ctx, functions...) {
		slog.ErrorContext(ctx, "pipeline item failed", logging.ErrKey, err)
	}
}

// processNewEvent claims one received event and drives it through the
// pipeline. A claim that loses the CAS race is skipped silently.
func (w *Worker) processNewEvent(ctx context.Context, event *models.RawEvent) error {
	ctx = logging.AppendCtx(ctx, slog.String("raw_event_uid", event.UID))
	ctx = logging.AppendCtx(ctx, slog.Any("tags", event.Tags()))

	claimed, err := w.claimEvent(ctx, event)
	if err != nil || claimed == nil {
		return err
	}

	meeting, step, driveErr := w.driveEvent(ctx, claimed)
	if driveErr == nil {
		return w.markEventProcessed(ctx, claimed)
	}

	return w.recordStepFailure(ctx, claimed, meeting, step, driveErr)
}

// claimEvent moves the event from received to processing via CAS. Returns
// nil without error when another pass already claimed it.
func (w *Worker) claimEvent(ctx context.Context, event *models.RawEvent) (*models.RawEvent, error) {
	current, revision, err := w.rawEventRepository.GetWithRevision(ctx, event.Platform, event.ExternalEventID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(models.RawEventStatusProcessing) {
		return nil, nil
	}

	current.Status = models.RawEventStatusProcessing
	if err := w.rawEventRepository.Update(ctx, current, revision); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			slog.DebugContext(ctx, "lost claim race for raw event")
			return nil, nil
		}
		return nil, err
	}
	return current, nil
}

// driveEvent advances the event's meeting as far as the event allows. It
// returns the step at which processing stopped when an error occurred.
func (w *Worker) driveEvent(ctx context.Context, event *models.RawEvent) (*models.Meeting, models.ProcessingStep, error) {
	meeting, err := w.meetingProcessingService.EnsureMeeting(ctx, event)
	if err != nil {
		return nil, models.StepMeetingFetched, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	if err := w.advance(ctx, meeting.UID, models.StepMeetingFetched, "meeting details extracted from webhook", 0); err != nil {
		return meeting, models.StepMeetingFetched, err
	}
	if err := w.advance(ctx, meeting.UID, models.StepMeetingCreated, "meeting record ready", 0); err != nil {
		return meeting, models.StepMeetingCreated, err
	}

	// Events without transcript content (meeting.ended and the like) stop
	// here; the transcript-completed event advances the same meeting later.
	if !event.HasTranscript {
		slog.DebugContext(ctx, "event carries no transcript, pipeline waits for transcript event",
			"event_type", event.EventType,
		)
		return meeting, "", nil
	}

	fetchStart := time.Now()
	transcript, err := w.transcriptService.FetchTranscript(ctx, meeting, event)
	if err != nil {
		return meeting, models.StepTranscriptDownload, err
	}
	fetchMs := time.Since(fetchStart).Milliseconds()

	if err := w.advance(ctx, meeting.UID, models.StepTranscriptDownload, "transcript downloaded", fetchMs); err != nil {
		return meeting, models.StepTranscriptDownload, err
	}
	if err := w.advance(ctx, meeting.UID, models.StepTranscriptParse,
		fmt.Sprintf("transcript parsed into %d segments", len(transcript.Segments)), 0); err != nil {
		return meeting, models.StepTranscriptParse, err
	}
	if err := w.advance(ctx, meeting.UID, models.StepTranscriptStored,
		fmt.Sprintf("transcript stored, %d words", transcript.WordCount), 0); err != nil {
		return meeting, models.StepTranscriptStored, err
	}

	request := models.DraftGenerationRequest{
		MeetingUID:     meeting.UID,
		TranscriptUID:  transcript.UID,
		Platform:       meeting.Platform,
		Step:           models.StepDraftGeneration,
		IdempotencyKey: meeting.UID + ":" + string(models.StepDraftGeneration),
		RequestedAt:    time.Now().UTC(),
	}
	if err := w.messageSender.SendDraftGenerationRequest(ctx, request); err != nil {
		return meeting, models.StepDraftGeneration, err
	}

	if err := w.advance(ctx, meeting.UID, models.StepDraftGeneration, "draft generation requested", 0); err != nil {
		return meeting, models.StepDraftGeneration, err
	}
	if err := w.advance(ctx, meeting.UID, models.StepCompleted, "pipeline completed", 0); err != nil {
		return meeting, models.StepCompleted, err
	}

	return meeting, "", nil
}

// advance wraps the processing service's Advance, treating a rejected
// out-of-order move as already done. Resumed meetings skip past the steps
// they finished in an earlier pass.
func (w *Worker) advance(ctx context.Context, meetingUID string, step models.ProcessingStep, message string, durationMs int64) error {
	_, err := w.meetingProcessingService.Advance(ctx, meetingUID, step, message, durationMs)
	if err != nil && domain.GetErrorType(err) == domain.ErrorTypeValidation {
		return nil
	}
	return err
}

// recordStepFailure hands a failed step to the retry queue. When the retry
// budget is already spent the failure promotes immediately and the event and
// meeting are settled as failed.
func (w *Worker) recordStepFailure(ctx context.Context, event *models.RawEvent, meeting *models.Meeting, step models.ProcessingStep, stepErr error) error {
	// A step interrupted by shutdown still has to land in the retry queue;
	// the recording writes must outlive the canceled work context.
	ctx = context.WithoutCancel(ctx)

	replay := models.StepReplay{
		RawEventUID: event.UID,
		Step:        step,
	}
	if meeting != nil {
		replay.MeetingUID = meeting.UID
	}

	failure, err := w.retryService.RecordFailure(ctx, event, replay, stepErr)
	if err != nil {
		return fmt.Errorf("recording failure for event %s: %w", event.UID, err)
	}

	if failure.Status == models.WebhookFailureStatusDeadLetter {
		w.settleFailedEvent(ctx, event, meeting, stepErr)
	}

	return stepErr
}

// processRetry re-executes the failed step for one due failure and reports
// the outcome to the retry queue.
func (w *Worker) processRetry(ctx context.Context, failure *models.WebhookFailure) error {
	ctx = logging.AppendCtx(ctx, slog.String("webhook_failure_uid", failure.UID))

	event, err := w.rawEventRepository.Get(ctx, failure.Platform, failure.ExternalEventID)
	if err != nil {
		_, outcomeErr := w.retryService.RecordRetryOutcome(context.WithoutCancel(ctx), failure.UID, err)
		if outcomeErr != nil {
			return outcomeErr
		}
		return err
	}

	meeting, _, driveErr := w.driveEvent(ctx, event)

	// Outcome recording must survive a shutdown that interrupted the step.
	ctx = context.WithoutCancel(ctx)

	updated, err := w.retryService.RecordRetryOutcome(ctx, failure.UID, driveErr)
	if err != nil {
		return fmt.Errorf("recording retry outcome for failure %s: %w", failure.UID, err)
	}

	if driveErr == nil {
		return w.markEventProcessed(ctx, event)
	}

	if updated.Status == models.WebhookFailureStatusDeadLetter {
		w.settleFailedEvent(ctx, event, meeting, driveErr)
	}

	return driveErr
}

// markEventProcessed settles the raw event after a successful pass. The
// settlement write runs detached from cancellation so completed work is never
// left looking in-flight.
func (w *Worker) markEventProcessed(ctx context.Context, event *models.RawEvent) error {
	ctx = context.WithoutCancel(ctx)
	current, revision, err := w.rawEventRepository.GetWithRevision(ctx, event.Platform, event.ExternalEventID)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(models.RawEventStatusProcessed) {
		return nil
	}

	current.Status = models.RawEventStatusProcessed
	current.ProcessedAt = utils.TimePtr(time.Now().UTC())
	current.ErrorMessage = ""
	if err := w.rawEventRepository.Update(ctx, current, revision); err != nil {
		slog.ErrorContext(ctx, "failed to mark raw event processed", logging.ErrKey, err)
		return err
	}
	return nil
}

// settleFailedEvent marks the raw event and its meeting permanently failed
// after the retry budget is exhausted.
func (w *Worker) settleFailedEvent(ctx context.Context, event *models.RawEvent, meeting *models.Meeting, stepErr error) {
	current, revision, err := w.rawEventRepository.GetWithRevision(ctx, event.Platform, event.ExternalEventID)
	if err == nil && current.Status.CanTransitionTo(models.RawEventStatusFailed) {
		current.Status = models.RawEventStatusFailed
		current.ErrorMessage = stepErr.Error()
		current.ProcessedAt = utils.TimePtr(time.Now().UTC())
		if err := w.rawEventRepository.Update(ctx, current, revision); err != nil {
			slog.ErrorContext(ctx, "failed to mark raw event failed", logging.ErrKey, err)
		}
	}

	if meeting != nil {
		if _, err := w.meetingProcessingService.Fail(ctx, meeting.UID, stepErr); err != nil {
			slog.ErrorContext(ctx, "failed to mark meeting failed", logging.ErrKey, err,
				"meeting_uid", meeting.UID,
			)
		}
	}
}
