// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/recapio/transcript-pipeline-service/internal/handlers"
	"github.com/recapio/transcript-pipeline-service/internal/logging"
	"github.com/recapio/transcript-pipeline-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(
	flags flags,
	webhookHandler *handlers.WebhookHandler,
	deadLetterHandler *handlers.DeadLetterHandler,
	natsConn *nats.Conn,
	gracefulCloseWG *sync.WaitGroup,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhooks/zoom", webhookHandler.HandleZoomWebhook)
	mux.HandleFunc("POST /webhooks/google-meet", webhookHandler.HandleMeetWebhook)
	mux.HandleFunc("POST /webhooks/microsoft-teams", webhookHandler.HandleTeamsWebhook)

	mux.HandleFunc("GET /dead-letters", deadLetterHandler.HandleList)
	mux.HandleFunc("POST /dead-letters/{uid}/resolve", deadLetterHandler.HandleResolve)
	mux.HandleFunc("POST /dead-letters/{uid}/replay", deadLetterHandler.HandleReplay)

	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !natsConn.IsConnected() {
			http.Error(w, "NATS not connected", http.StatusServiceUnavailable)
			return
		}
		if !webhookHandler.HandlerReady() || !deadLetterHandler.HandlerReady() {
			http.Error(w, "services not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	var handler http.Handler = mux

	// Note: Order matters - middleware executes in reverse order of wrapping,
	// so the request logger added last runs first.
	handler = middleware.WebhookBodyCaptureMiddleware()(handler)
	handler = middleware.RequestLoggerMiddleware()(handler)

	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}

// gracefulShutdown drains the HTTP server and the NATS connection, waiting
// for both before returning.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("http server shutdown error")
	}
	gracefulCloseWG.Done()

	if !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
