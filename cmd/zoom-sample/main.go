// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

// Package main is a sample web application built on the Zoom client library.
// It exposes read-through endpoints for users, meetings, reports, and plan
// usage, plus a recording archiver.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/videoconf-tools/zoomclient/internal/logging"
	"github.com/videoconf-tools/zoomclient/pkg/cache"
	"github.com/videoconf-tools/zoomclient/pkg/concurrent"
	"github.com/videoconf-tools/zoomclient/pkg/zoomapi"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructuredLogger()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// The token cache is shared across replicas when a NATS server is
	// available, otherwise each process caches its own token.
	tokenCache, natsConn, err := setupTokenCache(ctx, env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up token cache")
		return
	}

	zoomClient := zoomapi.NewClient(zoomapi.Config{
		AccountID:    env.Zoom.AccountID,
		ClientID:     env.Zoom.ClientID,
		ClientSecret: env.Zoom.ClientSecret,
		BaseURL:      env.Zoom.BaseURL,
		AuthURL:      env.Zoom.AuthURL,
		Cache:        tokenCache,
	})

	pool := concurrent.NewWorkerPool(env.ArchiveWorkers)
	api := NewSampleAPI(zoomClient, pool, env.ArchiveDir)

	httpServer := setupHTTPServer(flags, api, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}

// setupTokenCache selects the token cache backend. With NATS_URL set it
// connects to NATS and uses a JetStream KV bucket, creating the bucket when
// it does not exist yet.
func setupTokenCache(ctx context.Context, env environment) (cache.TTLCache, *nats.Conn, error) {
	if env.NatsURL == "" {
		slog.Debug("NATS_URL not set, using in-memory token cache")
		return cache.NewMemory(), nil, nil
	}

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(10*time.Second),
	)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, nil, err
	}

	kv, err := js.KeyValue(ctx, cache.KVBucketName)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket: cache.KVBucketName,
		})
	}
	if err != nil {
		natsConn.Close()
		return nil, nil, err
	}

	slog.With("bucket", cache.KVBucketName).Debug("using NATS KV token cache")
	return cache.NewNatsKV(kv), natsConn, nil
}

// gracefulShutdown drains the HTTP server and the NATS connection before
// exiting.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	cancel()
	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
