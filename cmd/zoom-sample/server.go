// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/videoconf-tools/zoomclient/internal/logging"
	"github.com/videoconf-tools/zoomclient/internal/middleware"
)

// setupHTTPServer builds the router and starts the listener in a goroutine.
func setupHTTPServer(flags flags, api *SampleAPI, gracefulCloseWG *sync.WaitGroup) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /livez", api.Livez)
	mux.HandleFunc("GET /readyz", api.Readyz)
	mux.HandleFunc("GET /api/users", api.ListUsers)
	mux.HandleFunc("GET /api/users/{id}/meetings", api.ListUserMeetings)
	mux.HandleFunc("GET /api/meetings/{id}/participants", api.MeetingParticipants)
	mux.HandleFunc("GET /api/usage", api.PlanUsage)
	mux.HandleFunc("GET /api/overview", api.Overview)
	mux.HandleFunc("POST /api/users/{id}/recordings/archive", api.ArchiveRecordings)

	var handler http.Handler = mux

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)

	// Set up http listener in a goroutine using provided command line parameters.
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
		// called, not when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
