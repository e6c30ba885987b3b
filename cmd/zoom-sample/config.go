// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/videoconf-tools/zoomclient/internal/logging"
)

// flags are the command line flags for the sample service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the sample service.
type environment struct {
	Port           string
	NatsURL        string
	ArchiveDir     string
	ArchiveWorkers int
	Zoom           zoomConfig
}

// zoomConfig holds the Zoom Server-to-Server OAuth app credentials.
type zoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthURL      string
}

// parseFlags parses command line flags for the sample service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructuredLogger]
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

// parseEnv parses environment variables for the sample service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	archiveDir := os.Getenv("ARCHIVE_DIR")
	if archiveDir == "" {
		archiveDir = "recordings"
	}

	archiveWorkers := 4
	if raw := os.Getenv("ARCHIVE_WORKERS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			slog.With("value", raw).Error("invalid ARCHIVE_WORKERS, using default")
		} else {
			archiveWorkers = parsed
		}
	}

	return environment{
		Port:           port,
		NatsURL:        os.Getenv("NATS_URL"),
		ArchiveDir:     archiveDir,
		ArchiveWorkers: archiveWorkers,
		Zoom:           parseZoomConfig(),
	}
}

// parseZoomConfig parses the Zoom credentials from environment variables
func parseZoomConfig() zoomConfig {
	accountID := os.Getenv("ZOOM_ACCOUNT_ID")
	if accountID == "" {
		slog.Error("ZOOM_ACCOUNT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientID := os.Getenv("ZOOM_CLIENT_ID")
	if clientID == "" {
		slog.Error("ZOOM_CLIENT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientSecret := os.Getenv("ZOOM_CLIENT_SECRET")
	if clientSecret == "" {
		slog.Error("ZOOM_CLIENT_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	return zoomConfig{
		AccountID:    accountID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      os.Getenv("ZOOM_API_BASE_URL"),
		AuthURL:      os.Getenv("ZOOM_OAUTH_URL"),
	}
}
