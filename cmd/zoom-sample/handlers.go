// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/videoconf-tools/zoomclient/internal/logging"
	"github.com/videoconf-tools/zoomclient/pkg/concurrent"
	"github.com/videoconf-tools/zoomclient/pkg/zoomapi"
)

// SampleAPI is the handler set of the sample service. It is a thin
// read-through façade over the Zoom client.
type SampleAPI struct {
	zoom       zoomapi.ClientAPI
	pool       *concurrent.WorkerPool
	archiveDir string
}

// NewSampleAPI creates the handler set for the sample service.
func NewSampleAPI(zoom zoomapi.ClientAPI, pool *concurrent.WorkerPool, archiveDir string) *SampleAPI {
	return &SampleAPI{
		zoom:       zoom,
		pool:       pool,
		archiveDir: archiveDir,
	}
}

// Livez checks if the service is alive.
func (s *SampleAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("OK"))
}

// Readyz checks if the service is able to take inbound requests.
func (s *SampleAPI) Readyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("OK"))
}

// ListUsers handles GET /api/users.
func (s *SampleAPI) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.zoom.ListUsers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ListUserMeetings handles GET /api/users/{id}/meetings.
func (s *SampleAPI) ListUserMeetings(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	meetings, err := s.zoom.ListMeetings(r.Context(), userID, r.URL.Query().Get("type"))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": meetings})
}

// MeetingParticipants handles GET /api/meetings/{id}/participants.
func (s *SampleAPI) MeetingParticipants(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	participants, err := s.zoom.GetMeetingParticipantsReport(r.Context(), meetingID)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": participants})
}

// PlanUsage handles GET /api/usage.
func (s *SampleAPI) PlanUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := s.zoom.GetPlanUsage(r.Context())
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// overview is the response of the account overview endpoint.
type overview struct {
	Users      []zoomapi.User            `json:"users"`
	PlanUsage  *zoomapi.PlanUsage        `json:"plan_usage"`
	DailyUsage *zoomapi.DailyUsageReport `json:"daily_usage"`
}

// Overview handles GET /api/overview. The three upstream calls are
// independent, so they run concurrently and the first failure cancels the
// rest.
func (s *SampleAPI) Overview(w http.ResponseWriter, r *http.Request) {
	var result overview

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		users, err := s.zoom.ListUsers(ctx, "")
		result.Users = users
		return err
	})
	g.Go(func() error {
		usage, err := s.zoom.GetPlanUsage(ctx)
		result.PlanUsage = usage
		return err
	})
	g.Go(func() error {
		report, err := s.zoom.GetDailyUsageReport(ctx, 0, 0)
		result.DailyUsage = report
		return err
	})

	if err := g.Wait(); err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// archiveResult summarizes one archive run.
type archiveResult struct {
	MeetingCount int      `json:"meeting_count"`
	FileCount    int      `json:"file_count"`
	ArchivedTo   string   `json:"archived_to"`
	Failures     []string `json:"failures,omitempty"`
}

// ArchiveRecordings handles POST /api/users/{id}/recordings/archive. It
// lists the user's recordings for the requested window and downloads every
// file through the bounded worker pool. Individual download failures do not
// abort the run; they are reported in the response.
func (s *SampleAPI) ArchiveRecordings(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	ctx := r.Context()

	from, to, err := parseDateWindow(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	recordings, err := s.zoom.ListRecordings(ctx, userID, from, to)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	destDir := filepath.Join(s.archiveDir, userID)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		slog.ErrorContext(ctx, "error creating archive directory", logging.ErrKey, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create archive directory"})
		return
	}

	var jobs []func() error
	fileCount := 0
	for _, meeting := range recordings {
		for _, file := range meeting.RecordingFiles {
			if file.DownloadURL == "" {
				continue
			}
			fileCount++
			destPath := filepath.Join(destDir, archiveFileName(meeting, file))
			downloadURL := file.DownloadURL
			jobs = append(jobs, func() error {
				return s.zoom.DownloadRecordingToFile(ctx, downloadURL, destPath)
			})
		}
	}

	result := archiveResult{
		MeetingCount: len(recordings),
		FileCount:    fileCount,
		ArchivedTo:   destDir,
	}
	for _, jobErr := range s.pool.RunAll(ctx, jobs...) {
		result.Failures = append(result.Failures, jobErr.Error())
	}

	slog.InfoContext(ctx, "archived user recordings",
		"user_id", userID,
		"meeting_count", result.MeetingCount,
		"file_count", result.FileCount,
		"failure_count", len(result.Failures),
	)
	writeJSON(w, http.StatusOK, result)
}

// archiveFileName builds a stable, collision-free file name for one
// recording file.
func archiveFileName(meeting zoomapi.MeetingRecordings, file zoomapi.RecordingFile) string {
	ext := file.FileExtension
	if ext == "" {
		ext = file.FileType
	}
	return fmt.Sprintf("%s-%s.%s", meeting.UUID, file.ID, ext)
}

// parseDateWindow reads the optional from/to query parameters. Absent
// parameters leave the window open on that side.
func parseDateWindow(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", raw)
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", raw)
		}
	}
	return from, to, nil
}

// writeAPIError maps a Zoom client error onto an HTTP response. Upstream
// status errors keep their status; transport and decode failures surface as
// a bad gateway.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var apiErr *zoomapi.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case zoomapi.ErrorKindStatus:
			status = apiErr.StatusCode
		case zoomapi.ErrorKindTransport, zoomapi.ErrorKindDecode:
			status = http.StatusBadGateway
		}
	}

	slog.ErrorContext(r.Context(), "Zoom API call failed", logging.ErrKey, err, "response_status", status)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("error encoding response", logging.ErrKey, err)
	}
}
