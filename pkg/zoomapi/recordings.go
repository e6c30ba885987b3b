// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/videoconf-tools/zoomclient/internal/logging"
)

// MeetingRecordings holds the cloud recording files of one meeting instance
type MeetingRecordings struct {
	UUID           string          `json:"uuid"`
	ID             int64           `json:"id"`
	AccountID      string          `json:"account_id"`
	HostID         string          `json:"host_id"`
	Topic          string          `json:"topic"`
	StartTime      string          `json:"start_time"`
	Duration       int             `json:"duration"`
	TotalSize      int64           `json:"total_size"`
	RecordingCount int             `json:"recording_count"`
	ShareURL       string          `json:"share_url,omitempty"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// RecordingFile is one file of a cloud recording
type RecordingFile struct {
	ID             string `json:"id"`
	MeetingID      string `json:"meeting_id"`
	RecordingStart string `json:"recording_start"`
	RecordingEnd   string `json:"recording_end"`
	FileType       string `json:"file_type"`
	FileExtension  string `json:"file_extension"`
	FileSize       int64  `json:"file_size"`
	Status         string `json:"status"`
	RecordingType  string `json:"recording_type"`
	PlayURL        string `json:"play_url,omitempty"`
	DownloadURL    string `json:"download_url"`
}

// RecordingsResponse represents one page of the list-recordings endpoint
type RecordingsResponse struct {
	From          string              `json:"from"`
	To            string              `json:"to"`
	PageSize      int                 `json:"page_size"`
	TotalRecords  int                 `json:"total_records"`
	NextPageToken string              `json:"next_page_token"`
	Meetings      []MeetingRecordings `json:"meetings"`
}

// ListRecordings retrieves all cloud recordings of the user within the
// [from, to] date window, following next_page_token until exhaustion.
func (c *Client) ListRecordings(ctx context.Context, userID string, from, to time.Time) ([]MeetingRecordings, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_recordings"))

	path := fmt.Sprintf("/users/%s/recordings", url.PathEscape(userID))
	recordings, err := collectTokenPages(ctx, func(ctx context.Context, nextPageToken string) (tokenPage[MeetingRecordings], error) {
		query := tokenQuery(nextPageToken)
		if !from.IsZero() {
			query.Set("from", from.Format("2006-01-02"))
		}
		if !to.IsZero() {
			query.Set("to", to.Format("2006-01-02"))
		}

		var page RecordingsResponse
		if err := c.do(ctx, http.MethodGet, path, query, nil, RateClassHeavy, []int{http.StatusOK}, &page); err != nil {
			return tokenPage[MeetingRecordings]{}, err
		}
		return tokenPage[MeetingRecordings]{Items: page.Meetings, NextPageToken: page.NextPageToken}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "recording listing ended early",
			"recordings_collected", len(recordings), logging.ErrKey, err)
		return recordings, err
	}

	slog.InfoContext(ctx, "retrieved Zoom recordings",
		"user_id", userID, "meeting_count", len(recordings))
	return recordings, nil
}

// GetMeetingRecordings retrieves the recording files of a single meeting.
func (c *Client) GetMeetingRecordings(ctx context.Context, meetingID string) (*MeetingRecordings, error) {
	var recordings MeetingRecordings
	path := fmt.Sprintf("/meetings/%s/recordings", url.PathEscape(meetingID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, RateClassHeavy, []int{http.StatusOK}, &recordings); err != nil {
		return nil, err
	}
	return &recordings, nil
}

// DeleteMeetingRecordings moves recordings to the trash. A non-empty
// recordingID deletes that single file; an empty recordingID deletes every
// file of the meeting, without a recording path segment in the request.
func (c *Client) DeleteMeetingRecordings(ctx context.Context, meetingID, recordingID string) error {
	path := fmt.Sprintf("/meetings/%s/recordings", url.PathEscape(meetingID))
	if recordingID != "" {
		path += "/" + url.PathEscape(recordingID)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil, RateClassHeavy, []int{http.StatusNoContent, http.StatusOK}, nil)
}

// DownloadRecording buffers a recording file in memory. The download URL is
// absolute and bypasses the versioned base URL; the bearer token is still
// attached.
func (c *Client) DownloadRecording(ctx context.Context, downloadURL string) ([]byte, error) {
	resp, err := c.download(ctx, downloadURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(fmt.Errorf("failed to read recording body: %w", err))
	}
	return data, nil
}

// DownloadRecordingToFile streams a recording file to destPath instead of
// buffering it, for recordings too large to hold in memory.
func (c *Client) DownloadRecordingToFile(ctx context.Context, downloadURL, destPath string) error {
	resp, err := c.download(ctx, downloadURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dest, resp.Body); err != nil {
		_ = dest.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("failed to write recording to %s: %w", destPath, err)
	}

	if err := dest.Close(); err != nil {
		return fmt.Errorf("failed to finalize recording file: %w", err)
	}

	slog.InfoContext(ctx, "downloaded Zoom recording", "dest", destPath)
	return nil
}

// download issues an authenticated GET against an absolute recording URL.
func (c *Client) download(ctx context.Context, downloadURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.execute(ctx, req, RateClassHeavy)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		apiErr := newStatusError(resp.StatusCode, body)
		slog.WarnContext(ctx, "recording download rejected",
			"status", resp.StatusCode, logging.ErrKey, apiErr)
		return nil, apiErr
	}

	return resp, nil
}
