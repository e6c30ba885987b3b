// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

// Package zoomapi is a typed client for the Zoom Web API. It authenticates
// with Server-to-Server OAuth (account-credentials grant), caches the token,
// rate-limits requests per endpoint class, and pages through list endpoints.
package zoomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/videoconf-tools/zoomclient/internal/logging"
	"github.com/videoconf-tools/zoomclient/pkg/cache"
)

// ClientAPI defines the interface for Zoom API operations.
// This allows for easy mocking and testing of the Zoom client.
type ClientAPI interface {
	ListUsers(ctx context.Context, status string) ([]User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	CreateUser(ctx context.Context, request *CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, userID string, request *UpdateUserRequest) error
	DeleteUser(ctx context.Context, userID, transferEmail string) error
	UploadProfilePicture(ctx context.Context, userID, filePath string) error

	ListMeetings(ctx context.Context, userID, meetingType string) ([]Meeting, error)
	GetMeeting(ctx context.Context, meetingID string) (*Meeting, error)
	CreateMeeting(ctx context.Context, userID string, request *CreateMeetingRequest) (*Meeting, error)
	UpdateMeeting(ctx context.Context, meetingID string, request *UpdateMeetingRequest) error
	DeleteMeeting(ctx context.Context, meetingID, occurrenceID string) error
	EndMeeting(ctx context.Context, meetingID string) error
	AddMeetingRegistrant(ctx context.Context, meetingID string, request *RegistrantRequest) (*RegistrantResponse, error)

	ListRecordings(ctx context.Context, userID string, from, to time.Time) ([]MeetingRecordings, error)
	GetMeetingRecordings(ctx context.Context, meetingID string) (*MeetingRecordings, error)
	DeleteMeetingRecordings(ctx context.Context, meetingID, recordingID string) error
	DownloadRecording(ctx context.Context, downloadURL string) ([]byte, error)
	DownloadRecordingToFile(ctx context.Context, downloadURL, destPath string) error

	GetMeetingParticipantsReport(ctx context.Context, meetingID string) ([]Participant, error)
	GetDailyUsageReport(ctx context.Context, year, month int) (*DailyUsageReport, error)

	GetPlanUsage(ctx context.Context) (*PlanUsage, error)
}

const (
	// BaseURL is the base URL for versioned Zoom API resources.
	BaseURL = "https://api.zoom.us/v2"
	// AuthURL is the OAuth token endpoint.
	AuthURL = "https://zoom.us/oauth/token"
	// DefaultClientTimeout is the default HTTP client timeout.
	DefaultClientTimeout = 30 * time.Second
	// defaultPageSize is the page size requested from list endpoints.
	defaultPageSize = 100
)

// Config holds the configuration for the Zoom client.
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override auth URL for testing
	AuthURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: token cache; defaults to an in-memory cache
	Cache cache.TTLCache
	// Optional: per-class rate limit overrides
	RateLimits map[RateClass]RateLimitConfig
}

// Client is a Zoom Web API client.
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     *TokenProvider
	limiters   rateLimiters
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Zoom API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = AuthURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.Cache == nil {
		config.Cache = cache.NewMemory()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:   config,
		tokens:   NewTokenProvider(config.AccountID, config.ClientID, config.ClientSecret, config.AuthURL, config.Cache),
		limiters: newRateLimiters(config.RateLimits),
	}
}

// doRequest performs one authenticated request against the versioned API.
// It waits on the class rate limiter, attaches the bearer token, and records
// Retry-After feedback from 429 responses. No retries: every status is
// terminal for the call.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, class RateClass) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	requestURL := c.config.BaseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.execute(ctx, req, class)
}

// execute runs a prepared request through the limiter and token provider.
// Download requests share this path so they get the same treatment.
func (c *Client) execute(ctx context.Context, req *http.Request, class RateClass) (*http.Response, error) {
	if err := c.limiters.wait(ctx, class); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	slog.DebugContext(ctx, "making Zoom API request",
		"method", req.Method,
		"path", req.URL.Path,
		"rate_class", string(class),
	)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		slog.WarnContext(ctx, "Zoom API request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", duration.String(),
			logging.ErrKey, err,
		)
		return nil, newTransportError(err)
	}

	c.limiters.observe(class, resp)

	slog.DebugContext(ctx, "Zoom API request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", duration.String(),
	)

	return resp, nil
}

// do performs a request and handles the response uniformly: an expected
// status decodes the body into out (when both are present), any other
// status is logged as a warning and returned as a status error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, class RateClass, okStatuses []int, out any) error {
	resp, err := c.doRequest(ctx, method, path, query, body, class)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !slices.Contains(okStatuses, resp.StatusCode) {
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := newStatusError(resp.StatusCode, respBody)
		slog.WarnContext(ctx, "Zoom API returned unexpected status",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			logging.ErrKey, apiErr,
		)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.WarnContext(ctx, "failed to decode Zoom API response",
			"method", method,
			"path", path,
			logging.ErrKey, err,
		)
		return newDecodeError(err)
	}

	return nil
}
