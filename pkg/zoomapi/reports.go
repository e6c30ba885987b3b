// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/videoconf-tools/zoomclient/internal/logging"
)

// Participant is one row of a meeting participants report
type Participant struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	UserEmail        string `json:"user_email"`
	JoinTime         string `json:"join_time"`
	LeaveTime        string `json:"leave_time"`
	Duration         int    `json:"duration"`
	RegistrantID     string `json:"registrant_id,omitempty"`
	FailoverRegister bool   `json:"failover,omitempty"`
}

// ParticipantsReportResponse represents one page of the participants report
type ParticipantsReportResponse struct {
	PageSize      int           `json:"page_size"`
	TotalRecords  int           `json:"total_records"`
	NextPageToken string        `json:"next_page_token"`
	Participants  []Participant `json:"participants"`
}

// DailyUsage is one day of account activity
type DailyUsage struct {
	Date           string `json:"date"`
	NewUsers       int    `json:"new_users"`
	Meetings       int    `json:"meetings"`
	Participants   int    `json:"participants"`
	MeetingMinutes int    `json:"meeting_minutes"`
}

// DailyUsageReport is the month-long account activity report
type DailyUsageReport struct {
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Dates []DailyUsage `json:"dates"`
}

// GetMeetingParticipantsReport retrieves the full participants report for a
// past meeting, following next_page_token until exhaustion.
func (c *Client) GetMeetingParticipantsReport(ctx context.Context, meetingID string) ([]Participant, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "participants_report"))

	path := fmt.Sprintf("/report/meetings/%s/participants", url.PathEscape(meetingID))
	participants, err := collectTokenPages(ctx, func(ctx context.Context, nextPageToken string) (tokenPage[Participant], error) {
		var page ParticipantsReportResponse
		if err := c.do(ctx, http.MethodGet, path, tokenQuery(nextPageToken), nil, RateClassHeavy, []int{http.StatusOK}, &page); err != nil {
			return tokenPage[Participant]{}, err
		}
		return tokenPage[Participant]{Items: page.Participants, NextPageToken: page.NextPageToken}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "participants report ended early",
			"participants_collected", len(participants), logging.ErrKey, err)
		return participants, err
	}

	slog.InfoContext(ctx, "retrieved participants report",
		"meeting_id", meetingID, "participant_count", len(participants))
	return participants, nil
}

// GetDailyUsageReport retrieves the account's daily usage report for the
// given month. A zero year or month defaults to the current one on the
// Zoom side by omitting the parameter.
func (c *Client) GetDailyUsageReport(ctx context.Context, year, month int) (*DailyUsageReport, error) {
	query := url.Values{}
	if year > 0 {
		query.Set("year", strconv.Itoa(year))
	}
	if month > 0 {
		query.Set("month", strconv.Itoa(month))
	}

	var report DailyUsageReport
	if err := c.do(ctx, http.MethodGet, "/report/daily", query, nil, RateClassHeavy, []int{http.StatusOK}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
