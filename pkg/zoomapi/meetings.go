// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/videoconf-tools/zoomclient/internal/logging"
)

// Meeting type constants for the Zoom API
const (
	MeetingTypeInstant              = 1
	MeetingTypeScheduled            = 2
	MeetingTypeRecurringNoFixedTime = 3
	MeetingTypeRecurringFixedTime   = 8
)

// Recurrence type constants for the Zoom API
const (
	RecurrenceTypeDaily   = 1
	RecurrenceTypeWeekly  = 2
	RecurrenceTypeMonthly = 3
)

// Meeting represents a Zoom meeting
type Meeting struct {
	ID                int64               `json:"id"`
	UUID              string              `json:"uuid"`
	HostID            string              `json:"host_id"`
	HostEmail         string              `json:"host_email,omitempty"`
	Topic             string              `json:"topic"`
	Type              int                 `json:"type"`
	Status            string              `json:"status,omitempty"`
	StartTime         string              `json:"start_time,omitempty"`
	Duration          int                 `json:"duration,omitempty"`
	Timezone          string              `json:"timezone,omitempty"`
	Agenda            string              `json:"agenda,omitempty"`
	CreatedAt         string              `json:"created_at,omitempty"`
	StartURL          string              `json:"start_url,omitempty"`
	JoinURL           string              `json:"join_url,omitempty"`
	Password          string              `json:"password,omitempty"`
	H323Password      string              `json:"h323_password,omitempty"`
	PSTNPassword      string              `json:"pstn_password,omitempty"`
	EncryptedPassword string              `json:"encrypted_password,omitempty"`
	Settings          *MeetingSettings    `json:"settings,omitempty"`
	Recurrence        *RecurrenceSettings `json:"recurrence,omitempty"`
	Occurrences       []Occurrence        `json:"occurrences,omitempty"`
}

// Occurrence is one instance of a recurring meeting
type Occurrence struct {
	OccurrenceID string `json:"occurrence_id"`
	StartTime    string `json:"start_time"`
	Duration     int    `json:"duration"`
	Status       string `json:"status"`
}

// CreateMeetingRequest represents the request to create a Zoom meeting
type CreateMeetingRequest struct {
	Topic      string              `json:"topic"`
	Type       int                 `json:"type"`
	StartTime  string              `json:"start_time,omitempty"`
	Duration   int                 `json:"duration,omitempty"`
	Timezone   string              `json:"timezone,omitempty"`
	Agenda     string              `json:"agenda,omitempty"`
	Password   string              `json:"password,omitempty"`
	Recurrence *RecurrenceSettings `json:"recurrence,omitempty"`
	Settings   *MeetingSettings    `json:"settings,omitempty"`
}

// UpdateMeetingRequest represents the request to update a Zoom meeting
type UpdateMeetingRequest struct {
	Topic      string              `json:"topic,omitempty"`
	Type       int                 `json:"type,omitempty"`
	StartTime  string              `json:"start_time,omitempty"`
	Duration   int                 `json:"duration,omitempty"`
	Timezone   string              `json:"timezone,omitempty"`
	Agenda     string              `json:"agenda,omitempty"`
	Recurrence *RecurrenceSettings `json:"recurrence,omitempty"`
	Settings   *MeetingSettings    `json:"settings,omitempty"`
}

// RecurrenceSettings represents Zoom meeting recurrence settings
type RecurrenceSettings struct {
	Type           int    `json:"type"`
	RepeatInterval int    `json:"repeat_interval,omitempty"`
	WeeklyDays     string `json:"weekly_days,omitempty"`
	MonthlyDay     int    `json:"monthly_day,omitempty"`
	MonthlyWeek    int    `json:"monthly_week,omitempty"`
	MonthlyWeekDay int    `json:"monthly_week_day,omitempty"`
	EndTimes       int    `json:"end_times,omitempty"`
	EndDateTime    string `json:"end_date_time,omitempty"`
}

// MeetingSettings represents Zoom meeting settings
type MeetingSettings struct {
	HostVideo             bool   `json:"host_video"`
	ParticipantVideo      bool   `json:"participant_video"`
	JoinBeforeHost        bool   `json:"join_before_host"`
	MuteUponEntry         bool   `json:"mute_upon_entry"`
	Watermark             bool   `json:"watermark"`
	UsePMI                bool   `json:"use_pmi"`
	ApprovalType          int    `json:"approval_type"`
	RegistrationType      int    `json:"registration_type,omitempty"`
	Audio                 string `json:"audio,omitempty"`
	AutoRecording         string `json:"auto_recording,omitempty"`
	WaitingRoom           bool   `json:"waiting_room"`
	MeetingAuthentication bool   `json:"meeting_authentication"`
	JoinBeforeHostMinutes int    `json:"jbh_time,omitempty"`
}

// MeetingsResponse represents one page of the list-meetings endpoint
type MeetingsResponse struct {
	PageCount    int       `json:"page_count"`
	PageNumber   int       `json:"page_number"`
	PageSize     int       `json:"page_size"`
	TotalRecords int       `json:"total_records"`
	Meetings     []Meeting `json:"meetings"`
}

// RegistrantRequest represents the request to register someone for a meeting
type RegistrantRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// RegistrantResponse represents the result of registering for a meeting
type RegistrantResponse struct {
	ID           int64  `json:"id"`
	RegistrantID string `json:"registrant_id"`
	Topic        string `json:"topic"`
	StartTime    string `json:"start_time"`
	JoinURL      string `json:"join_url"`
}

// ListMeetings retrieves all meetings scheduled by the user, paging through
// the endpoint until exhaustion. meetingType is one of "scheduled", "live",
// or "upcoming"; empty defaults to scheduled.
func (c *Client) ListMeetings(ctx context.Context, userID, meetingType string) ([]Meeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_meetings"))

	if meetingType == "" {
		meetingType = "scheduled"
	}

	path := fmt.Sprintf("/users/%s/meetings", url.PathEscape(userID))
	meetings, err := collectNumberedPages(ctx, func(ctx context.Context, pageNumber int) (numberedPage[Meeting], error) {
		query := pageQuery(pageNumber)
		query.Set("type", meetingType)

		var page MeetingsResponse
		if err := c.do(ctx, http.MethodGet, path, query, nil, RateClassMedium, []int{http.StatusOK}, &page); err != nil {
			return numberedPage[Meeting]{}, err
		}
		return numberedPage[Meeting]{Items: page.Meetings, PageCount: page.PageCount}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "meeting listing ended early",
			"meetings_collected", len(meetings), logging.ErrKey, err)
		return meetings, err
	}

	slog.InfoContext(ctx, "retrieved Zoom meetings",
		"user_id", userID, "meeting_count", len(meetings))
	return meetings, nil
}

// GetMeeting retrieves a single meeting by id.
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*Meeting, error) {
	var meeting Meeting
	path := fmt.Sprintf("/meetings/%s", url.PathEscape(meetingID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, RateClassLight, []int{http.StatusOK}, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// CreateMeeting creates a new meeting for the specified user.
func (c *Client) CreateMeeting(ctx context.Context, userID string, request *CreateMeetingRequest) (*Meeting, error) {
	var meeting Meeting
	path := fmt.Sprintf("/users/%s/meetings", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, path, nil, request, RateClassMedium, []int{http.StatusCreated, http.StatusOK}, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// UpdateMeeting updates an existing meeting.
func (c *Client) UpdateMeeting(ctx context.Context, meetingID string, request *UpdateMeetingRequest) error {
	path := fmt.Sprintf("/meetings/%s", url.PathEscape(meetingID))
	return c.do(ctx, http.MethodPatch, path, nil, request, RateClassMedium, []int{http.StatusNoContent, http.StatusOK}, nil)
}

// DeleteMeeting deletes a meeting, or a single occurrence of a recurring
// meeting when occurrenceID is non-empty. An empty occurrenceID omits the
// occurrence_id parameter from the request entirely.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID, occurrenceID string) error {
	var query url.Values
	if occurrenceID != "" {
		query = url.Values{"occurrence_id": []string{occurrenceID}}
	}

	path := fmt.Sprintf("/meetings/%s", url.PathEscape(meetingID))
	return c.do(ctx, http.MethodDelete, path, query, nil, RateClassMedium, []int{http.StatusNoContent, http.StatusOK}, nil)
}

// EndMeeting ends a live meeting.
func (c *Client) EndMeeting(ctx context.Context, meetingID string) error {
	body := map[string]string{"action": "end"}
	path := fmt.Sprintf("/meetings/%s/status", url.PathEscape(meetingID))
	return c.do(ctx, http.MethodPut, path, nil, body, RateClassMedium, []int{http.StatusNoContent, http.StatusOK}, nil)
}

// AddMeetingRegistrant registers a participant for a meeting that requires
// registration.
func (c *Client) AddMeetingRegistrant(ctx context.Context, meetingID string, request *RegistrantRequest) (*RegistrantResponse, error) {
	var registrant RegistrantResponse
	path := fmt.Sprintf("/meetings/%s/registrants", url.PathEscape(meetingID))
	if err := c.do(ctx, http.MethodPost, path, nil, request, RateClassMedium, []int{http.StatusCreated}, &registrant); err != nil {
		return nil, err
	}
	return &registrant, nil
}
