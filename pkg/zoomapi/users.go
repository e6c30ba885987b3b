// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/videoconf-tools/zoomclient/internal/logging"
)

// User type constants for the Zoom API
const (
	UserTypeBasic    = 1
	UserTypeLicensed = 2
	UserTypeOnPrem   = 3
)

// User status constants for the Zoom API
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// User represents a user in the Zoom account
type User struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Type               int    `json:"type"`
	Status             string `json:"status"`
	PMI                int64  `json:"pmi,omitempty"`
	Timezone           string `json:"timezone,omitempty"`
	Dept               string `json:"dept,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	LastLoginTime      string `json:"last_login_time,omitempty"`
	PicURL             string `json:"pic_url,omitempty"`
	AccountID          string `json:"account_id,omitempty"`
	RoleName           string `json:"role_name,omitempty"`
	PhoneNumber        string `json:"phone_number,omitempty"`
	JobTitle           string `json:"job_title,omitempty"`
	Language           string `json:"language,omitempty"`
	PersonalMeetingURL string `json:"personal_meeting_url,omitempty"`
}

// UsersResponse represents one page of the list-users endpoint
type UsersResponse struct {
	PageCount    int    `json:"page_count"`
	PageNumber   int    `json:"page_number"`
	PageSize     int    `json:"page_size"`
	TotalRecords int    `json:"total_records"`
	Users        []User `json:"users"`
}

// CreateUserRequest represents the request to provision a Zoom user
type CreateUserRequest struct {
	Action   string         `json:"action"`
	UserInfo CreateUserInfo `json:"user_info"`
}

// CreateUserInfo carries the new user's profile fields
type CreateUserInfo struct {
	Email     string `json:"email"`
	Type      int    `json:"type"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password,omitempty"`
}

// UpdateUserRequest represents the request to update a Zoom user's profile
type UpdateUserRequest struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Type        int    `json:"type,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Dept        string `json:"dept,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Language    string `json:"language,omitempty"`
}

// ListUsers retrieves all users in the account with the given status,
// paging through the endpoint until exhaustion. An empty status defaults
// to active users.
func (c *Client) ListUsers(ctx context.Context, status string) ([]User, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_users"))

	if status == "" {
		status = UserStatusActive
	}

	users, err := collectNumberedPages(ctx, func(ctx context.Context, pageNumber int) (numberedPage[User], error) {
		query := pageQuery(pageNumber)
		query.Set("status", status)

		var page UsersResponse
		if err := c.do(ctx, http.MethodGet, "/users", query, nil, RateClassMedium, []int{http.StatusOK}, &page); err != nil {
			return numberedPage[User]{}, err
		}
		return numberedPage[User]{Items: page.Users, PageCount: page.PageCount}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "user listing ended early",
			"users_collected", len(users), logging.ErrKey, err)
		return users, err
	}

	slog.InfoContext(ctx, "retrieved Zoom users", "user_count", len(users))
	return users, nil
}

// GetUser retrieves a single user by id or email address.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	path := fmt.Sprintf("/users/%s", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, RateClassLight, []int{http.StatusOK}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser provisions a new user in the account.
func (c *Client) CreateUser(ctx context.Context, request *CreateUserRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/users", nil, request, RateClassMedium, []int{http.StatusCreated}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user's profile.
func (c *Client) UpdateUser(ctx context.Context, userID string, request *UpdateUserRequest) error {
	path := fmt.Sprintf("/users/%s", url.PathEscape(userID))
	return c.do(ctx, http.MethodPatch, path, nil, request, RateClassMedium, []int{http.StatusNoContent, http.StatusOK}, nil)
}

// DeleteUser removes a user from the account. When transferEmail is empty
// the transfer_email parameter is omitted from the request entirely.
func (c *Client) DeleteUser(ctx context.Context, userID, transferEmail string) error {
	query := url.Values{"action": []string{"delete"}}
	if transferEmail != "" {
		query.Set("transfer_email", transferEmail)
	}

	path := fmt.Sprintf("/users/%s", url.PathEscape(userID))
	return c.do(ctx, http.MethodDelete, path, query, nil, RateClassMedium, []int{http.StatusNoContent, http.StatusOK}, nil)
}

// UploadProfilePicture uploads a local image file as the user's profile
// picture. The file must exist before the multipart request is built.
func (c *Client) UploadProfilePicture(ctx context.Context, userID, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("profile picture file is not readable: %w", err)
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("pic_file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read profile picture file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/users/%s/picture", c.config.BaseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.execute(ctx, req, RateClassHeavy)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := newStatusError(resp.StatusCode, body)
		slog.WarnContext(ctx, "profile picture upload rejected",
			"user_id", userID, "status", resp.StatusCode, logging.ErrKey, apiErr)
		return apiErr
	}

	return nil
}
