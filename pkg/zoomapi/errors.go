// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies how an API call failed.
type ErrorKind int

const (
	// ErrorKindTransport covers connection, DNS, and timeout failures
	// where no HTTP response was received.
	ErrorKindTransport ErrorKind = iota
	// ErrorKindStatus covers responses with an unexpected HTTP status.
	ErrorKindStatus
	// ErrorKindDecode covers responses whose body could not be
	// deserialized into the declared result type.
	ErrorKindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTransport:
		return "transport"
	case ErrorKindStatus:
		return "status"
	case ErrorKindDecode:
		return "decode"
	}
	return "unknown"
}

// APIError is the error type returned for failed Zoom API calls. Callers can
// branch on Kind, or on StatusCode and Code for status errors.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // HTTP status, zero for transport failures
	Code       int    // Zoom error code from the response body, when present
	Message    string // Zoom error message or a short description
	Err        error  // underlying error for wrapping
}

func (e *APIError) Error() string {
	switch e.Kind {
	case ErrorKindStatus:
		if e.Code != 0 && e.Message != "" {
			return fmt.Sprintf("zoom API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
		}
		if e.Message != "" {
			return fmt.Sprintf("zoom API error (status %d): %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("zoom API error (status %d)", e.StatusCode)
	case ErrorKindDecode:
		return fmt.Sprintf("zoom API decode error: %v", e.Err)
	default:
		return fmt.Sprintf("zoom API transport error: %v", e.Err)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a status error for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether err is a 429 status error.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// newStatusError parses a Zoom error body into an APIError for the given
// status. Zoom error bodies carry {"code": <int>, "message": <string>}.
func newStatusError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       ErrorKindStatus,
		StatusCode: statusCode,
	}

	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Code = errResp.Code
		apiErr.Message = errResp.Message
	} else if len(body) > 0 {
		apiErr.Message = string(body)
	}

	return apiErr
}

// newTransportError wraps a failure that produced no HTTP response.
func newTransportError(err error) *APIError {
	return &APIError{Kind: ErrorKindTransport, Err: err}
}

// newDecodeError wraps a body deserialization failure.
func newDecodeError(err error) *APIError {
	return &APIError{Kind: ErrorKindDecode, Err: err}
}
