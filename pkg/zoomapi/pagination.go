// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"net/url"
	"strconv"
)

// Zoom list endpoints paginate in one of two ways. Older endpoints are
// page-number based: the request carries page_size and page_number and the
// response reports the total page_count. Newer endpoints are token based:
// each response carries an opaque next_page_token, empty when exhausted.
//
// Both collectors accumulate results in order. A failed page fetch
// terminates the loop and returns what was collected so far together with
// the error, so callers can distinguish a partial result from a complete one.

// numberedPage is one response page from a page-number endpoint.
type numberedPage[T any] struct {
	Items     []T
	PageCount int
}

// collectNumberedPages drains a page-number endpoint starting at page 1.
func collectNumberedPages[T any](ctx context.Context, fetch func(ctx context.Context, pageNumber int) (numberedPage[T], error)) ([]T, error) {
	results := []T{}

	for pageNumber := 1; ; pageNumber++ {
		page, err := fetch(ctx, pageNumber)
		if err != nil {
			return results, err
		}

		results = append(results, page.Items...)

		if pageNumber >= page.PageCount {
			return results, nil
		}
	}
}

// tokenPage is one response page from a token endpoint.
type tokenPage[T any] struct {
	Items         []T
	NextPageToken string
}

// collectTokenPages drains a token endpoint. The first fetch receives an
// empty token; fetch implementations must omit the parameter in that case.
func collectTokenPages[T any](ctx context.Context, fetch func(ctx context.Context, nextPageToken string) (tokenPage[T], error)) ([]T, error) {
	results := []T{}

	nextPageToken := ""
	for {
		page, err := fetch(ctx, nextPageToken)
		if err != nil {
			return results, err
		}

		results = append(results, page.Items...)

		if page.NextPageToken == "" {
			return results, nil
		}
		nextPageToken = page.NextPageToken
	}
}

// pageQuery builds the query values for a page-number request.
func pageQuery(pageNumber int) url.Values {
	return url.Values{
		"page_size":   []string{strconv.Itoa(defaultPageSize)},
		"page_number": []string{strconv.Itoa(pageNumber)},
	}
}

// tokenQuery builds the query values for a token request, omitting the
// token parameter entirely when it is empty.
func tokenQuery(nextPageToken string) url.Values {
	query := url.Values{
		"page_size": []string{strconv.Itoa(defaultPageSize)},
	}
	if nextPageToken != "" {
		query.Set("next_page_token", nextPageToken)
	}
	return query
}
