// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// PlanUsage reports license consumption for the account's billing plans
type PlanUsage struct {
	PlanBase      *PlanUsageDetail  `json:"plan_base,omitempty"`
	PlanLargeMeet []PlanUsageDetail `json:"plan_large_meeting,omitempty"`
	PlanWebinar   []PlanUsageDetail `json:"plan_webinar,omitempty"`
	PlanZoomRooms *PlanUsageDetail  `json:"plan_zoom_rooms,omitempty"`
	PlanRecording *PlanStorageUsage `json:"plan_recording,omitempty"`
}

// PlanUsageDetail is the host allocation of one plan
type PlanUsageDetail struct {
	Type  string `json:"type"`
	Hosts int    `json:"hosts"`
	Usage int    `json:"usage"`
}

// PlanStorageUsage is the storage allocation of the recording plan
type PlanStorageUsage struct {
	Type        string `json:"type"`
	FreeStorage string `json:"free_storage"`
	PlanStorage string `json:"plan_storage"`
	Usage       string `json:"usage"`
}

// GetPlanUsage retrieves license and storage consumption for the account's
// billing plans.
func (c *Client) GetPlanUsage(ctx context.Context) (*PlanUsage, error) {
	var usage PlanUsage
	path := fmt.Sprintf("/accounts/%s/plans/usage", url.PathEscape(c.config.AccountID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, RateClassHeavy, []int{http.StatusOK}, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}
