package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// UpdateMilestone writes the user's progress note for a milestone
func (c *Client) UpdateMilestone(ctx context.Context, id int64, text string) error {
	return c.patchMilestone(ctx, id, &text)
}

// ClearMilestone removes the progress note (sets it to null)
func (c *Client) ClearMilestone(ctx context.Context, id int64) error {
	return c.patchMilestone(ctx, id, nil)
}

// patchMilestone goes straight to the database REST endpoint; the backend
// has no write route for milestones.
func (c *Client) patchMilestone(ctx context.Context, id int64, updates *string) error {
	if c.supabaseURL == "" {
		return fmt.Errorf("supabase_url not configured. Run: pathweiz config set --key supabase_url --value URL")
	}

	r := request{
		method: http.MethodPatch,
		url:    c.supabaseURL + "/rest/v1/milestones",
		path:   "/rest/v1/milestones",
		query:  url.Values{"id": {"eq." + strconv.FormatInt(id, 10)}},
		body:   map[string]*string{"updates": updates},
		auth:   true,
		headers: map[string]string{
			"apikey": c.supabaseKey,
			"Prefer": "return=minimal",
		},
	}
	if err := c.do(ctx, r, nil); err != nil {
		c.logger.Warn("Milestone write failed", zap.Int64("milestone_id", id), zap.Error(err))
		return fmt.Errorf("failed to update milestone %d: %w", id, err)
	}
	return nil
}
