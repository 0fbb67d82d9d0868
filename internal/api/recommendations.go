package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/khrees2412/pathweiz/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SubmitSurvey posts the survey answers; the backend generates and stores
// recommendations, milestones and action items before replying.
func (c *Client) SubmitSurvey(ctx context.Context, answers any) error {
	r := c.backend(http.MethodPost, "/submit_form")
	r.body = answers
	r.auth = true
	if err := c.do(ctx, r, nil); err != nil {
		return fmt.Errorf("failed to submit survey: %w", err)
	}
	c.logger.Info("Survey submitted")
	return nil
}

// Recommendations fetches the user's saved recommendations. It never fails:
// Status carries the HTTP status (404 means none yet) and errors leave the
// list empty.
func (c *Client) Recommendations(ctx context.Context) *models.RecommendationsResult {
	var body struct {
		Recommendations []*models.Recommendation `json:"recommendations"`
	}
	r := c.backend(http.MethodGet, "/get_recommendations")
	r.auth = true

	result := &models.RecommendationsResult{Status: http.StatusOK, Recommendations: []*models.Recommendation{}}
	if err := c.do(ctx, r, &body); err != nil {
		result.Status = StatusCode(err)
		if result.Status != http.StatusNotFound {
			c.logger.Warn("Failed to fetch recommendations", zap.Error(err))
		}
		return result
	}
	if body.Recommendations != nil {
		result.Recommendations = body.Recommendations
	}
	return result
}

// Milestones returns a recommendation's milestones in ascending id order.
// The list is never nil: a failed fetch returns it empty alongside the error
// so callers can still render. 404 means none and is not an error.
func (c *Client) Milestones(ctx context.Context, recommendationID int64) ([]*models.Milestone, error) {
	var body struct {
		Milestones []*models.Milestone `json:"milestones"`
	}
	r := c.backend(http.MethodGet, "/get_career_milestones")
	r.query = url.Values{"recommendation_id": {strconv.FormatInt(recommendationID, 10)}}
	r.auth = true

	if err := c.do(ctx, r, &body); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return []*models.Milestone{}, nil
		}
		c.logger.Warn("Failed to fetch milestones", zap.Int64("recommendation_id", recommendationID), zap.Error(err))
		return []*models.Milestone{}, fmt.Errorf("failed to load milestones: %w", err)
	}

	milestones := body.Milestones
	if milestones == nil {
		milestones = []*models.Milestone{}
	}
	sort.SliceStable(milestones, func(i, j int) bool { return milestones[i].ID < milestones[j].ID })
	return milestones, nil
}

// ActionItems returns a recommendation's suggested next steps. Like
// Milestones, the list is empty but non-nil when the fetch fails.
func (c *Client) ActionItems(ctx context.Context, recommendationID int64) ([]*models.ActionItem, error) {
	var body struct {
		ActionItems []*models.ActionItem `json:"action_items"`
	}
	r := c.backend(http.MethodGet, "/get_action_items")
	r.query = url.Values{"recommendation_id": {strconv.FormatInt(recommendationID, 10)}}

	if err := c.do(ctx, r, &body); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return []*models.ActionItem{}, nil
		}
		c.logger.Warn("Failed to fetch action items", zap.Int64("recommendation_id", recommendationID), zap.Error(err))
		return []*models.ActionItem{}, fmt.Errorf("failed to load action items: %w", err)
	}
	if body.ActionItems == nil {
		return []*models.ActionItem{}, nil
	}
	return body.ActionItems, nil
}

// ActionItemsFor fetches the action items of every recommendation
// concurrently. Both results are indexed like recs; errs[i] is set when the
// items of recs[i] could not be loaded. One failure does not stop the others.
func (c *Client) ActionItemsFor(ctx context.Context, recs []*models.Recommendation) (items [][]*models.ActionItem, errs []error) {
	items = make([][]*models.ActionItem, len(recs))
	errs = make([]error, len(recs))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, rec := range recs {
		g.Go(func() error {
			items[i], errs[i] = c.ActionItems(ctx, rec.ID)
			return nil
		})
	}
	_ = g.Wait()
	return items, errs
}

// Explore fetches one page of the public recommendation feed, newest first.
// An empty cursor starts from the top; the returned cursor is empty once
// there is nothing older.
func (c *Client) Explore(ctx context.Context, cursor string, limit int) (*models.ExplorePage, error) {
	if limit <= 0 {
		limit = DefaultExploreLimit
	}
	var body struct {
		Data   []*models.Recommendation `json:"data"`
		Cursor json.RawMessage          `json:"cursor"`
	}
	r := c.backend(http.MethodGet, "/explore_recommendations")
	r.query = url.Values{"limit": {strconv.Itoa(limit)}}
	if cursor != "" {
		r.query.Set("cursor", cursor)
	}

	if err := c.do(ctx, r, &body); err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}

	page := &models.ExplorePage{Data: body.Data, Cursor: normalizeCursor(body.Cursor)}
	if page.Data == nil {
		page.Data = []*models.Recommendation{}
	}
	return page, nil
}

// normalizeCursor turns a JSON number, string or null into the opaque string form
func normalizeCursor(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	var num json.Number
	if json.Unmarshal(raw, &num) == nil {
		return num.String()
	}
	return ""
}
