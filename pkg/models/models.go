package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// User represents the signed-in user's profile as returned by the auth service
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Session represents an authenticated session
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token has expired at the given time
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Recommendation represents an AI-generated career recommendation
type Recommendation struct {
	ID                   int64      `json:"id"`
	JobTitle             string     `json:"job_title"`
	ShortDescription     string     `json:"short_description"`
	JobDescription       string     `json:"job_description"`
	RecommendationReason string     `json:"recommendation_reason"`
	Tags                 string     `json:"tags"` // comma-separated
	FitPercentage        Percent    `json:"fit_percentage,omitempty"`
	Labels               StringList `json:"labels,omitempty"`
}

// TagList splits the comma-separated tags, trimming blanks
func (r *Recommendation) TagList() []string {
	tags := []string{}
	for _, tag := range strings.Split(r.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Percent is a fit score in 0-100. The backend stores what the model wrote,
// so it may arrive as a number or as a string like "85%".
type Percent float64

func (p *Percent) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Percent(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid fit percentage %s", data)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid fit percentage %q", s)
	}
	*p = Percent(n)
	return nil
}

// StringList accepts either a JSON array of strings or a comma-separated string
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid string list %s", data)
	}
	out := StringList{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// Milestone represents one step on a recommendation's career timeline
type Milestone struct {
	ID               int64   `json:"id"`
	RecommendationID int64   `json:"recommendation_id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Updates          *string `json:"updates"` // nullable
}

// ActionItem represents a suggested resource or next step for a recommendation
type ActionItem struct {
	ID               int64  `json:"id"`
	RecommendationID int64  `json:"recommendation_id"`
	Icon             string `json:"icon"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Status           string `json:"status"`
}

// RecommendationsResult is the outcome of a recommendations fetch.
// Status carries the HTTP status so callers can tell "none yet" (404) apart.
type RecommendationsResult struct {
	Status          int               `json:"status"`
	Recommendations []*Recommendation `json:"recommendations"`
}

// ExplorePage is one page of the public explore listing
type ExplorePage struct {
	Data   []*Recommendation `json:"data"`
	Cursor string            `json:"cursor,omitempty"` // empty when exhausted
}

// SurveyDraft is an unfinished survey kept locally so it can be resumed
type SurveyDraft struct {
	UserID       string          `json:"user_id"`
	Answers      json.RawMessage `json:"answers"`
	CurrentIndex int             `json:"current_index"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
