package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationDecodesLooseFields(t *testing.T) {
	var rec Recommendation
	err := json.Unmarshal([]byte(`{"id":3,"job_title":"UX Designer","tags":"Design, ,Research ","fit_percentage":"87%","labels":"High Growth, Remote Friendly"}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, Percent(87), rec.FitPercentage)
	assert.Equal(t, StringList{"High Growth", "Remote Friendly"}, rec.Labels)
	assert.Equal(t, []string{"Design", "Research"}, rec.TagList())

	err = json.Unmarshal([]byte(`{"fit_percentage":92.5,"labels":["Creative"]}`), &rec)
	require.NoError(t, err)
	assert.Equal(t, Percent(92.5), rec.FitPercentage)
	assert.Equal(t, StringList{"Creative"}, rec.Labels)

	assert.Error(t, json.Unmarshal([]byte(`{"fit_percentage":"high"}`), &rec))
}

func TestTagListEmpty(t *testing.T) {
	rec := &Recommendation{}
	assert.NotNil(t, rec.TagList())
	assert.Empty(t, rec.TagList())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var nilSession *Session
	assert.True(t, nilSession.Expired(now))
	assert.False(t, (&Session{}).Expired(now), "no expiry means valid")
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
}
