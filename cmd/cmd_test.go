package cmd

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-chi/chi/v5"
	"github.com/khrees2412/pathweiz/internal/api"
	"github.com/khrees2412/pathweiz/internal/app"
	"github.com/khrees2412/pathweiz/internal/config"
	"github.com/khrees2412/pathweiz/internal/explore"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/khrees2412/pathweiz/pkg/models"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var recs = []*models.Recommendation{
	{ID: 7, JobTitle: "Data Scientist", Tags: "Python"},
	{ID: 9, JobTitle: "Nurse", Tags: "Healthcare"},
}

func TestRecommendationIndex(t *testing.T) {
	i, err := recommendationIndex(recs, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = recommendationIndex(recs, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = recommendationIndex(recs, 3)
	assert.ErrorIs(t, err, app.ErrNotFound)
}

func TestPrintRecommendations(t *testing.T) {
	var out bytes.Buffer
	items := [][]*models.ActionItem{
		{{ID: 1, RecommendationID: 7, Title: "Take an ML course"}},
		{},
	}
	printRecommendations(&out, recs, items, []error{nil, nil}, render.CardOptions{})

	s := out.String()
	assert.Contains(t, s, "Data Scientist")
	assert.Contains(t, s, "Take an ML course")
	assert.Equal(t, 1, strings.Count(s, "Action items"), "no heading for a career without items")
	assert.Contains(t, s, "ID: 9")
}

func TestPrintRecommendationsShowsItemFailure(t *testing.T) {
	f := chi.NewRouter()
	f.Get("/get_action_items", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("recommendation_id") == "9" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"action_items":[{"id":1,"recommendation_id":7,"title":"Take an ML course"}]}`))
	})
	client := newAPIClient(t, f)

	items, errs := client.ActionItemsFor(context.Background(), recs)
	var out bytes.Buffer
	printRecommendations(&out, recs, items, errs, render.CardOptions{})

	s := out.String()
	assert.Contains(t, s, "Take an ML course")
	assert.Equal(t, 1, strings.Count(s, "Could not load action items"))
	nurse := s[strings.Index(s, "Nurse"):]
	assert.Contains(t, nurse, "Could not load action items", "the failure is shown under the failing career")
}

func TestPrintExploreKeepsLoadedPages(t *testing.T) {
	f := chi.NewRouter()
	f.Get("/explore_recommendations", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("cursor") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":9,"job_title":"Nurse"},{"id":7,"job_title":"Data Scientist"}],"cursor":7}`))
	})
	pager := explore.NewPager(newAPIClient(t, f), 2, nil)

	var out bytes.Buffer
	require.NoError(t, printExplore(context.Background(), &out, pager, "", 3))

	s := out.String()
	assert.Contains(t, s, "Nurse")
	assert.Contains(t, s, "Data Scientist")
	assert.Contains(t, s, "Could not load more recommendations")
	assert.Contains(t, s, "500")
	assert.NotContains(t, s, "More available")
}

func TestPrintExploreFailsWhenNothingLoaded(t *testing.T) {
	f := chi.NewRouter()
	f.Get("/explore_recommendations", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	pager := explore.NewPager(newAPIClient(t, f), 2, nil)

	var out bytes.Buffer
	err := printExplore(context.Background(), &out, pager, "", 2)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
	assert.Empty(t, out.String())
}

func newAPIClient(t *testing.T, h http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.NewClient(api.Options{BackendURL: srv.URL, HTTPClient: srv.Client()})
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(&config.Config{LogLevel: "chatty"}, false)
	assert.Error(t, err)

	l, err := newLogger(&config.Config{LogLevel: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1), "debug disabled at warn")
}

func TestReadLine(t *testing.T) {
	c := &cobra.Command{}
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetIn(strings.NewReader(""))
	in := bufio.NewReader(strings.NewReader("  jane@example.com \n s3cret \n"))

	email, err := prompt(c, in, "Email: ")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)

	pw, err := promptPassword(c, in, "Password: ")
	require.NoError(t, err)
	assert.Equal(t, " s3cret ", pw, "passwords are not trimmed")
	assert.Equal(t, "Email: Password: ", out.String())

	_, err = prompt(c, in, "More: ")
	assert.Error(t, err)
}
