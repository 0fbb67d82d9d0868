package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/khrees2412/pathweiz/internal/config"
	"github.com/khrees2412/pathweiz/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hasRecs bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(hasRecs))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(hasRecs bool) http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok",
			"refresh_token": "ref",
			"expires_in":    3600,
			"user":          map[string]any{"id": "u1", "email": "ada@example.com"},
		})
	})
	r.Post("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/get_recommendations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !hasRecs {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"No recommendations found for this user."}`))
			return
		}
		_, _ = w.Write([]byte(`{"recommendations":[{"id":1,"job_title":"Data Scientist"}]}`))
	})
	return r
}

func newTestApp(t *testing.T, srv *httptest.Server) *App {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	cfg := &config.Config{
		BackendURL:     srv.URL,
		SupabaseURL:    srv.URL,
		SupabaseKey:    "anon",
		RequestTimeout: 5 * time.Second,
	}
	a, err := newApp(cfg, nil, store)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestStatusFollowsSession(t *testing.T) {
	a := newTestApp(t, newTestServer(t, true))
	ctx := context.Background()

	_, err := a.RequireRecommendations(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)

	require.NoError(t, a.Auth.Login(ctx, "ada@example.com", "secret1"))
	assert.True(t, a.Status.Status(), "signing in refreshes the status")

	require.NoError(t, a.Auth.Logout(ctx))
	assert.False(t, a.Status.Status())
}

func TestRequireRecommendations(t *testing.T) {
	ctx := context.Background()

	withRecs := newTestApp(t, newTestServer(t, true))
	require.NoError(t, withRecs.Auth.Login(ctx, "ada@example.com", "secret1"))
	result, err := withRecs.RequireRecommendations(ctx)
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "Data Scientist", result.Recommendations[0].JobTitle)

	without := newTestApp(t, newTestServer(t, false))
	require.NoError(t, without.Auth.Login(ctx, "ada@example.com", "secret1"))
	result, err = without.RequireRecommendations(ctx)
	assert.ErrorIs(t, err, ErrNoRecommendations)
	assert.Nil(t, result)
}

func TestRequireRecommendationsFetchesOnce(t *testing.T) {
	var fetches atomic.Int32
	router := newTestRouter(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/get_recommendations" {
			fetches.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	a := newTestApp(t, srv)
	require.NoError(t, a.Auth.Login(ctx, "ada@example.com", "secret1"))
	fetches.Store(0) // signing in refreshes the status on its own

	result, err := a.RequireRecommendations(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Recommendations, 1)
	assert.True(t, a.Status.Status())
	assert.Equal(t, int32(1), fetches.Load())
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := newTestServer(t, true)
	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := &config.Config{BackendURL: srv.URL, SupabaseURL: srv.URL}

	store, err := database.Open(dbPath)
	require.NoError(t, err)
	first, err := newApp(cfg, nil, store)
	require.NoError(t, err)
	require.NoError(t, first.Auth.Login(context.Background(), "ada@example.com", "secret1"))
	require.NoError(t, first.Close())

	store, err = database.Open(dbPath)
	require.NoError(t, err)
	second, err := newApp(cfg, nil, store)
	require.NoError(t, err)
	defer second.Close()

	session, err := second.RequireSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
}

func TestAppContext(t *testing.T) {
	a := &App{}
	got, ok := FromContext(NewContext(context.Background(), a))
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
