// Package status caches whether the signed-in user already has saved career
// recommendations. Navigation uses it to decide whether the dashboard and
// timeline are reachable.
package status

import (
	"context"
	"net/http"
	"sync"

	"github.com/khrees2412/pathweiz/pkg/models"
	"go.uber.org/zap"
)

// RecommendationsFetcher is the part of the API gateway the store needs
type RecommendationsFetcher interface {
	Recommendations(ctx context.Context) *models.RecommendationsResult
}

// Store is an in-memory flag plus a loading indicator. It is never persisted;
// Refresh recomputes it from the backend.
type Store struct {
	mu      sync.RWMutex
	status  bool
	loading bool
	logger  *zap.Logger
}

// New returns an empty store (no recommendations, not loading)
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Status reports whether the user has recommendations
func (s *Store) Status() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus overrides the flag
func (s *Store) SetStatus(v bool) {
	s.mu.Lock()
	s.status = v
	s.mu.Unlock()
}

// Loading reports whether a recommendation-producing request is outstanding
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// StartLoading raises the loading flag
func (s *Store) StartLoading() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
}

// StopLoading clears the loading flag
func (s *Store) StopLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Refresh asks the backend and sets the flag from its answer
func (s *Store) Refresh(ctx context.Context, fetcher RecommendationsFetcher) bool {
	return s.Apply(fetcher.Recommendations(ctx))
}

// Apply sets the flag from an already fetched result: the user has
// recommendations unless the fetch answered 404 or returned none.
func (s *Store) Apply(result *models.RecommendationsResult) bool {
	has := result != nil && result.Status != http.StatusNotFound && len(result.Recommendations) > 0
	s.SetStatus(has)
	s.logger.Debug("Recommendations status refreshed", zap.Bool("has_recommendations", has))
	return has
}
