package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/khrees2412/pathweiz/internal/api"
	"github.com/khrees2412/pathweiz/internal/auth"
	"github.com/khrees2412/pathweiz/internal/config"
	"github.com/khrees2412/pathweiz/internal/database"
	"github.com/khrees2412/pathweiz/internal/status"
	"github.com/khrees2412/pathweiz/pkg/models"
	"go.uber.org/zap"
)

// App is the dependency container for the CLI application
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	HTTPClient *http.Client
	Store      *database.Store
	Auth       *auth.Provider
	Status     *status.Store
	API        *api.Client

	unsubscribe func()
}

// NewApp initializes and returns a new App instance. The configuration must
// already be loaded.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	store, err := database.Open(filepath.Join(dir, "pathweiz.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a, err := newApp(cfg, logger, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func newApp(cfg *config.Config, logger *zap.Logger, store *database.Store) (*App, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	provider := auth.NewProvider(cfg.SupabaseURL, cfg.SupabaseKey, httpClient, store, logger.Named("auth"))
	if err := provider.Restore(); err != nil {
		return nil, err
	}

	client := api.NewClient(api.Options{
		BackendURL:  cfg.BackendURL,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		HTTPClient:  httpClient,
		Tokens:      provider,
		Logger:      logger.Named("api"),
	})

	a := &App{
		Config:     cfg,
		Logger:     logger,
		HTTPClient: httpClient,
		Store:      store,
		Auth:       provider,
		Status:     status.New(logger.Named("status")),
		API:        client,
	}
	a.unsubscribe = provider.Subscribe(a.onAuthChange)
	return a, nil
}

// onAuthChange keeps the recommendations status in step with the session
func (a *App) onAuthChange(event auth.Event, session *models.Session) {
	switch event {
	case auth.EventSignedIn:
		ctx, cancel := context.WithTimeout(context.Background(), a.HTTPClient.Timeout)
		defer cancel()
		a.Status.Refresh(ctx, a.API)
	case auth.EventSignedOut:
		a.Status.SetStatus(false)
		a.Status.StopLoading()
	}
}

// RequireSession returns the signed-in user's session
func (a *App) RequireSession(ctx context.Context) (*models.Session, error) {
	session, err := a.Auth.Current(ctx)
	if err != nil {
		return nil, ErrAuthRequired
	}
	return session, nil
}

// RequireRecommendations fetches the user's recommendations once, refreshes
// the status store from them and fails unless there are any. Callers render
// the returned result instead of fetching again.
func (a *App) RequireRecommendations(ctx context.Context) (*models.RecommendationsResult, error) {
	if _, err := a.RequireSession(ctx); err != nil {
		return nil, err
	}
	result := a.API.Recommendations(ctx)
	if !a.Status.Apply(result) {
		return nil, ErrNoRecommendations
	}
	return result, nil
}

// Close closes all resources
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
