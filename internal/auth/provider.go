// Package auth is the session provider: it talks to the Supabase auth
// (GoTrue) REST API, keeps the current session, persists it locally and
// notifies subscribers when it changes.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/khrees2412/pathweiz/pkg/models"
	"go.uber.org/zap"
)

// ErrAuthRequired is returned when an operation needs a signed-in user
var ErrAuthRequired = errors.New("unable to fetch session, please log in again")

// Event names an auth state change
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Listener is called after the session changed; session is nil on sign-out
type Listener func(event Event, session *models.Session)

// SessionStore persists the session between runs
type SessionStore interface {
	SaveSession(*models.Session) error
	LoadSession() (*models.Session, error)
	DeleteSession() error
}

// Provider holds the current session
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	store      SessionStore
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.RWMutex
	session   *models.Session
	listeners map[int]Listener
	nextID    int
}

// NewProvider creates a provider for the Supabase project at baseURL.
// store may be nil, in which case sessions only live in memory.
func NewProvider(baseURL, apiKey string, httpClient *http.Client, store SessionStore, logger *zap.Logger) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		store:      store,
		logger:     logger,
		now:        time.Now,
		listeners:  make(map[int]Listener),
	}
}

// Restore loads the persisted session, if any
func (p *Provider) Restore() error {
	if p.store == nil {
		return nil
	}
	session, err := p.store.LoadSession()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
	return nil
}

// Subscribe registers a listener and returns the function that removes it
func (p *Provider) Subscribe(fn Listener) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Session returns the in-memory session without refreshing it
func (p *Provider) Session() *models.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

// Current returns a usable session, refreshing an expired access token first.
// It returns ErrAuthRequired when nobody is signed in or the refresh fails.
func (p *Provider) Current(ctx context.Context) (*models.Session, error) {
	session := p.Session()
	if session == nil {
		return nil, ErrAuthRequired
	}
	if !session.Expired(p.now()) {
		return session, nil
	}
	if session.RefreshToken == "" {
		return nil, ErrAuthRequired
	}

	refreshed, err := p.tokenRequest(ctx, "refresh_token", map[string]string{"refresh_token": session.RefreshToken})
	if err != nil {
		p.logger.Warn("Session refresh failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	p.setSession(refreshed, EventTokenRefreshed)
	return refreshed, nil
}

// Token returns the current access token
func (p *Provider) Token(ctx context.Context) (string, error) {
	session, err := p.Current(ctx)
	if err != nil {
		return "", err
	}
	return session.AccessToken, nil
}

// Login signs in with email and password
func (p *Provider) Login(ctx context.Context, email, password string) error {
	if err := validateLogin(email, password); err != nil {
		return err
	}
	session, err := p.tokenRequest(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	p.setSession(session, EventSignedIn)
	p.logger.Info("Signed in", zap.String("email", session.User.Email))
	return nil
}

// Signup registers a new user with a username stored as user metadata.
// confirm is true when the project requires email confirmation before the
// first login; otherwise the user is signed in right away.
func (p *Provider) Signup(ctx context.Context, form SignupForm) (confirm bool, err error) {
	if err := form.Validate(); err != nil {
		return false, err
	}

	body := map[string]any{
		"email":    form.Email,
		"password": form.Password,
		"data":     map[string]string{"username": form.Username},
	}
	var resp tokenResponse
	if err := p.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &resp); err != nil {
		return false, err
	}
	if resp.AccessToken == "" {
		p.logger.Info("Signup pending email confirmation", zap.String("email", form.Email))
		return true, nil
	}
	p.setSession(resp.session(p.now()), EventSignedIn)
	return false, nil
}

// Logout ends the session. The local session is always forgotten; an error
// from the auth service is still returned so it can be reported.
func (p *Provider) Logout(ctx context.Context) error {
	session := p.Session()
	if session == nil {
		return nil
	}
	remoteErr := p.do(ctx, http.MethodPost, "/auth/v1/logout", session.AccessToken, nil, nil)
	p.setSession(nil, EventSignedOut)
	if remoteErr != nil {
		return fmt.Errorf("failed to sign out remotely: %w", remoteErr)
	}
	return nil
}

func (p *Provider) setSession(session *models.Session, event Event) {
	p.mu.Lock()
	p.session = session
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	if p.store != nil {
		var err error
		if session == nil {
			err = p.store.DeleteSession()
		} else {
			err = p.store.SaveSession(session)
		}
		if err != nil {
			p.logger.Warn("Failed to persist session", zap.Error(err))
		}
	}

	for _, l := range listeners {
		l(event, session)
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			Username string `json:"username"`
		} `json:"user_metadata"`
	} `json:"user"`
}

func (t *tokenResponse) session(now time.Time) *models.Session {
	s := &models.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		User: models.User{
			ID:       t.User.ID,
			Email:    t.User.Email,
			Username: t.User.UserMetadata.Username,
		},
	}
	switch {
	case t.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0).UTC()
	case t.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second).UTC()
	}
	return s
}

func (p *Provider) tokenRequest(ctx context.Context, grant string, body map[string]string) (*models.Session, error) {
	var resp tokenResponse
	if err := p.do(ctx, http.MethodPost, "/auth/v1/token?grant_type="+grant, "", body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("auth response missing access token")
	}
	return resp.session(p.now()), nil
}

// do sends a JSON request to the auth service and decodes the reply into out
func (p *Provider) do(ctx context.Context, method, path, token string, body, out any) error {
	if p.baseURL == "" {
		return fmt.Errorf("supabase_url not configured. Run: pathweiz config set --key supabase_url --value URL")
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("auth error (%d): %s", resp.StatusCode, errorMessage(data))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// errorMessage extracts the human readable part of a GoTrue error body
func errorMessage(body []byte) string {
	var e struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		for _, m := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(body))
}
