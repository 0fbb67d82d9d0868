// Package explore holds the state of the public recommendation feed: loaded
// items, the pagination cursor, the search filter and tag colours.
package explore

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/khrees2412/pathweiz/internal/matcher"
	"github.com/khrees2412/pathweiz/pkg/models"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned by LoadMore while a page is being fetched
	ErrBusy = errors.New("a page is already loading")
	// ErrExhausted is returned by LoadMore once the feed has no more pages
	ErrExhausted = errors.New("no more recommendations")
	// ErrClosed is returned for results that arrive after Close
	ErrClosed = errors.New("explore closed")
)

// Fetcher loads one page of the feed
type Fetcher interface {
	Explore(ctx context.Context, cursor string, limit int) (*models.ExplorePage, error)
}

// Pager accumulates pages. It is safe for concurrent use.
type Pager struct {
	fetcher Fetcher
	limit   int
	logger  *zap.Logger

	mu      sync.Mutex
	items   []*models.Recommendation
	visible []*models.Recommendation
	cursor  string
	hasMore bool
	loading bool
	search  string
	lastErr error
	tags    map[string]int
	closed  bool
}

// NewPager creates an empty pager that has not fetched anything yet
func NewPager(fetcher Fetcher, limit int, logger *zap.Logger) *Pager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager{
		fetcher: fetcher,
		limit:   limit,
		logger:  logger,
		items:   []*models.Recommendation{},
		visible: []*models.Recommendation{},
		hasMore: true,
		tags:    make(map[string]int),
	}
}

// LoadMore fetches the next page and appends it. It refuses with ErrBusy or
// ErrExhausted instead of issuing a request. On failure the pager keeps its
// items and cursor so the call can be retried.
func (p *Pager) LoadMore(ctx context.Context) error {
	cursor, err := p.begin()
	if err != nil {
		return err
	}
	page, err := p.fetcher.Explore(ctx, cursor, p.limit)
	return p.finish(page, err)
}

func (p *Pager) begin() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return "", ErrClosed
	case p.loading:
		return "", ErrBusy
	case !p.hasMore:
		return "", ErrExhausted
	}
	p.loading = true
	return p.cursor, nil
}

func (p *Pager) finish(page *models.ExplorePage, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false

	if p.closed {
		return ErrClosed
	}
	if err != nil {
		p.lastErr = err
		p.logger.Warn("Failed to load explore page", zap.String("cursor", p.cursor), zap.Error(err))
		return err
	}
	p.lastErr = nil

	for _, rec := range page.Data {
		p.items = append(p.items, rec)
		for _, tag := range rec.TagList() {
			key := strings.ToLower(tag)
			if _, ok := p.tags[key]; !ok {
				p.tags[key] = len(p.tags)
			}
		}
	}
	p.cursor = page.Cursor
	p.hasMore = page.Cursor != ""
	p.visible = matcher.Filter(p.items, p.search)

	p.logger.Debug("Explore page loaded",
		zap.Int("received", len(page.Data)),
		zap.Int("total", len(p.items)),
		zap.Bool("has_more", p.hasMore),
	)
	return nil
}

// SetSearch changes the filter; Visible reflects it immediately
func (p *Pager) SetSearch(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.search = term
	p.visible = matcher.Filter(p.items, term)
}

// Search returns the current filter term
func (p *Pager) Search() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.search
}

// Items returns every loaded recommendation in feed order
func (p *Pager) Items() []*models.Recommendation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.Recommendation(nil), p.items...)
}

// Visible returns the loaded recommendations matching the search
func (p *Pager) Visible() []*models.Recommendation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.Recommendation{}, p.visible...)
}

// HasMore reports whether another page may exist
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a fetch is outstanding
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Cursor returns the cursor the next fetch will use
func (p *Pager) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Err returns the error of the last fetch, nil after a success
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// TagColor returns a stable small index for a tag: the order in which the tag
// was first seen across all pages, ignoring case. Unknown tags get -1.
func (p *Pager) TagColor(tag string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i, ok := p.tags[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return i
	}
	return -1
}

// Close makes any in-flight result be discarded
func (p *Pager) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
