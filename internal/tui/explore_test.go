package tui

import (
	"context"
	"errors"
	"strconv"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/khrees2412/pathweiz/internal/explore"
	"github.com/khrees2412/pathweiz/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed serves a fixed list newest-first, pageSize at a time
type feed struct {
	recs  []*models.Recommendation
	calls int
	fail  bool
}

func (f *feed) Explore(_ context.Context, cursor string, limit int) (*models.ExplorePage, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("unreachable")
	}
	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := min(start+limit, len(f.recs))
	page := &models.ExplorePage{Data: f.recs[start:end]}
	if end < len(f.recs) {
		page.Cursor = strconv.Itoa(end)
	}
	return page, nil
}

func newFeed() *feed {
	return &feed{recs: []*models.Recommendation{
		{ID: 4, JobTitle: "Data Scientist", Tags: "Python, ML"},
		{ID: 3, JobTitle: "Nurse", Tags: "Healthcare"},
		{ID: 2, JobTitle: "Teacher", Tags: "Education"},
		{ID: 1, JobTitle: "Data Engineer", Tags: "SQL"},
	}}
}

// load runs the load command the model hands back and feeds the result in
func load(t *testing.T, m tea.Model) tea.Model {
	t.Helper()
	em := m.(ExploreModel)
	m, _ = m.Update(em.loadMoreCmd()())
	return m
}

func TestExploreLoadsPages(t *testing.T) {
	f := newFeed()
	var m tea.Model = NewExploreModel(context.Background(), explore.NewPager(f, 2, nil))

	m = load(t, m)
	view := m.View()
	assert.Contains(t, view, "Data Scientist")
	assert.Contains(t, view, "Nurse")
	assert.NotContains(t, view, "Teacher")
	assert.Contains(t, view, "load more")

	m, cmd := m.Update(key("m"))
	require.NotNil(t, cmd)
	m = load(t, m)
	assert.Contains(t, m.View(), "Teacher")
	assert.Contains(t, m.View(), "reached the end")

	_, cmd = m.Update(key("m"))
	assert.Nil(t, cmd, "no request once the feed is exhausted")
	assert.Equal(t, 2, f.calls)
}

func TestExploreScrollPastEndLoadsMore(t *testing.T) {
	f := newFeed()
	var m tea.Model = NewExploreModel(context.Background(), explore.NewPager(f, 2, nil))
	m = load(t, m)

	m, cmd := m.Update(key("down"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.(ExploreModel).cursor)

	_, cmd = m.Update(key("down"))
	assert.NotNil(t, cmd)
}

func TestExploreSearch(t *testing.T) {
	f := newFeed()
	pager := explore.NewPager(f, 10, nil)
	var m tea.Model = NewExploreModel(context.Background(), pager)
	m = load(t, m)

	m, _ = m.Update(key("/"))
	m = typeText(m, "data")
	m, _ = m.Update(key("enter"))

	assert.Equal(t, "data", pager.Search())
	view := m.View()
	assert.Contains(t, view, "Scientist")
	assert.Contains(t, view, "Engineer")
	assert.NotContains(t, view, "Nurse")
	assert.Contains(t, view, "2 shown")

	// "q" typed while searching is text, not quit
	m, _ = m.Update(key("/"))
	m = typeText(m, "q")
	assert.Contains(t, m.View(), "No recommendations match your search.")
}

func TestExploreLoadFailure(t *testing.T) {
	f := newFeed()
	f.fail = true
	pager := explore.NewPager(f, 2, nil)
	var m tea.Model = NewExploreModel(context.Background(), pager)

	m = load(t, m)
	assert.Contains(t, m.View(), "Press m to retry")
	assert.True(t, pager.HasMore())

	f.fail = false
	m, cmd := m.Update(key("m"))
	require.NotNil(t, cmd)
	m = load(t, m)
	assert.NotContains(t, m.View(), "retry")
	assert.Contains(t, m.View(), "Data Scientist")
}

func TestExploreQuitClosesPager(t *testing.T) {
	f := newFeed()
	pager := explore.NewPager(f, 2, nil)
	var m tea.Model = NewExploreModel(context.Background(), pager)

	m, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = load(t, m)
	assert.Empty(t, pager.Items())
}

func TestWindow(t *testing.T) {
	s, e := window(3, 0, 5)
	assert.Equal(t, [2]int{0, 3}, [2]int{s, e})
	s, e = window(10, 9, 4)
	assert.Equal(t, [2]int{6, 10}, [2]int{s, e})
	s, e = window(10, 5, 4)
	assert.Equal(t, [2]int{3, 7}, [2]int{s, e})
}
