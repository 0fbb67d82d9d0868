package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/khrees2412/pathweiz/internal/explore"
	"github.com/khrees2412/pathweiz/internal/render"
)

type pageLoadedMsg struct {
	err error
}

// ExploreModel browses the public recommendation feed
type ExploreModel struct {
	ctx     context.Context
	pager   *explore.Pager
	search  textinput.Model
	spinner spinner.Model

	cursor    int
	expanded  bool // show the selected card in full
	searching bool
	width     int
	height    int // 0 until the first WindowSizeMsg
	notice    string
}

// NewExploreModel creates the explore screen; Init loads the first page
func NewExploreModel(ctx context.Context, pager *explore.Pager) ExploreModel {
	ti := textinput.New()
	ti.Placeholder = "Search by title or tag"
	ti.Prompt = "/ "
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ExploreModel{
		ctx:     ctx,
		pager:   pager,
		search:  ti,
		spinner: sp,
		width:   80,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadMoreCmd())
}

// loadMoreCmd fetches the next page off the update loop
func (m ExploreModel) loadMoreCmd() tea.Cmd {
	ctx, pager := m.ctx, m.pager
	return func() tea.Msg {
		return pageLoadedMsg{err: pager.LoadMore(ctx)}
	}
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.pager.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		switch {
		case msg.err == nil:
			m.notice = ""
		case errors.Is(msg.err, explore.ErrClosed):
			return m, nil
		case errors.Is(msg.err, explore.ErrBusy), errors.Is(msg.err, explore.ErrExhausted):
		default:
			m.notice = "Failed to load recommendations. Press m to retry."
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ExploreModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.pager.Close()
		return m, tea.Quit
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.pager.SetSearch(m.search.Value())
	m.cursor = 0
	return m, cmd
}

func (m ExploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.pager.Close()
		return m, tea.Quit
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		visible := len(m.pager.Visible())
		if m.cursor < visible-1 {
			m.cursor++
		} else {
			return m, m.maybeLoadMore()
		}
	case "enter", " ":
		m.expanded = !m.expanded
	case "m":
		return m, m.maybeLoadMore()
	}
	return m, nil
}

// maybeLoadMore starts a fetch unless one is running or the feed is exhausted
func (m ExploreModel) maybeLoadMore() tea.Cmd {
	if m.pager.Loading() || !m.pager.HasMore() {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.loadMoreCmd())
}

func (m *ExploreModel) clampCursor() {
	visible := len(m.pager.Visible())
	if m.cursor >= visible {
		m.cursor = max(0, visible-1)
	}
}

func (m ExploreModel) View() string {
	var b strings.Builder
	b.WriteString(render.TitleStyle.Render("Explore Careers") + "\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n\n")
	}

	visible := m.pager.Visible()
	if len(visible) == 0 && !m.pager.Loading() {
		if m.search.Value() != "" {
			b.WriteString(render.MutedStyle.Render("No recommendations match your search.") + "\n")
		} else {
			b.WriteString(render.MutedStyle.Render("No recommendations to show yet.") + "\n")
		}
	}

	// Show a window of cards around the cursor; all of them until the
	// terminal size is known
	size := len(visible)
	if m.height > 0 {
		size = max(1, (m.height-8)/6)
	}
	start, end := window(len(visible), m.cursor, size)
	for i := start; i < end; i++ {
		b.WriteString(render.Card(visible[i], render.CardOptions{
			Width:    min(m.width, 100),
			Detailed: m.expanded && i == m.cursor,
			Selected: i == m.cursor,
			Search:   m.search.Value(),
			ColorOf:  m.pager.TagColor,
		}) + "\n")
	}

	switch {
	case m.pager.Loading():
		b.WriteString(m.spinner.View() + " Loading...\n")
	case m.pager.HasMore():
		b.WriteString(render.MutedStyle.Render("Press m (or scroll past the end) to load more") + "\n")
	case len(m.pager.Items()) > 0:
		b.WriteString(render.MutedStyle.Render("You've reached the end.") + "\n")
	}
	if m.notice != "" {
		b.WriteString(render.ErrorStyle.Render(m.notice) + "\n")
	}

	b.WriteString(render.MutedStyle.Render(fmt.Sprintf("%d shown • ↑/↓ move • enter details • / search • q quit", len(visible))))
	return b.String()
}

// window returns the [start, end) slice of n items of the given size that
// keeps cursor visible
func window(n, cursor, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	start = max(0, min(start, n-size))
	return start, start + size
}
