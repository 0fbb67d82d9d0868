package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/khrees2412/pathweiz/internal/timeline"
	"github.com/khrees2412/pathweiz/pkg/models"
	"go.uber.org/zap"
)

// MilestoneLoader fetches a recommendation's milestones in display order
type MilestoneLoader func(ctx context.Context, recommendationID int64) ([]*models.Milestone, error)

// MsgMilestonesFailed is shown in place of the timeline when the milestones
// could not be fetched
const MsgMilestonesFailed = "Could not load milestones. Press r to retry."

// TimelineOptions wires a TimelineModel
type TimelineOptions struct {
	Recommendations []*models.Recommendation
	Selected        int // index into Recommendations shown first
	Load            MilestoneLoader
	Writer          timeline.Writer
	Logger          *zap.Logger
}

type milestonesLoadedMsg struct {
	gen        uint64
	milestones []*models.Milestone
	err        error
}

type writeDoneMsg struct {
	id  int64
	err error
}

type noticeExpiredMsg struct{}

// TimelineModel shows one recommendation's milestones and lets the user
// keep progress notes on them
type TimelineModel struct {
	ctx    context.Context
	recs   []*models.Recommendation
	rec    int
	load   MilestoneLoader
	editor *timeline.Editor
	logger *zap.Logger

	gen     uint64 // bumped on every recommendation switch or reload
	loading bool
	loadErr error
	cursor  int
	input   textarea.Model
	width   int
}

// NewTimelineModel creates the timeline screen; Init loads the milestones of
// the selected recommendation
func NewTimelineModel(ctx context.Context, opts TimelineOptions) TimelineModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "What have you done toward this milestone?"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(60)

	selected := opts.Selected
	if selected < 0 || selected >= len(opts.Recommendations) {
		selected = 0
	}

	return TimelineModel{
		ctx:     ctx,
		recs:    opts.Recommendations,
		rec:     selected,
		load:    opts.Load,
		editor:  timeline.NewEditor(opts.Writer, nil, timeline.WithLogger(logger)),
		logger:  logger,
		loading: len(opts.Recommendations) > 0,
		input:   ta,
		width:   80,
	}
}

func (m TimelineModel) Init() tea.Cmd {
	if len(m.recs) == 0 {
		return nil
	}
	return m.loadCmd()
}

func (m TimelineModel) loadCmd() tea.Cmd {
	ctx, load, gen, id := m.ctx, m.load, m.gen, m.recs[m.rec].ID
	return func() tea.Msg {
		milestones, err := load(ctx, id)
		return milestonesLoadedMsg{gen: gen, milestones: milestones, err: err}
	}
}

func (m TimelineModel) saveCmd(id int64) tea.Cmd {
	ctx, editor := m.ctx, m.editor
	return func() tea.Msg {
		return writeDoneMsg{id: id, err: editor.Save(ctx, id)}
	}
}

func (m TimelineModel) deleteCmd(id int64) tea.Cmd {
	ctx, editor := m.ctx, m.editor
	return func() tea.Msg {
		return writeDoneMsg{id: id, err: editor.Delete(ctx, id)}
	}
}

func (m TimelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(min(60, msg.Width-8))
		return m, nil

	case milestonesLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil {
			m.logger.Warn("Failed to load milestones", zap.Error(msg.err))
		}
		m.editor.Reload(msg.milestones)
		m.cursor = 0
		return m, nil

	case writeDoneMsg:
		if errors.Is(msg.err, timeline.ErrStale) {
			return m, nil
		}
		if _, editing := m.editor.Editing(); !editing {
			m.input.Blur()
		}
		return m, tea.Tick(timeline.NoticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{} })

	case noticeExpiredMsg:
		return m, nil

	case tea.KeyMsg:
		if _, editing := m.editor.Editing(); editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m TimelineModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, _ := m.editor.Editing()
	switch msg.String() {
	case "ctrl+c":
		m.editor.Close()
		return m, tea.Quit
	case "esc":
		m.editor.Cancel()
		m.input.Blur()
		return m, nil
	case "ctrl+s":
		if err := m.editor.Edit(id, m.input.Value()); err != nil {
			return m, nil
		}
		return m, m.saveCmd(id)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	_ = m.editor.Edit(id, m.input.Value())
	return m, cmd
}

func (m TimelineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	milestones := m.editor.Milestones()

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.editor.Close()
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = max(0, min(len(milestones)-1, m.cursor+1))
	case "tab", "right", "l":
		return m.switchRecommendation(1)
	case "shift+tab", "left", "h":
		return m.switchRecommendation(-1)
	case "r":
		if m.loading {
			return m, nil
		}
		return m.reload()
	case "e", "enter":
		if len(milestones) == 0 {
			return m, nil
		}
		id := milestones[m.cursor].ID
		if err := m.editor.Begin(id); err != nil {
			m.logger.Warn("Cannot edit milestone", zap.Int64("milestone_id", id), zap.Error(err))
			return m, nil
		}
		m.input.SetValue(m.editor.Draft())
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	case "d", "delete":
		if len(milestones) == 0 || milestones[m.cursor].Updates == nil {
			return m, nil
		}
		return m, m.deleteCmd(milestones[m.cursor].ID)
	}
	return m, nil
}

func (m TimelineModel) switchRecommendation(delta int) (tea.Model, tea.Cmd) {
	if len(m.recs) < 2 {
		return m, nil
	}
	m.rec = (m.rec + delta + len(m.recs)) % len(m.recs)
	return m.reload()
}

// reload fetches the current recommendation's milestones again; a load
// still in flight is superseded
func (m TimelineModel) reload() (tea.Model, tea.Cmd) {
	m.gen++
	m.loading = true
	m.loadErr = nil
	m.editor.Reload(nil)
	m.cursor = 0
	return m, m.loadCmd()
}

func (m TimelineModel) View() string {
	var b strings.Builder
	b.WriteString(render.TitleStyle.Render("Career Timeline") + "\n")

	if len(m.recs) == 0 {
		b.WriteString(render.MutedStyle.Render("No recommendations yet. Run: pathweiz survey") + "\n")
		return b.String()
	}

	rec := m.recs[m.rec]
	header := render.LabelStyle.Render(rec.JobTitle)
	if len(m.recs) > 1 {
		header += render.MutedStyle.Render(fmt.Sprintf("  (%d of %d, tab to switch)", m.rec+1, len(m.recs)))
	}
	b.WriteString(header + "\n\n")

	if m.loading {
		b.WriteString(render.MutedStyle.Render("Loading milestones...") + "\n")
		return b.String()
	}

	editingID, editing := m.editor.Editing()
	milestones := m.editor.Milestones()
	views := make([]render.MilestoneView, len(milestones))
	for i, ms := range milestones {
		v := render.MilestoneView{Milestone: ms, Selected: i == m.cursor}
		if editing && ms.ID == editingID {
			v.Editing, v.Draft = true, m.editor.Draft()
		}
		if n, ok := m.editor.Notice(ms.ID); ok {
			v.Notice, v.NoticeOK = n.Message, n.OK
		}
		views[i] = v
	}
	if m.loadErr != nil {
		b.WriteString(render.ErrorStyle.Render(MsgMilestonesFailed) + "\n")
	} else {
		b.WriteString(render.Timeline(views, min(m.width, 100)) + "\n")
	}

	if editing {
		b.WriteString("\n" + render.MutedStyle.Render("ctrl+s save • esc cancel"))
	} else {
		b.WriteString("\n" + render.MutedStyle.Render("↑/↓ move • e edit • d delete note • r reload • tab next career • q quit"))
	}
	return b.String()
}
