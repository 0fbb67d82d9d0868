// Package tui holds the interactive bubbletea screens: the survey, the
// explore feed and the milestone timeline.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/khrees2412/pathweiz/internal/survey"
	"go.uber.org/zap"
)

// AnalyzingMessage is shown while the backend generates recommendations
const AnalyzingMessage = "We're analyzing your responses to find the best career paths for you..."

// SurveyOptions wires a SurveyModel to the outside world
type SurveyOptions struct {
	Engine *survey.Engine
	Submit survey.SubmitFunc
	// SaveDraft is called after every move so an interrupted survey can be
	// resumed; nil disables drafts.
	SaveDraft func(answers []byte, index int) error
	Logger    *zap.Logger
}

type submitResultMsg struct {
	ticket uint64
	err    error
}

// SurveyModel walks the user through the questionnaire
type SurveyModel struct {
	ctx       context.Context
	engine    *survey.Engine
	submit    survey.SubmitFunc
	saveDraft func([]byte, int) error
	logger    *zap.Logger

	input   textinput.Model
	spinner spinner.Model
	cursor  int // option or likert-group row under the cursor
	width   int

	notice    string
	done      bool
	cancelled bool
}

// NewSurveyModel creates the survey screen positioned where the engine is
func NewSurveyModel(ctx context.Context, opts SurveyOptions) SurveyModel {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := SurveyModel{
		ctx:       ctx,
		engine:    opts.Engine,
		submit:    opts.Submit,
		saveDraft: opts.SaveDraft,
		logger:    logger,
		input:     ti,
		spinner:   sp,
		width:     80,
	}
	m.syncInput()
	return m
}

// Done reports whether the survey was submitted successfully
func (m SurveyModel) Done() bool { return m.done }

// Cancelled reports whether the user quit before finishing
func (m SurveyModel) Cancelled() bool { return m.cancelled }

func (m SurveyModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SurveyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = min(60, msg.Width-4)
		return m, nil

	case spinner.TickMsg:
		if m.engine.Phase() != survey.PhaseSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitResultMsg:
		if !m.engine.Complete(msg.ticket, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.notice = "Error submitting the survey: " + msg.err.Error()
			return m, nil
		}
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m SurveyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		m.persistDraft()
		m.engine.Close()
		return m, tea.Quit
	}

	if m.engine.Phase() == survey.PhaseSubmitting {
		return m, nil
	}

	q := m.engine.Current()
	switch msg.String() {
	case "enter", "tab":
		return m.next()
	case "shift+tab":
		if err := m.engine.Previous(); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = ""
		m.persistDraft()
		m.syncInput()
		return m, nil
	}

	switch q.Kind {
	case survey.KindText:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if err := m.engine.SetText(q.ID, m.input.Value()); err != nil {
			m.notice = err.Error()
		}
		return m, cmd

	case survey.KindSingleChoice, survey.KindMultiChoice:
		return m.handleChoiceKey(q, msg), nil

	case survey.KindLikertSingle, survey.KindLikertGroup:
		return m.handleLikertKey(q, msg), nil
	}
	return m, nil
}

func (m SurveyModel) handleChoiceKey(q survey.Question, msg tea.KeyMsg) SurveyModel {
	switch msg.String() {
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(q.Options)-1, m.cursor+1)
	case " ", "x":
		value := q.Options[m.cursor].Value
		if q.Kind == survey.KindSingleChoice {
			if err := m.engine.Choose(q.ID, value); err != nil {
				m.notice = err.Error()
			}
			return m
		}
		changed, err := m.engine.Toggle(q.ID, value)
		switch {
		case err != nil:
			m.notice = err.Error()
		case !changed:
			m.notice = fmt.Sprintf("Select at most %d options", q.MaxSelections)
		default:
			m.notice = ""
		}
	}
	return m
}

func (m SurveyModel) handleLikertKey(q survey.Question, msg tea.KeyMsg) SurveyModel {
	key := msg.String()
	if q.Kind == survey.KindLikertGroup {
		switch key {
		case "up", "k":
			m.cursor = max(0, m.cursor-1)
			return m
		case "down", "j":
			m.cursor = min(len(q.Items)-1, m.cursor+1)
			return m
		}
	}

	value, err := strconv.Atoi(key)
	if err != nil || value < survey.ScaleMin || value > survey.ScaleMax {
		return m
	}
	if q.Kind == survey.KindLikertGroup {
		err = m.engine.RateItem(q.ID, q.Items[m.cursor].Value, value)
		if err == nil && m.cursor < len(q.Items)-1 {
			m.cursor++
		}
	} else {
		err = m.engine.Rate(q.ID, value)
	}
	if err != nil {
		m.notice = err.Error()
	}
	return m
}

func (m SurveyModel) next() (tea.Model, tea.Cmd) {
	step, err := m.engine.Next()
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.notice = ""
	if !step.Submit {
		m.persistDraft()
		m.syncInput()
		return m, nil
	}
	m.persistDraft()
	m.logger.Info("Submitting survey")
	return m, tea.Batch(m.spinner.Tick, m.submitCmd(step.Ticket))
}

// submitCmd runs the submission off the update loop
func (m SurveyModel) submitCmd(ticket uint64) tea.Cmd {
	ctx, submit, answers := m.ctx, m.submit, m.engine.Answers()
	return func() tea.Msg {
		return submitResultMsg{ticket: ticket, err: submit(ctx, answers)}
	}
}

func (m *SurveyModel) syncInput() {
	m.cursor = 0
	q := m.engine.Current()
	if q.Kind != survey.KindText {
		m.input.Blur()
		return
	}
	m.input.Placeholder = q.Placeholder
	m.input.SetValue(m.engine.Answers().Text(q.ID))
	m.input.CursorEnd()
	m.input.Focus()
}

func (m SurveyModel) persistDraft() {
	if m.saveDraft == nil || m.done {
		return
	}
	answers, index, err := m.engine.Snapshot()
	if err == nil {
		err = m.saveDraft(answers, index)
	}
	if err != nil {
		m.logger.Warn("Failed to save survey draft", zap.Error(err))
	}
}

func (m SurveyModel) View() string {
	var b strings.Builder
	b.WriteString(render.TitleStyle.Render(m.engine.Catalog().Title()) + "\n")

	if m.engine.Phase() == survey.PhaseSubmitting {
		b.WriteString(m.spinner.View() + " " + AnalyzingMessage + "\n")
		return b.String()
	}

	if p := m.engine.Progress(); p.Visible {
		b.WriteString(render.MutedStyle.Render(p.String()) + "\n")
		b.WriteString(render.ProgressBar(p.Fraction(), min(40, m.width-4)) + "\n\n")
	}

	q := m.engine.Current()
	if q.IsMarker() {
		b.WriteString(render.LabelStyle.Render(q.Label) + "\n")
	} else {
		b.WriteString(lipgloss.NewStyle().Bold(true).Width(m.width-2).Render(q.Label) + "\n\n")
		b.WriteString(m.questionView(q))
	}

	if m.notice != "" {
		b.WriteString("\n" + render.ErrorStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + m.helpView())
	return b.String()
}

func (m SurveyModel) questionView(q survey.Question) string {
	answers := m.engine.Answers()
	var b strings.Builder

	switch q.Kind {
	case survey.KindText:
		b.WriteString(m.input.View() + "\n")

	case survey.KindSingleChoice, survey.KindMultiChoice:
		for i, o := range q.Options {
			mark := "( )"
			chosen := answers.Text(q.ID) == o.Value
			if q.Kind == survey.KindMultiChoice {
				mark = "[ ]"
				chosen = answers.IsSelected(q.ID, o.Value)
			}
			if chosen {
				mark = strings.Replace(mark, " ", "x", 1)
			}
			line := fmt.Sprintf("%s %s", mark, o.Label)
			if i == m.cursor {
				line = render.HighlightStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
		if q.Kind == survey.KindMultiChoice {
			b.WriteString(render.MutedStyle.Render(fmt.Sprintf("Choose up to %d", q.MaxSelections)) + "\n")
		}

	case survey.KindLikertSingle:
		b.WriteString(scaleView(answers.Text(q.ID)) + "\n")
		b.WriteString(render.MutedStyle.Render(fmt.Sprintf("1 = %s, 5 = %s", q.LikertStart, q.LikertEnd)) + "\n")

	case survey.KindLikertGroup:
		for i, item := range q.Items {
			line := fmt.Sprintf("%-32s %s", item.Label, scaleView(answers.Scale(q.ID, item.Value)))
			if i == m.cursor {
				line = render.HighlightStyle.Render("> ") + line
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(render.MutedStyle.Render(fmt.Sprintf("1 = %s, 5 = %s", q.LikertStart, q.LikertEnd)) + "\n")
	}
	return b.String()
}

func scaleView(selected string) string {
	parts := make([]string, 0, survey.ScaleMax)
	for v := survey.ScaleMin; v <= survey.ScaleMax; v++ {
		s := strconv.Itoa(v)
		if s == selected {
			parts = append(parts, render.HighlightStyle.Render("["+s+"]"))
		} else {
			parts = append(parts, " "+s+" ")
		}
	}
	return strings.Join(parts, "")
}

func (m SurveyModel) helpView() string {
	keys := []string{}
	if m.engine.PrevEnabled() {
		keys = append(keys, "shift+tab previous")
	}
	keys = append(keys, "enter "+strings.ToLower(m.engine.NextLabel()))
	switch m.engine.Current().Kind {
	case survey.KindSingleChoice, survey.KindMultiChoice:
		keys = append(keys, "↑/↓ move", "space select")
	case survey.KindLikertGroup:
		keys = append(keys, "↑/↓ move", "1-5 rate")
	case survey.KindLikertSingle:
		keys = append(keys, "1-5 rate")
	}
	keys = append(keys, "esc save & quit")
	return render.MutedStyle.Render(strings.Join(keys, " • "))
}
