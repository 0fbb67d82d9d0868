package survey

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrWrongKind       = errors.New("question does not accept this answer")
	ErrInvalidAnswer   = errors.New("invalid answer")
	ErrSubmitting      = errors.New("submission already in progress")
	ErrFinished        = errors.New("survey already submitted")
)

// Phase is the engine's lifecycle state
type Phase int

const (
	PhaseAnswering Phase = iota
	PhaseSubmitting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseAnswering:
		return "answering"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// SubmitFunc sends the answers to the recommendation backend
type SubmitFunc func(ctx context.Context, answers *Answers) error

// StatusRecorder receives the outcome of a submission. The recommendations
// status store satisfies it.
type StatusRecorder interface {
	SetStatus(bool)
	StartLoading()
	StopLoading()
}

// Step is what a Next call did
type Step struct {
	// Submit is set when Next was pressed on the last question. The caller
	// must run the submission and report back with Complete(Ticket, err).
	Submit bool
	Ticket uint64
}

// Progress is the user-visible "Question i of K" indicator
type Progress struct {
	Position int
	Total    int
	Visible  bool // false on section markers
}

func (p Progress) String() string {
	if !p.Visible {
		return ""
	}
	return fmt.Sprintf("Question %d of %d", p.Position, p.Total)
}

// Fraction is the progress bar fill between 0 and 1
func (p Progress) Fraction() float64 {
	if !p.Visible || p.Total == 0 {
		return 0
	}
	return float64(p.Position) / float64(p.Total)
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithStatus records submission outcomes in the given store
func WithStatus(s StatusRecorder) EngineOption {
	return func(e *Engine) { e.status = s }
}

// WithLogger sets the engine's logger
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// Engine walks a catalog, tracking the current position and collected
// answers, and decides whether Next advances or submits.
type Engine struct {
	mu      sync.Mutex
	catalog *Catalog
	answers *Answers
	index   int
	phase   Phase
	lastErr error

	ticket uint64 // current submission; bumped on Close to discard late results
	closed bool

	status StatusRecorder
	logger *zap.Logger
}

// NewEngine starts a survey at the first catalog entry
func NewEngine(c *Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: c,
		answers: newAnswers(c),
		phase:   PhaseAnswering,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog being walked
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Index is the current position in the full, marker-inclusive sequence
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// Current returns the entry at the current position
func (e *Engine) Current() Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.At(e.index)
}

// Phase returns the lifecycle state
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Err is the reason of the last failed submission, nil otherwise
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Answers returns the live answer set
func (e *Engine) Answers() *Answers { return e.answers }

// IsFirst reports whether the current entry is the first one
func (e *Engine) IsFirst() bool { return e.Index() == 0 }

// IsLast reports whether the current entry is the last one
func (e *Engine) IsLast() bool { return e.Index() == e.catalog.Len()-1 }

// PrevEnabled reports whether Previous would move
func (e *Engine) PrevEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index > 0 && e.navigable()
}

// NextEnabled reports whether Next/Submit may be pressed
func (e *Engine) NextEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.navigable()
}

// NextLabel is "Submit" on the last entry and "Next" everywhere else
func (e *Engine) NextLabel() string {
	if e.IsLast() {
		return "Submit"
	}
	return "Next"
}

// Progress computes the visible progress for the current entry
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	pos, ok := e.catalog.VisiblePosition(e.index)
	return Progress{Position: pos, Total: e.catalog.VisibleTotal(), Visible: ok}
}

func (e *Engine) navigable() bool {
	return e.phase == PhaseAnswering || e.phase == PhaseFailed
}

func (e *Engine) checkNavigable() error {
	switch e.phase {
	case PhaseSubmitting:
		return ErrSubmitting
	case PhaseDone:
		return ErrFinished
	}
	return nil
}

// Previous moves back one entry. It is a no-op on the first entry.
func (e *Engine) Previous() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkNavigable(); err != nil {
		return err
	}
	if e.index == 0 {
		return nil
	}
	e.index--
	e.phase = PhaseAnswering
	e.lastErr = nil
	return nil
}

// Next advances one entry, or on the last entry begins a submission.
func (e *Engine) Next() (Step, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkNavigable(); err != nil {
		return Step{}, err
	}
	if e.index < e.catalog.Len()-1 {
		e.index++
		e.phase = PhaseAnswering
		e.lastErr = nil
		return Step{}, nil
	}

	e.phase = PhaseSubmitting
	e.lastErr = nil
	e.ticket++
	if e.status != nil {
		e.status.StartLoading()
	}
	e.logger.Debug("Survey submission started", zap.Uint64("ticket", e.ticket))
	return Step{Submit: true, Ticket: e.ticket}, nil
}

// Complete reports the outcome of the submission identified by ticket.
// Success moves to Done and sets the recommendations status; failure keeps the
// answers, stays on the last entry and makes Next retry. It returns false when
// the result arrived for a stale ticket (the engine was closed or a newer
// submission started); the engine is then left untouched.
func (e *Engine) Complete(ticket uint64, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	// The status store outlives the screen, so it is updated either way.
	if e.status != nil {
		e.status.SetStatus(err == nil)
		e.status.StopLoading()
	}

	if e.closed || ticket != e.ticket || e.phase != PhaseSubmitting {
		e.logger.Debug("Discarding stale submission result", zap.Uint64("ticket", ticket))
		return false
	}

	if err != nil {
		e.phase = PhaseFailed
		e.lastErr = err
		e.logger.Warn("Survey submission failed", zap.Error(err))
		return true
	}
	e.phase = PhaseDone
	e.logger.Info("Survey submitted")
	return true
}

// Advance is Next followed, on the last entry, by a synchronous submission.
func (e *Engine) Advance(ctx context.Context, submit SubmitFunc) error {
	step, err := e.Next()
	if err != nil || !step.Submit {
		return err
	}
	subErr := submit(ctx, e.answers)
	e.Complete(step.Ticket, subErr)
	if subErr != nil {
		return fmt.Errorf("failed to submit survey: %w", subErr)
	}
	return nil
}

// Close marks the engine as torn down; pending submission results are ignored
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.ticket++
}

// Answer setters

func (e *Engine) question(id string, kinds ...Kind) (Question, error) {
	if err := e.checkNavigable(); err != nil {
		return Question{}, err
	}
	q, ok := e.catalog.Lookup(id)
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	for _, k := range kinds {
		if q.Kind == k {
			return q, nil
		}
	}
	return Question{}, fmt.Errorf("%w: %s is %s", ErrWrongKind, id, q.Kind)
}

// SetText records a free-text answer. Empty text is allowed.
func (e *Engine) SetText(id, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.question(id, KindText); err != nil {
		return err
	}
	e.answers.text[id] = value
	return nil
}

// Choose records a single-choice answer
func (e *Engine) Choose(id, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.question(id, KindSingleChoice)
	if err != nil {
		return err
	}
	if !q.HasOption(value) {
		return fmt.Errorf("%w: %q is not an option of %s", ErrInvalidAnswer, value, id)
	}
	e.answers.text[id] = value
	return nil
}

// Toggle selects or deselects a multi-choice value. Selecting beyond the
// question's bound is dropped without error; deselecting always succeeds.
// changed reports whether the answer set was modified.
func (e *Engine) Toggle(id, value string) (changed bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.question(id, KindMultiChoice)
	if err != nil {
		return false, err
	}
	if !q.HasOption(value) {
		return false, fmt.Errorf("%w: %q is not an option of %s", ErrInvalidAnswer, value, id)
	}

	selected := e.answers.multi[id]
	for i, v := range selected {
		if v == value {
			e.answers.multi[id] = append(selected[:i:i], selected[i+1:]...)
			return true, nil
		}
	}
	if len(selected) >= q.MaxSelections {
		return false, nil
	}
	e.answers.multi[id] = append(selected, value)
	return true, nil
}

// Rate records a likert-single answer
func (e *Engine) Rate(id string, value int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.question(id, KindLikertSingle); err != nil {
		return err
	}
	if value < ScaleMin || value > ScaleMax {
		return fmt.Errorf("%w: scale value %d out of range", ErrInvalidAnswer, value)
	}
	e.answers.text[id] = strconv.Itoa(value)
	return nil
}

// RateItem records one sub-item of a likert-group without touching the others
func (e *Engine) RateItem(id, item string, value int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.question(id, KindLikertGroup)
	if err != nil {
		return err
	}
	if !q.HasItem(item) {
		return fmt.Errorf("%w: %q is not an item of %s", ErrInvalidAnswer, item, id)
	}
	if value < ScaleMin || value > ScaleMax {
		return fmt.Errorf("%w: scale value %d out of range", ErrInvalidAnswer, value)
	}
	if e.answers.group[id] == nil {
		e.answers.group[id] = make(map[string]string)
	}
	e.answers.group[id][item] = strconv.Itoa(value)
	return nil
}

// Drafts

// Snapshot encodes the answers and position so the survey can be resumed
func (e *Engine) Snapshot() (answers []byte, index int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	answers, err = e.answers.MarshalJSON()
	return answers, e.index, err
}

// Restore loads a snapshot. The index is clamped into the catalog.
func (e *Engine) Restore(answers []byte, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkNavigable(); err != nil {
		return err
	}
	if err := e.answers.load(answers); err != nil {
		return fmt.Errorf("failed to decode draft answers: %w", err)
	}
	switch {
	case index < 0:
		index = 0
	case index >= e.catalog.Len():
		index = e.catalog.Len() - 1
	}
	e.index = index
	e.phase = PhaseAnswering
	e.lastErr = nil
	return nil
}
