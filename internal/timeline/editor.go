// Package timeline manages progress notes on a recommendation's milestones.
// One milestone at a time can be in edit mode; each save or delete leaves a
// short-lived notice on that milestone only.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/khrees2412/pathweiz/pkg/models"
	"go.uber.org/zap"
)

// NoticeTTL is how long a save/delete notice stays visible
const NoticeTTL = 3 * time.Second

const (
	MsgSaved        = "Saved successfully!"
	MsgSaveFailed   = "Error saving update."
	MsgDeleted      = "Deleted successfully!"
	MsgDeleteFailed = "Error deleting update."
)

var (
	ErrUnknownMilestone = errors.New("unknown milestone")
	ErrNotEditing       = errors.New("milestone is not being edited")
	// ErrStale is returned when a write finished after the editor was closed
	// or reloaded; its result was not applied.
	ErrStale = errors.New("result discarded")
)

// Writer persists milestone notes
type Writer interface {
	UpdateMilestone(ctx context.Context, id int64, text string) error
	ClearMilestone(ctx context.Context, id int64) error
}

// Notice is the feedback shown under one milestone
type Notice struct {
	Message string
	OK      bool
	Expires time.Time
}

// Editor holds the milestones of one recommendation
type Editor struct {
	writer Writer
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	milestones []*models.Milestone
	byID       map[int64]*models.Milestone
	editingID  int64
	editing    bool
	draft      string
	notices    map[int64]Notice
	generation uint64
}

// Option configures an Editor
type Option func(*Editor)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) { e.logger = logger }
}

// NewEditor creates an editor over milestones. The slice is copied.
func NewEditor(writer Writer, milestones []*models.Milestone, opts ...Option) *Editor {
	e := &Editor{
		writer: writer,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.load(milestones)
	return e
}

func (e *Editor) load(milestones []*models.Milestone) {
	e.milestones = make([]*models.Milestone, 0, len(milestones))
	e.byID = make(map[int64]*models.Milestone, len(milestones))
	for _, m := range milestones {
		c := *m
		if m.Updates != nil {
			u := *m.Updates
			c.Updates = &u
		}
		e.milestones = append(e.milestones, &c)
		e.byID[c.ID] = &c
	}
	e.notices = make(map[int64]Notice)
	e.editing = false
	e.editingID = 0
	e.draft = ""
}

// Reload replaces the milestones. Writes still in flight are discarded.
func (e *Editor) Reload(milestones []*models.Milestone) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.load(milestones)
}

// Close discards the results of writes still in flight
func (e *Editor) Close() {
	e.mu.Lock()
	e.generation++
	e.mu.Unlock()
}

// Milestones returns copies of the milestones in display order
func (e *Editor) Milestones() []models.Milestone {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Milestone, len(e.milestones))
	for i, m := range e.milestones {
		out[i] = *m
	}
	return out
}

// Editing returns the milestone in edit mode, if any
func (e *Editor) Editing() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID, e.editing
}

// Draft returns the text being edited
func (e *Editor) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Begin puts a milestone in edit mode, leaving any other one. The draft
// starts from the saved note.
func (e *Editor) Begin(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMilestone, id)
	}
	e.editingID, e.editing = id, true
	e.draft = ""
	if m.Updates != nil {
		e.draft = *m.Updates
	}
	return nil
}

// Edit replaces the draft of the milestone in edit mode
func (e *Editor) Edit(id int64, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing || e.editingID != id {
		return ErrNotEditing
	}
	e.draft = text
	return nil
}

// Cancel leaves edit mode without saving
func (e *Editor) Cancel() {
	e.mu.Lock()
	e.editing, e.editingID, e.draft = false, 0, ""
	e.mu.Unlock()
}

// Save writes the draft of the milestone in edit mode. Edit mode ends
// whether or not the write succeeds.
func (e *Editor) Save(ctx context.Context, id int64) error {
	e.mu.Lock()
	if !e.editing || e.editingID != id {
		e.mu.Unlock()
		return ErrNotEditing
	}
	text, gen := e.draft, e.generation
	e.mu.Unlock()

	err := e.writer.UpdateMilestone(ctx, id, text)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return ErrStale
	}
	if e.editing && e.editingID == id {
		e.editing, e.editingID, e.draft = false, 0, ""
	}
	if err != nil {
		e.logger.Warn("Failed to save milestone update", zap.Int64("milestone_id", id), zap.Error(err))
		e.notify(id, MsgSaveFailed, false)
		return err
	}
	if m, ok := e.byID[id]; ok {
		m.Updates = &text
	}
	e.notify(id, MsgSaved, true)
	return nil
}

// Delete clears a milestone's note
func (e *Editor) Delete(ctx context.Context, id int64) error {
	e.mu.Lock()
	if _, ok := e.byID[id]; !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownMilestone, id)
	}
	gen := e.generation
	e.mu.Unlock()

	err := e.writer.ClearMilestone(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return ErrStale
	}
	if err != nil {
		e.logger.Warn("Failed to delete milestone update", zap.Int64("milestone_id", id), zap.Error(err))
		e.notify(id, MsgDeleteFailed, false)
		return err
	}
	if e.editing && e.editingID == id {
		e.editing, e.editingID, e.draft = false, 0, ""
	}
	e.byID[id].Updates = nil
	e.notify(id, MsgDeleted, true)
	return nil
}

func (e *Editor) notify(id int64, msg string, ok bool) {
	e.notices[id] = Notice{Message: msg, OK: ok, Expires: e.now().Add(NoticeTTL)}
}

// Notice returns the milestone's notice if it has not expired yet
func (e *Editor) Notice(id int64) (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.notices[id]
	if !ok {
		return Notice{}, false
	}
	if !e.now().Before(n.Expires) {
		delete(e.notices, id)
		return Notice{}, false
	}
	return n, true
}
