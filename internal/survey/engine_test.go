package survey

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	status   bool
	loading  bool
	sets     int
	started  int
	finished int
}

func (r *recorder) SetStatus(v bool) { r.status = v; r.sets++ }
func (r *recorder) StartLoading()    { r.loading = true; r.started++ }
func (r *recorder) StopLoading()     { r.loading = false; r.finished++ }

func threeQuestions(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog("Three", []Question{
		{ID: "name", Kind: KindText, Label: "Name?"},
		{ID: "pick", Kind: KindSingleChoice, Label: "Pick", Options: []Option{{Value: "a"}, {Value: "b"}}},
		{ID: "last", Kind: KindText, Label: "Anything else?"},
	})
	require.NoError(t, err)
	return c
}

func mixedCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog("Mixed", []Question{
		{ID: "s1", Kind: KindSectionMarker, Label: "Section 1"},
		{ID: "env", Kind: KindMultiChoice, Options: []Option{{Value: "a"}, {Value: "b"}, {Value: "c"}, {Value: "d"}}},
		{ID: "env3", Kind: KindMultiChoice, MaxSelections: 3, Options: []Option{{Value: "a"}, {Value: "b"}, {Value: "c"}, {Value: "d"}}},
		{ID: "s2", Kind: KindSectionMarker, Label: "Section 2"},
		{ID: "mood", Kind: KindLikertSingle},
		{ID: "prio", Kind: KindLikertGroup, Items: []Option{{Value: "x"}, {Value: "y"}}},
	})
	require.NoError(t, err)
	return c
}

func TestPreviousDisabledOnlyAtFirst(t *testing.T) {
	e := NewEngine(threeQuestions(t))

	assert.False(t, e.PrevEnabled())
	require.NoError(t, e.Previous())
	assert.Equal(t, 0, e.Index(), "Previous at 0 is a no-op")

	_, err := e.Next()
	require.NoError(t, err)
	assert.True(t, e.PrevEnabled())

	require.NoError(t, e.Previous())
	assert.Equal(t, 0, e.Index())
}

func TestNextLabelSubmitOnlyAtLast(t *testing.T) {
	e := NewEngine(threeQuestions(t))

	labels := []string{}
	for i := 0; i < 3; i++ {
		labels = append(labels, e.NextLabel())
		if i < 2 {
			_, err := e.Next()
			require.NoError(t, err)
		}
	}
	assert.Equal(t, []string{"Next", "Next", "Submit"}, labels)
}

func TestProgressExcludesMarkers(t *testing.T) {
	e := NewEngine(mixedCatalog(t))

	p := e.Progress()
	assert.False(t, p.Visible)
	assert.Empty(t, p.String())

	e.Next()
	assert.Equal(t, "Question 1 of 4", e.Progress().String())
	e.Next()
	assert.Equal(t, "Question 2 of 4", e.Progress().String())
	e.Next() // marker
	assert.False(t, e.Progress().Visible)
	e.Next()
	assert.Equal(t, "Question 3 of 4", e.Progress().String())
	e.Next()
	p = e.Progress()
	assert.Equal(t, "Question 4 of 4", p.String())
	assert.InDelta(t, 1.0, p.Fraction(), 1e-9)
}

func TestProgressTotalIndependentOfAnswers(t *testing.T) {
	e := NewEngine(mixedCatalog(t))
	before := e.Progress().Total

	e.Toggle("env", "a")
	e.Rate("mood", 3)

	assert.Equal(t, before, e.Progress().Total)
}

func TestMultiChoiceDefaultBoundIsTwo(t *testing.T) {
	e := NewEngine(mixedCatalog(t))

	changed, err := e.Toggle("env", "a")
	require.NoError(t, err)
	assert.True(t, changed)
	e.Toggle("env", "b")

	changed, err = e.Toggle("env", "c")
	require.NoError(t, err, "selecting past the bound is not an error")
	assert.False(t, changed)
	assert.Equal(t, []string{"a", "b"}, e.Answers().Selected("env"))
}

func TestMultiChoiceDeselectAtBound(t *testing.T) {
	e := NewEngine(mixedCatalog(t))

	for _, v := range []string{"a", "b", "c"} {
		e.Toggle("env3", v)
	}
	changed, _ := e.Toggle("env3", "d")
	assert.False(t, changed)
	assert.Equal(t, []string{"a", "b", "c"}, e.Answers().Selected("env3"))

	changed, err := e.Toggle("env3", "b")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"a", "c"}, e.Answers().Selected("env3"))

	changed, _ = e.Toggle("env3", "d")
	assert.True(t, changed)
	assert.Equal(t, []string{"a", "c", "d"}, e.Answers().Selected("env3"))
}

func TestLikertGroupItemsIndependent(t *testing.T) {
	e := NewEngine(mixedCatalog(t))

	require.NoError(t, e.RateItem("prio", "x", 4))
	require.NoError(t, e.RateItem("prio", "y", 2))
	require.NoError(t, e.RateItem("prio", "x", 5))

	assert.Equal(t, "5", e.Answers().Scale("prio", "x"))
	assert.Equal(t, "2", e.Answers().Scale("prio", "y"))
}

func TestAnswerValidation(t *testing.T) {
	e := NewEngine(mixedCatalog(t))

	assert.ErrorIs(t, e.Rate("mood", 6), ErrInvalidAnswer)
	assert.ErrorIs(t, e.Rate("mood", 0), ErrInvalidAnswer)
	assert.ErrorIs(t, e.RateItem("prio", "z", 3), ErrInvalidAnswer)
	assert.ErrorIs(t, e.SetText("nope", "x"), ErrUnknownQuestion)
	assert.ErrorIs(t, e.SetText("env", "x"), ErrWrongKind)
	_, err := e.Toggle("env", "zzz")
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	e2 := NewEngine(threeQuestions(t))
	assert.ErrorIs(t, e2.Choose("pick", "c"), ErrInvalidAnswer)
	require.NoError(t, e2.Choose("pick", "b"))
	require.NoError(t, e2.SetText("name", ""), "empty text is allowed")
}

func TestAnswersMapShape(t *testing.T) {
	e := NewEngine(mixedCatalog(t))
	e.Toggle("env", "b")
	e.RateItem("prio", "y", 1)

	data, err := json.Marshal(e.Answers())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotContains(t, decoded, "s1")
	assert.Equal(t, []any{"b"}, decoded["env"])
	assert.Equal(t, []any{}, decoded["env3"])
	assert.Equal(t, "", decoded["mood"])
	assert.Equal(t, map[string]any{"y": "1"}, decoded["prio"])
}

// The end-to-end walk: three questions, submit on the last one.
func TestSubmitSuccess(t *testing.T) {
	status := &recorder{}
	e := NewEngine(threeQuestions(t), WithStatus(status))
	require.NoError(t, e.SetText("name", "Ada"))

	calls := 0
	submit := func(ctx context.Context, a *Answers) error {
		calls++
		assert.Equal(t, "Ada", a.Text("name"))
		assert.True(t, status.loading, "loading while the request is out")
		return nil
	}

	require.NoError(t, e.Advance(context.Background(), submit))
	require.NoError(t, e.Advance(context.Background(), submit))
	assert.Equal(t, 2, e.Index())
	assert.Zero(t, calls)

	require.NoError(t, e.Advance(context.Background(), submit))
	assert.Equal(t, 1, calls)
	assert.Equal(t, PhaseDone, e.Phase())
	assert.True(t, status.status)
	assert.False(t, status.loading)

	assert.ErrorIs(t, e.Advance(context.Background(), submit), ErrFinished)
	assert.Equal(t, 1, calls)
}

func TestSubmitFailureIsRetryable(t *testing.T) {
	status := &recorder{status: true}
	e := NewEngine(threeQuestions(t), WithStatus(status))
	e.SetText("name", "Ada")
	e.Next()
	e.Next()

	boom := errors.New("backend down")
	err := e.Advance(context.Background(), func(context.Context, *Answers) error { return boom })
	require.ErrorIs(t, err, boom)

	assert.Equal(t, PhaseFailed, e.Phase())
	assert.ErrorIs(t, e.Err(), boom)
	assert.Equal(t, 2, e.Index(), "stays on the last question")
	assert.False(t, status.status)
	assert.Equal(t, "Ada", e.Answers().Text("name"), "answers preserved")
	assert.True(t, e.NextEnabled())

	require.NoError(t, e.Advance(context.Background(), func(context.Context, *Answers) error { return nil }))
	assert.Equal(t, PhaseDone, e.Phase())
	assert.Nil(t, e.Err())
	assert.True(t, status.status)
}

func TestSingleSubmissionInFlight(t *testing.T) {
	e := NewEngine(threeQuestions(t))
	e.Next()
	e.Next()

	step, err := e.Next()
	require.NoError(t, err)
	require.True(t, step.Submit)

	assert.False(t, e.NextEnabled())
	assert.False(t, e.PrevEnabled())
	_, err = e.Next()
	assert.ErrorIs(t, err, ErrSubmitting)
	assert.ErrorIs(t, e.Previous(), ErrSubmitting)
	assert.ErrorIs(t, e.SetText("name", "x"), ErrSubmitting)

	assert.True(t, e.Complete(step.Ticket, nil))
}

func TestCompleteAfterCloseIsDiscarded(t *testing.T) {
	status := &recorder{}
	e := NewEngine(threeQuestions(t), WithStatus(status))
	e.Next()
	e.Next()
	step, _ := e.Next()

	e.Close()
	assert.False(t, e.Complete(step.Ticket, nil))
	assert.Equal(t, PhaseSubmitting, e.Phase(), "closed engine is not updated")
	assert.True(t, status.status, "status store still learns the outcome")
}

func TestSnapshotRestore(t *testing.T) {
	e := NewEngine(mixedCatalog(t))
	e.Toggle("env", "a")
	e.RateItem("prio", "x", 3)
	e.Next()
	e.Next()

	answers, index, err := e.Snapshot()
	require.NoError(t, err)

	restored := NewEngine(mixedCatalog(t))
	require.NoError(t, restored.Restore(answers, index))
	assert.Equal(t, 2, restored.Index())
	assert.Equal(t, []string{"a"}, restored.Answers().Selected("env"))
	assert.Equal(t, "3", restored.Answers().Scale("prio", "x"))
}

func TestRestoreDropsInvalidEntries(t *testing.T) {
	e := NewEngine(mixedCatalog(t))

	draft := []byte(`{"env":["a","b","c"],"mood":"9","prio":{"x":"2","z":"1"},"gone":"x"}`)
	require.NoError(t, e.Restore(draft, 99))

	assert.Equal(t, []string{"a", "b"}, e.Answers().Selected("env"), "bound still applies")
	assert.Equal(t, "", e.Answers().Text("mood"))
	assert.Equal(t, "2", e.Answers().Scale("prio", "x"))
	assert.Equal(t, "", e.Answers().Scale("prio", "z"))
	assert.Equal(t, e.Catalog().Len()-1, e.Index(), "index clamped")

	assert.Error(t, e.Restore([]byte("not json"), 0))
}
