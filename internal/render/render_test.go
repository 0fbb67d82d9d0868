package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/pathweiz/pkg/models"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestTagColorStable(t *testing.T) {
	assert.Equal(t, TagColor("Python", -1), TagColor("python ", -1))
	assert.Equal(t, tagPalette[1], TagColor("anything", 1))
	assert.Equal(t, tagPalette[0], TagColor("anything", len(tagPalette)))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "High Growth", TitleCase("high growth"))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ProgressBar(0.5, 10))
	assert.Equal(t, "░░░░", ProgressBar(-1, 4))
	assert.Equal(t, "████", ProgressBar(2, 4))
}

func TestHighlightKeepsText(t *testing.T) {
	assert.Equal(t, "Data Scientist", Highlight("Data Scientist", "data"))
	assert.Equal(t, "Nurse", Highlight("Nurse", ""))
}

func TestCard(t *testing.T) {
	rec := &models.Recommendation{
		JobTitle:         "Data Scientist",
		Tags:             "Python, ML",
		FitPercentage:    91,
		Labels:           models.StringList{"high growth"},
		ShortDescription: "Turn data into decisions.",
	}
	out := Card(rec, CardOptions{Width: 60})

	for _, want := range []string{"Data Scientist", "91% fit", "Python", "ML", "High Growth", "Turn data into decisions."} {
		assert.Contains(t, out, want)
	}
}

func TestTimeline(t *testing.T) {
	note := "half done"
	items := []MilestoneView{
		{Milestone: models.Milestone{ID: 1, Title: "Learn SQL", Updates: &note}, Notice: "Saved successfully!", NoticeOK: true},
		{Milestone: models.Milestone{ID: 2, Title: "Apply"}, Editing: true, Draft: "draft text", Selected: true},
	}
	out := Timeline(items, 60)

	assert.Contains(t, out, "● 1. Learn SQL")
	assert.Contains(t, out, "Progress: half done")
	assert.Contains(t, out, "✓ Saved successfully!")
	assert.Contains(t, out, "▸ ○ 2. Apply")
	assert.Contains(t, out, "Editing: draft text")
	assert.Less(t, strings.Index(out, "Learn SQL"), strings.Index(out, "Apply"))

	assert.Equal(t, "No milestones yet.", Timeline(nil, 60))
}

func TestActionItem(t *testing.T) {
	out := ActionItem(&models.ActionItem{Icon: "📚", Title: "Take a course", Status: "not started", Description: "SQL basics"})
	assert.Contains(t, out, "📚 Take a course (Not Started)")
	assert.Contains(t, out, "SQL basics")
}
