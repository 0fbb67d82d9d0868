package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/pathweiz/pkg/models"
)

// ProgressBar draws a bar filled to fraction (clamped to 0..1)
func ProgressBar(fraction float64, width int) string {
	if width < 2 {
		width = 2
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render(strings.Repeat("█", filled)) +
		MutedStyle.Render(strings.Repeat("░", width-filled))
}

// MilestoneView carries the per-milestone UI state the timeline needs
type MilestoneView struct {
	Milestone models.Milestone
	Editing   bool
	Draft     string // shown instead of the note while editing
	Notice    string
	NoticeOK  bool
	Selected  bool
}

// Timeline renders milestones as a numbered vertical path
func Timeline(items []MilestoneView, width int) string {
	if len(items) == 0 {
		return MutedStyle.Render("No milestones yet.")
	}
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(width - 6)

	var b strings.Builder
	for i, item := range items {
		m := item.Milestone
		marker := "○"
		if m.Updates != nil && *m.Updates != "" {
			marker = "●"
		}
		title := fmt.Sprintf("%s %d. %s", marker, i+1, m.Title)
		if item.Selected {
			b.WriteString(HighlightStyle.Render("▸ "+title) + "\n")
		} else {
			b.WriteString(LabelStyle.Render("  "+title) + "\n")
		}

		connector := "  │  "
		if i == len(items)-1 {
			connector = "     "
		}
		writeIndented := func(s string) {
			for _, line := range strings.Split(s, "\n") {
				b.WriteString(MutedStyle.Render(connector) + line + "\n")
			}
		}

		if m.Description != "" {
			writeIndented(body.Render(m.Description))
		}
		switch {
		case item.Editing:
			writeIndented(HighlightStyle.Render("Editing: ") + item.Draft + "▌")
		case m.Updates != nil && *m.Updates != "":
			writeIndented(ValueStyle.Render("Progress: ") + body.Render(*m.Updates))
		}
		if item.Notice != "" {
			writeIndented(Notice(item.Notice, item.NoticeOK))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
