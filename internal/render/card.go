package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/pathweiz/internal/matcher"
	"github.com/khrees2412/pathweiz/pkg/models"
)

// CardOptions controls how much of a recommendation is shown
type CardOptions struct {
	Width    int
	Detailed bool // full job description and the reason it was recommended
	Selected bool
	Search   string          // matching words in the title are highlighted
	ColorOf  func(string) int // tag colour index, nil for hashed colours
}

// Card renders a recommendation
func Card(rec *models.Recommendation, opts CardOptions) string {
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(TitleStyle.UnsetMarginBottom().Render(Highlight(rec.JobTitle, opts.Search)))
	if rec.FitPercentage > 0 {
		b.WriteString("  " + FitBadge(float64(rec.FitPercentage)))
	}
	b.WriteString("\n")

	if tags := rec.TagList(); len(tags) > 0 {
		b.WriteString(Tags(tags, opts.ColorOf) + "\n")
	}
	if len(rec.Labels) > 0 {
		labels := make([]string, len(rec.Labels))
		for i, l := range rec.Labels {
			labels[i] = TitleCase(l)
		}
		b.WriteString(MutedStyle.Render(strings.Join(labels, " · ")) + "\n")
	}
	if rec.ShortDescription != "" {
		b.WriteString(lipgloss.NewStyle().Width(width-4).Render(rec.ShortDescription) + "\n")
	}

	if opts.Detailed {
		if rec.JobDescription != "" {
			b.WriteString("\n" + LabelStyle.Render("About the role") + "\n")
			b.WriteString(Markdown(rec.JobDescription, width-4))
		}
		if rec.RecommendationReason != "" {
			b.WriteString("\n" + LabelStyle.Render("Why it fits you") + "\n")
			b.WriteString(Markdown(rec.RecommendationReason, width-4))
		}
	}

	style := CardStyle
	if opts.Selected {
		style = SelectedCardStyle
	}
	return style.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

// FitBadge renders a fit percentage coloured by strength
func FitBadge(pct float64) string {
	color := lipgloss.Color("9")
	switch {
	case pct >= 80:
		color = lipgloss.Color("10")
	case pct >= 60:
		color = lipgloss.Color("11")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%.0f%% fit", pct))
}

// Highlight emphasises the search keywords found in text, ignoring case
func Highlight(text, search string) string {
	keywords := matcher.Keywords(search)
	if len(keywords) == 0 || text == "" {
		return text
	}

	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		return text
	}
	marked := make([]bool, len(text))
	for _, kw := range keywords {
		for start := 0; ; {
			i := strings.Index(lower[start:], kw)
			if i < 0 {
				break
			}
			for j := start + i; j < start+i+len(kw); j++ {
				marked[j] = true
			}
			start += i + len(kw)
		}
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		j := i
		for j < len(text) && marked[j] == marked[i] {
			j++
		}
		if marked[i] {
			b.WriteString(HighlightStyle.Render(text[i:j]))
		} else {
			b.WriteString(text[i:j])
		}
		i = j
	}
	return b.String()
}

// Markdown renders markdown for the terminal, falling back to the raw text
func Markdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md + "\n"
	}
	out, err := r.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

// ActionItem renders a suggested next step
func ActionItem(item *models.ActionItem) string {
	icon := strings.TrimSpace(item.Icon)
	if icon == "" {
		icon = "•"
	}
	line := fmt.Sprintf("%s %s", icon, LabelStyle.Render(item.Title))
	if item.Status != "" {
		line += " " + MutedStyle.Render("("+TitleCase(item.Status)+")")
	}
	if item.Description != "" {
		line += "\n   " + ValueStyle.Render(item.Description)
	}
	return line
}
