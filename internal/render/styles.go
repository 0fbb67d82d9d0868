// Package render turns recommendations, milestones and survey progress into
// terminal text.
package render

import (
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	SelectedCardStyle = CardStyle.
				BorderForeground(lipgloss.Color("12"))
)

// tagPalette holds the tag background colours; index order matters because
// explore assigns colours by first appearance.
var tagPalette = []lipgloss.Color{
	"#2563eb", "#16a34a", "#d97706", "#db2777",
	"#7c3aed", "#0891b2", "#dc2626", "#65a30d",
}

// TagColor returns the palette colour for an index; negative indexes fall
// back to a hash of the tag.
func TagColor(tag string, index int) lipgloss.Color {
	if index < 0 {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(tag))))
		index = int(h.Sum32() % uint32(len(tagPalette)))
	}
	return tagPalette[index%len(tagPalette)]
}

// Tag renders one tag pill
func Tag(tag string, index int) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(TagColor(tag, index)).
		Padding(0, 1).
		Render(tag)
}

// Tags renders tags on one line. colorOf may be nil, in which case colours
// come from the tag text.
func Tags(tags []string, colorOf func(string) int) string {
	pills := make([]string, 0, len(tags))
	for _, tag := range tags {
		index := -1
		if colorOf != nil {
			index = colorOf(tag)
		}
		pills = append(pills, Tag(tag, index))
	}
	return strings.Join(pills, " ")
}

// TitleCase capitalises each word using English rules
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Notice renders a success or error line
func Notice(msg string, ok bool) string {
	if ok {
		return SuccessStyle.Render("✓ " + msg)
	}
	return ErrorStyle.Render("✗ " + msg)
}
