// Package survey holds the career questionnaire: the immutable question
// catalog and the engine that walks it, collecting answers and deciding when
// to submit.
package survey

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind identifies how a question is answered and rendered
type Kind string

const (
	KindText          Kind = "text"
	KindSingleChoice  Kind = "single-choice"
	KindMultiChoice   Kind = "multi-choice"
	KindLikertSingle  Kind = "likert-single"
	KindLikertGroup   Kind = "likert-group"
	KindSectionMarker Kind = "section-marker"
)

// DefaultMaxSelections bounds multi-choice answers when the catalog sets none
const DefaultMaxSelections = 2

// Likert scale bounds
const (
	ScaleMin = 1
	ScaleMax = 5
)

// Option is a selectable value. For likert-group items Value is the sub-item id.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Question is one entry of the catalog
type Question struct {
	ID            string   `yaml:"id"`
	Kind          Kind     `yaml:"kind"`
	Label         string   `yaml:"label"`
	Placeholder   string   `yaml:"placeholder"`
	Options       []Option `yaml:"options"`
	Items         []Option `yaml:"items"`
	MaxSelections int      `yaml:"max_selections"`
	LikertStart   string   `yaml:"likert_start"`
	LikertEnd     string   `yaml:"likert_end"`
}

// IsMarker reports whether the question only labels a section
func (q Question) IsMarker() bool {
	return q.Kind == KindSectionMarker
}

// HasOption reports whether value is one of the question's option values
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// HasItem reports whether id is one of a likert-group's sub-items
func (q Question) HasItem(id string) bool {
	for _, o := range q.Items {
		if o.Value == id {
			return true
		}
	}
	return false
}

type catalogFile struct {
	Title    string `yaml:"title"`
	Sections []struct {
		Label     string     `yaml:"label"`
		Questions []Question `yaml:"questions"`
	} `yaml:"sections"`
}

// Catalog is the ordered, immutable list of questions including section markers
type Catalog struct {
	title     string
	questions []Question
	index     map[string]int
	visible   int
}

//go:embed questions.yaml
var defaultCatalogYAML []byte

// DefaultCatalog returns the built-in career questionnaire
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("survey: invalid built-in catalog: %v", err))
	}
	return c
}

// ParseCatalog decodes a sectioned YAML catalog. Each section contributes a
// marker entry followed by its questions.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	questions := []Question{}
	for i, section := range file.Sections {
		questions = append(questions, Question{
			ID:    fmt.Sprintf("section-%d", i+1),
			Kind:  KindSectionMarker,
			Label: section.Label,
		})
		questions = append(questions, section.Questions...)
	}
	return NewCatalog(file.Title, questions)
}

// NewCatalog validates a flat question list and freezes it
func NewCatalog(title string, questions []Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog has no questions")
	}

	c := &Catalog{
		title:     title,
		questions: make([]Question, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d has no id", i)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		if q.Kind == KindMultiChoice && q.MaxSelections <= 0 {
			q.MaxSelections = DefaultMaxSelections
		}
		// Detach slices from the caller's copy
		q.Options = append([]Option(nil), q.Options...)
		q.Items = append([]Option(nil), q.Items...)

		c.questions[i] = q
		c.index[q.ID] = i
		if !q.IsMarker() {
			c.visible++
		}
	}
	return c, nil
}

func validateQuestion(q Question) error {
	switch q.Kind {
	case KindText, KindLikertSingle, KindSectionMarker:
	case KindSingleChoice, KindMultiChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("%s question needs options", q.Kind)
		}
		if err := uniqueValues(q.Options); err != nil {
			return err
		}
	case KindLikertGroup:
		if len(q.Items) == 0 {
			return fmt.Errorf("likert-group question needs items")
		}
		if err := uniqueValues(q.Items); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown kind %q", q.Kind)
	}
	return nil
}

func uniqueValues(opts []Option) error {
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if o.Value == "" {
			return fmt.Errorf("option %q has no value", o.Label)
		}
		if seen[o.Value] {
			return fmt.Errorf("duplicate option value %q", o.Value)
		}
		seen[o.Value] = true
	}
	return nil
}

// Title is the survey heading
func (c *Catalog) Title() string { return c.title }

// Len is the number of entries including section markers
func (c *Catalog) Len() int { return len(c.questions) }

// At returns the entry at index i
func (c *Catalog) At(i int) Question { return c.questions[i] }

// Lookup finds a question by id
func (c *Catalog) Lookup(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Questions returns a copy of every entry in order
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// VisibleTotal is the number of answerable (non-marker) questions. It depends
// only on the catalog, never on the answers collected.
func (c *Catalog) VisibleTotal() int { return c.visible }

// VisiblePosition returns the 1-based position of entry i among answerable
// questions. ok is false for section markers.
func (c *Catalog) VisiblePosition(i int) (pos int, ok bool) {
	if i < 0 || i >= len(c.questions) || c.questions[i].IsMarker() {
		return 0, false
	}
	for j := 0; j < i; j++ {
		if !c.questions[j].IsMarker() {
			pos++
		}
	}
	return pos + 1, true
}
