package survey

import (
	"encoding/json"
	"strconv"
)

// Answers is the collected answer mapping keyed by question id.
//
// text, single-choice and likert-single answers are strings; multi-choice
// answers are the selected values in selection order; likert-group answers map
// each sub-item id to its scale value.
type Answers struct {
	catalog *Catalog
	text    map[string]string
	multi   map[string][]string
	group   map[string]map[string]string
}

func newAnswers(c *Catalog) *Answers {
	return &Answers{
		catalog: c,
		text:    make(map[string]string),
		multi:   make(map[string][]string),
		group:   make(map[string]map[string]string),
	}
}

// Text returns a text, single-choice or likert-single answer ("" if unanswered)
func (a *Answers) Text(id string) string {
	return a.text[id]
}

// Selected returns a copy of a multi-choice answer
func (a *Answers) Selected(id string) []string {
	return append([]string{}, a.multi[id]...)
}

// IsSelected reports whether value is part of a multi-choice answer
func (a *Answers) IsSelected(id, value string) bool {
	for _, v := range a.multi[id] {
		if v == value {
			return true
		}
	}
	return false
}

// Scale returns a likert-group sub-item's value ("" if unanswered)
func (a *Answers) Scale(id, item string) string {
	return a.group[id][item]
}

// Map returns the answers in the shape the backend expects: every answerable
// question present, unanswered ones as "", [] or {}.
func (a *Answers) Map() map[string]any {
	out := make(map[string]any, a.catalog.VisibleTotal())
	for _, q := range a.catalog.questions {
		switch q.Kind {
		case KindSectionMarker:
			continue
		case KindMultiChoice:
			out[q.ID] = a.Selected(q.ID)
		case KindLikertGroup:
			items := make(map[string]string, len(a.group[q.ID]))
			for k, v := range a.group[q.ID] {
				items[k] = v
			}
			out[q.ID] = items
		default:
			out[q.ID] = a.text[q.ID]
		}
	}
	return out
}

// MarshalJSON encodes the backend answer mapping
func (a *Answers) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// load replaces the answers with a previously encoded mapping. Entries that
// don't fit the catalog (unknown ids, invalid values) are dropped.
func (a *Answers) load(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fresh := newAnswers(a.catalog)
	for id, msg := range raw {
		q, ok := a.catalog.Lookup(id)
		if !ok {
			continue
		}
		switch q.Kind {
		case KindText:
			var s string
			if json.Unmarshal(msg, &s) == nil {
				fresh.text[id] = s
			}
		case KindSingleChoice:
			var s string
			if json.Unmarshal(msg, &s) == nil && q.HasOption(s) {
				fresh.text[id] = s
			}
		case KindLikertSingle:
			var s string
			if json.Unmarshal(msg, &s) == nil && validScale(s) {
				fresh.text[id] = s
			}
		case KindMultiChoice:
			var values []string
			if json.Unmarshal(msg, &values) != nil {
				continue
			}
			for _, v := range values {
				if len(fresh.multi[id]) >= q.MaxSelections {
					break
				}
				if q.HasOption(v) && !fresh.IsSelected(id, v) {
					fresh.multi[id] = append(fresh.multi[id], v)
				}
			}
		case KindLikertGroup:
			var items map[string]string
			if json.Unmarshal(msg, &items) != nil {
				continue
			}
			for item, v := range items {
				if q.HasItem(item) && validScale(v) {
					if fresh.group[id] == nil {
						fresh.group[id] = make(map[string]string)
					}
					fresh.group[id][item] = v
				}
			}
		}
	}
	*a = *fresh
	return nil
}

func validScale(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= ScaleMin && n <= ScaleMax
}
