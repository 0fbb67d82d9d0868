// Package matcher decides which recommendations match a free-text search
package matcher

import (
	"strings"

	"github.com/khrees2412/pathweiz/pkg/models"
)

// Normalize prepares a search term for matching. Whitespace is significant:
// only the empty term matches everything.
func Normalize(term string) string {
	return strings.ToLower(term)
}

// Matches reports whether the term occurs, ignoring case, in the job title or
// in the tags. An empty term matches everything.
func Matches(rec *models.Recommendation, term string) bool {
	term = Normalize(term)
	if term == "" {
		return true
	}
	if rec == nil {
		return false
	}
	if strings.Contains(strings.ToLower(rec.JobTitle), term) {
		return true
	}
	// Raw tags string so a term spanning the separator ("python, sql") still hits
	return strings.Contains(strings.ToLower(rec.Tags), term)
}

// Filter returns the recommendations matching term, keeping their order.
// The result is never nil.
func Filter(recs []*models.Recommendation, term string) []*models.Recommendation {
	out := make([]*models.Recommendation, 0, len(recs))
	if Normalize(term) == "" {
		return append(out, recs...)
	}
	for _, rec := range recs {
		if Matches(rec, term) {
			out = append(out, rec)
		}
	}
	return out
}

// Keywords splits a search term into its meaningful words, dropping short
// stop words. Used to highlight matches.
func Keywords(term string) []string {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true,
		"in": true, "on": true, "at": true, "to": true,
		"for": true, "of": true, "with": true, "by": true,
	}

	keywords := []string{}
	for _, word := range strings.Fields(Normalize(term)) {
		word = strings.Trim(word, ".,!?;:")
		if word != "" && !stopWords[word] {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
