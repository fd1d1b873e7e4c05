package live

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"server/internal/domain"
)

// Search filters the corpus to campaigns whose title or description
// contains the query, caseless. A blank query returns the corpus unchanged;
// order is always preserved. Pure function, no store round-trip.
func Search(query string, corpus []domain.Campaign) []domain.Campaign {
	q := strings.TrimSpace(query)
	if q == "" {
		return corpus
	}

	pattern := search.New(language.Und, search.IgnoreCase).CompileString(q)
	out := make([]domain.Campaign, 0, len(corpus))
	for _, c := range corpus {
		if containsPattern(pattern, c.Title) || containsPattern(pattern, c.Description) {
			out = append(out, c)
		}
	}
	return out
}

func containsPattern(p *search.Pattern, s string) bool {
	start, _ := p.IndexString(s)
	return start >= 0
}
