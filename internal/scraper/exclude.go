// Package scraper implements listing retrieval, sanitizing and the
// synchronization cycle that stores new listings.
package scraper

import (
	"slices"
	"strings"

	"jobmate/jobhunter-service/internal/model"
)

// MatchesExcludedTerm reports whether any term appears (case-insensitive) in
// the listing's title, company name or raw description. Matching listings are
// discarded before the existence check.
func MatchesExcludedTerm(l model.Listing, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	text := strings.ToLower(strings.Join([]string{l.Title, l.CompanyName, l.Description}, " "))
	return slices.ContainsFunc(terms, func(term string) bool {
		return term != "" && strings.Contains(text, strings.ToLower(term))
	})
}
