// Package identity matches a typed identity-code fragment against the civilian
// roster.
package identity

import (
	"strings"
	"unicode/utf8"

	"finetrack/internal/fines/models"
)

// MinQueryLength is the shortest fragment that produces partial candidates.
const MinQueryLength = 3

// MatchResult holds the partial candidates, in roster order, and the exact
// match computed independently of them.
type MatchResult struct {
	Candidates []models.Civilian `json:"candidates"`
	ExactMatch *models.Civilian  `json:"exactMatch,omitempty"`
}

// Match returns every civilian whose identity code contains query, plus the
// civilian whose code equals query. Both comparisons ignore case. Queries
// shorter than MinQueryLength yield no candidates but can still match exactly.
// Roster entries without an identity code (service and admin accounts) never
// match.
func Match(query string, roster []models.Civilian) MatchResult {
	res := MatchResult{Candidates: []models.Civilian{}}
	partial := utf8.RuneCountInString(query) >= MinQueryLength

	for i := range roster {
		c := roster[i]
		if c.IdentityCode.IsNil() {
			continue
		}
		if partial && c.IdentityCode.Contains(query) {
			res.Candidates = append(res.Candidates, c)
		}
		if res.ExactMatch == nil && query != "" && strings.EqualFold(c.IdentityCode.String(), query) {
			exact := c
			res.ExactMatch = &exact
		}
	}
	return res
}
