package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// clauseNumberRx extracts the first dotted clause number from a freeform
// reference, e.g. "5.2" out of "Clause 5.2 - Limitation of Liability".
var clauseNumberRx = regexp.MustCompile(`\b\d+(?:\.\d+)*\b`)

// ResolveClauseRef maps a freeform clause reference to a clause ID.
//
// Matching runs in three tiers and stops at the first hit:
//  1. exact title match, case-insensitive, trimmed
//  2. exact dotted-number match on the first number token in the ref;
//     "1" never matches clause "10" or "1.2"
//  3. case-insensitive substring match between ref and title, either
//     direction
//
// Within a tier the first clause in document order wins. No match is a
// normal outcome, not an error.
func ResolveClauseRef(ref string, clauses []*domain.Clause) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || len(clauses) == 0 {
		return "", false
	}

	for _, c := range clauses {
		if c.Title != "" && strings.EqualFold(strings.TrimSpace(c.Title), ref) {
			return c.ID, true
		}
	}

	if num := clauseNumberRx.FindString(ref); num != "" {
		for _, c := range clauses {
			if c.Number != "" && strings.TrimSpace(c.Number) == num {
				return c.ID, true
			}
		}
	}

	refLower := strings.ToLower(ref)
	for _, c := range clauses {
		if c.Title == "" {
			continue
		}
		title := strings.ToLower(c.Title)
		if strings.Contains(refLower, title) || strings.Contains(title, refLower) {
			return c.ID, true
		}
	}

	return "", false
}
