package services

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// headingRx matches numbered clause headings on their own line: a dotted
// number followed by a title that starts with an uppercase letter and
// stays on one line (max 101 chars).
var headingRx = regexp.MustCompile(`(?m)^\s*(\d+(?:\.\d+)*)\s+([A-Z][^\n]{0,100})\s*$`)

// bulletRx finds a line break immediately before a bullet glyph.
var bulletRx = regexp.MustCompile("\n([•–-]\\s)")

// JoinBullets folds bullet-list line breaks into the preceding line so a
// bullet item is never mistaken for a clause heading. Applying it twice
// yields the same output as applying it once.
func JoinBullets(text string) string {
	return bulletRx.ReplaceAllString(text, " $1")
}

// Segment splits contract text into clauses by numbered headings.
//
// Text before the first heading becomes a preamble clause with empty
// number and title. When no heading matches at all, the whole text
// becomes a single clause. Heading labels are kept verbatim, including
// duplicates and out-of-order numbering; clause identity comes from a
// generated UUID, never from the label.
func Segment(text string) []*domain.Clause {
	text = JoinBullets(text)

	matches := headingRx.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []*domain.Clause{{
			ID:   uuid.NewString(),
			Text: strings.TrimSpace(text),
		}}
	}

	clauses := make([]*domain.Clause, 0, len(matches)+1)

	if pre := strings.TrimSpace(text[:matches[0][0]]); pre != "" {
		clauses = append(clauses, &domain.Clause{
			ID:   uuid.NewString(),
			Text: pre,
		})
	}

	for i, m := range matches {
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		clauses = append(clauses, &domain.Clause{
			ID:     uuid.NewString(),
			Number: strings.TrimSpace(text[m[2]:m[3]]),
			Title:  strings.TrimSpace(text[m[4]:m[5]]),
			Text:   strings.TrimSpace(text[bodyStart:bodyEnd]),
		})
	}

	return clauses
}
