package services

import (
	"testing"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

func refClauses() []*domain.Clause {
	return []*domain.Clause{
		{ID: "c-pre", Number: "", Title: "", Text: "preamble"},
		{ID: "c-1", Number: "1", Title: "Definitions", Text: "..."},
		{ID: "c-2", Number: "2", Title: "Term", Text: "..."},
		{ID: "c-10", Number: "10", Title: "Limitation of Liability", Text: "..."},
		{ID: "c-10-2", Number: "10.2", Title: "Liability Cap", Text: "..."},
	}
}

func TestResolveClauseRefExactTitle(t *testing.T) {
	id, ok := ResolveClauseRef("  limitation of liability ", refClauses())
	if !ok || id != "c-10" {
		t.Errorf("got (%q, %v), want (c-10, true)", id, ok)
	}
}

func TestResolveClauseRefExactNumber(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"Clause 10.2", "c-10-2"},
		{"Clause 1", "c-1"},
		{"see clause 2 above", "c-2"},
	}
	for _, tt := range tests {
		id, ok := ResolveClauseRef(tt.ref, refClauses())
		if !ok || id != tt.want {
			t.Errorf("ResolveClauseRef(%q) = (%q, %v), want (%q, true)", tt.ref, id, ok, tt.want)
		}
	}
}

func TestResolveClauseRefNumberIsWholeToken(t *testing.T) {
	// "1" must not match clause "10" or "1.2"; only clause "1".
	clauses := []*domain.Clause{
		{ID: "c-10", Number: "10", Title: ""},
		{ID: "c-1-2", Number: "1.2", Title: ""},
	}
	if id, ok := ResolveClauseRef("Clause 1", clauses); ok {
		t.Errorf("ref 1 should not match clauses 10 or 1.2, got %q", id)
	}

	clauses = append(clauses, &domain.Clause{ID: "c-1", Number: "1", Title: ""})
	id, ok := ResolveClauseRef("Clause 1", clauses)
	if !ok || id != "c-1" {
		t.Errorf("got (%q, %v), want (c-1, true)", id, ok)
	}
}

func TestResolveClauseRefSubstringFallback(t *testing.T) {
	// No exact title, no number token in the ref; the longer reference
	// contains the clause title.
	id, ok := ResolveClauseRef("the liability cap provisions", refClauses())
	if !ok || id != "c-10-2" {
		t.Errorf("got (%q, %v), want (c-10-2, true)", id, ok)
	}
}

func TestResolveClauseRefTierOrder(t *testing.T) {
	// An exact title wins even when an earlier clause would match by
	// number or substring.
	clauses := []*domain.Clause{
		{ID: "c-a", Number: "5", Title: "Termination for Convenience"},
		{ID: "c-b", Number: "9", Title: "Clause 5"},
	}
	id, ok := ResolveClauseRef("Clause 5", clauses)
	if !ok || id != "c-b" {
		t.Errorf("exact title should win over number match, got (%q, %v)", id, ok)
	}
}

func TestResolveClauseRefFirstInDocumentOrderWins(t *testing.T) {
	clauses := []*domain.Clause{
		{ID: "c-first", Number: "3", Title: "General"},
		{ID: "c-second", Number: "7", Title: "General"},
	}
	for i := 0; i < 10; i++ {
		id, ok := ResolveClauseRef("General", clauses)
		if !ok || id != "c-first" {
			t.Fatalf("tie should go to the first clause in document order, got (%q, %v)", id, ok)
		}
	}
}

func TestResolveClauseRefNoMatch(t *testing.T) {
	if id, ok := ResolveClauseRef("Schedule B", refClauses()); ok {
		t.Errorf("unexpected match %q", id)
	}
	if _, ok := ResolveClauseRef("", refClauses()); ok {
		t.Error("empty ref should not match")
	}
	if _, ok := ResolveClauseRef("Term", nil); ok {
		t.Error("empty clause list should not match")
	}
}
