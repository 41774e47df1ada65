package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// AnalysisKind identifies one of the independent analyses run per document.
type AnalysisKind string

const (
	KindExtraction   AnalysisKind = "extraction"
	KindJurisdiction AnalysisKind = "jurisdiction"
	KindRisk         AnalysisKind = "risk"
)

// AllKinds lists the analysis kinds in execution order.
func AllKinds() []AnalysisKind {
	return []AnalysisKind{KindExtraction, KindJurisdiction, KindRisk}
}

// Valid reports whether k is a known analysis kind.
func (k AnalysisKind) Valid() bool {
	switch k {
	case KindExtraction, KindJurisdiction, KindRisk:
		return true
	}
	return false
}

// MinTextLen is the minimum document text length required before the kind
// is worth sending upstream. Shorter text is a per-kind soft failure.
func (k AnalysisKind) MinTextLen() int {
	switch k {
	case KindExtraction:
		return 50
	case KindJurisdiction, KindRisk:
		return 100
	}
	return 0
}

// Level grades both risk severity and analysis confidence.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel normalizes a freeform level string. Unknown values are
// rejected rather than guessed at.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow, true
	case LevelMedium:
		return LevelMedium, true
	case LevelHigh:
		return LevelHigh, true
	}
	return "", false
}

// EntityType classifies entities found by the extraction analysis.
type EntityType string

const (
	EntityParty         EntityType = "party"
	EntityDate          EntityType = "date"
	EntityFinancialTerm EntityType = "financial_term"
	EntityGoverningLaw  EntityType = "governing_law"
	EntityObligation    EntityType = "obligation"
)

// ParseEntityType normalizes a freeform entity type string.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityParty:
		return EntityParty, true
	case EntityDate:
		return EntityDate, true
	case EntityFinancialTerm:
		return EntityFinancialTerm, true
	case EntityGoverningLaw:
		return EntityGoverningLaw, true
	case EntityObligation:
		return EntityObligation, true
	}
	return "", false
}

// RiskType classifies risks found by the risk analysis.
type RiskType string

const (
	RiskTerminationRights    RiskType = "termination_rights"
	RiskIndemnity            RiskType = "indemnity"
	RiskPenalty              RiskType = "penalty"
	RiskLiabilityCap         RiskType = "liability_cap"
	RiskPaymentTerms         RiskType = "payment_terms"
	RiskIntellectualProperty RiskType = "intellectual_property"
	RiskConfidentiality      RiskType = "confidentiality"
	RiskWarranty             RiskType = "warranty"
	RiskForceMajeure         RiskType = "force_majeure"
	RiskDisputeResolution    RiskType = "dispute_resolution"
)

var riskTypes = map[RiskType]bool{
	RiskTerminationRights:    true,
	RiskIndemnity:            true,
	RiskPenalty:              true,
	RiskLiabilityCap:         true,
	RiskPaymentTerms:         true,
	RiskIntellectualProperty: true,
	RiskConfidentiality:      true,
	RiskWarranty:             true,
	RiskForceMajeure:         true,
	RiskDisputeResolution:    true,
}

// ParseRiskType normalizes a freeform risk type string.
func ParseRiskType(s string) (RiskType, bool) {
	t := RiskType(strings.ToLower(strings.TrimSpace(s)))
	if riskTypes[t] {
		return t, true
	}
	return "", false
}

// AnalysisResult is the stored payload of one analysis kind for one
// document. At most one current result exists per (DocumentID, Kind);
// the first committer wins and later writers read back the winner.
type AnalysisResult struct {
	DocumentID string          `json:"document_id"`
	Kind       AnalysisKind    `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Finding is a single row-level output of an analysis: an extracted
// entity or a detected risk. ClauseID is a weak reference resolved from
// ClauseRef; it stays nil when no clause matches and is nulled if the
// clause is ever deleted.
type Finding struct {
	ID             string       `json:"id"`
	DocumentID     string       `json:"document_id"`
	Kind           AnalysisKind `json:"kind"`
	Category       string       `json:"category"`
	Level          Level        `json:"level"`
	Description    string       `json:"description"`
	Detail         string       `json:"detail,omitempty"`
	Recommendation string       `json:"recommendation,omitempty"`
	ClauseRef      string       `json:"clause_ref,omitempty"`
	ClauseID       *string      `json:"clause_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Entity is one extracted entity as returned by the extraction analysis.
type Entity struct {
	Type       EntityType `json:"entity_type"`
	Value      string     `json:"value"`
	Context    string     `json:"context,omitempty"`
	Confidence Level      `json:"confidence"`
}

// Risk is one detected risk as returned by the risk analysis.
type Risk struct {
	Type           RiskType `json:"risk_type"`
	Level          Level    `json:"risk_level"`
	ClauseRef      string   `json:"clause_reference,omitempty"`
	Description    string   `json:"description"`
	Justification  string   `json:"justification"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// JurisdictionAnalysis is the structured output of the jurisdiction
// analysis. Jurisdiction keeps the human-readable value; Code is the
// canonical form from NormalizeJurisdiction.
type JurisdictionAnalysis struct {
	Jurisdiction    string   `json:"jurisdiction_confirmed"`
	Code            string   `json:"jurisdiction_code"`
	Confidence      Level    `json:"confidence"`
	Assessment      string   `json:"enforceability_assessment"`
	Statutes        []string `json:"applicable_statutes,omitempty"`
	Principles      []string `json:"legal_principles,omitempty"`
	Considerations  []string `json:"key_considerations,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

var jurisdictionCodes = map[string]string{
	"england and wales": "UK_EW",
	"uk":                "UK_EW",
	"united kingdom":    "UK_EW",
	"england":           "UK_EW",
	"wales":             "UK_EW",
	"scotland":          "UK_SC",
	"northern ireland":  "UK_NI",
	"unknown":           "UNKNOWN",
}

// NormalizeJurisdiction maps a freeform jurisdiction string to its
// canonical code. Unmapped values pass through unchanged so nothing is
// lost; empty input normalizes to UNKNOWN.
func NormalizeJurisdiction(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "UNKNOWN"
	}
	if code, ok := jurisdictionCodes[strings.ToLower(s)]; ok {
		return code
	}
	return s
}
