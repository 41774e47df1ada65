package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
)

// Ensure OpenAIAnalysis implements AnalysisService
var _ driven.AnalysisService = (*OpenAIAnalysis)(nil)

const (
	defaultExtractionModel   = "gpt-4o"
	defaultJurisdictionModel = "gpt-4o"
	defaultRiskModel         = "gpt-4o-mini"

	// Risk analysis caps contract text to keep the request within the
	// model's token budget.
	maxRiskContractChars = 80000

	// Jurisdiction analysis allows longer contracts and truncates harder
	// when the limit is exceeded.
	maxJurisdictionContractChars = 200000
	truncateJurisdictionChars    = 150000

	riskMaxTokens = 4096
)

// OpenAIAnalysis implements AnalysisService using OpenAI's chat
// completions API in JSON mode. Each analysis kind runs a dedicated
// system prompt; responses are validated and normalized here so the core
// only ever sees well-formed domain values.
type OpenAIAnalysis struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIAnalysis creates a new OpenAI analysis service.
// When model is empty each analysis kind uses its own default model;
// a non-empty model overrides all of them.
func NewOpenAIAnalysis(apiKey, model, baseURL string) (driven.AnalysisService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIAnalysis{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (a *OpenAIAnalysis) modelFor(fallback string) string {
	if a.model != "" {
		return a.model
	}
	return fallback
}

// Model returns the configured model name, or the extraction default.
func (a *OpenAIAnalysis) Model() string {
	return a.modelFor(defaultExtractionModel)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// complete runs one JSON-mode chat completion and returns the raw
// response content. All failures are wrapped in ErrUpstreamService.
func (a *OpenAIAnalysis) complete(ctx context.Context, req chatRequest) (string, error) {
	req.ResponseFormat = &responseFormat{Type: "json_object"}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrUpstreamService, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrUpstreamService, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", domain.ErrUpstreamService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrUpstreamService, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", domain.ErrUpstreamService, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: OpenAI API error: %s (type: %s, code: %s)",
			domain.ErrUpstreamService, chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: OpenAI API returned status %d", domain.ErrUpstreamService, resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: OpenAI response has no choices", domain.ErrUpstreamService)
	}

	return chatResp.Choices[0].Message.Content, nil
}

type extractionResponse struct {
	Entities []struct {
		EntityType string `json:"entity_type"`
		Value      string `json:"value"`
		Context    string `json:"context"`
		Confidence string `json:"confidence"`
	} `json:"entities"`
}

// RunExtraction extracts entities from the contract text.
func (a *OpenAIAnalysis) RunExtraction(ctx context.Context, text string) ([]*domain.Entity, error) {
	userPrompt := fmt.Sprintf(`Extract all entities from the following contract text:

%s

Remember to return a JSON object with an "entities" array containing all extracted entities.`, text)

	content, err := a.complete(ctx, chatRequest{
		Model: a.modelFor(defaultExtractionModel),
		Messages: []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	var resp extractionResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("%w: parse extraction response: %v", domain.ErrUpstreamService, err)
	}
	if resp.Entities == nil {
		return nil, fmt.Errorf("%w: extraction response missing entities", domain.ErrUpstreamService)
	}

	entities := make([]*domain.Entity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		entityType, ok := domain.ParseEntityType(e.EntityType)
		if !ok || e.Value == "" {
			// Skip entities the model invented outside the schema
			continue
		}

		confidence, ok := domain.ParseLevel(e.Confidence)
		if !ok {
			confidence = domain.LevelMedium
		}

		context := e.Context
		if len(context) > 500 {
			context = context[:497] + "..."
		}

		entities = append(entities, &domain.Entity{
			Type:       entityType,
			Value:      e.Value,
			Context:    context,
			Confidence: confidence,
		})
	}

	return entities, nil
}

type jurisdictionResponse struct {
	JurisdictionConfirmed    string   `json:"jurisdiction_confirmed"`
	Confidence               string   `json:"confidence"`
	ApplicableStatutes       []string `json:"applicable_statutes"`
	LegalPrinciples          []string `json:"legal_principles"`
	EnforceabilityAssessment string   `json:"enforceability_assessment"`
	KeyConsiderations        []string `json:"key_considerations"`
	Recommendations          []string `json:"recommendations"`
}

// RunJurisdictionAnalysis detects and assesses the governing jurisdiction.
func (a *OpenAIAnalysis) RunJurisdictionAnalysis(ctx context.Context, text string) (*domain.JurisdictionAnalysis, error) {
	if len(text) > maxJurisdictionContractChars {
		text = text[:truncateJurisdictionChars]
	}

	userPrompt := fmt.Sprintf(`Analyze the following contract under UK contract law:

%s

Provide a comprehensive jurisdiction analysis following the specified JSON format.`, text)

	content, err := a.complete(ctx, chatRequest{
		Model: a.modelFor(defaultJurisdictionModel),
		Messages: []chatMessage{
			{Role: "system", Content: jurisdictionSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	var resp jurisdictionResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("%w: parse jurisdiction response: %v", domain.ErrUpstreamService, err)
	}

	if resp.JurisdictionConfirmed == "" || resp.EnforceabilityAssessment == "" {
		return nil, fmt.Errorf("%w: jurisdiction response missing required fields", domain.ErrUpstreamService)
	}
	confidence, ok := domain.ParseLevel(resp.Confidence)
	if !ok {
		return nil, fmt.Errorf("%w: invalid confidence level %q", domain.ErrUpstreamService, resp.Confidence)
	}

	return &domain.JurisdictionAnalysis{
		Jurisdiction:    resp.JurisdictionConfirmed,
		Code:            domain.NormalizeJurisdiction(resp.JurisdictionConfirmed),
		Confidence:      confidence,
		Assessment:      resp.EnforceabilityAssessment,
		Statutes:        resp.ApplicableStatutes,
		Principles:      resp.LegalPrinciples,
		Considerations:  resp.KeyConsiderations,
		Recommendations: resp.Recommendations,
	}, nil
}

type riskResponse struct {
	Risks []struct {
		RiskType        string `json:"risk_type"`
		RiskLevel       string `json:"risk_level"`
		ClauseReference string `json:"clause_reference"`
		Description     string `json:"description"`
		Justification   string `json:"justification"`
		Recommendation  string `json:"recommendation"`
	} `json:"risks"`
}

// RunRiskAnalysis detects risky, unfair, or unusual clauses.
// The clause numbers and titles are passed along so the model can cite
// them precisely in clause references.
func (a *OpenAIAnalysis) RunRiskAnalysis(ctx context.Context, text string, clauses []*domain.Clause) ([]*domain.Risk, error) {
	if len(text) > maxRiskContractChars {
		text = text[:maxRiskContractChars]
	}

	var structure strings.Builder
	structure.WriteString("Contract Clause Structure:\n")
	for _, c := range clauses {
		fmt.Fprintf(&structure, "Clause %s - %s\n", c.Number, c.Title)
	}

	userPrompt := fmt.Sprintf(`Analyze the following contract for risky, unfair, or unusual clauses.

CONTRACT TEXT:
%s

%s

Provide a comprehensive risk assessment following the instructions in the system prompt.`, text, structure.String())

	content, err := a.complete(ctx, chatRequest{
		Model: a.modelFor(defaultRiskModel),
		Messages: []chatMessage{
			{Role: "system", Content: riskSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   riskMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var resp riskResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("%w: parse risk response: %v", domain.ErrUpstreamService, err)
	}
	if resp.Risks == nil {
		return nil, fmt.Errorf("%w: risk response missing risks", domain.ErrUpstreamService)
	}

	risks := make([]*domain.Risk, 0, len(resp.Risks))
	for i, r := range resp.Risks {
		riskType, ok := domain.ParseRiskType(r.RiskType)
		if !ok {
			return nil, fmt.Errorf("%w: risk %d has invalid risk_type %q", domain.ErrUpstreamService, i, r.RiskType)
		}
		level, ok := domain.ParseLevel(r.RiskLevel)
		if !ok {
			return nil, fmt.Errorf("%w: risk %d has invalid risk_level %q", domain.ErrUpstreamService, i, r.RiskLevel)
		}
		if strings.TrimSpace(r.Description) == "" || strings.TrimSpace(r.Justification) == "" {
			return nil, fmt.Errorf("%w: risk %d missing description or justification", domain.ErrUpstreamService, i)
		}

		risks = append(risks, &domain.Risk{
			Type:           riskType,
			Level:          level,
			ClauseRef:      r.ClauseReference,
			Description:    r.Description,
			Justification:  r.Justification,
			Recommendation: r.Recommendation,
		})
	}

	return risks, nil
}

// Ping verifies the provider is reachable with a minimal completion.
func (a *OpenAIAnalysis) Ping(ctx context.Context) error {
	_, err := a.complete(ctx, chatRequest{
		Model: a.modelFor(defaultRiskModel),
		Messages: []chatMessage{
			{Role: "system", Content: `Reply with the JSON object {"ok": true}.`},
			{Role: "user", Content: "health check"},
		},
		Temperature: 0,
		MaxTokens:   16,
	})
	return err
}

// Close releases resources held by the service.
func (a *OpenAIAnalysis) Close() error {
	a.client.CloseIdleConnections()
	return nil
}
