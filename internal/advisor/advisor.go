// Package advisor turns user tax questions and documents into structured
// answers by prompting an AI provider and validating its output.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/taxsaathi/taxsaathi/internal/llm"
	"github.com/taxsaathi/taxsaathi/internal/taxinfo"
)

// Confidence grades how certain the model is about an answer.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// StructuredAnswer is the validated response to a tax question. Anything the
// model returns that does not fit this shape is rejected at this boundary.
type StructuredAnswer struct {
	Answer           string     `json:"answer"`
	Confidence       Confidence `json:"confidence"`
	RelevantSections []string   `json:"relevant_sections"`
	OfficialLinks    []string   `json:"official_links"`
	Disclaimer       string     `json:"disclaimer"`
}

// DocumentAnalysis is the response to a document upload.
type DocumentAnalysis struct {
	Analysis string
	Filename string
}

// Advisor prompts the AI provider with Indian tax context.
type Advisor struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Advisor {
	return &Advisor{provider: provider}
}

// answerSchema is the JSON Schema sent to providers that support structured
// output. Property names must match StructuredAnswer's json tags.
var answerSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"answer":     map[string]interface{}{"type": "string"},
		"confidence": map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
		"relevant_sections": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"official_links": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"disclaimer": map[string]interface{}{"type": "string"},
	},
	"required": []string{"answer", "confidence"},
}

// AskTaxQuestion answers a free-text tax question.
func (a *Advisor) AskTaxQuestion(ctx context.Context, query string) (*StructuredAnswer, error) {
	resp, err := a.provider.Generate(ctx, llm.Request{
		System:         querySystemPrompt(),
		User:           queryUserPrompt(query),
		ResponseSchema: answerSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("tax query failed: %w", err)
	}

	answer, err := parseAnswer(resp.Content)
	if err != nil {
		return nil, err
	}

	slog.Info("processed tax query",
		"model", a.provider.ModelName(),
		"tokens", resp.Usage.TotalTokens,
		"confidence", answer.Confidence,
	)
	return answer, nil
}

// AnalyzeDocument analyzes extracted document text. The analysis is freeform
// prose rather than a structured answer.
func (a *Advisor) AnalyzeDocument(ctx context.Context, text, filename string) (*DocumentAnalysis, error) {
	resp, err := a.provider.Generate(ctx, llm.Request{
		System: documentSystemPrompt,
		User:   documentUserPrompt(text, filename),
	})
	if err != nil {
		return nil, fmt.Errorf("document analysis failed: %w", err)
	}

	slog.Info("analyzed document",
		"model", a.provider.ModelName(),
		"filename", filename,
		"tokens", resp.Usage.TotalTokens,
	)
	return &DocumentAnalysis{
		Analysis: resp.Content,
		Filename: filename,
	}, nil
}

// parseAnswer decodes and validates the model's JSON output.
func parseAnswer(content string) (*StructuredAnswer, error) {
	content = stripCodeFence(content)

	var answer StructuredAnswer
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return nil, fmt.Errorf("malformed AI response: %w", err)
	}

	switch Confidence(strings.ToLower(string(answer.Confidence))) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		answer.Confidence = Confidence(strings.ToLower(string(answer.Confidence)))
	case "":
		answer.Confidence = ConfidenceLow
	default:
		return nil, fmt.Errorf("malformed AI response: unknown confidence %q", answer.Confidence)
	}

	return &answer, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models put around
// structured output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func querySystemPrompt() string {
	return fmt.Sprintf(`You are an expert Indian tax advisor with comprehensive knowledge of:

1. Income Tax Act, 1961 and all amendments
2. Current tax slabs and rates for FY %s
3. Deductions under Chapter VI-A (80C, 80D, 80E, etc.)
4. TDS provisions and rates
5. ITR forms and filing requirements
6. GST basics and compliance
7. Capital gains taxation
8. Tax planning strategies

IMPORTANT GUIDELINES:
- Provide accurate information based on current Indian tax laws
- Always include relevant section numbers from the Income Tax Act
- Provide practical examples when helpful
- Include official government links when applicable
- Add appropriate disclaimers about consulting tax professionals
- Use clear, simple language accessible to common taxpayers

CONTEXT:
%s

%s

Always respond in JSON with this structure:
- answer: detailed response to the query
- confidence: one of "low", "medium", "high"
- relevant_sections: list of relevant IT Act sections
- official_links: list of official government resource links
- disclaimer: appropriate disclaimer text`,
		taxinfo.FinancialYear, taxinfo.CurrentContext(), referenceTables())
}

// referenceTables renders the deduction and ITR form guides as prompt text.
func referenceTables() string {
	var b strings.Builder

	b.WriteString("DEDUCTION REFERENCE:\n")
	for _, d := range taxinfo.Deductions() {
		fmt.Fprintf(&b, "- Section %s (limit %s): %s\n", d.Section, d.Limit, d.Description)
	}

	b.WriteString("\nITR FORM GUIDE:\n")
	forms := taxinfo.ITRForms()
	names := make([]string, 0, len(forms))
	for name := range forms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, forms[name])
	}

	return strings.TrimSpace(b.String())
}

func queryUserPrompt(query string) string {
	return fmt.Sprintf(`Tax Query: %s

Please provide a comprehensive answer addressing:
1. Direct answer to the question
2. Relevant tax provisions and section numbers
3. Practical implications or examples
4. Current rates/limits if applicable
5. Filing requirements if relevant
6. Official resources for more information

Focus on accuracy and practical applicability for Indian taxpayers.`, query)
}

const documentSystemPrompt = `You are an expert Indian tax document analyzer. Your task is to:

1. Identify the type of tax document (Form 16, ITR, TDS certificate, etc.)
2. Extract key financial information (income, tax paid, deductions, etc.)
3. Identify important dates (due dates, assessment year, etc.)
4. Highlight potential issues or discrepancies
5. Provide actionable recommendations
6. Reference relevant tax sections or forms

Provide clear, structured analysis that helps taxpayers understand their documents.
Focus on accuracy and practical insights.`

func documentUserPrompt(text, filename string) string {
	return fmt.Sprintf(`Analyze this tax document: %s

Document content:
%s

Please provide:
1. Document type identification
2. Key tax information extracted
3. Important dates and deadlines
4. Potential issues or recommendations
5. Relevant tax sections or forms`, filename, text)
}
