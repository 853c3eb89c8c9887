package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsaathi/taxsaathi/internal/llm"
)

// stubProvider returns a canned completion.
type stubProvider struct {
	content string
	err     error
	lastReq llm.Request
}

func (s *stubProvider) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

func (s *stubProvider) ModelName() string { return "stub-model" }

func TestAskTaxQuestion(t *testing.T) {
	stub := &stubProvider{content: `{
		"answer": "The 80C limit is ₹1,50,000.",
		"confidence": "high",
		"relevant_sections": ["Section 80C"],
		"official_links": ["https://www.incometax.gov.in/"],
		"disclaimer": "Consult a CA."
	}`}
	a := New(stub)

	answer, err := a.AskTaxQuestion(context.Background(), "what is the 80C limit?")
	require.NoError(t, err)
	assert.Equal(t, "The 80C limit is ₹1,50,000.", answer.Answer)
	assert.Equal(t, ConfidenceHigh, answer.Confidence)
	assert.Equal(t, []string{"Section 80C"}, answer.RelevantSections)
	assert.Equal(t, []string{"https://www.incometax.gov.in/"}, answer.OfficialLinks)

	assert.NotNil(t, stub.lastReq.ResponseSchema, "tax queries should request structured output")
	assert.Contains(t, stub.lastReq.System, "Income Tax Act, 1961")
	assert.Contains(t, stub.lastReq.System, "ITR FORM GUIDE")
	assert.Contains(t, stub.lastReq.User, "what is the 80C limit?")
}

func TestAskTaxQuestionProviderFailure(t *testing.T) {
	a := New(&stubProvider{err: errors.New("connection refused")})

	_, err := a.AskTaxQuestion(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAskTaxQuestionMalformedJSON(t *testing.T) {
	a := New(&stubProvider{content: "the slabs are 5%, 10%..."})

	_, err := a.AskTaxQuestion(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed AI response")
}

func TestAskTaxQuestionUnknownConfidence(t *testing.T) {
	a := New(&stubProvider{content: `{"answer": "x", "confidence": "very sure"}`})

	_, err := a.AskTaxQuestion(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown confidence")
}

func TestAnalyzeDocument(t *testing.T) {
	stub := &stubProvider{content: "This is a Form 16 for AY 2025-26."}
	a := New(stub)

	analysis, err := a.AnalyzeDocument(context.Background(), "--- Page 1 ---\nGross salary ₹12,00,000", "form16.pdf")
	require.NoError(t, err)
	assert.Equal(t, "This is a Form 16 for AY 2025-26.", analysis.Analysis)
	assert.Equal(t, "form16.pdf", analysis.Filename)

	assert.Nil(t, stub.lastReq.ResponseSchema, "document analysis is freeform")
	assert.Contains(t, stub.lastReq.User, "form16.pdf")
	assert.Contains(t, stub.lastReq.User, "Gross salary")
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Confidence
		wantErr bool
	}{
		{name: "plain json", content: `{"answer":"a","confidence":"medium"}`, want: ConfidenceMedium},
		{name: "fenced json", content: "```json\n{\"answer\":\"a\",\"confidence\":\"high\"}\n```", want: ConfidenceHigh},
		{name: "uppercase confidence", content: `{"answer":"a","confidence":"LOW"}`, want: ConfidenceLow},
		{name: "missing confidence defaults low", content: `{"answer":"a"}`, want: ConfidenceLow},
		{name: "empty answer allowed", content: `{"answer":"","confidence":"low"}`, want: ConfidenceLow},
		{name: "not json", content: "nope", wantErr: true},
		{name: "bad confidence", content: `{"answer":"a","confidence":"certain"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := parseAnswer(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, answer.Confidence)
		})
	}
}
