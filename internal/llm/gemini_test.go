package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsaathi/taxsaathi/internal/config"
)

func geminiTestConfig(host string) *config.AIConfig {
	return &config.AIConfig{
		Provider:    "gemini",
		APIKey:      "test-api-key",
		Host:        host,
		Model:       "gemini-2.5-pro",
		Temperature: 0.3,
		MaxTokens:   2048,
		Timeout:     5 * time.Second,
	}
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	cfg := geminiTestConfig("https://generativelanguage.googleapis.com")
	cfg.APIKey = ""

	_, err := NewGemini(cfg)
	assert.Error(t, err)
}

func TestGeminiBuildRequest(t *testing.T) {
	g, err := NewGemini(geminiTestConfig("https://generativelanguage.googleapis.com"))
	require.NoError(t, err)

	schema := map[string]interface{}{"type": "object"}
	req := g.buildRequest(Request{
		System:         "you are a tax advisor",
		User:           "what are the slabs?",
		ResponseSchema: schema,
	})

	require.Len(t, req.Contents, 1)
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Equal(t, "what are the slabs?", req.Contents[0].Parts[0].Text)
	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "you are a tax advisor", req.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
	assert.Equal(t, schema, req.GenerationConfig.ResponseSchema)
	require.NotNil(t, req.GenerationConfig.Temperature)
	assert.InDelta(t, 0.3, *req.GenerationConfig.Temperature, 0.001)
	assert.EqualValues(t, 2048, req.GenerationConfig.MaxOutputTokens)
}

func TestGeminiBuildRequestOmitsZeroTemperature(t *testing.T) {
	cfg := geminiTestConfig("https://generativelanguage.googleapis.com")
	cfg.Temperature = 0

	g, err := NewGemini(cfg)
	require.NoError(t, err)

	req := g.buildRequest(Request{User: "hello"})
	assert.Nil(t, req.GenerationConfig.Temperature)
	assert.Nil(t, req.SystemInstruction)
	assert.Empty(t, req.GenerationConfig.ResponseMimeType)
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-pro")
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "question", req.Contents[0].Parts[0].Text)

		resp := geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{
					Role:  "model",
					Parts: []geminiPart{{Text: "part one "}, {Text: "part two"}},
				},
				FinishReason: "STOP",
			}},
			UsageMetadata: &geminiUsageMetadata{
				PromptTokenCount:     12,
				CandidatesTokenCount: 34,
				TotalTokenCount:      46,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g, err := NewGemini(geminiTestConfig(srv.URL))
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), Request{User: "question"})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", out.Content)
	assert.EqualValues(t, 46, out.Usage.TotalTokens)
}

func TestGeminiGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(geminiResponse{
			Error: &geminiError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"},
		})
	}))
	defer srv.Close()

	g, err := NewGemini(geminiTestConfig(srv.URL))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{User: "question"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestParseGeminiResponseNoCandidates(t *testing.T) {
	_, err := parseGeminiResponse(&geminiResponse{})
	assert.Error(t, err)
}

func TestParseGeminiResponseEmptyText(t *testing.T) {
	_, err := parseGeminiResponse(&geminiResponse{
		Candidates: []geminiCandidate{{Content: geminiContent{Role: "model"}}},
	})
	assert.Error(t, err)
}
