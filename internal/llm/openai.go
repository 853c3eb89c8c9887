package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/taxsaathi/taxsaathi/internal/config"
)

// OpenAI is a client for OpenAI-compatible chat completion endpoints, used
// when AI_PROVIDER=openai.
type OpenAI struct {
	client *openai.Client
	cfg    *config.AIConfig
}

// NewOpenAI creates an OpenAI provider from configuration.
func NewOpenAI(cfg *config.AIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.OpenAIEndpoint),
		option.WithRequestTimeout(cfg.Timeout),
	)

	return &OpenAI{
		client: client,
		cfg:    cfg,
	}, nil
}

func (o *OpenAI) ModelName() string {
	return o.cfg.OpenAIModel
}

// Generate sends the prompts as a chat completion. Structured output is
// requested through the system prompt; chat completion endpoints do not take
// a response schema the way Gemini does.
func (o *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	system := req.System
	if req.ResponseSchema != nil {
		system += "\n\nRespond with a single JSON object only, no surrounding text."
	}

	resp, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: openai.F(o.cfg.OpenAIModel),
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(req.User),
			}),
			Temperature: openai.F(o.cfg.Temperature),
			MaxTokens:   openai.F(o.cfg.MaxTokens),
		},
	)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI API")
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
