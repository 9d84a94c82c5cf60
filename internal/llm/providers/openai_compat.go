package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"resume-tailor/internal/llm"
)

const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	FireworksBaseURL = "https://api.fireworks.ai/inference/v1"
)

// OpenAICompatible talks to any chat-completions endpoint that speaks the
// OpenAI wire format (Groq, Fireworks.ai).
type OpenAICompatible struct {
	name    string
	model   string
	apiKey  string
	timeout time.Duration
	client  *openai.Client
}

// NewOpenAICompatible builds a provider against baseURL. An empty apiKey
// yields a provider that always fails with llm.ErrMissingAPIKey.
func NewOpenAICompatible(name, baseURL, apiKey, model string, timeout time.Duration) *OpenAICompatible {
	p := &OpenAICompatible{
		name:    name,
		model:   model,
		apiKey:  strings.TrimSpace(apiKey),
		timeout: timeoutOrDefault(timeout),
	}
	if p.apiKey != "" {
		p.client = openai.NewClient(
			option.WithBaseURL(trimBaseURL(baseURL)+"/"),
			option.WithAPIKey(p.apiKey),
			option.WithMaxRetries(0),
		)
	}
	return p
}

// NewGroq returns the Groq provider.
func NewGroq(apiKey, model string, timeout time.Duration) *OpenAICompatible {
	return NewOpenAICompatible("Groq", GroqBaseURL, apiKey, model, timeout)
}

// NewFireworks returns the Fireworks.ai provider.
func NewFireworks(apiKey, model string, timeout time.Duration) *OpenAICompatible {
	return NewOpenAICompatible("Fireworks.ai", FireworksBaseURL, apiKey, model, timeout)
}

func (p *OpenAICompatible) Name() string { return p.name }

// Generate sends a single user message. jsonMode maps to the native
// response_format json_object.
func (p *OpenAICompatible) Generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if p.client == nil {
		return "", missingKey(p.name)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(llm.TruncatePrompt(prompt)),
		}),
		Model: openai.F(openai.ChatModel(p.model)),
	}
	if jsonMode {
		params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			},
		)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", llm.StatusError(p.name, apiErr.StatusCode, apiErr.Message)
		}
		return "", llm.NewError(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.EmptyError(p.name)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", llm.EmptyError(p.name)
	}
	return text, nil
}

var _ llm.Provider = (*OpenAICompatible)(nil)
