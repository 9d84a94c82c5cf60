package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"resume-tailor/internal/llm"
)

const claudeMaxTokens = 2048

// Claude calls Anthropic's Messages API.
type Claude struct {
	model   string
	timeout time.Duration
	client  *anthropic.Client
}

// NewClaude returns the Anthropic provider. Extra request options follow the API key.
func NewClaude(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *Claude {
	c := &Claude{model: model, timeout: timeoutOrDefault(timeout)}
	if key := strings.TrimSpace(apiKey); key != "" {
		all := append([]option.RequestOption{option.WithAPIKey(key), option.WithMaxRetries(0)}, opts...)
		client := anthropic.NewClient(all...)
		c.client = &client
	}
	return c
}

func (c *Claude) Name() string { return "Anthropic Claude" }

func (c *Claude) Generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if c.client == nil {
		return "", missingKey(c.Name())
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text := llm.TruncatePrompt(prompt)
	if jsonMode {
		text += llm.PlainJSONInstruction
	}
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: claudeMaxTokens,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: text},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", llm.StatusError(c.Name(), apiErr.StatusCode, apiErr.Error())
		}
		return "", llm.NewError(c.Name(), err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.AsText().Text)
		}
	}
	out := strings.TrimSpace(strings.Join(parts, ""))
	if out == "" {
		return "", llm.EmptyError(c.Name())
	}
	return out, nil
}

var _ llm.Provider = (*Claude)(nil)
