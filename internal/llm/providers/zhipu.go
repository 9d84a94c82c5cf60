package providers

import (
	"context"
	"strings"
	"time"

	"github.com/yankeguo/zhipu"

	"resume-tailor/internal/llm"
)

// Zhipu calls the GLM chat completion API.
type Zhipu struct {
	model   string
	timeout time.Duration
	client  *zhipu.Client
	initErr error
}

// NewZhipu returns the Zhipu GLM provider. Keys have the "id.secret" form;
// extra client options follow the key.
func NewZhipu(apiKey, model string, timeout time.Duration, opts ...zhipu.ClientOption) *Zhipu {
	z := &Zhipu{model: model, timeout: timeoutOrDefault(timeout)}
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return z
	}
	client, err := zhipu.NewClient(append([]zhipu.ClientOption{zhipu.WithAPIKey(key)}, opts...)...)
	if err != nil {
		z.initErr = err
		return z
	}
	z.client = client
	return z
}

func (z *Zhipu) Name() string { return "Zhipu GLM" }

func (z *Zhipu) Generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if z.initErr != nil {
		return "", llm.NewError(z.Name(), z.initErr)
	}
	if z.client == nil {
		return "", missingKey(z.Name())
	}
	ctx, cancel := context.WithTimeout(ctx, z.timeout)
	defer cancel()

	resp, err := z.client.ChatCompletion(z.model).
		AddMessage(zhipu.ChatCompletionMessage{
			Role:    zhipu.RoleUser,
			Content: llm.WithJSONInstruction(llm.TruncatePrompt(prompt), jsonMode),
		}).
		Do(ctx)
	if err != nil {
		return "", llm.NewError(z.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.EmptyError(z.Name())
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", llm.EmptyError(z.Name())
	}
	return text, nil
}

var _ llm.Provider = (*Zhipu)(nil)
