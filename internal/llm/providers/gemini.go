package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"resume-tailor/internal/llm"
)

// Gemini calls Google's Gemini models through the generative-ai SDK.
type Gemini struct {
	model   string
	apiKey  string
	timeout time.Duration
	opts    []option.ClientOption
}

// NewGemini returns the Google Gemini provider. Extra client options are
// appended after the API key (tests use them to point at a fake endpoint).
func NewGemini(apiKey, model string, timeout time.Duration, opts ...option.ClientOption) *Gemini {
	return &Gemini{
		model:   model,
		apiKey:  strings.TrimSpace(apiKey),
		timeout: timeoutOrDefault(timeout),
		opts:    opts,
	}
}

func (g *Gemini) Name() string { return "Google Gemini" }

// Generate uses the native application/json response type in jsonMode.
func (g *Gemini) Generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if g.apiKey == "" {
		return "", missingKey(g.Name())
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", llm.NewError(g.Name(), fmt.Errorf("create client: %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(llm.TruncatePrompt(prompt)))
	if err != nil {
		return "", llm.NewError(g.Name(), err)
	}
	text := geminiText(resp)
	if text == "" {
		return "", llm.EmptyError(g.Name())
	}
	return text, nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

var _ llm.Provider = (*Gemini)(nil)
