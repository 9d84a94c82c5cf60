package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"resume-tailor/internal/llm"
)

const CohereBaseURL = "https://api.cohere.ai/v1"

// Cohere calls the Cohere chat endpoint.
type Cohere struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type cohereRequest struct {
	Message        string          `json:"message"`
	Model          string          `json:"model"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type cohereResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// NewCohere returns the Cohere provider. baseURL may be empty.
func NewCohere(baseURL, apiKey, model string, timeout time.Duration) *Cohere {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = CohereBaseURL
	}
	return &Cohere{
		baseURL:    trimBaseURL(baseURL),
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		httpClient: &http.Client{Timeout: timeoutOrDefault(timeout)},
	}
}

func (c *Cohere) Name() string { return "Cohere" }

func (c *Cohere) Generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if c.apiKey == "" {
		return "", missingKey(c.Name())
	}
	body := cohereRequest{
		Message: llm.TruncatePrompt(prompt),
		Model:   c.model,
	}
	if jsonMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var out cohereResponse
	if err := postJSON(ctx, c.httpClient, c.Name(), c.baseURL+"/chat", c.apiKey, body, &out); err != nil {
		return "", err
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", llm.EmptyError(c.Name())
	}
	return text, nil
}

var _ llm.Provider = (*Cohere)(nil)
