package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"resume-tailor/internal/llm"
)

const HuggingFaceBaseURL = "https://api-inference.huggingface.co/models"

// HuggingFace calls the hosted inference API for a text-generation model.
type HuggingFace struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFace returns the Hugging Face provider for model (e.g.
// "mistralai/Mistral-7B-Instruct-v0.2"). baseURL may be empty.
func NewHuggingFace(baseURL, apiKey, model string, timeout time.Duration) *HuggingFace {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = HuggingFaceBaseURL
	}
	return &HuggingFace{
		url:        trimBaseURL(baseURL) + "/" + strings.TrimLeft(model, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeoutOrDefault(timeout)},
	}
}

func (h *HuggingFace) Name() string { return "Hugging Face" }

// Generate posts the prompt as inputs. The API echoes the prompt at the
// start of generated_text, which is removed.
func (h *HuggingFace) Generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if h.apiKey == "" {
		return "", missingKey(h.Name())
	}
	full := llm.WithJSONInstruction(llm.TruncatePrompt(prompt), jsonMode)

	var out []hfGeneration
	err := postJSON(ctx, h.httpClient, h.Name(), h.url, h.apiKey, hfRequest{
		Inputs:     full,
		Parameters: hfParameters{MaxNewTokens: 1024},
	}, &out)
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", &llm.ProviderError{Provider: h.Name(), Kind: llm.KindSemantic, Err: errors.New("no generations returned")}
	}
	text := strings.TrimSpace(strings.TrimPrefix(out[0].GeneratedText, full))
	if text == "" {
		return "", llm.EmptyError(h.Name())
	}
	return text, nil
}

var _ llm.Provider = (*HuggingFace)(nil)
