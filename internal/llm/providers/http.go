package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-tailor/internal/llm"
)

// DefaultTimeout is the per-attempt ceiling when none is configured.
const DefaultTimeout = 180 * time.Second

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

func missingKey(name string) error {
	return &llm.ProviderError{Provider: name, Kind: llm.KindTransport, Err: llm.ErrMissingAPIKey}
}

// postJSON sends body as JSON with bearer auth and decodes a 2xx response into out.
func postJSON(ctx context.Context, client *http.Client, name, url, apiKey string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return llm.NewError(name, fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return llm.NewError(name, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return llm.NewError(name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return llm.NewError(name, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return llm.StatusError(name, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &llm.ProviderError{Provider: name, Kind: llm.KindSemantic, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func trimBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
