package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrProviderFailed matches every ProviderError via errors.Is.
var ErrProviderFailed = errors.New("provider failed")

// ErrMissingAPIKey is wrapped by providers registered without credentials.
var ErrMissingAPIKey = errors.New("api key not configured")

// Kind classifies a provider failure.
type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindTimeout   Kind = "timeout"
	KindEmpty     Kind = "empty"
	KindSemantic  Kind = "semantic"
)

// ProviderError reports why a single provider attempt failed.
type ProviderError struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (http status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderFailed }

// NewError wraps err for provider, inferring the kind from the error chain.
func NewError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Provider: provider, Kind: classify(err), Err: err}
}

// StatusError builds a ProviderError for a non-2xx HTTP response.
func StatusError(provider string, status int, body string) *ProviderError {
	body = strings.TrimSpace(body)
	if len(body) > 300 {
		body = body[:300]
	}
	return &ProviderError{Provider: provider, Kind: KindStatus, Status: status, Err: errors.New(body)}
}

// EmptyError reports a well-formed response that carried no text.
func EmptyError(provider string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindEmpty, Err: errors.New("empty response")}
}

func classify(err error) Kind {
	if err == nil {
		return KindTransport
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return KindTimeout
	}
	if strings.Contains(msg, "status code") || strings.Contains(msg, "http status") {
		return KindStatus
	}
	return KindTransport
}
