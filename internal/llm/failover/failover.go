// Package failover dispatches a prompt across the provider registry, one
// attempt per provider, starting at a caller-supplied index.
package failover

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
)

// Sentinel is returned by Dispatch when every provider failed.
const Sentinel = "Error: All AI providers failed. Please check your API keys and network connection."

// errorMarker in a provider's text means the provider reported failure in-band.
const errorMarker = "Error:"

// ErrExhausted is set on Result.Err when no provider produced acceptable text.
var ErrExhausted = errors.New("all providers failed")

// Attempt records one provider call.
type Attempt struct {
	Provider string
	Err      error
	Duration time.Duration
}

// Result is the outcome of a dispatch. Exactly one of Text or Err is set.
type Result struct {
	Text     string
	Provider string
	Attempts []Attempt
	Err      error
}

// OK reports whether a provider produced accepted text.
func (r Result) OK() bool { return r.Err == nil }

// Orchestrator holds the registry. It keeps no per-call state, so the
// rotating start index belongs to the caller (the session).
type Orchestrator struct {
	providers []llm.Provider
}

// New returns an orchestrator over providers in registry order.
func New(providers ...llm.Provider) *Orchestrator {
	return &Orchestrator{providers: append([]llm.Provider(nil), providers...)}
}

// Len returns the registry size.
func (o *Orchestrator) Len() int { return len(o.providers) }

// Order returns the registry rotated so that start (mod n) is first.
// Negative indexes wrap.
func (o *Orchestrator) Order(start int) []llm.Provider {
	n := len(o.providers)
	if n == 0 {
		return nil
	}
	start = ((start % n) + n) % n
	out := make([]llm.Provider, 0, n)
	out = append(out, o.providers[start:]...)
	out = append(out, o.providers[:start]...)
	return out
}

// Run tries each provider once in rotated order and stops at the first
// accepted response. Text containing "Error:" counts as a failure.
func (o *Orchestrator) Run(ctx context.Context, prompt string, jsonMode bool, start int) Result {
	var res Result
	for _, p := range o.Order(start) {
		if err := ctx.Err(); err != nil {
			res.Attempts = append(res.Attempts, Attempt{Provider: p.Name(), Err: err})
			break
		}

		began := time.Now()
		text, err := p.Generate(ctx, prompt, jsonMode)
		elapsed := time.Since(began)

		if err == nil && strings.Contains(text, errorMarker) {
			err = &llm.ProviderError{Provider: p.Name(), Kind: llm.KindSemantic, Err: fmt.Errorf("response reported an error: %.120s", text)}
		}
		if err == nil && strings.TrimSpace(text) == "" {
			err = llm.EmptyError(p.Name())
		}
		res.Attempts = append(res.Attempts, Attempt{Provider: p.Name(), Err: err, Duration: elapsed})

		if err != nil {
			outcome := "error"
			var pe *llm.ProviderError
			if errors.As(err, &pe) && pe.Kind == llm.KindSemantic {
				outcome = "rejected"
			}
			metrics.ObserveProviderAttempt(p.Name(), outcome, elapsed)
			telemetry.Warn("llm.provider.failed", map[string]any{
				"provider":    p.Name(),
				"err":         err,
				"duration_ms": elapsed.Milliseconds(),
				"json_mode":   jsonMode,
			})
			continue
		}

		metrics.ObserveProviderAttempt(p.Name(), "ok", elapsed)
		telemetry.Info("llm.provider.attempt", map[string]any{
			"provider":    p.Name(),
			"duration_ms": elapsed.Milliseconds(),
			"json_mode":   jsonMode,
			"attempt":     len(res.Attempts),
		})
		res.Text = text
		res.Provider = p.Name()
		return res
	}

	metrics.IncProvidersExhausted()
	telemetry.Error("llm.providers.exhausted", map[string]any{"attempts": len(res.Attempts)})
	res.Err = ErrExhausted
	return res
}

// Dispatch returns the accepted text or Sentinel.
func (o *Orchestrator) Dispatch(ctx context.Context, prompt string, jsonMode bool, start int) string {
	res := o.Run(ctx, prompt, jsonMode, start)
	if !res.OK() {
		return Sentinel
	}
	return res.Text
}

// IsSentinel reports whether s is a failure string from Dispatch.
func IsSentinel(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), errorMarker)
}
