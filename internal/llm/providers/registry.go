package providers

import (
	"strings"
	"time"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/telemetry"
)

// Default builds the provider registry in failover order: Groq, Google
// Gemini, Hugging Face, Fireworks.ai, Cohere. Providers without a key are
// still registered so the attempt order stays the same for every session.
// Claude and Zhipu are appended only when their keys are configured.
func Default(keys config.ProviderKeys, timeout time.Duration) []llm.Provider {
	registry := []llm.Provider{
		NewGroq(keys.GroqKey, keys.GroqModel, timeout),
		NewGemini(keys.GeminiKey, keys.GeminiModel, timeout),
		NewHuggingFace("", keys.HuggingFaceKey, keys.HuggingFaceModel, timeout),
		NewFireworks(keys.FireworksKey, keys.FireworksModel, timeout),
		NewCohere("", keys.CohereKey, keys.CohereModel, timeout),
	}
	if strings.TrimSpace(keys.AnthropicKey) != "" {
		registry = append(registry, NewClaude(keys.AnthropicKey, keys.AnthropicModel, timeout))
	}
	if strings.TrimSpace(keys.ZhipuKey) != "" {
		registry = append(registry, NewZhipu(keys.ZhipuKey, keys.ZhipuModel, timeout))
	}

	names := make([]string, 0, len(registry))
	for _, p := range registry {
		names = append(names, p.Name())
	}
	telemetry.Info("llm.registry", map[string]any{
		"providers":  names,
		"configured": configuredCount(keys),
	})
	return registry
}

func configuredCount(keys config.ProviderKeys) int {
	n := 0
	for _, k := range []string{keys.GroqKey, keys.GeminiKey, keys.HuggingFaceKey, keys.FireworksKey, keys.CohereKey, keys.AnthropicKey, keys.ZhipuKey} {
		if strings.TrimSpace(k) != "" {
			n++
		}
	}
	return n
}
