package llm

import (
	"context"
	"unicode/utf8"
)

// Provider is one hosted model endpoint. Generate returns the model's text
// or an error; it never encodes failure inside the returned text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

const (
	// MaxPromptChars caps the prompt sent to any provider.
	MaxPromptChars = 7000
	// TruncationMarker is appended to prompts cut at MaxPromptChars.
	TruncationMarker = "\n...[CONTENT TRUNCATED TO FIT LENGTH LIMIT]"

	// JSONInstruction is appended for providers without a native JSON mode.
	// It is advisory; callers still validate the output.
	JSONInstruction = "\n\nRespond with only valid JSON between ```json``` markers."

	// PlainJSONInstruction is the marker-free variant for chat models that
	// tend to wrap fenced blocks in prose.
	PlainJSONInstruction = "\n\nRespond with only valid JSON output."
)

// TruncatePrompt limits prompt to MaxPromptChars characters, appending the
// truncation marker when anything was cut.
func TruncatePrompt(prompt string) string {
	if utf8.RuneCountInString(prompt) <= MaxPromptChars {
		return prompt
	}
	runes := []rune(prompt)
	return string(runes[:MaxPromptChars]) + TruncationMarker
}

// WithJSONInstruction appends JSONInstruction when jsonMode is requested.
func WithJSONInstruction(prompt string, jsonMode bool) string {
	if !jsonMode {
		return prompt
	}
	return prompt + JSONInstruction
}
