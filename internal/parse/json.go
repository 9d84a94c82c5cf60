// Package parse turns free-form model output into résumé fields. Nothing
// here returns an error to the caller: malformed output yields an explicit
// "no result" or a deterministic fallback.
package parse

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/model"
)

//go:embed resume_schema.json
var resumeSchemaJSON []byte

var resumeSchema = mustSchema(resumeSchemaJSON)

func mustSchema(raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic("parse: invalid embedded schema: " + err.Error())
	}
	return s
}

// ExtractJSONObject returns the substring from the first "{" to the last "}"
// inclusive. It does not check that the result is valid JSON.
func ExtractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

type flexibleText string

// UnmarshalJSON accepts either a string or a list of strings.
func (f *flexibleText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleText(strings.TrimSpace(s))
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	var parts []string
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			parts = append(parts, item)
		}
	}
	*f = flexibleText(strings.Join(parts, ", "))
	return nil
}

type resumePayload struct {
	Skills struct {
		Technical flexibleText `json:"technical"`
		Soft      flexibleText `json:"soft"`
	} `json:"skills"`
	Experience map[string]struct {
		Role    string   `json:"role"`
		Bullets []string `json:"bullets"`
	} `json:"experience"`
}

// DecodeResumeData extracts and decodes the résumé JSON object. It reports
// false when there is no object, it does not decode, or it lacks the
// top-level skills and experience keys.
func DecodeResumeData(raw string) (model.GeneratedResumeData, bool) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		fallback("resume_json", "no json object", raw)
		return model.GeneratedResumeData{}, false
	}

	result, err := resumeSchema.Validate(gojsonschema.NewStringLoader(obj))
	if err != nil {
		fallback("resume_json", err.Error(), raw)
		return model.GeneratedResumeData{}, false
	}
	if !result.Valid() {
		var reasons []string
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}
		fallback("resume_json", strings.Join(reasons, "; "), raw)
		return model.GeneratedResumeData{}, false
	}

	var payload resumePayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		fallback("resume_json", err.Error(), raw)
		return model.GeneratedResumeData{}, false
	}

	data := model.GeneratedResumeData{
		Skills: model.TailoredSkills{
			Technical: string(payload.Skills.Technical),
			Soft:      string(payload.Skills.Soft),
		},
		Experience: make(model.TailoredExperience, len(payload.Experience)),
	}
	for employer, entry := range payload.Experience {
		data.Experience[strings.TrimSpace(employer)] = model.TailoredRole{
			Role:    strings.TrimSpace(entry.Role),
			Bullets: cleanBullets(entry.Bullets),
		}
	}
	return data, true
}

func cleanBullets(in []string) []string {
	out := make([]string, 0, len(in))
	for _, b := range in {
		if b = StripBulletGlyph(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func fallback(kind, reason, raw string) {
	metrics.IncParseFallback(kind)
	telemetry.Warn("parse.fallback", map[string]any{
		"kind":   kind,
		"reason": reason,
		"raw":    raw,
	})
}
