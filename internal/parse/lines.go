package parse

import (
	"strings"

	"resume-tailor/resume/model"
)

// ExperienceLineCount is title + model.BulletsPerRole bullets.
const ExperienceLineCount = 1 + model.BulletsPerRole

// SkillsPlaceholder fills both skill lists when the labels are missing.
const SkillsPlaceholder = "Could not generate skills. Please edit manually."

const (
	technicalLabel = "Technical Skills:"
	softLabel      = "Soft Skills:"
)

// NonEmptyLines splits on newlines and drops blank lines after trimming.
func NonEmptyLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// StripBulletGlyph removes one leading "•", "-" or "*" marker and surrounding space.
func StripBulletGlyph(s string) string {
	s = strings.TrimSpace(s)
	for _, glyph := range []string{"•", "-", "*"} {
		if strings.HasPrefix(s, glyph) {
			return strings.TrimSpace(strings.TrimPrefix(s, glyph))
		}
	}
	return s
}

// ParseExperienceLines expects exactly ExperienceLineCount non-empty lines:
// a role title followed by bullets. Any other count returns fallback and
// false; the raw text is logged.
func ParseExperienceLines(raw string, fallbackRole model.TailoredRole) (model.TailoredRole, bool) {
	lines := NonEmptyLines(raw)
	if len(lines) != ExperienceLineCount {
		fallback("experience_lines", "unexpected line count", raw)
		return fallbackRole, false
	}
	role := model.TailoredRole{Role: StripBulletGlyph(lines[0])}
	for _, line := range lines[1:] {
		role.Bullets = append(role.Bullets, StripBulletGlyph(line))
	}
	return role, true
}

// ParseSkills reads the "Technical Skills:" and "Soft Skills:" lines. When
// either label is missing both lists get SkillsPlaceholder.
func ParseSkills(raw string) model.TailoredSkills {
	techIdx := strings.Index(raw, technicalLabel)
	softIdx := strings.Index(raw, softLabel)
	if techIdx < 0 || softIdx < 0 {
		fallback("skills", "missing labels", raw)
		return model.TailoredSkills{Technical: SkillsPlaceholder, Soft: SkillsPlaceholder}
	}
	return model.TailoredSkills{
		Technical: labelValue(raw, techIdx+len(technicalLabel), softIdx),
		Soft:      labelValue(raw, softIdx+len(softLabel), techIdx),
	}
}

// labelValue reads from start up to the other label (if it follows) or end of line.
func labelValue(raw string, start, other int) string {
	end := len(raw)
	if other > start {
		end = other
	}
	value := raw[start:end]
	if nl := strings.Index(value, "\n"); nl >= 0 {
		value = value[:nl]
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*"))
}

// NormalizeTitle cleans a title response: first non-empty line, without
// quotes, bullet glyphs, a "Title:" label or trailing period.
func NormalizeTitle(raw string) string {
	lines := NonEmptyLines(raw)
	if len(lines) == 0 {
		return ""
	}
	title := StripBulletGlyph(lines[0])
	if i := strings.Index(title, ":"); i >= 0 && strings.Contains(strings.ToLower(title[:i]), "title") {
		title = title[i+1:]
	}
	title = strings.Trim(strings.TrimSpace(title), `"'*`)
	return strings.TrimSpace(strings.TrimSuffix(title, "."))
}
