package util

import (
	"regexp"
	"strings"
)

var (
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugNonWord    = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	slugUnderscore = regexp.MustCompile(`_+`)
)

// Slugify turns free text into a lowercase filename fragment. Letters and
// digits of any script are kept. Parts are slugified independently and
// joined with "_"; empty parts are skipped.
func Slugify(parts ...string) string {
	var out []string
	for _, p := range parts {
		if s := slugifyOne(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "_")
}

func slugifyOne(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugSpaces.ReplaceAllString(s, "_")
	s = slugNonWord.ReplaceAllString(s, "")
	s = slugUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ArtifactFileName builds the download name for a rendered document, e.g.
// resume_senior_data_analyst_acme_corp.docx.
func ArtifactFileName(kind, title, company string) string {
	name := Slugify(kind, title, company)
	if name == "" {
		name = "document"
	}
	return name + ".docx"
}
