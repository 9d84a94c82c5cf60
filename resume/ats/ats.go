// Package ats scores how well résumé text covers a job description's
// keywords.
package ats

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// MaxInputLength caps the text ExtractKeywords will scan.
const MaxInputLength = 15000

// MaxKeywords is the number of keywords kept per job description.
const MaxKeywords = 30

// ErrInputTooLong is returned for text longer than MaxInputLength.
var ErrInputTooLong = errors.New("ats: input exceeds maximum length")

var tokenPattern = regexp.MustCompile(`[a-z][a-z0-9+#]*(?:\.[a-z0-9]+)*`)

var stopwords = toSet(`a about above after again against all also am an and any are as at be because been
before being below between both but by can could did do does doing down during each etc experience
few for from further had has have having he her here hers him his how i if in into is it its itself
just least looking me more most must my no nor not now of off on once only or other our ours out over
own plus preferred position required requirements responsibilities role same she should so some
strong such than that the their theirs them then there these they this those through to too under
until up using very via was we were what when where which while who whom why will with within work
working would years you your yours ability able candidate company including team teams knowledge`)

// shortKeywords are meaningful tokens below the normal three-letter floor.
var shortKeywords = toSet("go r c c# ai ml bi qa ui ux")

func toSet(words string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		out[w] = struct{}{}
	}
	return out
}

// ExtractKeywords returns lower-cased keywords from text ordered by frequency,
// ties broken by first appearance.
func ExtractKeywords(text string) ([]string, error) {
	if len(text) > MaxInputLength {
		return nil, ErrInputTooLong
	}
	counts := map[string]int{}
	first := map[string]int{}
	for i, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		tok = strings.TrimRight(tok, ".")
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, short := shortKeywords[tok]; len(tok) < 3 && !short {
			continue
		}
		if _, seen := first[tok]; !seen {
			first[tok] = i
		}
		counts[tok]++
	}

	out := make([]string, 0, len(counts))
	for tok := range counts {
		out = append(out, tok)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return first[out[i]] < first[out[j]]
	})
	if len(out) > MaxKeywords {
		out = out[:MaxKeywords]
	}
	return out, nil
}

// HighlightKeywords wraps whole-word, case-insensitive keyword matches in
// **bold** markers, keeping the original casing. No keywords means no change.
func HighlightKeywords(text string, keywords []string) string {
	pattern := keywordPattern(keywords)
	if pattern == nil {
		return text
	}
	return pattern.ReplaceAllString(text, "**$1**")
}

func keywordPattern(keywords []string) *regexp.Regexp {
	var alts []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			alts = append(alts, regexp.QuoteMeta(kw))
		}
	}
	if len(alts) == 0 {
		return nil
	}
	// longest first so "power bi" wins over "power"
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return regexp.MustCompile(`(?i)(?:^|\b)(` + strings.Join(alts, "|") + `)(?:\b|$)`)
}

// Report is the outcome of comparing a résumé with a job description.
type Report struct {
	Score   int      `json:"score"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// Analyze scores resume against jd. Score is the percentage of job keywords
// found in the résumé, 0 when either side is empty.
func Analyze(resume, jd string) (Report, error) {
	report := Report{Matched: []string{}, Missing: []string{}}
	if strings.TrimSpace(resume) == "" || strings.TrimSpace(jd) == "" {
		return report, nil
	}
	keywords, err := ExtractKeywords(jd)
	if err != nil {
		return report, err
	}
	if len(keywords) == 0 {
		return report, nil
	}

	present := map[string]struct{}{}
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(resume), -1) {
		present[strings.TrimRight(tok, ".")] = struct{}{}
	}
	for _, kw := range keywords {
		if _, ok := present[kw]; ok {
			report.Matched = append(report.Matched, kw)
		} else {
			report.Missing = append(report.Missing, kw)
		}
	}
	report.Score = int(math.Round(float64(len(report.Matched)) * 100 / float64(len(keywords))))
	return report, nil
}

// Score is Analyze without the keyword breakdown. Inputs that can't be
// analyzed score 0.
func Score(resume, jd string) int {
	report, err := Analyze(resume, jd)
	if err != nil {
		return 0
	}
	return report.Score
}
