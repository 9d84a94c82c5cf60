// Package sections splits free-form CV text into named sections and puts
// them back together.
package sections

import (
	"regexp"
	"sort"
	"strings"
)

// ID names a résumé section.
type ID string

const (
	ContactInfo            ID = "CONTACT_INFO"
	ProfessionalSummary    ID = "PROFESSIONAL_SUMMARY"
	ProfessionalExperience ID = "PROFESSIONAL_EXPERIENCE"
	CoreSkills             ID = "CORE_SKILLS"
	Education              ID = "EDUCATION"
	Certifications         ID = "CERTIFICATIONS"
	Projects               ID = "PROJECTS"
	Awards                 ID = "AWARDS"
	VolunteerExperience    ID = "VOLUNTEER_EXPERIENCE"
	Languages              ID = "LANGUAGES"
	Publications           ID = "PUBLICATIONS"
	Interests              ID = "INTERESTS"
)

// Map holds section bodies keyed by ID.
type Map map[ID]string

// Order is the sequence sections appeared in.
type Order []ID

type heading struct {
	id      ID
	title   string
	pattern *regexp.Regexp
}

// headings is evaluated in order; the first full match wins.
var headings = []heading{
	{ProfessionalSummary, "Professional Summary", regexp.MustCompile(`(?i)^(professional\s+)?(summary|profile|objective|about(\s+me)?)$`)},
	{ProfessionalExperience, "Professional Experience", regexp.MustCompile(`(?i)^((professional|work|relevant)\s+)?(experience|employment(\s+history)?|work\s+history)$`)},
	{CoreSkills, "Core Skills", regexp.MustCompile(`(?i)^((core|key|technical)\s+)?(skills|competencies|skills\s*(&|and)\s*(tools|technologies))$`)},
	{Education, "Education", regexp.MustCompile(`(?i)^education(\s*(&|and)\s*training)?$`)},
	{Certifications, "Certifications", regexp.MustCompile(`(?i)^(certifications?|licenses?(\s*(&|and)\s*certifications?)?)$`)},
	{Projects, "Projects", regexp.MustCompile(`(?i)^((key|selected|personal)\s+)?projects$`)},
	{Awards, "Awards", regexp.MustCompile(`(?i)^(awards|honou?rs|awards\s*(&|and)\s*honou?rs|achievements)$`)},
	{VolunteerExperience, "Volunteer Experience", regexp.MustCompile(`(?i)^(volunteer(ing)?(\s+experience)?|community\s+involvement)$`)},
	{Languages, "Languages", regexp.MustCompile(`(?i)^languages$`)},
	{Publications, "Publications", regexp.MustCompile(`(?i)^publications$`)},
	{Interests, "Interests", regexp.MustCompile(`(?i)^(interests|hobbies(\s*(&|and)\s*interests)?)$`)},
}

// Tailorable lists the sections the model may rewrite. Everything else is
// copied through untouched.
var Tailorable = map[ID]bool{
	ProfessionalSummary:    true,
	ProfessionalExperience: true,
	CoreSkills:             true,
	Projects:               true,
}

// Title returns the canonical heading for id.
func Title(id ID) string {
	for _, h := range headings {
		if h.id == id {
			return h.title
		}
	}
	if id == ContactInfo {
		return "Contact Info"
	}
	return string(id)
}

// MatchHeading reports which section a line opens, if any.
func MatchHeading(line string) (ID, bool) {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "#")
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ":"))
	s = strings.Trim(s, "*")
	if s == "" || len(s) > 60 {
		return "", false
	}
	for _, h := range headings {
		if h.pattern.MatchString(s) {
			return h.id, true
		}
	}
	return "", false
}

// Segment splits text into sections. Lines before the first heading belong to
// CONTACT_INFO, which always leads the order even when empty. A heading seen
// twice appends to the existing section.
func Segment(text string) (Map, Order) {
	m := Map{ContactInfo: ""}
	order := Order{ContactInfo}

	current := ContactInfo
	var buf []string
	flush := func() {
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if body == "" {
			return
		}
		if prev := m[current]; prev != "" {
			m[current] = prev + "\n" + body
			return
		}
		m[current] = body
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if id, ok := MatchHeading(line); ok {
			flush()
			current = id
			if _, seen := m[id]; !seen {
				m[id] = ""
				order = append(order, id)
			}
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return m, order
}

// Reassemble joins sections back into plain text in the given order. Empty
// sections are dropped and CONTACT_INFO is written without a heading.
func Reassemble(m Map, order Order) string {
	return join(m, order, Title)
}

// Markdown is Reassemble with "## " headings, the form used by the editor.
func Markdown(m Map, order Order) string {
	return join(m, order, func(id ID) string { return "## " + Title(id) })
}

func join(m Map, order Order, head func(ID) string) string {
	var parts []string
	for _, id := range order {
		body := strings.TrimSpace(m[id])
		if body == "" {
			continue
		}
		if id == ContactInfo {
			parts = append(parts, body)
			continue
		}
		parts = append(parts, head(id)+"\n"+body)
	}
	return strings.Join(parts, "\n\n")
}

// ParseMarkdown reads the editor form back into sections. Headings are matched
// with the same rules as Segment.
func ParseMarkdown(md string) (Map, Order) {
	return Segment(md)
}

var sectionKeywords = map[ID][]string{
	ProfessionalSummary:    {"summary", "overview", "profile", "communication", "leadership", "results"},
	ProfessionalExperience: {"experience", "years", "team", "lead", "deliver", "develop", "manage", "build"},
	CoreSkills:             {"skills", "proficient", "knowledge", "tools", "technologies", "python", "sql", "framework"},
	Projects:               {"project", "portfolio", "prototype", "build", "design", "launch"},
	Education:              {"degree", "bachelor", "master", "phd", "university", "graduate"},
	Certifications:         {"certified", "certification", "license", "aws", "pmp"},
}

// Prioritize ranks sections by how often the job description mentions words
// associated with them. CONTACT_INFO is always first and
// PROFESSIONAL_EXPERIENCE always lands in the first three entries of the
// result, CONTACT_INFO included.
func Prioritize(jd string) Order {
	lower := strings.ToLower(jd)
	candidates := []ID{ProfessionalSummary, ProfessionalExperience, CoreSkills, Projects, Education, Certifications}
	score := make(map[ID]int, len(candidates))
	for _, id := range candidates {
		for _, kw := range sectionKeywords[id] {
			score[id] += strings.Count(lower, kw)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return score[candidates[i]] > score[candidates[j]] })

	out := Order{ContactInfo}
	for _, id := range candidates {
		out = append(out, id)
	}
	// keep experience in the top three (index 0 is contact info)
	for i, id := range out {
		if id == ProfessionalExperience && i > 2 {
			copy(out[2:i+1], append(Order{ProfessionalExperience}, out[2:i]...))
		}
	}
	return out
}
