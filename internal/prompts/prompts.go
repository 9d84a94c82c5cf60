// Package prompts builds the natural-language instructions sent to the
// providers. Every builder is pure and echoes its output contract literally.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// Job description excerpt lengths per task.
const (
	TitleJDChars       = 1000
	ResumeJDChars      = 2500
	CoverLetterJDChars = 600
	EntryJDChars       = 1500
	SectionJDChars     = 2000
)

var templates = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(templateFiles, "templates/*.tmpl"))

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are embedded and their inputs are plain strings, so a
		// failure here is a programming error.
		panic(fmt.Sprintf("prompts: render %s: %v", name, err))
	}
	return strings.TrimSpace(buf.String()) + "\n"
}

// Excerpt returns the first n characters of s.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// TitleExtraction asks for one standardized job title.
func TitleExtraction(candidate, jobDescription string) string {
	return render("title.tmpl", struct {
		Candidate      string
		JobDescription string
	}{strings.TrimSpace(candidate), Excerpt(jobDescription, TitleJDChars)})
}

// ResumeGeneration asks for the skills + experience JSON object, one entry
// per employer in the given order.
func ResumeGeneration(title, jobDescription string, employers []string) string {
	return render("resume.tmpl", struct {
		Title          string
		JobDescription string
		Employers      []string
	}{strings.TrimSpace(title), Excerpt(jobDescription, ResumeJDChars), employers})
}

// CoverLetterInput is everything the cover letter prompt needs.
type CoverLetterInput struct {
	Name               string
	Education          string
	ExpectedGraduation string
	TenureYears        int
	TechnicalSkills    string
	SoftSkills         string
	JobDescription     string
	Title              string
	Company            string
}

// CoverLetter asks for a 4 paragraph, 180-300 word letter.
func CoverLetter(in CoverLetterInput) string {
	in.JobDescription = Excerpt(in.JobDescription, CoverLetterJDChars)
	in.Company = strings.TrimSpace(in.Company)
	return render("cover_letter.tmpl", in)
}

// Cheatsheet asks for the Markdown interview guide.
func Cheatsheet(resumeText, jobDescription, title string) string {
	return render("cheatsheet.tmpl", struct {
		ResumeText     string
		JobDescription string
		Title          string
	}{strings.TrimSpace(resumeText), strings.TrimSpace(jobDescription), strings.TrimSpace(title)})
}

// ExperienceEntry asks for exactly 4 lines: a title and 3 "• " bullets.
func ExperienceEntry(employer, role string, bullets []string, jobDescription, title string) string {
	return render("experience.tmpl", struct {
		Employer       string
		Role           string
		Bullets        []string
		JobDescription string
		Title          string
	}{employer, role, bullets, Excerpt(jobDescription, EntryJDChars), title})
}

// Skills asks for the labelled "Technical Skills:" / "Soft Skills:" lines.
func Skills(jobDescription, technical, soft string) string {
	return render("skills.tmpl", struct {
		Technical      string
		Soft           string
		JobDescription string
	}{technical, soft, Excerpt(jobDescription, EntryJDChars)})
}

var sectionGuidance = map[string]string{
	"PROFESSIONAL_SUMMARY":    "3-4 sentences. Lead with the target role and years of experience, then the two or three strengths the job values most.",
	"PROFESSIONAL_EXPERIENCE": "Keep every employer, title line and date line. Rewrite bullets to foreground tools and outcomes the job asks for; 3-5 bullets per role.",
	"CORE_SKILLS":             "Group skills on short labelled lines (e.g. \"Analytics: SQL, Python\"). Put skills named in the job first; drop ones irrelevant to it.",
	"PROJECTS":                "Keep project names. One or two bullets each describing the problem, the tools and a measurable result.",
}

// Section asks for a rewritten body of one résumé section (section variant).
func Section(sectionID, heading, content, jobDescription string) string {
	guidance, ok := sectionGuidance[sectionID]
	if !ok {
		guidance = "Tighten wording and emphasize what matches the job."
	}
	return render("section.tmpl", struct {
		Heading        string
		Guidance       string
		Content        string
		JobDescription string
	}{heading, guidance, strings.TrimSpace(content), Excerpt(jobDescription, SectionJDChars)})
}
