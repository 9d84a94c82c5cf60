// Package tailoring runs the résumé, cover letter and cheatsheet pipelines
// on top of the provider failover chain.
package tailoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-tailor/internal/llm/failover"
	"resume-tailor/internal/parse"
	"resume-tailor/internal/prompts"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/ats"
	"resume-tailor/resume/model"
	"resume-tailor/resume/sections"
)

// InvalidStructureMessage is stored in GeneratedResumeData.Error when the
// model answered with something that isn't the expected JSON object.
const InvalidStructureMessage = "Invalid response structure from AI"

// ErrProvidersExhausted is returned when every provider failed for a call.
var ErrProvidersExhausted = failover.ErrExhausted

// Dispatcher sends one prompt through the provider chain.
type Dispatcher interface {
	Run(ctx context.Context, prompt string, jsonMode bool, start int) failover.Result
}

// Service holds the candidate facts and the dispatcher. It is safe for
// concurrent use; per-session state (the provider start index) is passed in.
type Service struct {
	llm   Dispatcher
	facts model.StaticResumeFacts
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(d Dispatcher, facts model.StaticResumeFacts) *Service {
	return &Service{llm: d, facts: facts, now: time.Now}
}

// Facts returns the candidate profile.
func (s *Service) Facts() model.StaticResumeFacts { return s.facts }

// call runs prompt and logs which provider answered.
func (s *Service) call(ctx context.Context, op, prompt string, jsonMode bool, start int) (string, error) {
	res := s.llm.Run(ctx, prompt, jsonMode, start)
	if !res.OK() {
		telemetry.Warn("tailoring.call.failed", map[string]any{"op": op, "attempts": len(res.Attempts), "start": start})
		return "", res.Err
	}
	telemetry.Info("tailoring.call", map[string]any{"op": op, "provider": res.Provider, "attempts": len(res.Attempts)})
	return res.Text, nil
}

// ExtractJobTitle returns a standardized title for the posting. The
// candidate is returned unchanged when there is no description or no usable
// model answer.
func (s *Service) ExtractJobTitle(ctx context.Context, candidate, jobDescription string, start int) string {
	if strings.TrimSpace(jobDescription) == "" {
		return candidate
	}
	text, err := s.call(ctx, "title", prompts.TitleExtraction(candidate, jobDescription), false, start)
	if err != nil {
		return candidate
	}
	if title := parse.NormalizeTitle(text); title != "" {
		return title
	}
	return candidate
}

// GenerateResumeData asks for tailored skills and one role per known
// employer. The result always names exactly the profile's employers, each
// with model.BulletsPerRole bullets, unless it is the error branch.
func (s *Service) GenerateResumeData(ctx context.Context, jobDescription, title string, start int) model.GeneratedResumeData {
	prompt := prompts.ResumeGeneration(title, jobDescription, s.facts.EmployerNames())
	text, err := s.call(ctx, "resume", prompt, true, start)
	if err != nil {
		return model.NewFailedResumeData(failover.Sentinel)
	}
	data, ok := parse.DecodeResumeData(text)
	if !ok {
		return model.NewFailedResumeData(InvalidStructureMessage)
	}
	data.Experience = s.normalizeExperience(data.Experience, title)
	return data
}

// normalizeExperience maps the model's experience onto the profile: unknown
// employers are dropped, missing ones get the target title and their first
// original bullets, and every bullet list is padded or trimmed to size.
func (s *Service) normalizeExperience(in model.TailoredExperience, title string) model.TailoredExperience {
	byFold := make(map[string]model.TailoredRole, len(in))
	for name, role := range in {
		byFold[strings.ToLower(strings.TrimSpace(name))] = role
	}

	out := make(model.TailoredExperience, len(s.facts.Employers))
	for _, emp := range s.facts.Employers {
		role, ok := in[emp.Name]
		if !ok {
			role, ok = byFold[strings.ToLower(emp.Name)]
		}
		if !ok {
			out[emp.Name] = model.TailoredRole{Role: title, Bullets: emp.FirstBullets(model.BulletsPerRole)}
			continue
		}
		if strings.TrimSpace(role.Role) == "" {
			role.Role = title
		}
		role.Bullets = fitBullets(role.Bullets, emp.OriginalBullets, model.BulletsPerRole)
		out[emp.Name] = role
	}
	return out
}

func fitBullets(bullets, originals []string, n int) []string {
	out := make([]string, 0, n)
	seen := map[string]bool{}
	for _, b := range bullets {
		if len(out) == n {
			break
		}
		if b = strings.TrimSpace(b); b != "" && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, b := range originals {
		if len(out) == n {
			break
		}
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}

// TailorExperience rewrites each employer entry with its own prompt. Entries
// whose answer can't be parsed, or whose call failed, get
// model.FallbackRole. The returned error is ErrProvidersExhausted when at
// least one call found no provider; the experience map is complete either way.
func (s *Service) TailorExperience(ctx context.Context, jobDescription, title string, start int) (model.TailoredExperience, error) {
	out := make(model.TailoredExperience, len(s.facts.Employers))
	var exhausted error
	for _, emp := range s.facts.Employers {
		fallbackRole := model.FallbackRole(emp, title)
		prompt := prompts.ExperienceEntry(emp.Name, fallbackRole.Role, emp.OriginalBullets, jobDescription, title)
		text, err := s.call(ctx, "experience", prompt, false, start)
		if err != nil {
			exhausted = err
			out[emp.Name] = fallbackRole
			continue
		}
		role, _ := parse.ParseExperienceLines(text, fallbackRole)
		out[emp.Name] = role
	}
	return out, exhausted
}

// TailorSkills rewrites the two skill lines starting from current.
func (s *Service) TailorSkills(ctx context.Context, jobDescription string, current model.TailoredSkills, start int) (model.TailoredSkills, error) {
	text, err := s.call(ctx, "skills", prompts.Skills(jobDescription, current.Technical, current.Soft), false, start)
	if err != nil {
		return current, err
	}
	return parse.ParseSkills(text), nil
}

// GenerateCoverLetter writes a letter from the finalized résumé data. On
// provider exhaustion it returns failover.Sentinel and ErrProvidersExhausted.
func (s *Service) GenerateCoverLetter(ctx context.Context, data model.GeneratedResumeData, jobDescription, title, company string, start int) (string, error) {
	if data.Failed() {
		return "", fmt.Errorf("cover letter needs resume data: %s", data.Error)
	}
	in := prompts.CoverLetterInput{
		Name:               s.facts.Contact.Name,
		Education:          educationSummary(s.facts.Education),
		ExpectedGraduation: s.facts.ExpectedGraduation(),
		TenureYears:        s.facts.TenureYears(s.now()),
		TechnicalSkills:    data.Skills.Technical,
		SoftSkills:         data.Skills.Soft,
		JobDescription:     jobDescription,
		Title:              title,
		Company:            company,
	}
	text, err := s.call(ctx, "cover_letter", prompts.CoverLetter(in), false, start)
	if err != nil {
		return failover.Sentinel, err
	}
	return strings.TrimSpace(text), nil
}

// GenerateCheatsheet writes the markdown interview guide.
func (s *Service) GenerateCheatsheet(ctx context.Context, resumeText, jobDescription, title string, start int) (string, error) {
	text, err := s.call(ctx, "cheatsheet", prompts.Cheatsheet(resumeText, jobDescription, title), false, start)
	if err != nil {
		return failover.Sentinel, err
	}
	return strings.TrimSpace(text), nil
}

// SectionResult is the outcome of section-variant tailoring.
type SectionResult struct {
	Sections sections.Map   `json:"sections"`
	Order    sections.Order `json:"order"`
	Markdown string         `json:"markdown"`
	Tailored []sections.ID  `json:"tailored"`
	ATSScore int            `json:"atsScore"`
}

// TailorSections splits cvText, rewrites the tailorable non-empty sections
// one at a time and reassembles them in their original order. A section
// whose call fails keeps its original text. The error is
// ErrProvidersExhausted when any call found no provider.
func (s *Service) TailorSections(ctx context.Context, cvText, jobDescription string, start int) (SectionResult, error) {
	m, order := sections.Segment(cvText)
	res := SectionResult{Sections: m, Order: order, Tailored: []sections.ID{}}
	var exhausted error
	for _, id := range order {
		body := strings.TrimSpace(m[id])
		if !sections.Tailorable[id] || body == "" {
			continue
		}
		text, err := s.call(ctx, "section", prompts.Section(string(id), sections.Title(id), body, jobDescription), false, start)
		if err != nil {
			if errors.Is(err, ErrProvidersExhausted) {
				exhausted = err
			}
			continue
		}
		if rewritten := cleanSectionBody(text, id); rewritten != "" {
			m[id] = rewritten
			res.Tailored = append(res.Tailored, id)
		}
	}
	res.Markdown = sections.Markdown(m, order)
	res.ATSScore = ats.Score(res.Markdown, jobDescription)
	return res, exhausted
}

// cleanSectionBody drops a leading heading line the model may have echoed.
func cleanSectionBody(text string, id sections.ID) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 0 {
		if got, ok := sections.MatchHeading(lines[0]); ok && got == id {
			lines = lines[1:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ATSScore compares résumé text with the job description.
func (s *Service) ATSScore(resumeText, jobDescription string) (ats.Report, error) {
	return ats.Analyze(resumeText, jobDescription)
}

// PlainText renders the static-facts résumé as text, used as model input
// for the cheatsheet and for ATS scoring.
func (s *Service) PlainText(data model.GeneratedResumeData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\nEDUCATION\n", s.facts.Contact.Name, s.facts.Contact.Details())
	for _, edu := range s.facts.Education {
		fmt.Fprintf(&b, "%s, %s (%s)\n", edu.Degree, edu.Institution, edu.Dates)
	}
	b.WriteString("\nRELEVANT EXPERIENCE\n")
	for _, emp := range s.facts.Employers {
		role, ok := data.Experience[emp.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s | %s | %s\n", role.Role, emp.Name, emp.Dates)
		for _, bullet := range role.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
	}
	fmt.Fprintf(&b, "\nSKILLS\nTechnical Skills: %s\nSoft Skills: %s\n", data.Skills.Technical, data.Skills.Soft)
	return b.String()
}

func educationSummary(edu []model.Education) string {
	parts := make([]string, 0, len(edu))
	for _, e := range edu {
		parts = append(parts, e.Degree+" at "+e.Institution)
	}
	return strings.Join(parts, "; ")
}
