package tailoring

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/llm/failover"
	"resume-tailor/internal/parse"
	"resume-tailor/resume/model"
	"resume-tailor/resume/sections"
)

type call struct {
	prompt   string
	jsonMode bool
	start    int
}

// scriptedDispatcher answers with replies in order; an empty reply means
// every provider failed.
type scriptedDispatcher struct {
	mu      sync.Mutex
	replies []string
	calls   []call
}

func (d *scriptedDispatcher) Run(_ context.Context, prompt string, jsonMode bool, start int) failover.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call{prompt, jsonMode, start})
	if len(d.replies) == 0 {
		return failover.Result{Err: failover.ErrExhausted}
	}
	reply := d.replies[0]
	d.replies = d.replies[1:]
	if reply == "" {
		return failover.Result{Err: failover.ErrExhausted}
	}
	return failover.Result{Text: reply, Provider: "Groq"}
}

func testFacts() model.StaticResumeFacts {
	return model.StaticResumeFacts{
		Contact: model.Contact{Name: "Ada Lovelace", Email: "ada@example.com"},
		Education: []model.Education{
			{Institution: "UNT", Degree: "MS Data Analytics", Dates: "Graduation Expected: Dec 2026"},
		},
		Employers: []model.Employer{
			{Name: "Conduent", Dates: "Nov 2024 – Present", OriginalBullets: []string{"c1", "c2", "c3", "c4"}},
			{Name: "Itech", Dates: "Sep 2022 – Oct 2024", OriginalBullets: []string{"i1", "i2", "i3"}},
		},
	}
}

func newTestService(replies ...string) (*Service, *scriptedDispatcher) {
	d := &scriptedDispatcher{replies: replies}
	svc := NewService(d, testFacts())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc, d
}

func TestExtractJobTitle(t *testing.T) {
	svc, d := newTestService(`"Senior Data Analyst"`)
	assert.Equal(t, "Senior Data Analyst", svc.ExtractJobTitle(context.Background(), "analyst", "We need a senior data analyst", 2))
	require.Len(t, d.calls, 1)
	assert.Equal(t, 2, d.calls[0].start)
	assert.False(t, d.calls[0].jsonMode)

	svc, d = newTestService()
	assert.Equal(t, "analyst", svc.ExtractJobTitle(context.Background(), "analyst", "  ", 0))
	assert.Empty(t, d.calls)

	svc, _ = newTestService("")
	assert.Equal(t, "analyst", svc.ExtractJobTitle(context.Background(), "analyst", "jd", 0))
}

func TestGenerateResumeDataNormalizesEmployers(t *testing.T) {
	reply := "```json\n" + `{
	  "skills": {"technical": ["SQL", "Power BI"], "soft": "Communication"},
	  "experience": {
	    "conduent": {"role": "BI Analyst", "bullets": ["• b1", "b2", "b3", "b4"]},
	    "Invented Inc": {"role": "CEO", "bullets": ["x"]}
	  }
	}` + "\n```"
	svc, d := newTestService(reply)

	data := svc.GenerateResumeData(context.Background(), "jd", "Data Analyst", 1)
	require.False(t, data.Failed())
	require.Len(t, d.calls, 1)
	assert.True(t, d.calls[0].jsonMode)

	assert.Equal(t, "SQL, Power BI", data.Skills.Technical)
	assert.Len(t, data.Experience, 2)
	assert.NotContains(t, data.Experience, "Invented Inc")
	assert.Equal(t, model.TailoredRole{Role: "BI Analyst", Bullets: []string{"b1", "b2", "b3"}}, data.Experience["Conduent"])
	assert.Equal(t, model.TailoredRole{Role: "Data Analyst", Bullets: []string{"i1", "i2", "i3"}}, data.Experience["Itech"])
}

func TestGenerateResumeDataPadsShortBullets(t *testing.T) {
	reply := `{"skills": {"technical": "SQL", "soft": "Teamwork"}, "experience": {"Conduent": {"role": "", "bullets": ["only one"]}, "Itech": {"role": "Analyst", "bullets": ["i2"]}}}`
	svc, _ := newTestService(reply)

	data := svc.GenerateResumeData(context.Background(), "jd", "Data Analyst", 0)
	assert.Equal(t, model.TailoredRole{Role: "Data Analyst", Bullets: []string{"only one", "c1", "c2"}}, data.Experience["Conduent"])
	assert.Equal(t, []string{"i2", "i1", "i3"}, data.Experience["Itech"].Bullets)
}

func TestGenerateResumeDataFailures(t *testing.T) {
	svc, _ := newTestService("")
	data := svc.GenerateResumeData(context.Background(), "jd", "t", 0)
	assert.Equal(t, failover.Sentinel, data.Error)
	assert.Nil(t, data.Experience)

	svc, _ = newTestService("I cannot help with that")
	data = svc.GenerateResumeData(context.Background(), "jd", "t", 0)
	assert.Equal(t, InvalidStructureMessage, data.Error)

	svc, _ = newTestService(`{"skills": {"technical": "SQL", "soft": "x"}}`)
	data = svc.GenerateResumeData(context.Background(), "jd", "t", 0)
	assert.Equal(t, InvalidStructureMessage, data.Error)
}

func TestTailorExperienceFallsBack(t *testing.T) {
	svc, d := newTestService("BI Analyst\n• one\n• two\n• three", "just one line")
	exp, err := svc.TailorExperience(context.Background(), "jd", "Data Analyst", 0)
	require.NoError(t, err)
	require.Len(t, d.calls, 2)
	assert.Equal(t, model.TailoredRole{Role: "BI Analyst", Bullets: []string{"one", "two", "three"}}, exp["Conduent"])
	assert.Equal(t, model.TailoredRole{Role: "Data Analyst", Bullets: []string{"i1", "i2", "i3"}}, exp["Itech"])

	svc, _ = newTestService()
	exp, err = svc.TailorExperience(context.Background(), "jd", "Data Analyst", 0)
	assert.ErrorIs(t, err, ErrProvidersExhausted)
	assert.Len(t, exp, 2)
}

func TestTailorSkills(t *testing.T) {
	svc, _ := newTestService("Technical Skills: SQL, Python\nSoft Skills: Leadership")
	skills, err := svc.TailorSkills(context.Background(), "jd", model.TailoredSkills{}, 0)
	require.NoError(t, err)
	assert.Equal(t, model.TailoredSkills{Technical: "SQL, Python", Soft: "Leadership"}, skills)

	svc, _ = newTestService("no labels here")
	skills, err = svc.TailorSkills(context.Background(), "jd", model.TailoredSkills{}, 0)
	require.NoError(t, err)
	assert.Equal(t, parse.SkillsPlaceholder, skills.Technical)
}

func TestGenerateCoverLetter(t *testing.T) {
	data := model.GeneratedResumeData{Skills: model.TailoredSkills{Technical: "SQL", Soft: "Empathy"}}
	svc, d := newTestService("  Dear Hiring Manager,\nHello.  ")
	letter, err := svc.GenerateCoverLetter(context.Background(), data, "jd", "Analyst", "Acme", 3)
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,\nHello.", letter)
	require.Len(t, d.calls, 1)
	assert.Contains(t, d.calls[0].prompt, "Ada Lovelace")
	assert.Contains(t, d.calls[0].prompt, "Acme")

	svc, _ = newTestService("")
	letter, err = svc.GenerateCoverLetter(context.Background(), data, "jd", "Analyst", "Acme", 0)
	assert.ErrorIs(t, err, ErrProvidersExhausted)
	assert.Equal(t, failover.Sentinel, letter)

	_, err = svc.GenerateCoverLetter(context.Background(), model.NewFailedResumeData("x"), "jd", "Analyst", "Acme", 0)
	assert.Error(t, err)
}

func TestGenerateCheatsheet(t *testing.T) {
	svc, _ := newTestService("# Prep\n- one")
	out, err := svc.GenerateCheatsheet(context.Background(), "resume", "jd", "Analyst", 0)
	require.NoError(t, err)
	assert.Equal(t, "# Prep\n- one", out)
}

const cv = `Jane Doe
jane@example.com

Summary
Analyst with SQL experience.

Education
BSc Maths

Experience
Analyst | Acme | 2020 - Present
- Built reports`

func TestTailorSectionsRewritesAllowListOnly(t *testing.T) {
	svc, d := newTestService("## Professional Summary\nData analyst who ships Python dashboards.", "- Built Python reports\n- Automated SQL")
	res, err := svc.TailorSections(context.Background(), cv, "Python SQL analyst", 0)
	require.NoError(t, err)

	require.Len(t, d.calls, 2)
	assert.Equal(t, sections.Order{sections.ContactInfo, sections.ProfessionalSummary, sections.Education, sections.ProfessionalExperience}, res.Order)
	assert.Equal(t, []sections.ID{sections.ProfessionalSummary, sections.ProfessionalExperience}, res.Tailored)
	assert.Equal(t, "Data analyst who ships Python dashboards.", res.Sections[sections.ProfessionalSummary])
	assert.Equal(t, "BSc Maths", res.Sections[sections.Education])
	assert.True(t, strings.HasPrefix(res.Markdown, "Jane Doe"))
	assert.Contains(t, res.Markdown, "## Education\nBSc Maths")
	assert.Positive(t, res.ATSScore)
}

func TestTailorSectionsKeepsOriginalOnExhaustion(t *testing.T) {
	svc, _ := newTestService()
	res, err := svc.TailorSections(context.Background(), cv, "jd", 0)
	assert.ErrorIs(t, err, ErrProvidersExhausted)
	assert.Empty(t, res.Tailored)
	assert.Equal(t, "Analyst with SQL experience.", res.Sections[sections.ProfessionalSummary])
}

func TestPlainText(t *testing.T) {
	svc, _ := newTestService()
	data := model.GeneratedResumeData{
		Skills:     model.TailoredSkills{Technical: "SQL", Soft: "Empathy"},
		Experience: model.TailoredExperience{"Conduent": {Role: "BI Analyst", Bullets: []string{"b1"}}},
	}
	text := svc.PlainText(data)
	assert.Contains(t, text, "BI Analyst | Conduent | Nov 2024 – Present")
	assert.Contains(t, text, "- b1")
	assert.Contains(t, text, "Technical Skills: SQL")
	assert.NotContains(t, text, "Itech |")
}
